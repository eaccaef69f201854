package controllers

import (
	"net/http"

	"Gin_postgres_redis_invent_tool/app"
	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/models"
	"Gin_postgres_redis_invent_tool/notify"

	"github.com/gin-gonic/gin"
)

type IssuanceController struct{ *Srv }

func NewIssuanceController(s *Srv) *IssuanceController { return &IssuanceController{Srv: s} }

// 发放已批准的请求
func (ic *IssuanceController) Issue(c *gin.Context) {
	var in struct {
		ClientID string `json:"clientId"`
	}
	_ = c.ShouldBindJSON(&in)

	req, err := ic.Repo.IssueSelection(c.Request.Context(), db.IssueInput{
		RequestID: c.Param("id"),
		ClientID:  in.ClientID,
		ActorID:   app.UserID(c),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	ic.emit(c, notify.EventRequestIssued, req, models.StatusApproved)
	c.JSON(http.StatusOK, req)
}

// 登记归还（可分批）
func (ic *IssuanceController) Return(c *gin.Context) {
	var in struct {
		Quantity int    `json:"quantity" binding:"required,gt=0"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	req, err := ic.Repo.ReturnUnits(c.Request.Context(), db.ReturnInput{
		RequestID: c.Param("id"),
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		ActorID:   app.UserID(c),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	ic.emit(c, notify.EventReturnRecorded, req, "")
	c.JSON(http.StatusOK, req)
}

// 直发：跳过请求流程，把单个可用 unit 发给 client
func (ic *IssuanceController) DirectIssue(c *gin.Context) {
	var in struct {
		ClientID string `json:"clientId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	rec, err := ic.Repo.DirectIssue(c.Request.Context(), c.Param("id"), in.ClientID, app.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (ic *IssuanceController) DirectReturn(c *gin.Context) {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in)
	rec, err := ic.Repo.DirectReturn(c.Request.Context(), c.Param("id"), app.UserID(c), in.Reason)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// 审计记录

func (ic *IssuanceController) ListIssuances(c *gin.Context) {
	recs, err := ic.Repo.ListIssuanceRecords(c.Request.Context(),
		c.Query("requestId"), atoiDefault(c.Query("page"), 1), atoiDefault(c.Query("size"), 50))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"records": recs})
}

func (ic *IssuanceController) ListReturns(c *gin.Context) {
	recs, err := ic.Repo.ListReturnRecords(c.Request.Context(),
		c.Query("requestId"), atoiDefault(c.Query("page"), 1), atoiDefault(c.Query("size"), 50))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"records": recs})
}
