package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_invent_tool/app"
	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/models"
	"Gin_postgres_redis_invent_tool/notify"

	"github.com/gin-gonic/gin"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

func (rc *RequestController) CreateRequest(c *gin.Context) {
	var in struct {
		ProductID string  `json:"productId" binding:"required"`
		Quantity  int     `json:"quantity" binding:"required,gt=0"`
		ClientID  *string `json:"clientId"`
		Reason    string  `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	req, err := rc.Repo.CreateRequest(c.Request.Context(), db.CreateRequestInput{
		ProductID:   in.ProductID,
		RequestorID: app.UserID(c),
		ClientID:    in.ClientID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	// 提交确认也走通知通道
	rc.emit(c, notify.EventRequestSubmitted, req, "")
	c.JSON(http.StatusCreated, req)
}

// GetRequest shows a request to its owner, or to staff whose branch scope
// covers the product.
func (rc *RequestController) GetRequest(c *gin.Context) {
	req, err := rc.Repo.FindRequestByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	if req.RequestorID != app.UserID(c) {
		p, perr := rc.Repo.FindProductByID(c.Request.Context(), req.ProductID)
		if perr != nil {
			writeErr(c, perr)
			return
		}
		if !app.ScopeFrom(c).Allows(p.BranchID) {
			c.JSON(http.StatusNotFound, app.H{"error": "not found"})
			return
		}
	}
	c.JSON(http.StatusOK, req)
}

// 自己的请求
func (rc *RequestController) ListMyRequests(c *gin.Context) {
	res, err := rc.Repo.ListRequests(c.Request.Context(), models.Scope{All: true}, db.RequestsQuery{
		RequestorID: app.UserID(c),
		Status:      c.Query("status"),
		Page:        atoiDefault(c.Query("page"), 1),
		Size:        atoiDefault(c.Query("size"), 20),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// 店员/管理员视角，按 branch scope 过滤
func (rc *RequestController) ListRequests(c *gin.Context) {
	res, err := rc.Repo.ListRequests(c.Request.Context(), app.ScopeFrom(c), db.RequestsQuery{
		RequestorID: c.Query("requestorId"),
		ProductID:   c.Query("productId"),
		Status:      c.Query("status"),
		Page:        atoiDefault(c.Query("page"), 1),
		Size:        atoiDefault(c.Query("size"), 20),
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (rc *RequestController) CancelRequest(c *gin.Context) {
	req, err := rc.Repo.CancelRequest(c.Request.Context(), c.Param("id"), app.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	rc.emit(c, notify.EventRequestCancelled, req, "")
	c.JSON(http.StatusOK, req)
}

func (rc *RequestController) RejectRequest(c *gin.Context) {
	req, err := rc.Repo.RejectRequest(c.Request.Context(), c.Param("id"), app.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	rc.emit(c, notify.EventRequestRejected, req, models.StatusPending)
	c.JSON(http.StatusOK, req)
}

func (rc *RequestController) MySummary(c *gin.Context) {
	rows, err := rc.Repo.RequestorSummary(c.Request.Context(), app.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"summary": rows})
}

// 交货单（PDF 渲染等在下游，这里只给数据）
func (rc *RequestController) DeliveryNote(c *gin.Context) {
	note, err := rc.Repo.DeliveryNote(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
