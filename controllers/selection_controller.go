package controllers

import (
	"errors"
	"net/http"

	"Gin_postgres_redis_invent_tool/app"
	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/models"
	"Gin_postgres_redis_invent_tool/notify"

	"github.com/gin-gonic/gin"
)

type SelectionController struct{ *Srv }

func NewSelectionController(s *Srv) *SelectionController { return &SelectionController{Srv: s} }

// 店员认领请求，开始选件
func (sc *SelectionController) StartReview(c *gin.Context) {
	req, err := sc.Repo.StartReview(c.Request.Context(), c.Param("id"), app.UserID(c))
	if err != nil {
		writeErr(c, err)
		return
	}
	sc.emit(c, notify.EventRequestUnderReview, req, models.StatusPending)
	c.JSON(http.StatusOK, req)
}

// 店员提交选件批次；预留失败时带上最新可用数，方便重选
func (sc *SelectionController) SubmitSelection(c *gin.Context) {
	var in struct {
		UnitIDs []string `json:"unitIds" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	requestID := c.Param("id")
	sel, err := sc.Repo.SubmitSelection(c.Request.Context(), db.SubmitSelectionInput{
		RequestID: requestID,
		ClerkID:   app.UserID(c),
		UnitIDs:   in.UnitIDs,
	})
	if err != nil {
		if errors.Is(err, db.ErrUnitUnavailable) {
			if req, ferr := sc.Repo.FindRequestByID(c.Request.Context(), requestID); ferr == nil {
				if n, cerr := sc.Repo.AvailableCount(c.Request.Context(), req.ProductID); cerr == nil {
					c.JSON(http.StatusConflict, app.H{"error": err.Error(), "available": n})
					return
				}
			}
		}
		writeErr(c, err)
		return
	}
	if req, ferr := sc.Repo.FindRequestByID(c.Request.Context(), requestID); ferr == nil {
		sc.emit(c, notify.EventRequestAwaitingApproval, req, models.StatusUnderReview)
	}
	c.JSON(http.StatusCreated, sel)
}

func (sc *SelectionController) GetSelection(c *gin.Context) {
	sel, err := sc.Repo.FindSelectionByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

func (sc *SelectionController) ListForRequest(c *gin.Context) {
	sels, err := sc.Repo.ListSelectionsForRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"selections": sels})
}

// branch admin 审批
func (sc *SelectionController) ResolveSelection(c *gin.Context) {
	var in struct {
		Decision string `json:"decision" binding:"required,oneof=approve reject"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	approve := in.Decision == "approve"
	sel, err := sc.Repo.ResolveSelection(c.Request.Context(), c.Param("id"), app.UserID(c), approve)
	if err != nil {
		writeErr(c, err)
		return
	}

	if req, ferr := sc.Repo.FindRequestByID(c.Request.Context(), sel.RequestID); ferr == nil {
		if approve {
			sc.emit(c, notify.EventRequestApproved, req, models.StatusWaitingApproval)
		} else {
			sc.emit(c, notify.EventRequestReopened, req, models.StatusWaitingApproval)
		}
	}
	c.JSON(http.StatusOK, sel)
}
