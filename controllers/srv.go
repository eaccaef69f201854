package controllers

import (
	"Gin_postgres_redis_invent_tool/app"
	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/models"
	"Gin_postgres_redis_invent_tool/notify"
	"Gin_postgres_redis_invent_tool/session"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Srv 聚合 controller 共用的依赖
type Srv struct {
	A      *app.App
	Repo   *db.Repo
	Notify notify.Notifier
}

func GetSrv(a *app.App) *Srv {
	return &Srv{A: a, Repo: a.Repo, Notify: a.Notifier}
}

func (s *Srv) AppSessions() *session.AppSessionStore { return s.A.AppSessions() }

// writeErr maps the workflow error taxonomy onto HTTP statuses. Everything
// in the taxonomy is a user-visible validation problem, not a fault.
func writeErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, db.ErrQuantityMismatch),
		errors.Is(err, db.ErrInvalidQuantity),
		errors.Is(err, db.ErrUnitWrongProduct):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, db.ErrUnitUnavailable),
		errors.Is(err, db.ErrStaleReservation),
		errors.Is(err, db.ErrOverReturn),
		errors.Is(err, db.ErrAlreadyResolved),
		errors.Is(err, db.ErrStatusConflict),
		errors.Is(err, db.ErrProductHasUnits),
		errors.Is(err, db.ErrNoOpenIssuance):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
	}
}

// emit fires a transition notification. Best effort by contract: the state
// change already committed, so nothing here may fail the request.
func (s *Srv) emit(c *gin.Context, kind string, req *models.Request, old models.RequestStatus) {
	s.Notify.Notify(c.Request.Context(), notify.Event{
		EventID:          uuid.NewString(),
		EventType:        kind,
		OccurredAt:       time.Now().UTC(),
		RecipientID:      req.RequestorID,
		RequestID:        req.ID,
		ProductID:        req.ProductID,
		OldStatus:        string(old),
		NewStatus:        string(req.Status),
		Quantity:         req.Quantity,
		ReturnedQuantity: req.ReturnedQuantity,
	})
}
