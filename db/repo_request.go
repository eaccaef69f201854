package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_invent_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateRequestInput struct {
	ProductID   string
	RequestorID string
	ClientID    *string
	Quantity    int
	Reason      string
}

func (r *Repo) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.Request, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	req := &models.Request{
		ID:            uuid.NewString(),
		ProductID:     in.ProductID,
		RequestorID:   in.RequestorID,
		ClientID:      in.ClientID,
		Quantity:      in.Quantity,
		Reason:        in.Reason,
		Status:        models.StatusPending,
		DateRequested: time.Now().UTC(),
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// product 必须存在；数量校验之外不做库存预检，预留才是权威检查
		if err := tx.First(&models.Product{}, "id = ?", in.ProductID).Error; err != nil {
			return err
		}
		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Repo) FindRequestByID(ctx context.Context, id string) (*models.Request, error) {
	var req models.Request
	if err := r.DB.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

type RequestsQuery struct {
	RequestorID string
	ProductID   string
	Status      string
	Page, Size  int
}

type ListRequestsResult struct {
	Requests []models.Request `json:"requests"`
	Total    int64            `json:"total"`
}

func (r *Repo) ListRequests(ctx context.Context, scope models.Scope, q RequestsQuery) (ListRequestsResult, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}

	tx := r.DB.WithContext(ctx).Model(&models.Request{})
	if !scope.All {
		// branch 归属跟着 product 走
		tx = tx.Where(
			"product_id IN (?)",
			r.DB.WithContext(ctx).Model(&models.Product{}).Select("id").
				Where("branch_id IS NULL OR branch_id = ?", scope.BranchID),
		)
	}
	if q.RequestorID != "" {
		tx = tx.Where("requestor_id = ?", q.RequestorID)
	}
	if q.ProductID != "" {
		tx = tx.Where("product_id = ?", q.ProductID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return ListRequestsResult{}, err
	}
	var reqs []models.Request
	if err := tx.
		Order("date_requested DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Find(&reqs).Error; err != nil {
		return ListRequestsResult{}, err
	}
	return ListRequestsResult{Requests: reqs, Total: total}, nil
}

// transitionRequest is the optimistic status guard: the UPDATE names the
// expected prior states and the rows-affected count tells us whether we won.
// Extra columns (date_issued etc.) ride along in the same statement. Every
// named prior state is checked against the model transition table first, so
// a call site cannot enforce an edge the table does not have.
func transitionRequest(tx *gorm.DB, requestID string, from []models.RequestStatus, to models.RequestStatus, extra map[string]interface{}) error {
	for _, f := range from {
		if !models.CanTransition(f, to) {
			return fmt.Errorf("transition %s -> %s not in table", f, to)
		}
	}
	cols := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		cols[k] = v
	}
	res := tx.Model(&models.Request{}).
		Where("id = ? AND status IN ?", requestID, from).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 区分不存在和状态不符
		var n int64
		if err := tx.Model(&models.Request{}).Where("id = ?", requestID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStatusConflict
	}
	return nil
}

// CancelRequest withdraws the requestor's own request. Allowed only before
// approval; any units reserved by a pending selection are released first.
func (r *Repo) CancelRequest(ctx context.Context, requestID, requestorID string) (*models.Request, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.Request
		if err := tx.First(&req, "id = ? AND requestor_id = ?", requestID, requestorID).Error; err != nil {
			return err
		}
		if err := transitionRequest(tx, requestID,
			[]models.RequestStatus{models.StatusPending, models.StatusUnderReview, models.StatusWaitingApproval},
			models.StatusCancelled, nil); err != nil {
			return err
		}
		return closePendingSelection(tx, requestID, requestorID)
	})
	if err != nil {
		return nil, err
	}
	return r.FindRequestByID(ctx, requestID)
}

// RejectRequest is the branch admin's terminal rejection of a request that
// has no selection in flight.
func (r *Repo) RejectRequest(ctx context.Context, requestID, adminID string) (*models.Request, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transitionRequest(tx, requestID,
			[]models.RequestStatus{models.StatusPending},
			models.StatusRejected, nil)
	})
	if err != nil {
		return nil, err
	}
	return r.FindRequestByID(ctx, requestID)
}

// closePendingSelection rejects the request's pending selection, if any, and
// releases its units.
func closePendingSelection(tx *gorm.DB, requestID, actorID string) error {
	var sel models.Selection
	err := tx.Preload("Units").
		Where("request_id = ? AND status = ?", requestID, models.SelectionPending).
		First(&sel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res := tx.Model(&models.Selection{}).
		Where("id = ? AND status = ?", sel.ID, models.SelectionPending).
		Updates(map[string]interface{}{
			"status":      models.SelectionRejected,
			"reviewed_by": actorID,
			"reviewed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	return releaseUnits(tx, sel.UnitIDs())
}
