package db

import (
	"context"
	"errors"
	"time"

	"Gin_postgres_redis_invent_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StartReview moves a pending request under clerk review.
func (r *Repo) StartReview(ctx context.Context, requestID, clerkID string) (*models.Request, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transitionRequest(tx, requestID,
			[]models.RequestStatus{models.StatusPending},
			models.StatusUnderReview, nil)
	})
	if err != nil {
		return nil, err
	}
	return r.FindRequestByID(ctx, requestID)
}

type SubmitSelectionInput struct {
	RequestID string
	ClerkID   string
	UnitIDs   []string
}

// SubmitSelection binds specific units to a request as one batch: validates
// the count against the requested quantity and the product ownership of every
// unit, reserves them all-or-nothing, records a pending selection and moves
// the request to Waiting Approval. Any failure rolls back the whole thing —
// no partial reservation is ever left behind.
func (r *Repo) SubmitSelection(ctx context.Context, in SubmitSelectionInput) (*models.Selection, error) {
	unitIDs := dedupe(in.UnitIDs)
	var sel *models.Selection
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.Request
		if err := tx.First(&req, "id = ?", in.RequestID).Error; err != nil {
			return err
		}
		if len(unitIDs) != req.Quantity {
			return ErrQuantityMismatch
		}

		// 所有 unit 必须属于该 product
		var n int64
		if err := tx.Model(&models.Unit{}).
			Where("id IN ? AND product_id = ?", unitIDs, req.ProductID).
			Count(&n).Error; err != nil {
			return err
		}
		if n != int64(len(unitIDs)) {
			return ErrUnitWrongProduct
		}

		if err := reserveUnits(tx, unitIDs); err != nil {
			return err
		}

		s := &models.Selection{
			ID:        uuid.NewString(),
			RequestID: req.ID,
			ClerkID:   in.ClerkID,
			Status:    models.SelectionPending,
		}
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		for _, uid := range unitIDs {
			su := models.SelectionUnit{ID: uuid.NewString(), SelectionID: s.ID, UnitID: uid}
			if err := tx.Create(&su).Error; err != nil {
				return err
			}
			s.Units = append(s.Units, su)
		}

		if err := transitionRequest(tx, req.ID,
			[]models.RequestStatus{models.StatusUnderReview},
			models.StatusWaitingApproval, nil); err != nil {
			return err
		}
		sel = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sel, nil
}

func (r *Repo) FindSelectionByID(ctx context.Context, id string) (*models.Selection, error) {
	var sel models.Selection
	if err := r.DB.WithContext(ctx).Preload("Units").First(&sel, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sel, nil
}

func (r *Repo) ListSelectionsForRequest(ctx context.Context, requestID string) ([]models.Selection, error) {
	var sels []models.Selection
	err := r.DB.WithContext(ctx).Preload("Units").
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&sels).Error
	return sels, err
}

// ResolveSelection records the admin decision exactly once. The conditional
// update on status = 'Pending' makes double-submission (two admin clicks)
// come back as ErrAlreadyResolved instead of double-applying side effects.
// Approve keeps the units reserved and moves the request to Approved; reject
// releases them and reopens the request to Pending for re-selection.
func (r *Repo) ResolveSelection(ctx context.Context, selectionID, adminID string, approve bool) (*models.Selection, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sel models.Selection
		if err := tx.Preload("Units").First(&sel, "id = ?", selectionID).Error; err != nil {
			return err
		}
		if sel.Resolved() {
			return ErrAlreadyResolved
		}

		to := models.SelectionRejected
		if approve {
			to = models.SelectionApproved
		}
		now := time.Now().UTC()
		res := tx.Model(&models.Selection{}).
			Where("id = ? AND status = ?", selectionID, models.SelectionPending).
			Updates(map[string]interface{}{
				"status":      to,
				"reviewed_by": adminID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyResolved
		}

		if approve {
			// unit 保持预留，发放是独立的下一步
			return transitionRequest(tx, sel.RequestID,
				[]models.RequestStatus{models.StatusWaitingApproval},
				models.StatusApproved, nil)
		}
		if err := releaseUnits(tx, sel.UnitIDs()); err != nil {
			return err
		}
		// 驳回后重开请求，店员可重新选件
		return transitionRequest(tx, sel.RequestID,
			[]models.RequestStatus{models.StatusWaitingApproval},
			models.StatusPending, nil)
	})
	if err != nil {
		return nil, err
	}
	return r.FindSelectionByID(ctx, selectionID)
}

// PendingSelectionForRequest returns the in-flight selection, if any.
func (r *Repo) PendingSelectionForRequest(ctx context.Context, requestID string) (*models.Selection, error) {
	var sel models.Selection
	err := r.DB.WithContext(ctx).Preload("Units").
		Where("request_id = ? AND status = ?", requestID, models.SelectionPending).
		First(&sel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
