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

type IssueInput struct {
	RequestID string
	ClientID  string // 为空时退回 request.client_id
	ActorID   string
}

// IssueSelection commits an approved selection: re-verifies every unit is
// still reserved, writes one issuance record per unit and flips the request
// to Issued. Approval and issuance stay separate steps so each is retriable
// on its own; a failed issuance leaves the request Approved.
func (r *Repo) IssueSelection(ctx context.Context, in IssueInput) (*models.Request, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req models.Request
		if err := tx.First(&req, "id = ?", in.RequestID).Error; err != nil {
			return err
		}
		if req.Status != models.StatusApproved {
			return ErrStatusConflict
		}

		var sel models.Selection
		if err := tx.Preload("Units").
			Where("request_id = ? AND status = ?", req.ID, models.SelectionApproved).
			Order("reviewed_at DESC").
			First(&sel).Error; err != nil {
			return err
		}
		unitIDs := sel.UnitIDs()

		// 守卫：预留若被外部改回 available，整批中止
		var held int64
		if err := tx.Model(&models.Unit{}).
			Where("id IN ? AND NOT available", unitIDs).
			Count(&held).Error; err != nil {
			return err
		}
		if held != int64(len(unitIDs)) {
			return ErrStaleReservation
		}

		clientID := in.ClientID
		if clientID == "" && req.ClientID != nil {
			clientID = *req.ClientID
		}
		if clientID == "" {
			return fmt.Errorf("issue request %s: no client", req.ID)
		}

		now := time.Now().UTC()
		for _, uid := range unitIDs {
			rec := models.IssuanceRecord{
				ID:          uuid.NewString(),
				UnitID:      uid,
				ProductID:   req.ProductID,
				RequestID:   &req.ID,
				SelectionID: &sel.ID,
				ClientID:    clientID,
				IssuedBy:    in.ActorID,
				IssuedAt:    now,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}

		// date_issued 只写一次
		return transitionRequest(tx, req.ID,
			[]models.RequestStatus{models.StatusApproved},
			models.StatusIssued,
			map[string]interface{}{"date_issued": gorm.Expr("COALESCE(date_issued, ?)", now)})
	})
	if err != nil {
		return nil, err
	}
	return r.FindRequestByID(ctx, in.RequestID)
}

type ReturnInput struct {
	RequestID string
	Quantity  int
	Reason    string
	ActorID   string
}

// ReturnUnits takes back Quantity units issued for a request. The guarded
// increment on returned_quantity is what keeps two concurrent partial
// returns from pushing the tally past the requested quantity.
func (r *Repo) ReturnUnits(ctx context.Context, in ReturnInput) (*models.Request, error) {
	if in.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Request{}).
			Where("id = ? AND status IN ? AND returned_quantity + ? <= quantity",
				in.RequestID,
				[]models.RequestStatus{models.StatusIssued, models.StatusPartiallyReturned},
				in.Quantity).
			Updates(map[string]interface{}{
				"returned_quantity": gorm.Expr("returned_quantity + ?", in.Quantity),
				"updated_at":        time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var req models.Request
			if err := tx.First(&req, "id = ?", in.RequestID).Error; err != nil {
				return err
			}
			switch req.Status {
			case models.StatusIssued, models.StatusPartiallyReturned, models.StatusFullyReturned:
				// 已没有足够的未归还余量
				return ErrOverReturn
			default:
				return ErrStatusConflict
			}
		}

		var req models.Request
		if err := tx.First(&req, "id = ?", in.RequestID).Error; err != nil {
			return err
		}

		// 挑未归还的已发放 unit（先发先还）
		issued, err := openIssuances(tx, req.ID, in.Quantity)
		if err != nil {
			return err
		}
		if len(issued) < in.Quantity {
			// 账面与记录不一致，宁可失败也不部分归还
			return fmt.Errorf("return request %s: only %d open issuances for %d", req.ID, len(issued), in.Quantity)
		}

		now := time.Now().UTC()
		unitIDs := make([]string, 0, len(issued))
		for _, rec := range issued {
			unitIDs = append(unitIDs, rec.UnitID)
			ret := models.ReturnRecord{
				ID:         uuid.NewString(),
				UnitID:     rec.UnitID,
				ProductID:  rec.ProductID,
				RequestID:  &req.ID,
				ClientID:   &rec.ClientID,
				ReturnedBy: in.ActorID,
				Reason:     in.Reason,
				ReturnedAt: now,
			}
			if err := tx.Create(&ret).Error; err != nil {
				return err
			}
		}
		if err := releaseUnits(tx, unitIDs); err != nil {
			return err
		}

		next := models.ReturnStatus(req.Quantity, req.ReturnedQuantity)
		return transitionRequest(tx, req.ID,
			[]models.RequestStatus{models.StatusIssued, models.StatusPartiallyReturned},
			next, nil)
	})
	if err != nil {
		return nil, err
	}
	return r.FindRequestByID(ctx, in.RequestID)
}

// openIssuances lists issuance records for a request whose unit has not been
// returned yet, oldest first, capped at limit.
func openIssuances(tx *gorm.DB, requestID string, limit int) ([]models.IssuanceRecord, error) {
	var recs []models.IssuanceRecord
	err := tx.
		Where("request_id = ? AND unit_id NOT IN (?)",
			requestID,
			tx.Session(&gorm.Session{NewDB: true}).Model(&models.ReturnRecord{}).
				Select("unit_id").Where("request_id = ?", requestID)).
		Order("issued_at").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// DirectIssue hands one available unit straight to a client, bypassing the
// request workflow. Same ledger primitive, same record shape.
func (r *Repo) DirectIssue(ctx context.Context, unitID, clientID, actorID string) (*models.IssuanceRecord, error) {
	var rec *models.IssuanceRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.Unit
		if err := tx.First(&u, "id = ?", unitID).Error; err != nil {
			return err
		}
		if err := reserveUnits(tx, []string{unitID}); err != nil {
			return err
		}
		now := time.Now().UTC()
		ir := &models.IssuanceRecord{
			ID:        uuid.NewString(),
			UnitID:    u.ID,
			ProductID: u.ProductID,
			ClientID:  clientID,
			IssuedBy:  actorID,
			IssuedAt:  now,
		}
		if err := tx.Create(ir).Error; err != nil {
			return err
		}
		rec = ir
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DirectReturn takes back a directly-issued unit. Units issued through a
// request must go through ReturnUnits so the request tally stays honest.
func (r *Repo) DirectReturn(ctx context.Context, unitID, actorID, reason string) (*models.ReturnRecord, error) {
	var rec *models.ReturnRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ir models.IssuanceRecord
		err := tx.
			Where("unit_id = ? AND request_id IS NULL", unitID).
			Order("issued_at DESC").
			First(&ir).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoOpenIssuance
		}
		if err != nil {
			return err
		}
		// 该次发放之后已有归还记录 => 没有待归还
		var n int64
		if err := tx.Model(&models.ReturnRecord{}).
			Where("unit_id = ? AND returned_at >= ?", unitID, ir.IssuedAt).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrNoOpenIssuance
		}
		now := time.Now().UTC()
		rr := &models.ReturnRecord{
			ID:         uuid.NewString(),
			UnitID:     ir.UnitID,
			ProductID:  ir.ProductID,
			ClientID:   &ir.ClientID,
			ReturnedBy: actorID,
			Reason:     reason,
			ReturnedAt: now,
		}
		if err := tx.Create(rr).Error; err != nil {
			return err
		}
		if err := releaseUnits(tx, []string{ir.UnitID}); err != nil {
			return err
		}
		rec = rr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Record listings (audit surface)

func (r *Repo) ListIssuanceRecords(ctx context.Context, requestID string, page, size int) ([]models.IssuanceRecord, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}
	tx := r.DB.WithContext(ctx).Order("issued_at DESC")
	if requestID != "" {
		tx = tx.Where("request_id = ?", requestID)
	}
	var recs []models.IssuanceRecord
	err := tx.Offset((page - 1) * size).Limit(size).Find(&recs).Error
	return recs, err
}

func (r *Repo) ListReturnRecords(ctx context.Context, requestID string, page, size int) ([]models.ReturnRecord, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}
	tx := r.DB.WithContext(ctx).Order("returned_at DESC")
	if requestID != "" {
		tx = tx.Where("request_id = ?", requestID)
	}
	var recs []models.ReturnRecord
	err := tx.Offset((page - 1) * size).Limit(size).Find(&recs).Error
	return recs, err
}
