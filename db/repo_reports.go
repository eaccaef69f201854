package db

import (
	"context"
	"time"

	"Gin_postgres_redis_invent_tool/models"
)

// All counts here are derived from the unit/request tables on every read.
// Nothing in this file writes.

type StockRow struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Total     int64  `json:"total"`
	Available int64  `json:"available"`
	Issued    int64  `json:"issued"`
}

func (r *Repo) StockSummary(ctx context.Context, scope models.Scope) ([]StockRow, error) {
	tx := r.DB.WithContext(ctx).
		Table(models.ProductTable+" p").
		Select(`p.id AS product_id, p.name, p.category,
			COUNT(u.id) AS total,
			COALESCE(SUM(CASE WHEN u.available THEN 1 ELSE 0 END), 0) AS available,
			COALESCE(SUM(CASE WHEN u.available THEN 0 ELSE 1 END), 0) AS issued`).
		Joins("LEFT JOIN " + models.UnitTable + " u ON u.product_id = p.id").
		Group("p.id, p.name, p.category").
		Order("p.name")
	if !scope.All {
		tx = tx.Where("p.branch_id IS NULL OR p.branch_id = ?", scope.BranchID)
	}
	var rows []StockRow
	err := tx.Scan(&rows).Error
	return rows, err
}

type StatusCount struct {
	Status models.RequestStatus `json:"status"`
	Count  int64                `json:"count"`
}

// RequestorSummary powers the requestor dashboard cards.
func (r *Repo) RequestorSummary(ctx context.Context, requestorID string) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.DB.WithContext(ctx).Model(&models.Request{}).
		Select("status, COUNT(*) AS count").
		Where("requestor_id = ?", requestorID).
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *Repo) PendingRequestCount(ctx context.Context, scope models.Scope) (int64, error) {
	tx := r.DB.WithContext(ctx).Model(&models.Request{}).
		Where("status = ?", models.StatusPending)
	if !scope.All {
		tx = tx.Where(
			"product_id IN (?)",
			r.DB.WithContext(ctx).Model(&models.Product{}).Select("id").
				Where("branch_id IS NULL OR branch_id = ?", scope.BranchID),
		)
	}
	var n int64
	err := tx.Count(&n).Error
	return n, err
}

// 交货单：document generator 的只读输入

type DeliveryNoteUnit struct {
	UnitID   string    `json:"unitId"`
	IMEI     string    `gorm:"column:imei" json:"imei"`
	IssuedAt time.Time `json:"issuedAt"`
}

type DeliveryNote struct {
	Request *models.Request    `json:"request"`
	Product *models.Product    `json:"product"`
	Client  *models.Client     `json:"client,omitempty"`
	Units   []DeliveryNoteUnit `json:"units"`
}

// DeliveryNote assembles a finalized request with its issued units. Only
// issued (or partially/fully returned) requests have one.
func (r *Repo) DeliveryNote(ctx context.Context, requestID string) (*DeliveryNote, error) {
	req, err := r.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	switch req.Status {
	case models.StatusIssued, models.StatusPartiallyReturned, models.StatusFullyReturned:
	default:
		return nil, ErrStatusConflict
	}

	prod, err := r.FindProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	note := &DeliveryNote{Request: req, Product: prod}

	var units []DeliveryNoteUnit
	if err := r.DB.WithContext(ctx).
		Table(models.IssuanceTable+" ir").
		Select("ir.unit_id, u.imei, ir.issued_at").
		Joins("JOIN "+models.UnitTable+" u ON u.id = ir.unit_id").
		Where("ir.request_id = ?", requestID).
		Order("u.imei").
		Scan(&units).Error; err != nil {
		return nil, err
	}
	note.Units = units

	if req.ClientID != nil {
		if c, err := r.FindClientByID(ctx, *req.ClientID); err == nil {
			note.Client = c
		}
	}
	return note, nil
}
