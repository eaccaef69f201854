package db

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_invent_tool/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Products

func (r *Repo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *Repo) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) ListProducts(ctx context.Context, scope models.Scope, q string) ([]models.Product, error) {
	tx := r.DB.WithContext(ctx).Order("created_at DESC")
	if !scope.All {
		tx = tx.Where("branch_id IS NULL OR branch_id = ?", scope.BranchID)
	}
	if q = strings.TrimSpace(q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", like, like)
	}
	var ps []models.Product
	err := tx.Find(&ps).Error
	return ps, err
}

// 还有 unit 引用时拒绝删除，绝不静默孤儿化
func (r *Repo) DeleteProduct(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Unit{}).Where("product_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrProductHasUnits
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	})
}

// 入库

type UnitIntake struct {
	IMEI     string  `json:"imei" binding:"required"`
	SerialNo *string `json:"serialNo,omitempty"`
	MacAddr  *string `json:"macAddr,omitempty"`
}

type IntakeResult struct {
	Created int      `json:"created"`
	Skipped []string `json:"skipped,omitempty"` // 重复/空 IMEI，逐行跳过
}

// IntakeUnits registers new stock for a product. Duplicate or blank IMEIs
// are skipped row by row and reported, the batch itself always commits.
func (r *Repo) IntakeUnits(ctx context.Context, productID string, rows []UnitIntake) (IntakeResult, error) {
	var res IntakeResult
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&models.Product{}, "id = ?", productID).Error; err != nil {
			return err
		}
		for _, row := range rows {
			imei := strings.TrimSpace(row.IMEI)
			if imei == "" {
				res.Skipped = append(res.Skipped, row.IMEI)
				continue
			}
			var n int64
			if err := tx.Model(&models.Unit{}).Where("imei = ?", imei).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				res.Skipped = append(res.Skipped, imei)
				continue
			}
			u := models.Unit{
				ID:        uuid.NewString(),
				IMEI:      imei,
				SerialNo:  row.SerialNo,
				MacAddr:   row.MacAddr,
				ProductID: productID,
				Available: true,
			}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			res.Created++
		}
		return nil
	})
	return res, err
}

// Ledger reads

func (r *Repo) FindUnitByID(ctx context.Context, id string) (*models.Unit, error) {
	var u models.Unit
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// AvailableCount is always derived from the unit table, never stored.
func (r *Repo) AvailableCount(ctx context.Context, productID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Unit{}).
		Where("product_id = ? AND available", productID).
		Count(&n).Error
	return n, err
}

func (r *Repo) ListAvailableUnits(ctx context.Context, productID string) ([]models.Unit, error) {
	var us []models.Unit
	err := r.DB.WithContext(ctx).
		Where("product_id = ? AND available", productID).
		Order("imei").
		Find(&us).Error
	return us, err
}

func (r *Repo) ListUnits(ctx context.Context, productID string) ([]models.Unit, error) {
	var us []models.Unit
	err := r.DB.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("imei").
		Find(&us).Error
	return us, err
}

// Ledger primitives. All availability flips in the whole codebase go through
// these two; no caller touches the flag directly.

// reserveUnits flips every unit available -> unavailable, or fails the whole
// batch. The rows-affected check is the double-booking guard: a concurrent
// reservation makes the count come up short and the surrounding tx rolls back.
func reserveUnits(tx *gorm.DB, unitIDs []string) error {
	if len(unitIDs) == 0 {
		return nil
	}
	res := tx.Model(&models.Unit{}).
		Where("id IN ? AND available", unitIDs).
		Updates(map[string]interface{}{"available": false, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(unitIDs)) {
		return ErrUnitUnavailable
	}
	return nil
}

// releaseUnits flips units back to available. Idempotent: releasing an
// already-available unit is a no-op.
func releaseUnits(tx *gorm.DB, unitIDs []string) error {
	if len(unitIDs) == 0 {
		return nil
	}
	return tx.Model(&models.Unit{}).
		Where("id IN ?", unitIDs).
		Updates(map[string]interface{}{"available": true, "updated_at": time.Now().UTC()}).Error
}
