package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductTable = "inv_products"
	UnitTable    = "inv_units"
)

// Product is a device type/model. Stock counts are never stored here:
// total/available/issued are always derived from Units.
type Product struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string  `gorm:"size:200;not null" json:"name"`
	Category    string  `gorm:"size:100;index" json:"category"`
	Description string  `gorm:"size:500" json:"description,omitempty"`
	OEMID       *string `gorm:"type:uuid;index" json:"oemId,omitempty"`
	BranchID    *string `gorm:"type:uuid;index" json:"branchId,omitempty"`

	PriceUSD decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"priceUsd"`
	PriceKSH decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"priceKsh"`
	PriceTSH decimal.Decimal `gorm:"type:numeric(10,2);default:0" json:"priceTsh"`

	CreatedBy *string   `gorm:"type:uuid" json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Unit is one physical device, identified by IMEI (serial/MAC optional).
// Available is flipped only by the ledger primitives in db: false means the
// unit is held by an active selection or an open issuance.
type Unit struct {
	ID        string  `gorm:"type:uuid;primaryKey" json:"id"`
	IMEI      string  `gorm:"column:imei;size:50;uniqueIndex;not null" json:"imei"`
	SerialNo  *string `gorm:"size:50" json:"serialNo,omitempty"`
	MacAddr   *string `gorm:"size:50" json:"macAddr,omitempty"`
	ProductID string  `gorm:"type:uuid;index;not null" json:"productId"`
	Available bool    `gorm:"not null;default:true" json:"available"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Product) TableName() string { return ProductTable }
func (Unit) TableName() string    { return UnitTable }
