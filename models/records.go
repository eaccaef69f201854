package models

import "time"

const (
	IssuanceTable = "inv_issuance_records"
	ReturnTable   = "inv_return_records"
)

// IssuanceRecord is the immutable fact of one unit handed to one client.
// Never updated or deleted.
type IssuanceRecord struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID      string  `gorm:"type:uuid;index;not null" json:"unitId"`
	ProductID   string  `gorm:"type:uuid;index;not null" json:"productId"`
	RequestID   *string `gorm:"type:uuid;index" json:"requestId,omitempty"`
	SelectionID *string `gorm:"type:uuid" json:"selectionId,omitempty"`
	ClientID    string  `gorm:"type:uuid;not null" json:"clientId"`
	IssuedBy    string  `gorm:"type:uuid;not null" json:"issuedBy"`

	IssuedAt  time.Time `gorm:"index;not null" json:"issuedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReturnRecord is the immutable fact of one unit taken back.
type ReturnRecord struct {
	ID         string  `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID     string  `gorm:"type:uuid;index;not null" json:"unitId"`
	ProductID  string  `gorm:"type:uuid;index;not null" json:"productId"`
	RequestID  *string `gorm:"type:uuid;index" json:"requestId,omitempty"`
	ClientID   *string `gorm:"type:uuid" json:"clientId,omitempty"`
	ReturnedBy string  `gorm:"type:uuid;not null" json:"returnedBy"`
	Reason     string  `gorm:"size:500" json:"reason,omitempty"`

	ReturnedAt time.Time `gorm:"index;not null" json:"returnedAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (IssuanceRecord) TableName() string { return IssuanceTable }
func (ReturnRecord) TableName() string   { return ReturnTable }
