package models

import "time"

const (
	SelectionTable     = "inv_selections"
	SelectionUnitTable = "inv_selection_units"
)

type SelectionStatus string

const (
	SelectionPending  SelectionStatus = "Pending"
	SelectionApproved SelectionStatus = "Approved"
	SelectionRejected SelectionStatus = "Rejected"
)

// Selection is one clerk-proposed batch of units offered to satisfy a
// request. Resolved at most once; immutable afterwards.
type Selection struct {
	ID        string          `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID string          `gorm:"type:uuid;index;not null" json:"requestId"`
	ClerkID   string          `gorm:"type:uuid;not null" json:"clerkId"`
	Status    SelectionStatus `gorm:"size:20;not null;default:'Pending';index" json:"status"`

	ReviewedBy *string    `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`

	Units []SelectionUnit `gorm:"foreignKey:SelectionID" json:"units,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SelectionUnit struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	SelectionID string `gorm:"type:uuid;index;not null" json:"selectionId"`
	UnitID      string `gorm:"type:uuid;index;not null" json:"unitId"`
}

func (Selection) TableName() string     { return SelectionTable }
func (SelectionUnit) TableName() string { return SelectionUnitTable }

// Resolved reports whether the selection already carries an admin decision.
func (s *Selection) Resolved() bool { return s.Status != SelectionPending }

// UnitIDs flattens the member rows.
func (s *Selection) UnitIDs() []string {
	ids := make([]string, 0, len(s.Units))
	for _, su := range s.Units {
		ids = append(ids, su.UnitID)
	}
	return ids
}
