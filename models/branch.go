package models

import "time"

const (
	BranchTable = "inv_branches"
	OEMTable    = "inv_oems"
	ClientTable = "inv_clients"
)

type Branch struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Country string `gorm:"size:80" json:"country"`
	Address string `gorm:"size:255" json:"address"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OEM is the device manufacturer/supplier a product comes from.
type OEM struct {
	ID            string `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string `gorm:"size:120;not null" json:"name"`
	ContactPerson string `gorm:"size:120" json:"contactPerson,omitempty"`
	PhoneEmail    string `gorm:"size:120" json:"phoneEmail,omitempty"`
	Address       string `gorm:"size:255" json:"address,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Client is the party devices are issued to.
type Client struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string `gorm:"size:200;not null" json:"name"`
	PhoneNo string `gorm:"size:50" json:"phoneNo,omitempty"`
	Email   string `gorm:"size:200" json:"email,omitempty"`
	Address string `gorm:"size:255" json:"address,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Branch) TableName() string { return BranchTable }
func (OEM) TableName() string    { return OEMTable }
func (Client) TableName() string { return ClientTable }
