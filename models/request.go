package models

import "time"

const RequestTable = "inv_requests"

type RequestStatus string

const (
	StatusPending           RequestStatus = "Pending"
	StatusUnderReview       RequestStatus = "Under Review"
	StatusWaitingApproval   RequestStatus = "Waiting Approval"
	StatusApproved          RequestStatus = "Approved"
	StatusIssued            RequestStatus = "Issued"
	StatusRejected          RequestStatus = "Rejected"
	StatusCancelled         RequestStatus = "Cancelled"
	StatusPartiallyReturned RequestStatus = "Partially Returned"
	StatusFullyReturned     RequestStatus = "Fully Returned"
)

// Request is a requestor's ask for Quantity units of a product.
type Request struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   string  `gorm:"type:uuid;index;not null" json:"productId"`
	RequestorID string  `gorm:"type:uuid;index;not null" json:"requestorId"`
	ClientID    *string `gorm:"type:uuid" json:"clientId,omitempty"`

	Quantity int           `gorm:"not null" json:"quantity"`
	Reason   string        `gorm:"size:500" json:"reason,omitempty"`
	Status   RequestStatus `gorm:"size:20;not null;default:'Pending';index" json:"status"`

	// 0 <= ReturnedQuantity <= Quantity, enforced by a guarded increment
	// in the return flow.
	ReturnedQuantity int `gorm:"not null;default:0" json:"returnedQuantity"`

	DateRequested time.Time  `gorm:"not null" json:"dateRequested"`
	DateIssued    *time.Time `json:"dateIssued,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Request) TableName() string { return RequestTable }

// transitions is the full request state machine. Every mutating repo call
// names its expected prior state; anything not listed here is illegal.
var transitions = map[RequestStatus][]RequestStatus{
	StatusPending:         {StatusUnderReview, StatusRejected, StatusCancelled},
	StatusUnderReview:     {StatusWaitingApproval, StatusCancelled},
	StatusWaitingApproval: {StatusApproved, StatusPending, StatusCancelled},
	StatusApproved:        {StatusIssued},
	StatusIssued:          {StatusPartiallyReturned, StatusFullyReturned},
	// Partial returns repeat until the tally reaches Quantity.
	StatusPartiallyReturned: {StatusPartiallyReturned, StatusFullyReturned},
}

// CanTransition reports whether from -> to is a legal request transition.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a request in this status accepts no further
// transitions.
func (s RequestStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Cancellable reports whether the requestor may still withdraw the request.
func (r *Request) Cancellable() bool {
	switch r.Status {
	case StatusPending, StatusUnderReview, StatusWaitingApproval:
		return true
	}
	return false
}

// Outstanding is the issued quantity not yet returned.
func (r *Request) Outstanding() int {
	return r.Quantity - r.ReturnedQuantity
}

// ReturnStatus derives the post-return status from the updated tally.
func ReturnStatus(quantity, returned int) RequestStatus {
	if returned >= quantity {
		return StatusFullyReturned
	}
	if returned > 0 {
		return StatusPartiallyReturned
	}
	return StatusIssued
}
