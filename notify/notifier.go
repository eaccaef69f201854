package notify

import (
	"context"
	"log"
	"time"
)

// Event kinds, one per user-visible request transition.
const (
	EventRequestSubmitted        = "RequestSubmitted"
	EventRequestUnderReview      = "RequestUnderReview"
	EventRequestAwaitingApproval = "RequestAwaitingApproval"
	EventRequestApproved         = "RequestApproved"
	EventRequestRejected         = "RequestRejected"
	EventRequestReopened         = "RequestReopened"
	EventRequestIssued           = "RequestIssued"
	EventRequestCancelled        = "RequestCancelled"
	EventReturnRecorded          = "ReturnRecorded"
)

// Event is the one-way message sent to the notification sink after a request
// transition commits. Rendering (email, SMS) is a downstream consumer's job.
type Event struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	RecipientID string    `json:"recipient_id"`

	RequestID        string `json:"request_id"`
	ProductID        string `json:"product_id,omitempty"`
	OldStatus        string `json:"old_status,omitempty"`
	NewStatus        string `json:"new_status,omitempty"`
	Quantity         int    `json:"quantity,omitempty"`
	ReturnedQuantity int    `json:"returned_quantity,omitempty"`
}

// Notifier is fire-and-forget: implementations must never block the caller
// on sink I/O and must never surface a delivery failure as an error.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// LogNotifier is the fallback sink when Kafka is not configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, ev Event) {
	log.Printf("notify %s -> %s (request %s: %s -> %s)",
		ev.EventType, ev.RecipientID, ev.RequestID, ev.OldStatus, ev.NewStatus)
}
