// Package notification defines the event contract emitted on qualifying
// transitions and the transactional outbox that guarantees each event is
// published exactly once per transition.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind defines the notification event kinds
type Kind string

const (
	// KindNeedsApproval tells an approver the payment awaits their decision
	KindNeedsApproval Kind = "needs_approval"
	// KindDecisionMade tells the creator a decision was made on their payment
	KindDecisionMade Kind = "decision_made"
	// KindRevoked tells interested parties an approved payment was withdrawn
	KindRevoked Kind = "revoked"
)

// Event is the payload handed to the notification transport. Delivery beyond
// durable publication is owned by downstream consumers.
type Event struct {
	EventID       uuid.UUID         `json:"event_id"`
	PaymentID     int64             `json:"payment_id"`
	Kind          Kind              `json:"kind"`
	TargetActorID int64             `json:"target_actor_id"`
	Payload       map[string]string `json:"payload,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// NewEvent creates a notification event addressed to one actor
func NewEvent(paymentID int64, kind Kind, targetActorID int64, correlationID string, payload map[string]string) *Event {
	return &Event{
		EventID:       uuid.New(),
		PaymentID:     paymentID,
		Kind:          kind,
		TargetActorID: targetActorID,
		Payload:       payload,
		CorrelationID: correlationID,
		CreatedAt:     time.Now(),
	}
}
