// Package audit defines the append-only record of every action taken against
// a payment. Entries are immutable facts: written once, never updated.
package audit

import (
	"time"

	"github.com/finflow-payment-approval/internal/domain/identity"
)

// Action defines the recordable actions
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionRevoke  Action = "revoke"
)

// TransitionActions are the actions that correspond to a state transition.
// Their count per payment must always equal the transitions applied.
var TransitionActions = []Action{ActionSubmit, ActionApprove, ActionReject, ActionRevoke}

// Entry is one immutable audit record for a payment
type Entry struct {
	ID        int64     `json:"id"`
	PaymentID int64     `json:"payment_id"`
	ActorID   int64     `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Action    Action    `json:"action"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry creates an audit entry for the given actor and action
func NewEntry(paymentID int64, actor identity.Actor, action Action, comment string) *Entry {
	return &Entry{
		PaymentID: paymentID,
		ActorID:   actor.ID,
		ActorRole: actor.RoleLabel(),
		Action:    action,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
}
