// Package payment owns the payment entity and its approval state machine.
// All status changes go through the transition methods below; callers persist
// the result with an optimistic version check so concurrent transitions on the
// same payment cannot both win.
package payment

import (
	"strings"
	"time"

	"github.com/finflow-payment-approval/internal/domain/approval"
	"github.com/finflow-payment-approval/internal/domain/identity"
)

// Status defines the approval pipeline states
type Status string

const (
	StatusDraft               Status = "draft"
	StatusPendingIntermediate Status = "pending_intermediate"
	StatusPendingFinal        Status = "pending_final"
	StatusApproved            Status = "approved"
	StatusRejected            Status = "rejected"
)

// Event defines the state machine inputs
type Event string

const (
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventRevoke  Event = "revoke"

	// EventUpdate and EventDelete label rejected draft edits in errors.
	// They are not state machine transitions.
	EventUpdate Event = "update"
	EventDelete Event = "delete"
)

// Payment represents a financial request moving through the approval pipeline
type Payment struct {
	ID          int64     `json:"id"`
	CreatorID   int64     `json:"creator_id"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"` // Stored in cents/minor units
	PaymentDate time.Time `json:"payment_date"`

	LegalEntityID *int64 `json:"legal_entity_id,omitempty"`
	ContractorID  *int64 `json:"contractor_id,omitempty"`
	DepartmentID  *int64 `json:"department_id,omitempty"`
	ServiceID     *int64 `json:"service_id,omitempty"` // Approval routing reference
	InvoiceID     *int64 `json:"invoice_id,omitempty"`

	CustomFields map[string]string `json:"custom_fields,omitempty"`

	Status  Status `json:"status"`
	Version int    `json:"version"` // For optimistic locking

	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
	SubmittedAt            *time.Time `json:"submitted_at,omitempty"`
	IntermediateApprovedAt *time.Time `json:"intermediate_approved_at,omitempty"`
	FinalApprovedAt        *time.Time `json:"final_approved_at,omitempty"`
	RejectedAt             *time.Time `json:"rejected_at,omitempty"`
	RevokedAt              *time.Time `json:"revoked_at,omitempty"`
}

// New creates a draft payment owned by the given creator
func New(creatorID int64, description string, amount int64, paymentDate time.Time) *Payment {
	now := time.Now()
	return &Payment{
		CreatorID:   creatorID,
		Description: description,
		Amount:      amount,
		PaymentDate: paymentDate,
		Status:      StatusDraft,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsEditable reports whether the payment may still be mutated directly.
// Once submitted, the approval gateway is the only writer.
func (p *Payment) IsEditable() bool {
	return p.Status == StatusDraft
}

// IsOwnedOrAdmin reports whether the actor is the payment creator or an admin
func (p *Payment) IsOwnedOrAdmin(actor identity.Actor) bool {
	return p.CreatorID == actor.ID || actor.IsAdmin()
}

// Submit moves the payment from draft (first submission) or rejected
// (resubmission) into the first pending stage. Only the creator or an admin
// may submit. Resubmission re-enters pending_intermediate, never draft.
func (p *Payment) Submit(actor identity.Actor) error {
	switch p.Status {
	case StatusDraft:
		if !p.IsOwnedOrAdmin(actor) {
			return ErrUnauthorized{PaymentID: p.ID, ActorID: actor.ID, Event: EventSubmit}
		}
		if p.Amount <= 0 {
			return ErrValidation{Reason: "amount must be positive"}
		}
		if p.CategoryID == nil {
			return ErrValidation{Reason: "category is required before submission"}
		}
	case StatusRejected:
		if !p.IsOwnedOrAdmin(actor) {
			return ErrUnauthorized{PaymentID: p.ID, ActorID: actor.ID, Event: EventSubmit}
		}
	default:
		return ErrInvalidTransition{PaymentID: p.ID, Status: p.Status, Event: EventSubmit}
	}

	now := time.Now()
	p.Status = StatusPendingIntermediate
	p.SubmittedAt = &now
	// A fresh pass through the pipeline clears the previous run's outcome
	p.IntermediateApprovedAt = nil
	p.FinalApprovedAt = nil
	p.RejectedAt = nil
	p.touch(now)
	return nil
}

// Approve advances the payment one stage. The acting approver must match the
// chain entry for the current stage; the chain is resolved live by the caller.
func (p *Payment) Approve(actor identity.Actor, chain approval.Chain) error {
	now := time.Now()
	switch p.Status {
	case StatusPendingIntermediate:
		if actor.ID != chain.IntermediateApproverID {
			return ErrUnauthorized{PaymentID: p.ID, ActorID: actor.ID, Event: EventApprove}
		}
		p.Status = StatusPendingFinal
		p.IntermediateApprovedAt = &now
	case StatusPendingFinal:
		if actor.ID != chain.FinalApproverID {
			return ErrUnauthorized{PaymentID: p.ID, ActorID: actor.ID, Event: EventApprove}
		}
		p.Status = StatusApproved
		p.FinalApprovedAt = &now
	default:
		return ErrInvalidTransition{PaymentID: p.ID, Status: p.Status, Event: EventApprove}
	}

	p.touch(now)
	return nil
}

// Reject terminates the current pass. Only the approver of the current stage
// may reject; the payment can later be resubmitted by its creator.
func (p *Payment) Reject(actor identity.Actor, chain approval.Chain) error {
	switch p.Status {
	case StatusPendingIntermediate:
		if actor.ID != chain.IntermediateApproverID {
			return ErrUnauthorized{PaymentID: p.ID, ActorID: actor.ID, Event: EventReject}
		}
	case StatusPendingFinal:
		if actor.ID != chain.FinalApproverID {
			return ErrUnauthorized{PaymentID: p.ID, ActorID: actor.ID, Event: EventReject}
		}
	default:
		return ErrInvalidTransition{PaymentID: p.ID, Status: p.Status, Event: EventReject}
	}

	now := time.Now()
	p.Status = StatusRejected
	p.RejectedAt = &now
	p.touch(now)
	return nil
}

// Revoke withdraws an approved payment back to draft. Restricted to the
// creator or an admin, and a justification comment is mandatory.
func (p *Payment) Revoke(actor identity.Actor, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return ErrValidation{Reason: "revocation requires a comment"}
	}
	if p.Status != StatusApproved {
		return ErrInvalidTransition{PaymentID: p.ID, Status: p.Status, Event: EventRevoke}
	}
	if !p.IsOwnedOrAdmin(actor) {
		return ErrUnauthorized{PaymentID: p.ID, ActorID: actor.ID, Event: EventRevoke}
	}

	now := time.Now()
	p.Status = StatusDraft
	p.RevokedAt = &now
	p.touch(now)
	return nil
}

func (p *Payment) touch(now time.Time) {
	p.UpdatedAt = now
	p.Version++
}
