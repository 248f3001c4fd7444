package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finflow-payment-approval/internal/domain/audit"
	"github.com/finflow-payment-approval/internal/domain/identity"
	"github.com/finflow-payment-approval/internal/domain/payment"
	"github.com/finflow-payment-approval/internal/domain/view"
)

// TxRunner runs a function inside one database transaction. Satisfied by
// *persistence.PostgresDB.
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// DraftInput carries the mutable fields of a draft payment
type DraftInput struct {
	CategoryID    *int64
	Description   string
	Amount        int64
	PaymentDate   time.Time
	LegalEntityID *int64
	ContractorID  *int64
	DepartmentID  *int64
	ServiceID     *int64
	InvoiceID     *int64
	CustomFields  map[string]string
}

// PendingItem is one entry of an approver's inbox: a payment awaiting their
// decision plus whether they opened it since it entered the current stage.
type PendingItem struct {
	Payment  *payment.Payment
	Seen     bool
	ViewedAt *time.Time
}

// HistoryFeed combines the immutable audit trail with view records
type HistoryFeed struct {
	Entries []*audit.Entry
	Views   []*view.Record
}

// BatchResult reports the outcome of one payment in a bulk approval
type BatchResult struct {
	PaymentID int64
	Err       error
}

// PaymentService defines draft lifecycle and read operations
type PaymentService interface {
	// CreateDraft creates a new draft payment owned by the actor
	CreateDraft(ctx context.Context, actor identity.Actor, input DraftInput) (*payment.Payment, error)

	// GetPayment retrieves a payment visible to the actor
	// Returns ErrUnauthorized when the actor is neither owner, admin nor an
	// approver on the payment's chain
	GetPayment(ctx context.Context, actor identity.Actor, id int64) (*payment.Payment, error)

	// UpdateDraft applies edits to a draft owned by the actor
	// Returns ErrInvalidTransition when the payment already left draft
	UpdateDraft(ctx context.Context, actor identity.Actor, id int64, input DraftInput) (*payment.Payment, error)

	// DeleteDraft removes a draft owned by the actor
	DeleteDraft(ctx context.Context, actor identity.Actor, id int64) error

	// ListMyPayments returns the actor's own payments, newest first
	ListMyPayments(ctx context.Context, actor identity.Actor, page, perPage int) ([]*payment.Payment, error)

	// PendingInbox returns payments currently awaiting the actor's decision
	// together with seen markers, and the total pending count
	PendingInbox(ctx context.Context, actor identity.Actor, page, perPage int) ([]*PendingItem, int64, error)
}

// ApprovalService is the single writer for payment state transitions. Every
// transition persists the state change, its audit entry and its notification
// outbox rows in one transaction.
type ApprovalService interface {
	// Submit moves a draft or rejected payment into the approval pipeline
	Submit(ctx context.Context, actor identity.Actor, paymentID int64, correlationID string) (*payment.Payment, error)

	// Approve advances a pending payment one stage
	Approve(ctx context.Context, actor identity.Actor, paymentID int64, comment, correlationID string) (*payment.Payment, error)

	// Reject terminates the current approval pass
	Reject(ctx context.Context, actor identity.Actor, paymentID int64, comment, correlationID string) (*payment.Payment, error)

	// Revoke withdraws an approved payment back to draft; comment is mandatory
	Revoke(ctx context.Context, actor identity.Actor, paymentID int64, comment, correlationID string) (*payment.Payment, error)

	// ApproveAll approves a batch of payments concurrently. Each payment
	// succeeds or fails on its own; one result is returned per requested id.
	ApproveAll(ctx context.Context, actor identity.Actor, paymentIDs []int64, correlationID string) []BatchResult

	// RecordView stores a non-authoritative marker that the actor opened the
	// payment. Never affects payment state.
	RecordView(ctx context.Context, actor identity.Actor, paymentID int64) error

	// History returns the audit trail and view records for a payment
	History(ctx context.Context, actor identity.Actor, paymentID int64) (*HistoryFeed, error)
}
