package audit

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Repository defines append-only audit persistence. There are deliberately no
// update or delete operations.
type Repository interface {
	// Append persists one immutable entry
	Append(ctx context.Context, entry *Entry) error

	// HistoryByPaymentID returns all entries for a payment, oldest first
	HistoryByPaymentID(ctx context.Context, paymentID int64) ([]*Entry, error)

	// CountTransitions returns the number of recorded state transitions
	// (submit/approve/reject/revoke) for a payment
	CountTransitions(ctx context.Context, paymentID int64) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAppendFailed indicates the audit row could not be persisted. The state
// transition sharing its database transaction must fail with it.
type ErrAppendFailed struct {
	PaymentID int64
}

func (e ErrAppendFailed) Error() string {
	return "failed to append audit entry for payment: " + strconv.FormatInt(e.PaymentID, 10)
}
