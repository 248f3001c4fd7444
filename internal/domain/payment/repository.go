package payment

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository defines payment persistence operations
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)

	// Update persists draft edits using optimistic locking
	Update(ctx context.Context, p *Payment) error

	// UpdateState persists a state transition using optimistic locking.
	// Returns ErrStaleState if the stored version no longer matches.
	UpdateState(ctx context.Context, p *Payment) error

	Delete(ctx context.Context, id int64) error

	// ListByCreator returns payments owned by a user, newest first
	ListByCreator(ctx context.Context, creatorID int64, limit, offset int) ([]*Payment, error)

	// ListPendingForApprover returns payments currently awaiting a decision
	// from the given approver, resolved live against service configuration
	ListPendingForApprover(ctx context.Context, approverID int64, limit, offset int) ([]*Payment, error)
	CountPendingForApprover(ctx context.Context, approverID int64) (int64, error)

	WithTx(tx pgx.Tx) Repository
}
