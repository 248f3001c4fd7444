package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finflow-payment-approval/internal/domain/audit"
	"github.com/finflow-payment-approval/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// AuditRepository implements the audit.Repository interface for PostgreSQL.
// The audit_entries table is append-only; this repository intentionally has
// no update or delete statements.
type AuditRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewAuditRepository creates a new PostgreSQL audit repository
func NewAuditRepository(logger *slog.Logger, db *persistence.PostgresDB) audit.Repository {
	return &AuditRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction. An audit append shares its
// transaction with the state transition that produced it.
func (r *AuditRepository) WithTx(tx pgx.Tx) audit.Repository {
	return &AuditRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Append persists one immutable audit entry and backfills its generated id
func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	query := `
		INSERT INTO audit_entries (payment_id, actor_id, actor_role, action, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		entry.PaymentID,
		entry.ActorID,
		entry.ActorRole,
		entry.Action,
		entry.Comment,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			"payment_id", entry.PaymentID,
			"action", string(entry.Action),
			"error", err,
		)
		return fmt.Errorf("%w: %w", audit.ErrAppendFailed{PaymentID: entry.PaymentID}, err)
	}

	return nil
}

// HistoryByPaymentID returns all entries for a payment, oldest first.
// Ties on created_at are broken by insertion order.
func (r *AuditRepository) HistoryByPaymentID(ctx context.Context, paymentID int64) ([]*audit.Entry, error) {
	query := `
		SELECT id, payment_id, actor_id, actor_role, action, comment, created_at
		FROM audit_entries
		WHERE payment_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.querier.Query(ctx, query, paymentID)
	if err != nil {
		r.logger.Error("Failed to get audit history", "payment_id", paymentID, "error", err)
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var entries []*audit.Entry
	for rows.Next() {
		var entry audit.Entry
		err := rows.Scan(
			&entry.ID,
			&entry.PaymentID,
			&entry.ActorID,
			&entry.ActorRole,
			&entry.Action,
			&entry.Comment,
			&entry.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan audit entry", "error", err)
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over audit entries", "error", err)
		return nil, fmt.Errorf("error iterating over audit entries: %w", err)
	}

	return entries, nil
}

// CountTransitions counts the recorded state transitions for a payment.
// View records and created/updated entries are excluded.
func (r *AuditRepository) CountTransitions(ctx context.Context, paymentID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM audit_entries
		WHERE payment_id = $1 AND action = ANY($2)
	`

	actions := make([]string, 0, len(audit.TransitionActions))
	for _, a := range audit.TransitionActions {
		actions = append(actions, string(a))
	}

	var count int64
	if err := r.querier.QueryRow(ctx, query, paymentID, actions).Scan(&count); err != nil {
		r.logger.Error("Failed to count audit transitions", "payment_id", paymentID, "error", err)
		return 0, fmt.Errorf("failed to count audit transitions: %w", err)
	}

	return count, nil
}
