package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finflow-payment-approval/internal/domain/notification"
	"github.com/finflow-payment-approval/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// OutboxRepository implements the notification.Repository interface for
// PostgreSQL
type OutboxRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewOutboxRepository creates a new PostgreSQL notification outbox repository
func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB) notification.Repository {
	return &OutboxRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction. Outbox inserts share the
// transaction of the state transition they announce.
func (r *OutboxRepository) WithTx(tx pgx.Tx) notification.Repository {
	return &OutboxRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new outbox message in pending status. The message will be
// picked up by the dispatcher's poller for publishing.
func (r *OutboxRepository) Create(ctx context.Context, message *notification.Message) error {
	query := `
		INSERT INTO notification_outbox (event_id, payment_id, kind, target_actor_id, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		message.EventID,
		message.PaymentID,
		message.Kind,
		message.TargetActorID,
		message.Payload,
		message.Status,
		message.Attempts,
		message.CreatedAt,
	).Scan(&message.ID)

	if err != nil {
		r.logger.Error("Failed to create notification outbox message",
			"event_id", message.EventID.String(),
			"payment_id", message.PaymentID,
			"error", err,
		)
		return fmt.Errorf("failed to create notification outbox message: %w", err)
	}

	return nil
}

// GetPending retrieves a batch of pending outbox messages ordered by creation
// time so events publish in FIFO order.
func (r *OutboxRepository) GetPending(ctx context.Context, limit int) ([]*notification.Message, error) {
	query := `
		SELECT id, event_id, payment_id, kind, target_actor_id, payload, status, attempts, created_at, last_attempt_at
		FROM notification_outbox
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, notification.OutboxStatusPending, limit)
	if err != nil {
		r.logger.Error("Failed to get pending notification outbox messages", "error", err)
		return nil, fmt.Errorf("failed to get pending notification outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*notification.Message
	for rows.Next() {
		var message notification.Message
		err := rows.Scan(
			&message.ID,
			&message.EventID,
			&message.PaymentID,
			&message.Kind,
			&message.TargetActorID,
			&message.Payload,
			&message.Status,
			&message.Attempts,
			&message.CreatedAt,
			&message.LastAttemptAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan notification outbox message", "error", err)
			return nil, fmt.Errorf("failed to scan notification outbox message: %w", err)
		}
		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over notification outbox messages", "error", err)
		return nil, fmt.Errorf("error iterating over notification outbox messages: %w", err)
	}

	return messages, nil
}

// UpdateStatus updates the message status and last attempt timestamp.
// Returns ErrMessageNotFound if the message doesn't exist.
func (r *OutboxRepository) UpdateStatus(ctx context.Context, id int64, status notification.OutboxStatus) error {
	query := `
		UPDATE notification_outbox
		SET status = $1, last_attempt_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, status, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to update notification outbox message status",
			"id", id,
			"status", string(status),
			"error", err,
		)
		return fmt.Errorf("failed to update notification outbox message status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return notification.ErrMessageNotFound{ID: id}
	}

	return nil
}

// IncrementAttempts increments the retry counter and updates last attempt time
func (r *OutboxRepository) IncrementAttempts(ctx context.Context, id int64) error {
	query := `
		UPDATE notification_outbox
		SET attempts = attempts + 1, last_attempt_at = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to increment notification outbox message attempts",
			"id", id,
			"error", err,
		)
		return fmt.Errorf("failed to increment notification outbox message attempts: %w", err)
	}

	if result.RowsAffected() == 0 {
		return notification.ErrMessageNotFound{ID: id}
	}

	return nil
}

// Delete permanently removes a message from the outbox
func (r *OutboxRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM notification_outbox
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete notification outbox message",
			"id", id,
			"error", err,
		)
		return fmt.Errorf("failed to delete notification outbox message: %w", err)
	}

	if result.RowsAffected() == 0 {
		return notification.ErrMessageNotFound{ID: id}
	}

	return nil
}
