// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety for the approval workflow.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finflow-payment-approval/internal/domain/payment"
	"github.com/finflow-payment-approval/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, creator_id, category_id, description, amount, payment_date,
		legal_entity_id, contractor_id, department_id, service_id, invoice_id,
		custom_fields, status, version, created_at, updated_at, submitted_at,
		intermediate_approved_at, final_approved_at, rejected_at, revoked_at`

// PaymentRepository implements the payment.Repository interface for PostgreSQL
type PaymentRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewPaymentRepository creates a new PostgreSQL payment repository
func NewPaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) payment.Repository {
	return &PaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so a state transition, its
// audit entry and its notification outbox row commit or roll back together.
func (r *PaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return &PaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new draft payment and backfills its generated id
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (creator_id, category_id, description, amount, payment_date,
			legal_entity_id, contractor_id, department_id, service_id, invoice_id,
			custom_fields, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		p.CreatorID,
		p.CategoryID,
		p.Description,
		p.Amount,
		p.PaymentDate,
		p.LegalEntityID,
		p.ContractorID,
		p.DepartmentID,
		p.ServiceID,
		p.InvoiceID,
		p.CustomFields,
		p.Status,
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		r.logger.Error("Failed to create payment", "creator_id", p.CreatorID, "error", err)
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID retrieves a payment by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = $1
	`

	p, err := r.scanPayment(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, payment.ErrNotFound{PaymentID: id}
		}
		r.logger.Error("Failed to get payment", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// Update persists draft edits with an optimistic version check
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments
		SET category_id = $1, description = $2, amount = $3, payment_date = $4,
			legal_entity_id = $5, contractor_id = $6, department_id = $7,
			service_id = $8, invoice_id = $9, custom_fields = $10,
			version = $11, updated_at = $12
		WHERE id = $13 AND version = $14
	`

	result, err := r.querier.Exec(ctx, query,
		p.CategoryID,
		p.Description,
		p.Amount,
		p.PaymentDate,
		p.LegalEntityID,
		p.ContractorID,
		p.DepartmentID,
		p.ServiceID,
		p.InvoiceID,
		p.CustomFields,
		p.Version,
		p.UpdatedAt,
		p.ID,
		p.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update payment", "id", p.ID, "error", err)
		return fmt.Errorf("failed to update payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return payment.ErrStaleState{PaymentID: p.ID}
	}

	return nil
}

// UpdateState persists a state transition with an optimistic version check.
// Exactly one of two racing transitions can match the previous version; the
// loser gets ErrStaleState and must re-read before retrying.
func (r *PaymentRepository) UpdateState(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, version = $2, updated_at = $3, submitted_at = $4,
			intermediate_approved_at = $5, final_approved_at = $6,
			rejected_at = $7, revoked_at = $8
		WHERE id = $9 AND version = $10
	`

	result, err := r.querier.Exec(ctx, query,
		p.Status,
		p.Version,
		p.UpdatedAt,
		p.SubmittedAt,
		p.IntermediateApprovedAt,
		p.FinalApprovedAt,
		p.RejectedAt,
		p.RevokedAt,
		p.ID,
		p.Version-1,
	)
	if err != nil {
		r.logger.Error("Failed to update payment state", "id", p.ID, "status", string(p.Status), "error", err)
		return fmt.Errorf("failed to update payment state: %w", err)
	}

	if result.RowsAffected() == 0 {
		return payment.ErrStaleState{PaymentID: p.ID}
	}

	return nil
}

// Delete removes a payment. Callers must ensure the payment is still in draft;
// submitted payments only ever change state through transitions.
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	query := `
		DELETE FROM payments
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete payment", "id", id, "error", err)
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return payment.ErrNotFound{PaymentID: id}
	}

	return nil
}

// ListByCreator returns payments owned by a user, newest first
func (r *PaymentRepository) ListByCreator(ctx context.Context, creatorID int64, limit, offset int) ([]*payment.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE creator_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, creatorID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list payments by creator", "creator_id", creatorID, "error", err)
		return nil, fmt.Errorf("failed to list payments by creator: %w", err)
	}
	defer rows.Close()

	return r.collectPayments(rows)
}

// ListPendingForApprover returns payments currently awaiting the given
// approver. The join against live service configuration implements the
// pull-based inbox: there is no cached list anywhere.
func (r *PaymentRepository) ListPendingForApprover(ctx context.Context, approverID int64, limit, offset int) ([]*payment.Payment, error) {
	query := `
		SELECT p.id, p.creator_id, p.category_id, p.description, p.amount, p.payment_date,
			p.legal_entity_id, p.contractor_id, p.department_id, p.service_id, p.invoice_id,
			p.custom_fields, p.status, p.version, p.created_at, p.updated_at, p.submitted_at,
			p.intermediate_approved_at, p.final_approved_at, p.rejected_at, p.revoked_at
		FROM payments p
		JOIN services s ON s.id = p.service_id
		WHERE s.active
			AND ((p.status = 'pending_intermediate' AND s.intermediate_approver_id = $1)
				OR (p.status = 'pending_final' AND s.final_approver_id = $1))
		ORDER BY p.submitted_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, approverID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list pending payments for approver", "approver_id", approverID, "error", err)
		return nil, fmt.Errorf("failed to list pending payments for approver: %w", err)
	}
	defer rows.Close()

	return r.collectPayments(rows)
}

// CountPendingForApprover counts payments currently awaiting the approver
func (r *PaymentRepository) CountPendingForApprover(ctx context.Context, approverID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM payments p
		JOIN services s ON s.id = p.service_id
		WHERE s.active
			AND ((p.status = 'pending_intermediate' AND s.intermediate_approver_id = $1)
				OR (p.status = 'pending_final' AND s.final_approver_id = $1))
	`

	var count int64
	if err := r.querier.QueryRow(ctx, query, approverID).Scan(&count); err != nil {
		r.logger.Error("Failed to count pending payments for approver", "approver_id", approverID, "error", err)
		return 0, fmt.Errorf("failed to count pending payments for approver: %w", err)
	}

	return count, nil
}

func (r *PaymentRepository) scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(
		&p.ID,
		&p.CreatorID,
		&p.CategoryID,
		&p.Description,
		&p.Amount,
		&p.PaymentDate,
		&p.LegalEntityID,
		&p.ContractorID,
		&p.DepartmentID,
		&p.ServiceID,
		&p.InvoiceID,
		&p.CustomFields,
		&p.Status,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.SubmittedAt,
		&p.IntermediateApprovedAt,
		&p.FinalApprovedAt,
		&p.RejectedAt,
		&p.RevokedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) collectPayments(rows pgx.Rows) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			r.logger.Error("Failed to scan payment row", "error", err)
			return nil, fmt.Errorf("failed to scan payment row: %w", err)
		}
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over payment rows", "error", err)
		return nil, fmt.Errorf("error iterating over payment rows: %w", err)
	}

	return payments, nil
}
