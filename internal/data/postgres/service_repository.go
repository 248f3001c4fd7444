package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finflow-payment-approval/internal/domain/approval"
	"github.com/finflow-payment-approval/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// ServiceRepository implements the approval.Repository interface for
// PostgreSQL. Service rows are reference data maintained elsewhere; the
// approval core only ever reads them.
type ServiceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewServiceRepository creates a new PostgreSQL service repository
func NewServiceRepository(logger *slog.Logger, db *persistence.PostgresDB) approval.Repository {
	return &ServiceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// GetByID retrieves a service by its ID
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*approval.Service, error) {
	query := `
		SELECT id, name, intermediate_approver_id, final_approver_id, active, created_at, updated_at
		FROM services
		WHERE id = $1
	`

	var svc approval.Service
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&svc.ID,
		&svc.Name,
		&svc.IntermediateApproverID,
		&svc.FinalApproverID,
		&svc.Active,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, approval.ErrServiceNotFound{ServiceID: id}
		}
		r.logger.Error("Failed to get service", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	return &svc, nil
}
