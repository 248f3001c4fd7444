package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finflow-payment-approval/internal/domain/approval"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	logger := newRepoTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ServiceRepository{querier: mock, logger: logger}
	serviceID := int64(12)
	now := time.Now()

	expected := &approval.Service{
		ID:                     serviceID,
		Name:                   "Facilities",
		IntermediateApproverID: 7,
		FinalApproverID:        8,
		Active:                 true,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	query := `
		SELECT id, name, intermediate_approver_id, final_approver_id, active, created_at, updated_at
		FROM services
		WHERE id = \$1
	`
	columns := []string{"id", "name", "intermediate_approver_id", "final_approver_id", "active", "created_at", "updated_at"}

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(columns).
			AddRow(expected.ID, expected.Name, expected.IntermediateApproverID, expected.FinalApproverID, expected.Active, expected.CreatedAt, expected.UpdatedAt)
		mock.ExpectQuery(query).WithArgs(serviceID).WillReturnRows(rows)

		svc, err := repo.GetByID(ctx, serviceID)
		assert.NoError(t, err)
		assert.Equal(t, expected, svc)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(serviceID).WillReturnError(pgx.ErrNoRows)

		svc, err := repo.GetByID(ctx, serviceID)
		assert.Error(t, err)
		assert.Nil(t, svc)
		var notFoundErr approval.ErrServiceNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, serviceID, notFoundErr.ServiceID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(serviceID).WillReturnError(dbErr)

		svc, err := repo.GetByID(ctx, serviceID)
		assert.Error(t, err)
		assert.Nil(t, svc)
		assert.Contains(t, err.Error(), "failed to get service")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
