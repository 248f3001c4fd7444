package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/finflow-payment-approval/internal/domain/identity"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository_Resolve(t *testing.T) {
	ctx := context.Background()
	logger := newRepoTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &TokenRepository{querier: mock, logger: logger}
	token := "tok_4f8a2c"

	query := `
		SELECT u.id, u.name, u.roles
		FROM api_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = \$1 AND t.revoked_at IS NULL
	`
	columns := []string{"id", "name", "roles"}

	t.Run("success", func(t *testing.T) {
		rows := pgxmock.NewRows(columns).
			AddRow(int64(7), "Dana Reyes", []string{identity.RoleApprover})
		mock.ExpectQuery(query).WithArgs(token).WillReturnRows(rows)

		actor, err := repo.Resolve(ctx, token)
		assert.NoError(t, err)
		require.NotNil(t, actor)
		assert.Equal(t, int64(7), actor.ID)
		assert.Equal(t, "Dana Reyes", actor.Name)
		assert.True(t, actor.HasRole(identity.RoleApprover))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty token", func(t *testing.T) {
		actor, err := repo.Resolve(ctx, "")
		assert.Nil(t, actor)
		assert.ErrorIs(t, err, identity.ErrEmptyToken)
	})

	t.Run("unknown token", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(token).WillReturnError(pgx.ErrNoRows)

		actor, err := repo.Resolve(ctx, token)
		assert.Error(t, err)
		assert.Nil(t, actor)
		var notFoundErr identity.ErrTokenNotFound
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("some db error")
		mock.ExpectQuery(query).WithArgs(token).WillReturnError(dbErr)

		actor, err := repo.Resolve(ctx, token)
		assert.Error(t, err)
		assert.Nil(t, actor)
		assert.Contains(t, err.Error(), "failed to resolve API token")
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
