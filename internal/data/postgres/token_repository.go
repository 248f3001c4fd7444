package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finflow-payment-approval/internal/domain/identity"
	"github.com/finflow-payment-approval/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

// TokenRepository resolves opaque API tokens to actors. Tokens are issued by
// the authentication service; this side only ever reads them.
type TokenRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTokenRepository creates a new PostgreSQL token repository
func NewTokenRepository(logger *slog.Logger, db *persistence.PostgresDB) identity.Resolver {
	return &TokenRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Resolve returns the actor behind a token, or ErrTokenNotFound for unknown
// and revoked tokens
func (r *TokenRepository) Resolve(ctx context.Context, token string) (*identity.Actor, error) {
	if token == "" {
		return nil, identity.ErrEmptyToken
	}

	query := `
		SELECT u.id, u.name, u.roles
		FROM api_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.token = $1 AND t.revoked_at IS NULL
	`

	var actor identity.Actor
	err := r.querier.QueryRow(ctx, query, token).Scan(
		&actor.ID,
		&actor.Name,
		&actor.Roles,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrTokenNotFound{}
		}
		r.logger.Error("Failed to resolve API token", "error", err)
		return nil, fmt.Errorf("failed to resolve API token: %w", err)
	}

	return &actor, nil
}
