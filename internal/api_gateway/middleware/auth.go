package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/finflow-payment-approval/internal/domain/identity"
)

const (
	// ActorKey is the key used to store the authenticated actor in the context
	ActorKey = "actor"
)

// Auth resolves the bearer token on each request to an actor and aborts with
// 401 when the token is missing, unknown or revoked.
func Auth(logger *slog.Logger, resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "Missing bearer token"},
			})
			return
		}

		actor, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			var notFoundErr identity.ErrTokenNotFound
			if errors.As(err, &notFoundErr) || errors.Is(err, identity.ErrEmptyToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": gin.H{"code": "UNAUTHORIZED", "message": "Invalid or revoked token"},
				})
				return
			}
			logger.Error("Failed to resolve authentication token", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"code": "INTERNAL_SERVER_ERROR", "message": "Authentication failed"},
			})
			return
		}

		c.Set(ActorKey, *actor)
		c.Next()
	}
}

// GetActor retrieves the authenticated actor from the gin context
func GetActor(c *gin.Context) (identity.Actor, bool) {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(identity.Actor); ok {
			return actor, true
		}
	}
	return identity.Actor{}, false
}
