package identity

import (
	"context"
	"errors"
)

// Role labels attached to an actor. Labels beyond these are opaque to the
// approval core and only surfaced in audit entries.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleApprover = "approver"
)

var ErrEmptyToken = errors.New("authentication token cannot be empty")

// Actor is the authenticated identity behind a request, resolved from an
// opaque API token. Token issuance happens outside this service.
type Actor struct {
	ID    int64    `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// IsAdmin reports whether the actor carries the admin role.
func (a Actor) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// HasRole reports whether the actor carries the given role label.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleLabel returns the label recorded on audit entries for this actor.
// Admin wins over other labels; otherwise the first assigned role is used.
func (a Actor) RoleLabel() string {
	if a.IsAdmin() {
		return RoleAdmin
	}
	if len(a.Roles) > 0 {
		return a.Roles[0]
	}
	return RoleEmployee
}

// Resolver resolves an opaque bearer token to the actor behind it
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Actor, error)
}

// ErrTokenNotFound indicates the token is unknown or has been revoked
type ErrTokenNotFound struct{}

func (e ErrTokenNotFound) Error() string {
	return "authentication token not recognized"
}
