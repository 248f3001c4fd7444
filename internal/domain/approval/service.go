// Package approval holds the service reference entity and the policy resolver
// that turns a payment's bound service into its ordered approver chain.
package approval

import (
	"context"
	"strconv"
	"time"
)

// Service is the reference entity consulted for approval routing. Each service
// configures the identity deciding at each stage.
type Service struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	IntermediateApproverID int64     `json:"intermediate_approver_id"`
	FinalApproverID        int64     `json:"final_approver_id"`
	Active                 bool      `json:"active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Repository defines read access to service configuration. Reference data is
// never mutated by the approval core.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Service, error)
}

// ErrServiceNotFound indicates missing service configuration
type ErrServiceNotFound struct {
	ServiceID int64
}

func (e ErrServiceNotFound) Error() string {
	return "service not found: " + strconv.FormatInt(e.ServiceID, 10)
}

// Is implements the errors.Is interface for ErrServiceNotFound
func (e ErrServiceNotFound) Is(target error) bool {
	t, ok := target.(ErrServiceNotFound)
	if !ok {
		return false
	}
	if t.ServiceID == 0 {
		return true
	}
	return e.ServiceID == t.ServiceID
}
