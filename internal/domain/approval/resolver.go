package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Chain is the ordered approver chain for one payment. It is derived, never
// persisted: each resolution reads current service configuration, so a
// reconfigured service takes effect at the next stage entry.
type Chain struct {
	IntermediateApproverID int64 `json:"intermediate_approver_id"`
	FinalApproverID        int64 `json:"final_approver_id"`
}

// Resolver resolves a payment's bound service into its approver chain
type Resolver interface {
	Resolve(ctx context.Context, serviceID *int64) (Chain, error)
}

// ErrUnresolvedService indicates no approval chain could be resolved: the
// payment has no service bound, or the service is gone or deactivated.
// Submission and decisions are blocked until service data is fixed.
type ErrUnresolvedService struct {
	ServiceID *int64
}

func (e ErrUnresolvedService) Error() string {
	if e.ServiceID == nil {
		return "cannot resolve approval chain: no service bound to payment"
	}
	return fmt.Sprintf("cannot resolve approval chain: service %d unavailable", *e.ServiceID)
}

// Is implements the errors.Is interface for ErrUnresolvedService
func (e ErrUnresolvedService) Is(target error) bool {
	_, ok := target.(ErrUnresolvedService)
	return ok
}

// PolicyResolver resolves chains against the service repository
type PolicyResolver struct {
	serviceRepo Repository
	logger      *slog.Logger
}

// NewPolicyResolver creates a resolver backed by service configuration
func NewPolicyResolver(logger *slog.Logger, serviceRepo Repository) *PolicyResolver {
	return &PolicyResolver{
		serviceRepo: serviceRepo,
		logger:      logger,
	}
}

// Resolve looks up the service and returns its configured approver chain.
// No side effects; every call reads the current configuration.
func (r *PolicyResolver) Resolve(ctx context.Context, serviceID *int64) (Chain, error) {
	if serviceID == nil {
		return Chain{}, ErrUnresolvedService{}
	}

	svc, err := r.serviceRepo.GetByID(ctx, *serviceID)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound{}) {
			return Chain{}, ErrUnresolvedService{ServiceID: serviceID}
		}
		r.logger.Error("Failed to load service for chain resolution", "service_id", *serviceID, "error", err)
		return Chain{}, fmt.Errorf("failed to resolve approval chain: %w", err)
	}

	if !svc.Active {
		return Chain{}, ErrUnresolvedService{ServiceID: serviceID}
	}

	return Chain{
		IntermediateApproverID: svc.IntermediateApproverID,
		FinalApproverID:        svc.FinalApproverID,
	}, nil
}
