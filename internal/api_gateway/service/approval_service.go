package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/panjf2000/ants/v2"

	"github.com/finflow-payment-approval/internal/domain/approval"
	"github.com/finflow-payment-approval/internal/domain/audit"
	"github.com/finflow-payment-approval/internal/domain/identity"
	"github.com/finflow-payment-approval/internal/domain/notification"
	"github.com/finflow-payment-approval/internal/domain/payment"
	"github.com/finflow-payment-approval/internal/domain/view"
)

// ApprovalServiceImpl implements the ApprovalService interface. It is the
// only component that moves payments between states: the transition, its
// audit entry and its notification outbox rows commit in one transaction.
type ApprovalServiceImpl struct {
	txRunner    TxRunner
	paymentRepo payment.Repository
	auditRepo   audit.Repository
	outboxRepo  notification.Repository
	viewRepo    view.Repository
	resolver    approval.Resolver
	pool        *ants.Pool
	logger      *slog.Logger
}

// NewApprovalService creates a new approval service. poolSize bounds the
// concurrency of bulk approvals.
func NewApprovalService(
	logger *slog.Logger,
	txRunner TxRunner,
	paymentRepo payment.Repository,
	auditRepo audit.Repository,
	outboxRepo notification.Repository,
	viewRepo view.Repository,
	resolver approval.Resolver,
	poolSize int,
) (*ApprovalServiceImpl, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &ApprovalServiceImpl{
		txRunner:    txRunner,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		outboxRepo:  outboxRepo,
		viewRepo:    viewRepo,
		resolver:    resolver,
		pool:        pool,
		logger:      logger,
	}, nil
}

// Shutdown releases the bulk approval worker pool
func (s *ApprovalServiceImpl) Shutdown() {
	s.logger.Info("Shutting down approval worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Submit moves a draft or rejected payment into the approval pipeline. The
// approval chain must resolve before the transition is attempted; a payment
// with no usable chain never leaves draft.
func (s *ApprovalServiceImpl) Submit(ctx context.Context, actor identity.Actor, paymentID int64, correlationID string) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	chain, err := s.resolver.Resolve(ctx, p.ServiceID)
	if err != nil {
		return nil, err
	}

	if err := p.Submit(actor); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(p.ID, actor, audit.ActionSubmit, "")
	event := notification.NewEvent(p.ID, notification.KindNeedsApproval, chain.IntermediateApproverID, correlationID, eventPayload(p))

	if err := s.commitTransition(ctx, p, entry, event); err != nil {
		return nil, err
	}

	s.logger.Info("Payment submitted",
		"payment_id", p.ID,
		"actor_id", actor.ID,
		"next_approver_id", chain.IntermediateApproverID,
	)
	return p, nil
}

// Approve advances a pending payment one stage. The chain is re-resolved on
// every decision, so a reconfigured service immediately changes who may act.
func (s *ApprovalServiceImpl) Approve(ctx context.Context, actor identity.Actor, paymentID int64, comment, correlationID string) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	chain, err := s.resolver.Resolve(ctx, p.ServiceID)
	if err != nil {
		return nil, err
	}

	wasIntermediate := p.Status == payment.StatusPendingIntermediate

	if err := p.Approve(actor, chain); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(p.ID, actor, audit.ActionApprove, comment)

	var event *notification.Event
	if wasIntermediate {
		// Intermediate stage cleared: the final approver is up next
		event = notification.NewEvent(p.ID, notification.KindNeedsApproval, chain.FinalApproverID, correlationID, eventPayload(p))
	} else {
		event = notification.NewEvent(p.ID, notification.KindDecisionMade, p.CreatorID, correlationID, eventPayload(p))
	}

	if err := s.commitTransition(ctx, p, entry, event); err != nil {
		return nil, err
	}

	s.logger.Info("Payment approved",
		"payment_id", p.ID,
		"actor_id", actor.ID,
		"status", string(p.Status),
	)
	return p, nil
}

// Reject terminates the current approval pass at either pending stage
func (s *ApprovalServiceImpl) Reject(ctx context.Context, actor identity.Actor, paymentID int64, comment, correlationID string) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	chain, err := s.resolver.Resolve(ctx, p.ServiceID)
	if err != nil {
		return nil, err
	}

	if err := p.Reject(actor, chain); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(p.ID, actor, audit.ActionReject, comment)
	event := notification.NewEvent(p.ID, notification.KindDecisionMade, p.CreatorID, correlationID, eventPayload(p))

	if err := s.commitTransition(ctx, p, entry, event); err != nil {
		return nil, err
	}

	s.logger.Info("Payment rejected", "payment_id", p.ID, "actor_id", actor.ID)
	return p, nil
}

// Revoke withdraws an approved payment back to draft. The mandatory comment
// is enforced by the domain transition.
func (s *ApprovalServiceImpl) Revoke(ctx context.Context, actor identity.Actor, paymentID int64, comment, correlationID string) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if err := p.Revoke(actor, comment); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(p.ID, actor, audit.ActionRevoke, comment)
	event := notification.NewEvent(p.ID, notification.KindRevoked, p.CreatorID, correlationID, eventPayload(p))

	if err := s.commitTransition(ctx, p, entry, event); err != nil {
		return nil, err
	}

	s.logger.Info("Payment revoked", "payment_id", p.ID, "actor_id", actor.ID)
	return p, nil
}

// ApproveAll approves a batch of payments concurrently through the worker
// pool. Each payment transitions in its own transaction, so one failure never
// touches the others.
func (s *ApprovalServiceImpl) ApproveAll(ctx context.Context, actor identity.Actor, paymentIDs []int64, correlationID string) []BatchResult {
	results := make([]BatchResult, len(paymentIDs))
	var wg sync.WaitGroup

	for i, id := range paymentIDs {
		i, id := i, id
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			_, err := s.Approve(ctx, actor, id, "", correlationID)
			results[i] = BatchResult{PaymentID: id, Err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = BatchResult{PaymentID: id, Err: fmt.Errorf("failed to schedule approval: %w", err)}
		}
	}

	wg.Wait()
	return results
}

// RecordView stores a marker that the actor opened the payment. Idempotent in
// effect: repeated views only move the latest-seen time forward.
func (s *ApprovalServiceImpl) RecordView(ctx context.Context, actor identity.Actor, paymentID int64) error {
	if _, err := s.paymentRepo.GetByID(ctx, paymentID); err != nil {
		return err
	}

	return s.viewRepo.Append(ctx, view.NewRecord(paymentID, actor.ID))
}

// History returns the full audit trail and view records for a payment
func (s *ApprovalServiceImpl) History(ctx context.Context, actor identity.Actor, paymentID int64) (*HistoryFeed, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !p.IsOwnedOrAdmin(actor) {
		chain, chainErr := s.resolver.Resolve(ctx, p.ServiceID)
		if chainErr != nil || (chain.IntermediateApproverID != actor.ID && chain.FinalApproverID != actor.ID) {
			return nil, payment.ErrUnauthorized{PaymentID: paymentID, ActorID: actor.ID}
		}
	}

	entries, err := s.auditRepo.HistoryByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	views, err := s.viewRepo.ListByPaymentID(ctx, paymentID)
	if err != nil {
		// View records enrich the feed but the audit trail stands on its own
		s.logger.Warn("Failed to load view records for history", "payment_id", paymentID, "error", err)
		views = nil
	}

	return &HistoryFeed{Entries: entries, Views: views}, nil
}

// commitTransition persists a state transition atomically with its audit
// entry and notification outbox row. If any write fails the payment stays in
// its previous state and nothing is emitted.
func (s *ApprovalServiceImpl) commitTransition(ctx context.Context, p *payment.Payment, entry *audit.Entry, event *notification.Event) error {
	message, err := notification.NewMessage(event)
	if err != nil {
		return fmt.Errorf("failed to build notification message: %w", err)
	}

	return s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.paymentRepo.WithTx(tx).UpdateState(ctx, p); err != nil {
			return err
		}
		if err := s.auditRepo.WithTx(tx).Append(ctx, entry); err != nil {
			return err
		}
		return s.outboxRepo.WithTx(tx).Create(ctx, message)
	})
}

func eventPayload(p *payment.Payment) map[string]string {
	return map[string]string{
		"status":      string(p.Status),
		"description": p.Description,
		"amount":      fmt.Sprintf("%d", p.Amount),
	}
}
