package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finflow-payment-approval/internal/domain/approval"
	"github.com/finflow-payment-approval/internal/domain/audit"
	"github.com/finflow-payment-approval/internal/domain/identity"
	"github.com/finflow-payment-approval/internal/domain/payment"
	"github.com/finflow-payment-approval/internal/domain/view"
)

// PaymentServiceImpl implements the PaymentService interface. Draft writes
// share a transaction with their audit entry, so a payment's history starts
// at creation rather than at first submit.
type PaymentServiceImpl struct {
	txRunner    TxRunner
	paymentRepo payment.Repository
	auditRepo   audit.Repository
	viewRepo    view.Repository
	resolver    approval.Resolver
	logger      *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(logger *slog.Logger, txRunner TxRunner, paymentRepo payment.Repository, auditRepo audit.Repository, viewRepo view.Repository, resolver approval.Resolver) PaymentService {
	return &PaymentServiceImpl{
		txRunner:    txRunner,
		paymentRepo: paymentRepo,
		auditRepo:   auditRepo,
		viewRepo:    viewRepo,
		resolver:    resolver,
		logger:      logger,
	}
}

// CreateDraft creates a new draft payment owned by the actor
func (s *PaymentServiceImpl) CreateDraft(ctx context.Context, actor identity.Actor, input DraftInput) (*payment.Payment, error) {
	p := payment.New(actor.ID, input.Description, input.Amount, input.PaymentDate)
	applyDraftInput(p, input)

	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.paymentRepo.WithTx(tx).Create(ctx, p); err != nil {
			return err
		}
		// Create assigns p.ID, so the entry is built inside the transaction
		return s.auditRepo.WithTx(tx).Append(ctx, audit.NewEntry(p.ID, actor, audit.ActionCreated, ""))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Draft payment created",
		"payment_id", p.ID,
		"creator_id", actor.ID,
		"amount", p.Amount,
	)
	return p, nil
}

// GetPayment retrieves a payment the actor is allowed to see: the owner, an
// admin, or an approver on the payment's current chain.
func (s *PaymentServiceImpl) GetPayment(ctx context.Context, actor identity.Actor, id int64) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.IsOwnedOrAdmin(actor) {
		return p, nil
	}

	chain, err := s.resolver.Resolve(ctx, p.ServiceID)
	if err == nil && (chain.IntermediateApproverID == actor.ID || chain.FinalApproverID == actor.ID) {
		return p, nil
	}
	if err != nil && !errors.Is(err, approval.ErrUnresolvedService{}) {
		return nil, err
	}

	return nil, payment.ErrUnauthorized{PaymentID: id, ActorID: actor.ID}
}

// UpdateDraft applies edits to a draft owned by the actor
func (s *PaymentServiceImpl) UpdateDraft(ctx context.Context, actor identity.Actor, id int64, input DraftInput) (*payment.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !p.IsOwnedOrAdmin(actor) {
		return nil, payment.ErrUnauthorized{PaymentID: id, ActorID: actor.ID}
	}
	if !p.IsEditable() {
		return nil, payment.ErrInvalidTransition{PaymentID: id, Status: p.Status, Event: payment.EventUpdate}
	}

	applyDraftInput(p, input)
	p.Description = input.Description
	p.Amount = input.Amount
	p.PaymentDate = input.PaymentDate
	p.Version++
	p.UpdatedAt = time.Now()

	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.paymentRepo.WithTx(tx).Update(ctx, p); err != nil {
			return err
		}
		return s.auditRepo.WithTx(tx).Append(ctx, audit.NewEntry(p.ID, actor, audit.ActionUpdated, ""))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Draft payment updated", "payment_id", p.ID, "actor_id", actor.ID)
	return p, nil
}

// DeleteDraft removes a draft owned by the actor
func (s *PaymentServiceImpl) DeleteDraft(ctx context.Context, actor identity.Actor, id int64) error {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !p.IsOwnedOrAdmin(actor) {
		return payment.ErrUnauthorized{PaymentID: id, ActorID: actor.ID}
	}
	if !p.IsEditable() {
		return payment.ErrInvalidTransition{PaymentID: id, Status: p.Status, Event: payment.EventDelete}
	}

	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Draft payment deleted", "payment_id", id, "actor_id", actor.ID)
	return nil
}

// ListMyPayments returns the actor's own payments, newest first
func (s *PaymentServiceImpl) ListMyPayments(ctx context.Context, actor identity.Actor, page, perPage int) ([]*payment.Payment, error) {
	offset := (page - 1) * perPage
	return s.paymentRepo.ListByCreator(ctx, actor.ID, perPage, offset)
}

// PendingInbox returns payments currently awaiting the actor's decision.
// The list is computed live from payment status and service configuration;
// seen markers come from the view store and never gate anything.
func (s *PaymentServiceImpl) PendingInbox(ctx context.Context, actor identity.Actor, page, perPage int) ([]*PendingItem, int64, error) {
	offset := (page - 1) * perPage

	payments, err := s.paymentRepo.ListPendingForApprover(ctx, actor.ID, perPage, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.paymentRepo.CountPendingForApprover(ctx, actor.ID)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*PendingItem, 0, len(payments))
	for _, p := range payments {
		item := &PendingItem{Payment: p}

		latest, err := s.viewRepo.LatestByUser(ctx, p.ID)
		if err != nil {
			// Seen markers are best-effort; the inbox stays usable without them
			s.logger.Warn("Failed to load view markers", "payment_id", p.ID, "error", err)
			items = append(items, item)
			continue
		}

		if viewedAt, ok := latest[actor.ID]; ok {
			v := viewedAt
			item.ViewedAt = &v
			// A view older than the last state change means the approver has
			// not seen the payment in its current stage yet
			item.Seen = !viewedAt.Before(p.UpdatedAt)
		}
		items = append(items, item)
	}

	return items, total, nil
}

func applyDraftInput(p *payment.Payment, input DraftInput) {
	p.CategoryID = input.CategoryID
	p.LegalEntityID = input.LegalEntityID
	p.ContractorID = input.ContractorID
	p.DepartmentID = input.DepartmentID
	p.ServiceID = input.ServiceID
	p.InvoiceID = input.InvoiceID
	p.CustomFields = input.CustomFields
}
