package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/finflow-payment-approval/internal/domain/approval"
	"github.com/finflow-payment-approval/internal/domain/audit"
	"github.com/finflow-payment-approval/internal/domain/notification"
	"github.com/finflow-payment-approval/internal/domain/payment"
	"github.com/finflow-payment-approval/internal/domain/view"
)

// fakeTxRunner runs the transaction function inline with a nil tx. The mocked
// repositories return themselves from WithTx, so the function body exercises
// the same expectations as direct calls.
type fakeTxRunner struct {
	err error
}

func (f *fakeTxRunner) ExecuteTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpdateState(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListByCreator(ctx context.Context, creatorID int64, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, creatorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPendingForApprover(ctx context.Context, approverID int64, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, approverID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountPendingForApprover(ctx context.Context, approverID int64) (int64, error) {
	args := m.Called(ctx, approverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) WithTx(tx pgx.Tx) payment.Repository {
	return m
}

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) HistoryByPaymentID(ctx context.Context, paymentID int64) ([]*audit.Entry, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}

func (m *MockAuditRepository) CountTransitions(ctx context.Context, paymentID int64) (int64, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) WithTx(tx pgx.Tx) audit.Repository {
	return m
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, message *notification.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetPending(ctx context.Context, limit int) ([]*notification.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Message), args.Error(1)
}

func (m *MockNotificationRepository) UpdateStatus(ctx context.Context, id int64, status notification.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockNotificationRepository) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockNotificationRepository) WithTx(tx pgx.Tx) notification.Repository {
	return m
}

type MockViewRepository struct {
	mock.Mock
}

func (m *MockViewRepository) Append(ctx context.Context, record *view.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockViewRepository) ListByPaymentID(ctx context.Context, paymentID int64) ([]*view.Record, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*view.Record), args.Error(1)
}

func (m *MockViewRepository) LatestByUser(ctx context.Context, paymentID int64) (map[int64]time.Time, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]time.Time), args.Error(1)
}

type MockChainResolver struct {
	mock.Mock
}

func (m *MockChainResolver) Resolve(ctx context.Context, serviceID *int64) (approval.Chain, error) {
	args := m.Called(ctx, serviceID)
	return args.Get(0).(approval.Chain), args.Error(1)
}
