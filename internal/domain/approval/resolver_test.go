package approval

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Service), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestPolicyResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	serviceID := int64(12)

	t.Run("returns configured chain", func(t *testing.T) {
		mockRepo := new(MockServiceRepository)
		resolver := NewPolicyResolver(newTestLogger(), mockRepo)

		mockRepo.On("GetByID", ctx, serviceID).Return(&Service{
			ID:                     serviceID,
			Name:                   "IT Procurement",
			IntermediateApproverID: 7,
			FinalApproverID:        8,
			Active:                 true,
		}, nil).Once()

		chain, err := resolver.Resolve(ctx, &serviceID)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), chain.IntermediateApproverID)
		assert.Equal(t, int64(8), chain.FinalApproverID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("no service bound", func(t *testing.T) {
		mockRepo := new(MockServiceRepository)
		resolver := NewPolicyResolver(newTestLogger(), mockRepo)

		_, err := resolver.Resolve(ctx, nil)
		assert.ErrorIs(t, err, ErrUnresolvedService{})
		mockRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("service no longer exists", func(t *testing.T) {
		mockRepo := new(MockServiceRepository)
		resolver := NewPolicyResolver(newTestLogger(), mockRepo)

		mockRepo.On("GetByID", ctx, serviceID).Return(nil, ErrServiceNotFound{ServiceID: serviceID}).Once()

		_, err := resolver.Resolve(ctx, &serviceID)
		assert.ErrorIs(t, err, ErrUnresolvedService{})
		mockRepo.AssertExpectations(t)
	})

	t.Run("deactivated service", func(t *testing.T) {
		mockRepo := new(MockServiceRepository)
		resolver := NewPolicyResolver(newTestLogger(), mockRepo)

		mockRepo.On("GetByID", ctx, serviceID).Return(&Service{ID: serviceID, Active: false}, nil).Once()

		_, err := resolver.Resolve(ctx, &serviceID)
		assert.ErrorIs(t, err, ErrUnresolvedService{})
	})

	t.Run("storage error propagates", func(t *testing.T) {
		mockRepo := new(MockServiceRepository)
		resolver := NewPolicyResolver(newTestLogger(), mockRepo)
		dbErr := errors.New("connection refused")

		mockRepo.On("GetByID", ctx, serviceID).Return(nil, dbErr).Once()

		_, err := resolver.Resolve(ctx, &serviceID)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnresolvedService{})
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("re-resolution observes reconfiguration", func(t *testing.T) {
		mockRepo := new(MockServiceRepository)
		resolver := NewPolicyResolver(newTestLogger(), mockRepo)

		mockRepo.On("GetByID", ctx, serviceID).Return(&Service{
			ID: serviceID, IntermediateApproverID: 7, FinalApproverID: 8, Active: true,
		}, nil).Once()
		mockRepo.On("GetByID", ctx, serviceID).Return(&Service{
			ID: serviceID, IntermediateApproverID: 70, FinalApproverID: 8, Active: true,
		}, nil).Once()

		first, err := resolver.Resolve(ctx, &serviceID)
		assert.NoError(t, err)
		second, err := resolver.Resolve(ctx, &serviceID)
		assert.NoError(t, err)

		assert.Equal(t, int64(7), first.IntermediateApproverID)
		assert.Equal(t, int64(70), second.IntermediateApproverID)
		mockRepo.AssertExpectations(t)
	})
}
