package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/finflow-payment-approval/internal/domain/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"
)

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

func TestNewViewRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewViewRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &ViewRepository{}, repo)
}

func TestViewRepository_Append(t *testing.T) {
	mockRepo := &MockViewRepository{}

	record := view.NewRecord(101, 7)

	tests := []struct {
		name          string
		setupMocks    func()
		expectedError error
	}{
		{
			name: "successful append",
			setupMocks: func() {
				mockRepo.On("Append", mock.Anything, record).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "database error",
			setupMocks: func() {
				mockRepo.On("Append", mock.Anything, record).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo = &MockViewRepository{}
			tt.setupMocks()

			ctx := context.Background()
			err := mockRepo.Append(ctx, record)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestViewRepository_LatestByUser(t *testing.T) {
	mockRepo := &MockViewRepository{}

	paymentID := int64(101)
	now := time.Now()
	latest := map[int64]time.Time{
		7: now.Add(-time.Hour),
		8: now,
	}

	tests := []struct {
		name           string
		setupMocks     func()
		expectedResult map[int64]time.Time
		expectedError  error
	}{
		{
			name: "views recorded",
			setupMocks: func() {
				mockRepo.On("LatestByUser", mock.Anything, paymentID).Return(latest, nil)
			},
			expectedResult: latest,
			expectedError:  nil,
		},
		{
			name: "no views yet",
			setupMocks: func() {
				mockRepo.On("LatestByUser", mock.Anything, paymentID).Return(map[int64]time.Time{}, nil)
			},
			expectedResult: map[int64]time.Time{},
			expectedError:  nil,
		},
		{
			name: "database error",
			setupMocks: func() {
				mockRepo.On("LatestByUser", mock.Anything, paymentID).Return(nil, errors.New("db error"))
			},
			expectedResult: nil,
			expectedError:  errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo = &MockViewRepository{}
			tt.setupMocks()

			ctx := context.Background()
			result, err := mockRepo.LatestByUser(ctx, paymentID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedResult, result)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
