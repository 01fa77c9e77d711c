package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockVehicleRepo struct {
	mock.Mock
}

func (m *mockVehicleRepo) List(ctx context.Context, stmt query.Statement) ([]domain.Vehicle, error) {
	args := m.Called(ctx, stmt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vehicle), args.Error(1)
}

func (m *mockVehicleRepo) Count(ctx context.Context, stmt query.Statement) (int, error) {
	args := m.Called(ctx, stmt)
	return args.Int(0), args.Error(1)
}

func (m *mockVehicleRepo) GetByName(ctx context.Context, name string) (*domain.Vehicle, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

type mockLookupRepo struct {
	mock.Mock
}

func (m *mockLookupRepo) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilterOptions), args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) List(ctx context.Context, stmt query.Statement) ([]domain.ReviewSummary, error) {
	args := m.Called(ctx, stmt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewSummary), args.Error(1)
}

func (m *mockReviewRepo) Comments(ctx context.Context, carName string) ([]domain.Comment, error) {
	args := m.Called(ctx, carName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

type mockStatisticsRepo struct {
	mock.Mock
}

func (m *mockStatisticsRepo) Rows(ctx context.Context, stmt query.Statement) ([]domain.StatRow, error) {
	args := m.Called(ctx, stmt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatRow), args.Error(1)
}

type mockProfileRepo struct {
	mock.Mock
}

func (m *mockProfileRepo) Create(ctx context.Context, p *domain.UserProfile) error {
	return m.Called(ctx, p).Error(0)
}

type mockRecommendationRepo struct {
	mock.Mock
}

func (m *mockRecommendationRepo) Record(ctx context.Context, userID, carID int64) (*domain.RecommendationRecord, error) {
	args := m.Called(ctx, userID, carID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecommendationRecord), args.Error(1)
}

func (m *mockRecommendationRepo) ListByUser(ctx context.Context, userID int64) ([]domain.RecommendationRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecommendationRecord), args.Error(1)
}
