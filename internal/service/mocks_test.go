package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock Vehicle Repository ---

type mockVehicleRepository struct {
	mock.Mock
}

func (m *mockVehicleRepository) List(ctx context.Context, stmt query.Statement) ([]domain.Vehicle, error) {
	args := m.Called(ctx, stmt)
	if v := args.Get(0); v != nil {
		return v.([]domain.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockVehicleRepository) Count(ctx context.Context, stmt query.Statement) (int, error) {
	args := m.Called(ctx, stmt)
	return args.Int(0), args.Error(1)
}

func (m *mockVehicleRepository) GetByName(ctx context.Context, name string) (*domain.Vehicle, error) {
	args := m.Called(ctx, name)
	if v := args.Get(0); v != nil {
		return v.(*domain.Vehicle), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Mock Lookup Repository ---

type mockLookupRepository struct {
	mock.Mock
}

func (m *mockLookupRepository) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*domain.FilterOptions), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Mock Review Repository ---

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) List(ctx context.Context, stmt query.Statement) ([]domain.ReviewSummary, error) {
	args := m.Called(ctx, stmt)
	if v := args.Get(0); v != nil {
		return v.([]domain.ReviewSummary), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewRepository) Comments(ctx context.Context, carName string) ([]domain.Comment, error) {
	args := m.Called(ctx, carName)
	if v := args.Get(0); v != nil {
		return v.([]domain.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Mock Statistics Repository ---

type mockStatisticsRepository struct {
	mock.Mock
}

func (m *mockStatisticsRepository) Rows(ctx context.Context, stmt query.Statement) ([]domain.StatRow, error) {
	args := m.Called(ctx, stmt)
	if v := args.Get(0); v != nil {
		return v.([]domain.StatRow), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Mock Session Repository ---

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*domain.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionRepository) Save(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// --- Mock Profile Repository ---

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) Create(ctx context.Context, p *domain.UserProfile) error {
	return m.Called(ctx, p).Error(0)
}

// --- Mock Recommendation Repository ---

type mockRecommendationRepository struct {
	mock.Mock
}

func (m *mockRecommendationRepository) Record(ctx context.Context, userID, carID int64) (*domain.RecommendationRecord, error) {
	args := m.Called(ctx, userID, carID)
	if v := args.Get(0); v != nil {
		return v.(*domain.RecommendationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecommendationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.RecommendationRecord, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]domain.RecommendationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishRecommendationRecorded(ctx context.Context, rec *domain.RecommendationRecord, car *domain.Vehicle) error {
	return m.Called(ctx, rec, car).Error(0)
}
