package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
)

// VehicleRepository executes catalog statements built by the query package.
type VehicleRepository interface {
	// List runs a page statement and scans every row into a vehicle.
	List(ctx context.Context, stmt query.Statement) ([]domain.Vehicle, error)

	// Count runs a companion count statement.
	Count(ctx context.Context, stmt query.Statement) (int, error)

	// GetByName retrieves one vehicle by its display name.
	GetByName(ctx context.Context, name string) (*domain.Vehicle, error)
}

// LookupRepository reads the immutable id to name tables.
type LookupRepository interface {
	// FilterOptions returns the distinct values offered by the browsers.
	FilterOptions(ctx context.Context) (*domain.FilterOptions, error)
}

// ProfileRepository persists questionnaire submissions.
type ProfileRepository interface {
	// Create inserts a new profile and sets its ID and CreatedAt.
	Create(ctx context.Context, profile *domain.UserProfile) error
}

// RecommendationRepository persists the append-only recommendation history.
type RecommendationRepository interface {
	// Record appends a (user, vehicle) record.
	Record(ctx context.Context, userID, carID int64) (*domain.RecommendationRecord, error)

	// ListByUser returns every record of a profile, oldest first.
	ListByUser(ctx context.Context, userID int64) ([]domain.RecommendationRecord, error)
}

// ReviewRepository reads reviews and their comments.
type ReviewRepository interface {
	// List runs a review statement. Rows are returned as stored, duplicates included.
	List(ctx context.Context, stmt query.Statement) ([]domain.ReviewSummary, error)

	// Comments returns every comment attached to any review of carName.
	Comments(ctx context.Context, carName string) ([]domain.Comment, error)
}

// StatisticsRepository reads the joined recommendation history.
type StatisticsRepository interface {
	Rows(ctx context.Context, stmt query.Statement) ([]domain.StatRow, error)
}

// SessionRepository stores per-client session state.
type SessionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
}
