package postgres

import (
	"context"
	"fmt"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/pkg/database"
)

const (
	insertRecommendationSQL = `
		INSERT INTO car_recommendation_info (user_id, car_id)
		VALUES ($1, $2)
		RETURNING recommendation_id, created_at`

	listRecommendationsSQL = `
		SELECT recommendation_id, user_id, car_id, created_at
		FROM car_recommendation_info
		WHERE user_id = $1
		ORDER BY recommendation_id`
)

// RecommendationRepository implements the recommendation history using PostgreSQL.
type RecommendationRepository struct {
	pool database.DBTX
}

// NewRecommendationRepository creates a new PostgreSQL-backed recommendation repository.
func NewRecommendationRepository(pool database.DBTX) *RecommendationRepository {
	return &RecommendationRepository{pool: pool}
}

// Record appends a recommendation record.
func (r *RecommendationRepository) Record(ctx context.Context, userID, carID int64) (_ *domain.RecommendationRecord, err error) {
	ctx, end := database.TraceQuery(ctx, "RecordRecommendation", insertRecommendationSQL)
	defer func() { end(err) }()

	rec := domain.RecommendationRecord{UserID: userID, CarID: carID}
	if err := r.pool.QueryRow(ctx, insertRecommendationSQL, userID, carID).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert recommendation: %w", database.Classify(insertRecommendationSQL, err))
	}
	return &rec, nil
}

// ListByUser returns the records of one profile, oldest first.
func (r *RecommendationRepository) ListByUser(ctx context.Context, userID int64) (_ []domain.RecommendationRecord, err error) {
	ctx, end := database.TraceQuery(ctx, "ListRecommendations", listRecommendationsSQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listRecommendationsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", database.Classify(listRecommendationsSQL, err))
	}
	defer rows.Close()

	var records []domain.RecommendationRecord
	for rows.Next() {
		var rec domain.RecommendationRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CarID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", database.Classify(listRecommendationsSQL, err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", database.Classify(listRecommendationsSQL, err))
	}
	return records, nil
}
