package postgres

import (
	"context"
	"fmt"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/pkg/database"
)

const commentsByCarSQL = `
	SELECT cm.comment_id, cm.review_id, cm.nickname, cm.comment_avg_score, cm.comment_text, cm.created_at
	FROM comment_info cm
	JOIN car_review_info r ON r.review_id = cm.review_id
	WHERE r.car_name = $1
	ORDER BY cm.created_at, cm.comment_id`

// ReviewRepository implements review reads using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// List runs a statement built by query.BuildReviewSummaries or
// query.BuildReviewsByCar. Breakdowns are left unparsed.
func (r *ReviewRepository) List(ctx context.Context, stmt query.Statement) (_ []domain.ReviewSummary, err error) {
	ctx, end := database.TraceQuery(ctx, "ListReviews", stmt.SQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", database.Classify(stmt.SQL, err))
	}
	defer rows.Close()

	var reviews []domain.ReviewSummary
	for rows.Next() {
		var rv domain.ReviewSummary
		if err := rows.Scan(
			&rv.ID,
			&rv.CarName,
			&rv.AvgScore,
			&rv.Respondents,
			&rv.GraphInfo,
			&rv.BrandName,
			&rv.BodyCategory,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", database.Classify(stmt.SQL, err))
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", database.Classify(stmt.SQL, err))
	}

	return reviews, nil
}

// Comments returns the comments of every review stored for carName.
func (r *ReviewRepository) Comments(ctx context.Context, carName string) (_ []domain.Comment, err error) {
	ctx, end := database.TraceQuery(ctx, "ListComments", commentsByCarSQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, commentsByCarSQL, carName)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", database.Classify(commentsByCarSQL, err))
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.Nickname, &c.Score, &c.Text, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", database.Classify(commentsByCarSQL, err))
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", database.Classify(commentsByCarSQL, err))
	}

	return comments, nil
}
