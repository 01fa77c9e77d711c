package postgres

import (
	"context"
	"fmt"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/pkg/database"
)

const insertProfileSQL = `
	INSERT INTO user_info (user_age, user_gender, user_purpose, user_job, pref_first, pref_second, pref_third)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING user_id, created_at`

// ProfileRepository implements profile persistence using PostgreSQL.
type ProfileRepository struct {
	pool database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool database.DBTX) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Create inserts a profile row. Profiles are never updated.
func (r *ProfileRepository) Create(ctx context.Context, p *domain.UserProfile) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateProfile", insertProfileSQL)
	defer func() { end(err) }()

	err = r.pool.QueryRow(ctx, insertProfileSQL,
		p.Age,
		p.Gender,
		p.Purpose,
		p.JobID,
		string(p.Preferences.First),
		string(p.Preferences.Second),
		string(p.Preferences.Third),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert profile: %w", database.Classify(insertProfileSQL, err))
	}
	return nil
}
