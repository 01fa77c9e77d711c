package postgres

import (
	"context"
	"fmt"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/pkg/database"
)

// StatisticsRepository reads the recommendation history for the charts.
type StatisticsRepository struct {
	pool database.DBTX
}

// NewStatisticsRepository creates a new PostgreSQL-backed statistics repository.
func NewStatisticsRepository(pool database.DBTX) *StatisticsRepository {
	return &StatisticsRepository{pool: pool}
}

// Rows runs a statement built by query.BuildStatistics.
func (r *StatisticsRepository) Rows(ctx context.Context, stmt query.Statement) (_ []domain.StatRow, err error) {
	ctx, end := database.TraceQuery(ctx, "ListStatRows", stmt.SQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("list stat rows: %w", database.Classify(stmt.SQL, err))
	}
	defer rows.Close()

	var out []domain.StatRow
	for rows.Next() {
		var s domain.StatRow
		if err := rows.Scan(&s.Age, &s.Gender, &s.JobName, &s.CarName); err != nil {
			return nil, fmt.Errorf("scan stat row: %w", database.Classify(stmt.SQL, err))
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stat rows: %w", database.Classify(stmt.SQL, err))
	}
	return out, nil
}
