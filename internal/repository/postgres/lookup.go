package postgres

import (
	"context"
	"fmt"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/pkg/database"
)

const (
	distinctBodyTypesSQL = `
		SELECT DISTINCT bt.body_type_category
		FROM body_type_info bt
		JOIN car_info c ON bt.body_name = c.car_body_type
		ORDER BY bt.body_type_category`

	distinctFuelTypesSQL = `
		SELECT DISTINCT f.fuel_type_name
		FROM fuel_type_info f
		JOIN car_info c ON f.fuel_type_id = c.car_fuel_type
		ORDER BY f.fuel_type_name`

	distinctBrandsSQL = `
		SELECT DISTINCT brand_name
		FROM brand_info
		ORDER BY brand_name`

	jobsSQL = `
		SELECT job_id, job_name
		FROM job_type_info
		ORDER BY job_id`
)

// LookupRepository reads the brand, body type, fuel type and job tables.
type LookupRepository struct {
	pool database.DBTX
}

// NewLookupRepository creates a new PostgreSQL-backed lookup repository.
func NewLookupRepository(pool database.DBTX) *LookupRepository {
	return &LookupRepository{pool: pool}
}

// FilterOptions returns every distinct filter value, each list prefixed with
// the "all" sentinel.
func (r *LookupRepository) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	bodyTypes, err := r.distinct(ctx, "DistinctBodyTypes", distinctBodyTypesSQL)
	if err != nil {
		return nil, err
	}
	fuelTypes, err := r.distinct(ctx, "DistinctFuelTypes", distinctFuelTypesSQL)
	if err != nil {
		return nil, err
	}
	brands, err := r.distinct(ctx, "DistinctBrands", distinctBrandsSQL)
	if err != nil {
		return nil, err
	}
	jobs, err := r.jobs(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.FilterOptions{
		BodyTypes: domain.WithAll(bodyTypes),
		FuelTypes: domain.WithAll(fuelTypes),
		Brands:    domain.WithAll(brands),
		Jobs:      jobs,
	}, nil
}

func (r *LookupRepository) distinct(ctx context.Context, op, sql string) (_ []string, err error) {
	ctx, end := database.TraceQuery(ctx, op, sql)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, database.Classify(sql, err))
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", op, database.Classify(sql, err))
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, database.Classify(sql, err))
	}
	return values, nil
}

func (r *LookupRepository) jobs(ctx context.Context) (_ []domain.Job, err error) {
	ctx, end := database.TraceQuery(ctx, "ListJobs", jobsSQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, jobsSQL)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", database.Classify(jobsSQL, err))
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(&j.ID, &j.Name); err != nil {
			return nil, fmt.Errorf("scan job: %w", database.Classify(jobsSQL, err))
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", database.Classify(jobsSQL, err))
	}
	return jobs, nil
}
