package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/pkg/database"
	apperrors "github.com/chageun/carpick/pkg/errors"
)

// VehicleRepository implements catalog reads using PostgreSQL.
type VehicleRepository struct {
	pool database.DBTX
}

// NewVehicleRepository creates a new PostgreSQL-backed vehicle repository.
func NewVehicleRepository(pool database.DBTX) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

// List runs a page statement built by query.Build.
func (r *VehicleRepository) List(ctx context.Context, stmt query.Statement) (_ []domain.Vehicle, err error) {
	ctx, end := database.TraceQuery(ctx, "ListVehicles", stmt.SQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", database.Classify(stmt.SQL, err))
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", database.Classify(stmt.SQL, err))
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", database.Classify(stmt.SQL, err))
	}

	return vehicles, nil
}

// Count runs a companion count statement built by query.Build.
func (r *VehicleRepository) Count(ctx context.Context, stmt query.Statement) (_ int, err error) {
	ctx, end := database.TraceQuery(ctx, "CountVehicles", stmt.SQL)
	defer func() { end(err) }()

	var total int
	if err := r.pool.QueryRow(ctx, stmt.SQL, stmt.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count vehicles: %w", database.Classify(stmt.SQL, err))
	}
	return total, nil
}

// GetByName retrieves a vehicle by car_full_name.
func (r *VehicleRepository) GetByName(ctx context.Context, name string) (_ *domain.Vehicle, err error) {
	stmt := query.BuildVehicleByName(name)

	ctx, end := database.TraceQuery(ctx, "GetVehicleByName", stmt.SQL)
	defer func() { end(err) }()

	v, err := scanVehicle(r.pool.QueryRow(ctx, stmt.SQL, stmt.Args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("vehicle", name)
		}
		return nil, fmt.Errorf("get vehicle by name: %w", database.Classify(stmt.SQL, err))
	}
	return &v, nil
}

func scanVehicle(row pgx.Row) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(
		&v.ID,
		&v.BrandID,
		&v.BrandName,
		&v.Name,
		&v.Price,
		&v.Efficiency,
		&v.Horsepower,
		&v.Engine,
		&v.BodyType,
		&v.BodyCategory,
		&v.FuelTypeID,
		&v.FuelName,
		&v.ImageURL,
		&v.Rating,
		&v.Size,
	)
	return v, err
}
