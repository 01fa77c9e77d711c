package service

import (
	"context"
	"fmt"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/internal/repository"
)

// Ranker orders filtered vehicles by a profile's preferences. The first
// element of a ranking is the recommendation.
type Ranker struct {
	vehicles repository.VehicleRepository
	tieBreak bool
	limit    int
}

// NewRanker creates a ranker returning at most limit vehicles. With tieBreak
// the second and third preferences order vehicles that tie on the first.
func NewRanker(vehicles repository.VehicleRepository, tieBreak bool, limit int) *Ranker {
	return &Ranker{vehicles: vehicles, tieBreak: tieBreak, limit: limit}
}

// Ordering returns the sort keys applied for prefs.
func (r *Ranker) Ordering(prefs domain.Preferences) query.Ordering {
	if r.tieBreak {
		return query.OrderingFor(prefs.Ordered()...)
	}
	return query.OrderingFor(prefs.First)
}

// Rank returns matching vehicles in preference order. An empty slice means
// there is no recommendation, which is not an error.
func (r *Ranker) Rank(ctx context.Context, filter query.CatalogFilter, prefs domain.Preferences) ([]domain.Vehicle, error) {
	page, _ := query.Build(filter.Predicates(), r.Ordering(prefs), r.limit, 0)

	vehicles, err := r.vehicles.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("rank vehicles: %w", err)
	}
	return vehicles, nil
}
