package query

import (
	"fmt"

	"github.com/chageun/carpick/internal/domain"
	apperrors "github.com/chageun/carpick/pkg/errors"
)

// CatalogFilter holds optional catalog criteria. Empty strings and the "all"
// sentinel leave a dimension unrestricted; nil bounds are open.
type CatalogFilter struct {
	MinPrice      *int
	MaxPrice      *int
	BodyType      string
	FuelType      string
	Brand         string
	MinEfficiency *float64
}

// Predicates returns one predicate per restricted dimension.
func (f CatalogFilter) Predicates() []Predicate {
	var out []Predicate
	if p, ok := rangeOf(DimPrice, f.MinPrice, f.MaxPrice); ok {
		out = append(out, p)
	}
	for _, c := range []struct {
		dim Dimension
		v   string
	}{{DimBodyType, f.BodyType}, {DimFuelType, f.FuelType}, {DimBrand, f.Brand}} {
		if p, ok := EqUnlessAll(c.dim, c.v); ok {
			out = append(out, p)
		}
	}
	if f.MinEfficiency != nil {
		out = append(out, Gte(DimEfficiency, *f.MinEfficiency))
	}
	return out
}

func rangeOf(dim Dimension, lo, hi *int) (Predicate, bool) {
	switch {
	case lo != nil && hi != nil:
		return Between(dim, *lo, *hi), true
	case lo != nil:
		return Gte(dim, *lo), true
	case hi != nil:
		return Between(dim, 0, *hi), true
	}
	return Predicate{}, false
}

// Price buckets offered by the browsers.
const (
	Price1000s    = "1000s"
	Price2000s    = "2000s"
	Price3000s    = "3000s"
	Price4000Plus = "4000plus"
)

var priceBuckets = map[string][2]int{
	Price1000s:    {1000, 1999},
	Price2000s:    {2000, 2999},
	Price3000s:    {3000, 3999},
	Price4000Plus: {4000, 1_000_000},
}

// PriceBuckets returns bucket names in display order.
func PriceBuckets() []string {
	return []string{Price1000s, Price2000s, Price3000s, Price4000Plus}
}

// ParsePriceBucket resolves a bucket name to inclusive bounds. The "all"
// sentinel yields nil bounds.
func ParsePriceBucket(s string) (lo, hi *int, err error) {
	if domain.IsAll(s) {
		return nil, nil, nil
	}
	b, ok := priceBuckets[s]
	if !ok {
		return nil, nil, fmt.Errorf("unknown price bucket %q: %w", s, apperrors.ErrInvalidInput)
	}
	return &b[0], &b[1], nil
}

// Efficiency buckets offered by the catalog browser.
const (
	EfficiencyLe10   = "le10"
	Efficiency10to15 = "10to15"
	EfficiencyGe15   = "ge15"
)

var efficiencyFloors = map[string]float64{
	EfficiencyLe10:   0,
	Efficiency10to15: 10,
	EfficiencyGe15:   15,
}

// ParseEfficiencyBucket resolves a bucket name to its efficiency floor.
func ParseEfficiencyBucket(s string) (*float64, error) {
	if domain.IsAll(s) {
		return nil, nil
	}
	floor, ok := efficiencyFloors[s]
	if !ok {
		return nil, fmt.Errorf("unknown efficiency bucket %q: %w", s, apperrors.ErrInvalidInput)
	}
	return &floor, nil
}

// CatalogFilterFrom resolves a session's catalog selection.
func CatalogFilterFrom(sel domain.CatalogSelection) (CatalogFilter, error) {
	lo, hi, err := ParsePriceBucket(sel.Price)
	if err != nil {
		return CatalogFilter{}, err
	}
	eff, err := ParseEfficiencyBucket(sel.Efficiency)
	if err != nil {
		return CatalogFilter{}, err
	}
	return CatalogFilter{
		MinPrice:      lo,
		MaxPrice:      hi,
		BodyType:      sel.BodyType,
		FuelType:      sel.FuelType,
		Brand:         sel.Brand,
		MinEfficiency: eff,
	}, nil
}

// RecommendationFilter restricts the catalog to a questionnaire's budget,
// fuel type and body type.
func RecommendationFilter(s *domain.Session) CatalogFilter {
	lo, hi := s.MinBudget, s.MaxBudget
	return CatalogFilter{
		MinPrice: &lo,
		MaxPrice: &hi,
		BodyType: s.BodyType,
		FuelType: s.FuelType,
	}
}
