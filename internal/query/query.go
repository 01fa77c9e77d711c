// Package query assembles parameterized SELECT statements from optional
// filter criteria. Values are always bound as $n parameters; column names and
// sort directions come only from fixed whitelists.
package query

import (
	"fmt"
	"strings"

	"github.com/chageun/carpick/internal/domain"
	apperrors "github.com/chageun/carpick/pkg/errors"
)

// Dimension is a filterable attribute.
type Dimension string

const (
	DimPrice      Dimension = "price"
	DimBodyType   Dimension = "body_type"
	DimFuelType   Dimension = "fuel_type"
	DimBrand      Dimension = "brand"
	DimEfficiency Dimension = "efficiency"
	DimCarName    Dimension = "car_name"
	DimGender     Dimension = "gender"
	DimJob        Dimension = "job"
	DimAge        Dimension = "age"
)

var dimensionColumns = map[Dimension]string{
	DimPrice:      "c.car_price",
	DimBodyType:   "bt.body_type_category",
	DimFuelType:   "f.fuel_type_name",
	DimBrand:      "b.brand_name",
	DimEfficiency: "c.car_fuel_efficiency",
	DimCarName:    "c.car_full_name",
	DimGender:     "u.user_gender",
	DimJob:        "j.job_name",
	DimAge:        "u.user_age",
}

// Op is a comparison applied by a Predicate.
type Op int

const (
	OpEq Op = iota
	OpGte
	OpBetween
)

// Predicate restricts one dimension. Eq and Gte take one value, Between takes
// an inclusive low and high.
type Predicate struct {
	Dimension Dimension
	Op        Op
	Values    []any
}

// Eq matches dim equal to v.
func Eq(dim Dimension, v any) Predicate {
	return Predicate{Dimension: dim, Op: OpEq, Values: []any{v}}
}

// Gte matches dim greater than or equal to v.
func Gte(dim Dimension, v any) Predicate {
	return Predicate{Dimension: dim, Op: OpGte, Values: []any{v}}
}

// Between matches dim within [lo, hi].
func Between(dim Dimension, lo, hi any) Predicate {
	return Predicate{Dimension: dim, Op: OpBetween, Values: []any{lo, hi}}
}

// EqUnlessAll returns an Eq predicate, or false when v is the "all" sentinel.
func EqUnlessAll(dim Dimension, v string) (Predicate, bool) {
	if domain.IsAll(v) {
		return Predicate{}, false
	}
	return Eq(dim, v), true
}

// SortKey is a ranking criterion with a fixed column and direction.
type SortKey string

const (
	SortEfficiency SortKey = "efficiency"
	SortPrice      SortKey = "price"
	SortRating     SortKey = "rating"
	SortSize       SortKey = "size"
	SortHorsepower SortKey = "horsepower"
)

var sortClauses = map[SortKey]string{
	SortEfficiency: "c.car_fuel_efficiency ASC NULLS LAST",
	SortPrice:      "c.car_price ASC",
	SortRating:     "c.car_rating DESC NULLS LAST",
	SortSize:       "c.car_size DESC NULLS LAST",
	SortHorsepower: "c.car_horsepower DESC",
}

// ParseSortKey validates s as a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(s)
	if _, ok := sortClauses[k]; !ok {
		return "", fmt.Errorf("unknown sort key %q: %w", s, apperrors.ErrInvalidInput)
	}
	return k, nil
}

// Ordering is a list of sort keys: the first is primary, the rest break ties.
type Ordering []SortKey

// OrderingFor maps ranked preferences to an Ordering.
func OrderingFor(prefs ...domain.Preference) Ordering {
	out := make(Ordering, 0, len(prefs))
	for _, p := range prefs {
		if p != "" {
			out = append(out, SortKey(p))
		}
	}
	return out
}

func (o Ordering) clause() string {
	parts := make([]string, 0, len(o))
	seen := make(map[SortKey]bool, len(o))
	for _, k := range o {
		c, ok := sortClauses[k]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		parts = append(parts, c)
	}
	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// Statement is SQL text plus its bind arguments.
type Statement struct {
	SQL        string
	Args       []any
	Predicates int
}

// VehicleColumns is the column list of Build's page statement, in scan order.
const VehicleColumns = "c.car_id, c.car_brand, b.brand_name, c.car_full_name, c.car_price, " +
	"c.car_fuel_efficiency, c.car_horsepower, c.car_engine_type, c.car_body_type, bt.body_type_category, " +
	"c.car_fuel_type, f.fuel_type_name, c.car_img_url, c.car_rating, c.car_size"

const vehicleFrom = " FROM car_info c" +
	" JOIN brand_info b ON c.car_brand = b.brand_id" +
	" JOIN body_type_info bt ON c.car_body_type = bt.body_name" +
	" JOIN fuel_type_info f ON c.car_fuel_type = f.fuel_type_id"

// Build returns the catalog page statement and its companion count statement.
// A limit of zero or less omits LIMIT and OFFSET.
func Build(filters []Predicate, ordering Ordering, limit, offset int) (Statement, Statement) {
	return build("SELECT "+VehicleColumns+vehicleFrom, filters, ordering.clause(), limit, offset)
}

func build(base string, filters []Predicate, orderBy string, limit, offset int) (Statement, Statement) {
	where, args, n := fold(filters, 1)
	selectSQL := base + where

	count := Statement{
		SQL:        "SELECT COUNT(*) FROM (" + selectSQL + ") AS t",
		Args:       args,
		Predicates: n,
	}

	pageSQL := selectSQL + orderBy
	pageArgs := append([]any(nil), args...)
	if limit > 0 {
		argIdx := len(args) + 1
		pageSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		pageArgs = append(pageArgs, limit, max(offset, 0))
	}

	return Statement{SQL: pageSQL, Args: pageArgs, Predicates: n}, count
}

// fold ANDs predicates into a WHERE clause with placeholders numbered from
// start. Predicates on dimensions outside the whitelist are dropped.
func fold(filters []Predicate, start int) (string, []any, int) {
	var (
		conditions []string
		args       []any
	)
	argIdx := start

	for _, p := range filters {
		col, ok := dimensionColumns[p.Dimension]
		if !ok {
			continue
		}
		switch {
		case p.Op == OpEq && len(p.Values) == 1:
			conditions = append(conditions, fmt.Sprintf("%s = $%d", col, argIdx))
		case p.Op == OpGte && len(p.Values) == 1:
			conditions = append(conditions, fmt.Sprintf("%s >= $%d", col, argIdx))
		case p.Op == OpBetween && len(p.Values) == 2:
			conditions = append(conditions, fmt.Sprintf("%s BETWEEN $%d AND $%d", col, argIdx, argIdx+1))
		default:
			continue
		}
		args = append(args, p.Values...)
		argIdx += len(p.Values)
	}

	if len(conditions) == 0 {
		return "", args, 0
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, len(conditions)
}

// BuildVehicleByName selects one vehicle by display name. When the catalog
// holds several rows with that name the lowest id wins.
func BuildVehicleByName(name string) Statement {
	stmt, _ := build("SELECT "+VehicleColumns+vehicleFrom, []Predicate{Eq(DimCarName, name)}, " ORDER BY c.car_id", 1, 0)
	return stmt
}
