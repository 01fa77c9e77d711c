package query

import (
	"fmt"

	"github.com/chageun/carpick/internal/domain"
	apperrors "github.com/chageun/carpick/pkg/errors"
)

// ReviewSort orders review summaries.
type ReviewSort string

const (
	ReviewRatingDesc      ReviewSort = "rating_desc"
	ReviewRatingAsc       ReviewSort = "rating_asc"
	ReviewRespondentsDesc ReviewSort = "respondents_desc"
)

var reviewSortClauses = map[ReviewSort]string{
	ReviewRatingDesc:      " ORDER BY r.avg_score DESC, r.review_id",
	ReviewRatingAsc:       " ORDER BY r.avg_score ASC, r.review_id",
	ReviewRespondentsDesc: " ORDER BY r.survey_people_count DESC, r.review_id",
}

// ParseReviewSort validates s, defaulting to rating_desc when empty.
func ParseReviewSort(s string) (ReviewSort, error) {
	if s == "" {
		return ReviewRatingDesc, nil
	}
	rs := ReviewSort(s)
	if _, ok := reviewSortClauses[rs]; !ok {
		return "", fmt.Errorf("unknown review sort %q: %w", s, apperrors.ErrInvalidInput)
	}
	return rs, nil
}

// ReviewFilter holds optional review browser criteria.
type ReviewFilter struct {
	BodyType string
	Brand    string
	MinPrice *int
	MaxPrice *int
}

// Predicates returns one predicate per restricted dimension.
func (f ReviewFilter) Predicates() []Predicate {
	var out []Predicate
	if p, ok := EqUnlessAll(DimBodyType, f.BodyType); ok {
		out = append(out, p)
	}
	if p, ok := EqUnlessAll(DimBrand, f.Brand); ok {
		out = append(out, p)
	}
	if p, ok := rangeOf(DimPrice, f.MinPrice, f.MaxPrice); ok {
		out = append(out, p)
	}
	return out
}

// ReviewFilterFrom resolves a session's review selection.
func ReviewFilterFrom(sel domain.ReviewSelection) (ReviewFilter, ReviewSort, error) {
	lo, hi, err := ParsePriceBucket(sel.Price)
	if err != nil {
		return ReviewFilter{}, "", err
	}
	sort, err := ParseReviewSort(sel.Sort)
	if err != nil {
		return ReviewFilter{}, "", err
	}
	return ReviewFilter{BodyType: sel.BodyType, Brand: sel.Brand, MinPrice: lo, MaxPrice: hi}, sort, nil
}

const reviewSelect = "SELECT r.review_id, r.car_name, r.avg_score, r.survey_people_count, r.graph_info, " +
	"b.brand_name, bt.body_type_category" +
	" FROM car_review_info r" +
	" JOIN car_info c ON r.car_name = c.car_full_name" +
	" JOIN brand_info b ON c.car_brand = b.brand_id" +
	" JOIN body_type_info bt ON c.car_body_type = bt.body_name"

// BuildReviewSummaries returns the review rows matching filter in sort order.
// Rows are not deduplicated.
func BuildReviewSummaries(filter ReviewFilter, sort ReviewSort) Statement {
	clause, ok := reviewSortClauses[sort]
	if !ok {
		clause = reviewSortClauses[ReviewRatingDesc]
	}
	stmt, _ := build(reviewSelect, filter.Predicates(), clause, 0, 0)
	return stmt
}

// BuildReviewsByCar returns every review row for one vehicle identity.
func BuildReviewsByCar(carName string) Statement {
	stmt, _ := build(reviewSelect, []Predicate{Eq(DimCarName, carName)}, " ORDER BY r.review_id", 0, 0)
	return stmt
}

// StatsFilter holds optional statistics criteria.
type StatsFilter struct {
	Gender string
	Job    string
	MinAge *int
	MaxAge *int
}

// Predicates returns one predicate per restricted dimension.
func (f StatsFilter) Predicates() []Predicate {
	var out []Predicate
	if p, ok := EqUnlessAll(DimGender, f.Gender); ok {
		out = append(out, p)
	}
	if p, ok := EqUnlessAll(DimJob, f.Job); ok {
		out = append(out, p)
	}
	if p, ok := rangeOf(DimAge, f.MinAge, f.MaxAge); ok {
		out = append(out, p)
	}
	return out
}

const statsSelect = "SELECT u.user_age, u.user_gender, COALESCE(j.job_name, ''), c.car_full_name" +
	" FROM car_recommendation_info r" +
	" JOIN user_info u ON r.user_id = u.user_id" +
	" JOIN car_info c ON r.car_id = c.car_id" +
	" LEFT JOIN job_type_info j ON u.user_job = j.job_id"

// BuildStatistics returns the recommendation history matching filter.
func BuildStatistics(filter StatsFilter) Statement {
	stmt, _ := build(statsSelect, filter.Predicates(), " ORDER BY r.recommendation_id", 0, 0)
	return stmt
}
