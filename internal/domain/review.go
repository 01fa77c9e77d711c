package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ReviewSummary is one car_review_info row joined with its vehicle's brand and
// body category. The store may hold several rows for the same CarName.
type ReviewSummary struct {
	ID           int64        `json:"id"`
	CarName      string       `json:"car_name"`
	AvgScore     float64      `json:"avg_score"`
	Respondents  int          `json:"respondents"`
	GraphInfo    string       `json:"graph_info"`
	BrandName    string       `json:"brand_name"`
	BodyCategory string       `json:"body_category"`
	Breakdown    []ChartPoint `json:"breakdown"`
}

// Comment is a user comment attached to a review.
type Comment struct {
	ID        int64     `json:"id"`
	ReviewID  int64     `json:"review_id"`
	Nickname  string    `json:"nickname"`
	Score     float64   `json:"score"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChartPoint is one (category, value) pair handed to the charting client.
type ChartPoint struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// BreakdownIssue describes one breakdown entry that could not be parsed.
type BreakdownIssue struct {
	Entry  string
	Reason string
}

// ParseBreakdown parses a graph_info string of the form
// "label\nvalue,label\nvalue". Entries without exactly one label and one
// finite numeric value are skipped and reported as issues; the remaining
// points keep their input order.
func ParseBreakdown(raw string) ([]ChartPoint, []BreakdownIssue) {
	var (
		points []ChartPoint
		issues []BreakdownIssue
	)
	if strings.TrimSpace(raw) == "" {
		return points, issues
	}

	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), "\n")
		if len(parts) != 2 {
			issues = append(issues, BreakdownIssue{Entry: entry, Reason: "expected label and value"})
			continue
		}
		label := strings.TrimSpace(parts[0])
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			issues = append(issues, BreakdownIssue{Entry: entry, Reason: "value is not a number"})
			continue
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			issues = append(issues, BreakdownIssue{Entry: entry, Reason: "value is not finite"})
			continue
		}
		points = append(points, ChartPoint{Category: label, Value: value})
	}
	return points, issues
}

// DedupByCarName keeps the first row seen for each CarName, preserving order.
func DedupByCarName(rows []ReviewSummary) []ReviewSummary {
	seen := make(map[string]struct{}, len(rows))
	out := make([]ReviewSummary, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.CarName]; ok {
			continue
		}
		seen[r.CarName] = struct{}{}
		out = append(out, r)
	}
	return out
}

// ReviewDetail is the expanded view of one vehicle identity: every stored
// review row plus the comments attached to any of them.
type ReviewDetail struct {
	CarName  string          `json:"car_name"`
	Reviews  []ReviewSummary `json:"reviews"`
	Comments []Comment       `json:"comments"`
}
