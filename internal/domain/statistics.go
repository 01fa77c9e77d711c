package domain

import (
	"cmp"
	"slices"
)

// StatRow is one recommendation record joined with the profile and vehicle it
// links. JobName is empty when the profile has no matching job.
type StatRow struct {
	Age     int    `json:"age"`
	Gender  string `json:"gender"`
	JobName string `json:"job_name"`
	CarName string `json:"car_name"`
}

// Chart limits.
const (
	TopCarsPerAgeGroup = 3
	TopCarsPerGender   = 5
	TopCarsPerJob      = 3
)

// AgeGroups lists the charted age groups in order.
var AgeGroups = []string{"20대", "30대", "40대"}

// CarCount is a vehicle and how often it was recommended within a group.
type CarCount struct {
	CarName string `json:"car_name"`
	Count   int    `json:"count"`
}

// GroupSeries is the top vehicles of one category, for example one age group.
type GroupSeries struct {
	Group string       `json:"group"`
	Cars  []CarCount   `json:"cars"`
	Chart []ChartPoint `json:"chart"`
}

func newSeries(group string, cars []CarCount) GroupSeries {
	chart := make([]ChartPoint, len(cars))
	for i, c := range cars {
		chart[i] = ChartPoint{Category: c.CarName, Value: float64(c.Count)}
	}
	return GroupSeries{Group: group, Cars: cars, Chart: chart}
}

// Statistics holds every chart of the statistics view.
type Statistics struct {
	Total    int           `json:"total"`
	ByAge    []GroupSeries `json:"by_age"`
	ByGender []GroupSeries `json:"by_gender"`
	ByJob    []GroupSeries `json:"by_job"`
}

// Empty reports whether there is no history to chart.
func (s Statistics) Empty() bool {
	return s.Total == 0
}

// Aggregate builds every chart from raw rows. Groups with no rows are omitted.
func Aggregate(rows []StatRow) Statistics {
	stats := Statistics{
		Total:    len(rows),
		ByAge:    []GroupSeries{},
		ByGender: []GroupSeries{},
		ByJob:    []GroupSeries{},
	}

	for _, group := range AgeGroups {
		cars := topCars(rows, func(r StatRow) bool { return AgeGroup(r.Age) == group }, TopCarsPerAgeGroup)
		if len(cars) > 0 {
			stats.ByAge = append(stats.ByAge, newSeries(group, cars))
		}
	}

	for _, gender := range distinctGenders(rows) {
		cars := topCars(rows, func(r StatRow) bool { return r.Gender == gender }, TopCarsPerGender)
		stats.ByGender = append(stats.ByGender, newSeries(gender, cars))
	}

	for _, job := range JobOrder {
		cars := topCars(rows, func(r StatRow) bool { return r.JobName == job }, TopCarsPerJob)
		if len(cars) > 0 {
			stats.ByJob = append(stats.ByJob, newSeries(job, cars))
		}
	}
	return stats
}

// topCars counts matching rows per car and returns the n most frequent,
// ties broken by car name ascending.
func topCars(rows []StatRow, match func(StatRow) bool, n int) []CarCount {
	counts := make(map[string]int)
	for _, r := range rows {
		if match(r) {
			counts[r.CarName]++
		}
	}

	out := make([]CarCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, CarCount{CarName: name, Count: c})
	}
	slices.SortFunc(out, func(a, b CarCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.CarName, b.CarName)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// distinctGenders returns non-empty genders in first-seen order.
func distinctGenders(rows []StatRow) []string {
	var out []string
	for _, r := range rows {
		if r.Gender != "" && !slices.Contains(out, r.Gender) {
			out = append(out, r.Gender)
		}
	}
	return out
}
