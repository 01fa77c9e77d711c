package domain

import (
	"fmt"
	"time"
)

// Gender values accepted by the questionnaire.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Purpose values accepted by the questionnaire.
const (
	PurposeCommute  = "commute"
	PurposeTravel   = "travel"
	PurposeBusiness = "business"
	PurposeWeekend  = "weekend"
)

// Questionnaire bounds.
const (
	MinAge        = 20
	MaxAge        = 49
	MinBudget     = 1000
	MaxBudget     = 5000
	BudgetStep    = 500
	DefaultAge    = MinAge
	DefaultBudget = MinBudget
)

// ValidPurposes returns every purpose in questionnaire order.
func ValidPurposes() []string {
	return []string{PurposeCommute, PurposeTravel, PurposeBusiness, PurposeWeekend}
}

// UserProfile is one questionnaire submission. Profiles are append-only: a
// changed questionnaire is stored as a new row.
type UserProfile struct {
	ID          int64       `json:"id"`
	Age         int         `json:"age"`
	Gender      string      `json:"gender"`
	Purpose     string      `json:"purpose"`
	JobID       int         `json:"job_id"`
	Preferences Preferences `json:"preferences"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AgeGroup returns the decade label used by the statistics charts.
func AgeGroup(age int) string {
	if age < 20 || age > 49 {
		return ""
	}
	return fmt.Sprintf("%d대", age/10*10)
}

// RecommendationRecord links a profile to the vehicle shown to it.
type RecommendationRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	CarID     int64     `json:"car_id"`
	CreatedAt time.Time `json:"created_at"`
}
