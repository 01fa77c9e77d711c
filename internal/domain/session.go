package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/chageun/carpick/pkg/errors"
)

// Stage is the screen a session is currently on.
type Stage string

const (
	StageHome           Stage = "home"
	StageQuestionnaire  Stage = "questionnaire"
	StageRecommendation Stage = "recommendation"
	StageCatalog        Stage = "catalog"
	StageDetail         Stage = "detail"
	StageReviews        Stage = "reviews"
	StageStatistics     Stage = "statistics"
)

// CatalogSelection is the catalog browser's filter state as chosen by the
// client. Bucket values are resolved by the query package.
type CatalogSelection struct {
	BodyType   string `json:"body_type"`
	FuelType   string `json:"fuel_type"`
	Brand      string `json:"brand"`
	Price      string `json:"price"`
	Efficiency string `json:"efficiency"`
}

// ReviewSelection is the review browser's filter and sort state.
type ReviewSelection struct {
	BodyType string `json:"body_type"`
	Brand    string `json:"brand"`
	Price    string `json:"price"`
	Sort     string `json:"sort"`
}

// RecordKey identifies a recommendation that has already been recorded.
type RecordKey struct {
	UserID int64 `json:"user_id"`
	CarID  int64 `json:"car_id"`
}

// Session is the per-client UI state. It replaces process-wide mutable state:
// every request loads it, applies one event and saves it back.
type Session struct {
	ID          uuid.UUID   `json:"id"`
	Age         int         `json:"age"`
	Gender      string      `json:"gender"`
	Purpose     string      `json:"purpose"`
	JobID       int         `json:"job_id"`
	MinBudget   int         `json:"min_budget"`
	MaxBudget   int         `json:"max_budget"`
	FuelType    string      `json:"fuel_type"`
	BodyType    string      `json:"body_type"`
	Preferences Preferences `json:"preferences"`

	Stage        Stage            `json:"stage"`
	CatalogPage  int              `json:"catalog_page"`
	ReviewPage   int              `json:"review_page"`
	Catalog      CatalogSelection `json:"catalog"`
	Reviews      ReviewSelection  `json:"reviews"`
	Expanded     []string         `json:"expanded"`
	SelectedCar  string           `json:"selected_car,omitempty"`
	ProfileID    int64            `json:"profile_id,omitempty"`
	ProfileDirty bool             `json:"profile_dirty"`
	Recommended  *Vehicle         `json:"recommended,omitempty"`
	LastRecorded *RecordKey       `json:"last_recorded,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewSession returns a session with default state and a fresh id.
func NewSession() *Session {
	s := &Session{ID: uuid.New()}
	s.Reset()
	return s
}

// Reset restores every field to its default, keeping the id.
func (s *Session) Reset() {
	*s = Session{
		ID:          s.ID,
		Age:         DefaultAge,
		MinBudget:   MinBudget,
		MaxBudget:   MaxBudget,
		Stage:       StageHome,
		CatalogPage: 1,
		ReviewPage:  1,
		Expanded:    []string{},
		UpdatedAt:   time.Now().UTC(),
	}
}

// MissingFields lists questionnaire fields that must be set before a
// recommendation can be requested.
func (s *Session) MissingFields() []string {
	var missing []string
	if s.Gender == "" {
		missing = append(missing, "gender")
	}
	if s.Purpose == "" {
		missing = append(missing, "purpose")
	}
	if s.JobID == 0 {
		missing = append(missing, "job")
	}
	if s.FuelType == "" {
		missing = append(missing, "fuel_type")
	}
	if s.BodyType == "" {
		missing = append(missing, "body_type")
	}
	if s.Preferences.First == "" {
		missing = append(missing, "first")
	}
	if s.Preferences.Second == "" {
		missing = append(missing, "second")
	}
	if s.Preferences.Third == "" {
		missing = append(missing, "third")
	}
	return missing
}

// Profile returns the questionnaire answers as a profile ready to be stored.
func (s *Session) Profile() UserProfile {
	return UserProfile{
		Age:         s.Age,
		Gender:      s.Gender,
		Purpose:     s.Purpose,
		JobID:       s.JobID,
		Preferences: s.Preferences,
	}
}

// IsExpanded reports whether carName's full review list is open.
func (s *Session) IsExpanded(carName string) bool {
	return slices.Contains(s.Expanded, carName)
}

// NeedsRecord reports whether showing car to the current profile should
// append a recommendation record. A dirty profile has not been stored yet,
// so nothing can be attributed to it.
func (s *Session) NeedsRecord(carID int64) bool {
	if s.ProfileID == 0 || s.ProfileDirty {
		return false
	}
	return s.LastRecorded == nil || s.LastRecorded.UserID != s.ProfileID || s.LastRecorded.CarID != carID
}

// Apply mutates the session according to ev. It performs no I/O; store work
// triggered by the event is the caller's job.
func (s *Session) Apply(ev Event) error {
	var err error
	switch ev.Type {
	case EventQuestionnaireFieldChanged:
		err = s.setQuestionnaireField(ev.Field, ev.Value)
	case EventFilterChanged:
		err = s.setFilter(ev.Field, ev.Value)
	case EventPageRequested:
		err = s.requestPage(ev.View, ev.Target)
	case EventRecommendationRequested:
		if missing := s.MissingFields(); len(missing) > 0 {
			return apperrors.InvalidInput(fmt.Sprintf("questionnaire incomplete: missing %v", missing))
		}
		s.Stage = StageRecommendation
	case EventDetailRequested:
		if ev.Vehicle == "" {
			return apperrors.InvalidInput("vehicle is required")
		}
		s.SelectedCar = ev.Vehicle
		s.Stage = StageDetail
	case EventReviewExpandToggled:
		if ev.Vehicle == "" {
			return apperrors.InvalidInput("vehicle is required")
		}
		s.toggleExpanded(ev.Vehicle)
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown event type %q", ev.Type))
	}
	if err != nil {
		return err
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Session) setQuestionnaireField(field, value string) error {
	switch field {
	case "age":
		n, err := parseBounded(field, value, MinAge, MaxAge)
		if err != nil {
			return err
		}
		s.Age = n
	case "gender":
		if value != GenderMale && value != GenderFemale {
			return apperrors.InvalidInput(fmt.Sprintf("gender must be %s or %s", GenderMale, GenderFemale))
		}
		s.Gender = value
	case "purpose":
		if !slices.Contains(ValidPurposes(), value) {
			return apperrors.InvalidInput(fmt.Sprintf("purpose must be one of %v", ValidPurposes()))
		}
		s.Purpose = value
	case "job":
		n, err := parseBounded(field, value, 1, len(JobOrder))
		if err != nil {
			return err
		}
		s.JobID = n
	case "min_budget", "max_budget":
		n, err := parseBounded(field, value, MinBudget, MaxBudget)
		if err != nil {
			return err
		}
		if (n-MinBudget)%BudgetStep != 0 {
			return apperrors.InvalidInput(fmt.Sprintf("%s must be a multiple of %d", field, BudgetStep))
		}
		lo, hi := s.MinBudget, s.MaxBudget
		if field == "min_budget" {
			lo = n
		} else {
			hi = n
		}
		if lo > hi {
			return apperrors.InvalidInput("min_budget must not exceed max_budget")
		}
		s.MinBudget, s.MaxBudget = lo, hi
	case "fuel_type":
		s.FuelType = value
	case "body_type":
		s.BodyType = value
	case "first", "second", "third":
		if err := s.setPreference(field, value); err != nil {
			return err
		}
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown questionnaire field %q", field))
	}

	s.Stage = StageQuestionnaire
	s.Recommended = nil
	if s.ProfileID != 0 {
		s.ProfileDirty = true
	}
	return nil
}

func (s *Session) setPreference(rank, value string) error {
	pref, err := ParsePreference(value)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	next := s.Preferences
	switch rank {
	case "first":
		next.First = pref
	case "second":
		next.Second = pref
	case "third":
		next.Third = pref
	}
	if err := next.Validate(); err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	s.Preferences = next
	return nil
}

func (s *Session) setFilter(field, value string) error {
	switch field {
	case "catalog.body_type":
		s.Catalog.BodyType = value
	case "catalog.fuel_type":
		s.Catalog.FuelType = value
	case "catalog.brand":
		s.Catalog.Brand = value
	case "catalog.price":
		s.Catalog.Price = value
	case "catalog.efficiency":
		s.Catalog.Efficiency = value
	case "reviews.body_type":
		s.Reviews.BodyType = value
	case "reviews.brand":
		s.Reviews.Brand = value
	case "reviews.price":
		s.Reviews.Price = value
	case "reviews.sort":
		s.Reviews.Sort = value
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown filter field %q", field))
	}

	if strings.HasPrefix(field, "catalog.") {
		s.CatalogPage = 1
		s.Stage = StageCatalog
	} else {
		s.ReviewPage = 1
		s.Stage = StageReviews
	}
	return nil
}

func (s *Session) requestPage(view string, target int) error {
	switch Stage(view) {
	case StageCatalog:
		if target < 1 {
			return apperrors.InvalidInput("target page must be at least 1")
		}
		s.CatalogPage = target
	case StageReviews:
		if target < 1 {
			return apperrors.InvalidInput("target page must be at least 1")
		}
		s.ReviewPage = target
	case StageHome, StageQuestionnaire, StageStatistics, StageRecommendation:
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown view %q", view))
	}
	s.Stage = Stage(view)
	return nil
}

func (s *Session) toggleExpanded(carName string) {
	if i := slices.Index(s.Expanded, carName); i >= 0 {
		s.Expanded = slices.Delete(s.Expanded, i, i+1)
		return
	}
	s.Expanded = append(s.Expanded, carName)
}

func parseBounded(field, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < lo || n > hi {
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer between %d and %d", field, lo, hi))
	}
	return n, nil
}
