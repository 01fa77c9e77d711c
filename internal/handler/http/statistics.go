package http

import (
	"log/slog"
	"net/http"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/internal/service"
	"github.com/chageun/carpick/pkg/httputil"
	"github.com/chageun/carpick/pkg/validator"
)

// StatisticsHandler serves recommendation statistics.
type StatisticsHandler struct {
	service *service.StatisticsService
	logger  *slog.Logger
}

// NewStatisticsHandler creates a new statistics HTTP handler.
func NewStatisticsHandler(svc *service.StatisticsService, logger *slog.Logger) *StatisticsHandler {
	return &StatisticsHandler{service: svc, logger: logger}
}

var genderChoices = domain.AllSentinel + " " + domain.GenderMale + " " + domain.GenderFemale

type statisticsResponse struct {
	*domain.Statistics
	Notice any `json:"notice,omitempty"`
}

// GetStatistics handles GET /api/v1/statistics
func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	gender := q.Get("gender")
	if err := validator.Var("gender", gender, "omitempty,oneof="+genderChoices); err != nil {
		writeInvalidParam(w, "gender must be one of: all, male, female")
		return
	}

	minAge, err := optionalInt(r, "min_age")
	if err != nil {
		writeInvalidParam(w, err.Error())
		return
	}
	maxAge, err := optionalInt(r, "max_age")
	if err != nil {
		writeInvalidParam(w, err.Error())
		return
	}
	if minAge != nil && maxAge != nil && *minAge > *maxAge {
		writeInvalidParam(w, "min_age must not exceed max_age")
		return
	}

	filter := query.StatsFilter{
		Gender: gender,
		Job:    q.Get("job"),
		MinAge: minAge,
		MaxAge: maxAge,
	}

	stats, notice, err := h.service.Statistics(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, statisticsResponse{Statistics: stats, Notice: noticeOrNil(notice)})
}
