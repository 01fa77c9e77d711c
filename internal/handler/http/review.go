package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/internal/service"
	"github.com/chageun/carpick/pkg/httputil"
)

// ReviewHandler serves the review browser.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// ListReviews handles GET /api/v1/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := pageParam(r)
	if err != nil {
		writeInvalidParam(w, err.Error())
		return
	}

	minPrice, maxPrice, err := priceRange(r)
	if err != nil {
		writeInvalidParam(w, err.Error())
		return
	}

	sort, err := query.ParseReviewSort(q.Get("sort"))
	if err != nil {
		writeInvalidParam(w, "sort must be one of: rating_desc, rating_asc, respondents_desc")
		return
	}

	filter := query.ReviewFilter{
		BodyType: q.Get("body_type"),
		Brand:    q.Get("brand"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	}

	result, err := h.service.Page(r.Context(), filter, sort, page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK,
		httputil.NewListResponse(result.Items, &result.Window, noticeOrNil(result.Notice)))
}

// expandResponse is one vehicle's full review set.
type expandResponse struct {
	*domain.ReviewDetail
	Notice any `json:"notice,omitempty"`
}

// ExpandReviews handles GET /api/v1/reviews/{name}
func (h *ReviewHandler) ExpandReviews(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	detail, notice, err := h.service.Expand(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, expandResponse{ReviewDetail: detail, Notice: noticeOrNil(notice)})
}

// ListComments handles GET /api/v1/reviews/{name}/comments
func (h *ReviewHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	comments, notice, err := h.service.Comments(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, httputil.NewListResponse(comments, nil, noticeOrNil(notice)))
}
