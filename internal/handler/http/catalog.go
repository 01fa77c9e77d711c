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

// CatalogHandler serves catalog browsing, vehicle detail and filter options.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// Browse handles GET /api/v1/catalog
func (h *CatalogHandler) Browse(w http.ResponseWriter, r *http.Request) {
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

	efficiency, err := query.ParseEfficiencyBucket(q.Get("efficiency"))
	if err != nil {
		writeInvalidParam(w, "efficiency must be one of: all, le10, 10to15, ge15")
		return
	}

	sort := query.SortPrice
	if v := q.Get("sort"); v != "" {
		if sort, err = query.ParseSortKey(v); err != nil {
			writeInvalidParam(w, "sort must be one of: efficiency, price, rating, size, horsepower")
			return
		}
	}

	filter := query.CatalogFilter{
		MinPrice:      minPrice,
		MaxPrice:      maxPrice,
		BodyType:      q.Get("body_type"),
		FuelType:      q.Get("fuel_type"),
		Brand:         q.Get("brand"),
		MinEfficiency: efficiency,
	}

	result, err := h.service.Browse(r.Context(), filter, sort, page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK,
		httputil.NewListResponse(result.Items, &result.Window, noticeOrNil(result.Notice)))
}

// GetVehicle handles GET /api/v1/vehicles/{name}
func (h *CatalogHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeInvalidParam(w, "vehicle name is required")
		return
	}

	v, err := h.service.Detail(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, v)
}

// filterOptionsResponse carries the selectable values and, when the store
// was unreachable, the notice explaining the sentinel-only lists.
type filterOptionsResponse struct {
	BodyTypes []string     `json:"body_types"`
	FuelTypes []string     `json:"fuel_types"`
	Brands    []string     `json:"brands"`
	Jobs      []domain.Job `json:"jobs"`
	Prices    []string     `json:"prices"`
	Notice    any          `json:"notice,omitempty"`
}

// FilterOptions handles GET /api/v1/filters
func (h *CatalogHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, notice, err := h.service.FilterOptions(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, filterOptionsResponse{
		BodyTypes: opts.BodyTypes,
		FuelTypes: opts.FuelTypes,
		Brands:    opts.Brands,
		Jobs:      opts.Jobs,
		Prices:    domain.WithAll(query.PriceBuckets()),
		Notice:    noticeOrNil(notice),
	})
}
