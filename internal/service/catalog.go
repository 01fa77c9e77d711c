package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/internal/repository"
	"github.com/chageun/carpick/pkg/pagination"
)

// CatalogPage is one page of the catalog browser.
type CatalogPage struct {
	Items  []domain.Vehicle  `json:"items"`
	Window pagination.Window `json:"pagination"`
	Notice *domain.Notice    `json:"notice,omitempty"`
}

// CatalogService serves the paginated catalog, vehicle detail and the
// filter options of every browser.
type CatalogService struct {
	vehicles repository.VehicleRepository
	lookups  repository.LookupRepository
	opts     Options
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(vehicles repository.VehicleRepository, lookups repository.LookupRepository, opts Options, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		vehicles: vehicles,
		lookups:  lookups,
		opts:     opts,
		logger:   logger,
	}
}

// Browse counts matching vehicles, clamps page into range and loads it. Store
// failures yield an empty page with a notice.
func (s *CatalogService) Browse(ctx context.Context, filter query.CatalogFilter, sort query.SortKey, page int) (*CatalogPage, error) {
	if sort == "" {
		sort = query.SortPrice
	}
	preds := filter.Predicates()
	_, countStmt := query.Build(preds, nil, 0, 0)

	total, err := s.vehicles.Count(ctx, countStmt)
	if err != nil {
		return s.failedPage(ctx, "CountVehicles", err)
	}

	window := pagination.NewWindow(page, total, s.opts.CatalogPageSize, s.opts.BlockSize)
	result := &CatalogPage{Items: []domain.Vehicle{}, Window: window}
	if total == 0 {
		result.Notice = domain.EmptyNotice("no vehicles match the selected filters")
		return result, nil
	}

	offset := pagination.Offset(window.CurrentPage, s.opts.CatalogPageSize)
	pageStmt, _ := query.Build(preds, query.Ordering{sort}, s.opts.CatalogPageSize, offset)
	items, err := s.vehicles.List(ctx, pageStmt)
	if err != nil {
		return s.failedPage(ctx, "ListVehicles", err)
	}
	if items != nil {
		result.Items = items
	}

	s.logger.DebugContext(ctx, "catalog page loaded",
		slog.Int("page", window.CurrentPage),
		slog.Int("total", total),
		slog.Int("predicates", countStmt.Predicates),
	)
	return result, nil
}

func (s *CatalogService) failedPage(ctx context.Context, op string, err error) (*CatalogPage, error) {
	notice := storeNotice(ctx, s.logger, op, err, s.opts.ExposeStatements)
	if notice == nil {
		return nil, fmt.Errorf("browse catalog: %w", err)
	}
	return &CatalogPage{
		Items:  []domain.Vehicle{},
		Window: pagination.NewWindow(1, 0, s.opts.CatalogPageSize, s.opts.BlockSize),
		Notice: notice,
	}, nil
}

// Detail returns one vehicle by display name.
func (s *CatalogService) Detail(ctx context.Context, name string) (*domain.Vehicle, error) {
	v, err := s.vehicles.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get vehicle detail: %w", err)
	}
	return v, nil
}

// FilterOptions returns the selectable filter values. When the store is down
// every list holds only the "all" sentinel and a notice explains why.
func (s *CatalogService) FilterOptions(ctx context.Context) (*domain.FilterOptions, *domain.Notice, error) {
	opts, err := s.lookups.FilterOptions(ctx)
	if err != nil {
		notice := storeNotice(ctx, s.logger, "FilterOptions", err, s.opts.ExposeStatements)
		if notice == nil {
			return nil, nil, fmt.Errorf("load filter options: %w", err)
		}
		return &domain.FilterOptions{
			BodyTypes: domain.WithAll(nil),
			FuelTypes: domain.WithAll(nil),
			Brands:    domain.WithAll(nil),
			Jobs:      []domain.Job{},
		}, notice, nil
	}
	return opts, nil, nil
}
