package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/internal/repository"
	"github.com/chageun/carpick/pkg/pagination"
)

var breakdownIssues = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "carpick_review_breakdown_issues_total",
		Help: "Total number of review breakdown entries skipped as malformed",
	},
	[]string{"reason"},
)

// ReviewPage is one page of deduplicated review summaries.
type ReviewPage struct {
	Items  []domain.ReviewSummary `json:"items"`
	Window pagination.Window      `json:"pagination"`
	Notice *domain.Notice         `json:"notice,omitempty"`
}

// ReviewService reads, deduplicates and parses review summaries.
type ReviewService struct {
	repo   repository.ReviewRepository
	opts   Options
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, opts Options, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		opts:   opts,
		logger: logger,
	}
}

// Summaries returns one summary per vehicle identity, first seen wins, in the
// order given by sort. Breakdowns are parsed; malformed entries are skipped.
func (s *ReviewService) Summaries(ctx context.Context, filter query.ReviewFilter, sort query.ReviewSort) ([]domain.ReviewSummary, *domain.Notice, error) {
	stmt := query.BuildReviewSummaries(filter, sort)

	rows, err := s.repo.List(ctx, stmt)
	if err != nil {
		notice := storeNotice(ctx, s.logger, "ListReviews", err, s.opts.ExposeStatements)
		if notice == nil {
			return nil, nil, fmt.Errorf("list review summaries: %w", err)
		}
		return []domain.ReviewSummary{}, notice, nil
	}

	unique := domain.DedupByCarName(rows)
	s.parseBreakdowns(ctx, unique)
	if len(unique) == 0 {
		return unique, domain.EmptyNotice("no reviews match the selected filters"), nil
	}
	return unique, nil, nil
}

// Page returns page of the deduplicated summaries. Deduplication happens
// before paging, so pages never repeat a vehicle.
func (s *ReviewService) Page(ctx context.Context, filter query.ReviewFilter, sort query.ReviewSort, page int) (*ReviewPage, error) {
	unique, notice, err := s.Summaries(ctx, filter, sort)
	if err != nil {
		return nil, err
	}

	window := pagination.NewWindow(page, len(unique), s.opts.ReviewPageSize, s.opts.BlockSize)
	return &ReviewPage{
		Items:  pagination.Slice(unique, window.CurrentPage, s.opts.ReviewPageSize),
		Window: window,
		Notice: notice,
	}, nil
}

// Comments returns every comment for carName.
func (s *ReviewService) Comments(ctx context.Context, carName string) ([]domain.Comment, *domain.Notice, error) {
	comments, err := s.repo.Comments(ctx, carName)
	if err != nil {
		notice := storeNotice(ctx, s.logger, "ListComments", err, s.opts.ExposeStatements)
		if notice == nil {
			return nil, nil, fmt.Errorf("list comments: %w", err)
		}
		return []domain.Comment{}, notice, nil
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	return comments, nil, nil
}

// Expand returns every stored review row for carName, duplicates included,
// together with its comments.
func (s *ReviewService) Expand(ctx context.Context, carName string) (*domain.ReviewDetail, *domain.Notice, error) {
	detail := &domain.ReviewDetail{CarName: carName, Reviews: []domain.ReviewSummary{}, Comments: []domain.Comment{}}

	rows, err := s.repo.List(ctx, query.BuildReviewsByCar(carName))
	if err != nil {
		notice := storeNotice(ctx, s.logger, "ListReviewsByCar", err, s.opts.ExposeStatements)
		if notice == nil {
			return nil, nil, fmt.Errorf("expand reviews: %w", err)
		}
		return detail, notice, nil
	}
	if rows != nil {
		s.parseBreakdowns(ctx, rows)
		detail.Reviews = rows
	}

	comments, notice, err := s.Comments(ctx, carName)
	if err != nil {
		return nil, nil, err
	}
	detail.Comments = comments
	return detail, notice, nil
}

func (s *ReviewService) parseBreakdowns(ctx context.Context, rows []domain.ReviewSummary) {
	for i := range rows {
		points, issues := domain.ParseBreakdown(rows[i].GraphInfo)
		if points == nil {
			points = []domain.ChartPoint{}
		}
		rows[i].Breakdown = points
		for _, issue := range issues {
			breakdownIssues.WithLabelValues(issue.Reason).Inc()
			s.logger.WarnContext(ctx, "skipping malformed breakdown entry",
				slog.String("car_name", rows[i].CarName),
				slog.Int64("review_id", rows[i].ID),
				slog.String("entry", issue.Entry),
				slog.String("reason", issue.Reason),
			)
		}
	}
}
