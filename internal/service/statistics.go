package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/internal/repository"
)

// StatisticsService aggregates the recommendation history into chart series.
type StatisticsService struct {
	repo   repository.StatisticsRepository
	opts   Options
	logger *slog.Logger
}

// NewStatisticsService creates a new statistics service.
func NewStatisticsService(repo repository.StatisticsRepository, opts Options, logger *slog.Logger) *StatisticsService {
	return &StatisticsService{
		repo:   repo,
		opts:   opts,
		logger: logger,
	}
}

// Statistics returns the charts for the history matching filter.
func (s *StatisticsService) Statistics(ctx context.Context, filter query.StatsFilter) (*domain.Statistics, *domain.Notice, error) {
	rows, err := s.repo.Rows(ctx, query.BuildStatistics(filter))
	if err != nil {
		notice := storeNotice(ctx, s.logger, "ListStatRows", err, s.opts.ExposeStatements)
		if notice == nil {
			return nil, nil, fmt.Errorf("load statistics: %w", err)
		}
		empty := domain.Aggregate(nil)
		return &empty, notice, nil
	}

	stats := domain.Aggregate(rows)
	if stats.Empty() {
		return &stats, domain.EmptyNotice("no recommendations have been recorded yet"), nil
	}
	return &stats, nil, nil
}
