package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chageun/carpick/internal/domain"
	apperrors "github.com/chageun/carpick/pkg/errors"
)

// Options tunes the read services.
type Options struct {
	CatalogPageSize     int
	ReviewPageSize      int
	BlockSize           int
	RecommendationLimit int
	RankTieBreak        bool
	// ExposeStatements attaches rejected SQL to query_failed notices.
	ExposeStatements bool
}

// DefaultOptions returns the browser defaults.
func DefaultOptions() Options {
	return Options{
		CatalogPageSize:     8,
		ReviewPageSize:      4,
		BlockSize:           5,
		RecommendationLimit: 20,
	}
}

// storeNotice converts a store failure into the notice shown with an empty
// result. It returns nil for errors that must propagate instead.
func storeNotice(ctx context.Context, logger *slog.Logger, op string, err error, expose bool) *domain.Notice {
	switch {
	case errors.Is(err, apperrors.ErrServiceUnavail):
		logger.WarnContext(ctx, "store unavailable",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		return &domain.Notice{Kind: domain.NoticeStoreUnavailable, Message: "the catalog store is unavailable"}
	case errors.Is(err, apperrors.ErrQueryFailed):
		logger.ErrorContext(ctx, "query failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		n := &domain.Notice{Kind: domain.NoticeQueryFailed, Message: "the store rejected the query"}
		var appErr *apperrors.AppError
		if expose && errors.As(err, &appErr) {
			n.Statement = appErr.Detail
		}
		return n
	}
	return nil
}
