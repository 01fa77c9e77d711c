package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	apperrors "github.com/chageun/carpick/pkg/errors"
)

func newTestReviewService(repo *mockReviewRepository) *ReviewService {
	return NewReviewService(repo, DefaultOptions(), newTestLogger())
}

func reviewRows(names ...string) []domain.ReviewSummary {
	out := make([]domain.ReviewSummary, len(names))
	for i, n := range names {
		out[i] = domain.ReviewSummary{ID: int64(i + 1), CarName: n, AvgScore: 9.0 - float64(i)/10, GraphInfo: "디자인\n9.0"}
	}
	return out
}

func TestSummaries_DedupAndParse(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	rows := []domain.ReviewSummary{
		{ID: 1, CarName: "X", AvgScore: 9.5, GraphInfo: "safety\n4.5,comfort\nNaN,power\n3.0"},
		{ID: 2, CarName: "Y", AvgScore: 9.0, GraphInfo: ""},
		{ID: 3, CarName: "X", AvgScore: 8.0, GraphInfo: "safety\n1.0"},
	}
	repo.On("List", mock.Anything, query.BuildReviewSummaries(query.ReviewFilter{}, query.ReviewRatingDesc)).Return(rows, nil)

	before := testutil.ToFloat64(breakdownIssues.WithLabelValues("value is not finite"))
	got, notice, err := svc.Summaries(context.Background(), query.ReviewFilter{}, query.ReviewRatingDesc)
	require.NoError(t, err)
	assert.Nil(t, notice)

	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, []domain.ChartPoint{{Category: "safety", Value: 4.5}, {Category: "power", Value: 3.0}}, got[0].Breakdown)
	assert.Equal(t, []domain.ChartPoint{}, got[1].Breakdown)
	assert.Equal(t, before+1, testutil.ToFloat64(breakdownIssues.WithLabelValues("value is not finite")))
}

func TestSummaries_Empty(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, nil)

	got, notice, err := svc.Summaries(context.Background(), query.ReviewFilter{Brand: "테슬라"}, query.ReviewRatingAsc)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, domain.NoticeEmpty, notice.Kind)
}

func TestSummaries_StoreUnavailable(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, apperrors.StoreUnavailable(errors.New("refused")))

	got, notice, err := svc.Summaries(context.Background(), query.ReviewFilter{}, query.ReviewRatingDesc)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, domain.NoticeStoreUnavailable, notice.Kind)
}

func TestPage_DedupsBeforePaging(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	rows := reviewRows("A", "A", "B", "C", "B", "D", "E", "F")
	repo.On("List", mock.Anything, mock.Anything).Return(rows, nil)

	page, err := svc.Page(context.Background(), query.ReviewFilter{}, query.ReviewRatingDesc, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "E", page.Items[0].CarName)
	assert.Equal(t, "F", page.Items[1].CarName)
	assert.Equal(t, 2, page.Window.TotalPages)
	assert.Equal(t, 6, page.Window.TotalItems)
}

func TestComments(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	repo.On("Comments", mock.Anything, "K5").Return([]domain.Comment{{Nickname: "곰", Text: "좋아요"}}, nil)
	repo.On("Comments", mock.Anything, "Ray").Return(nil, nil)

	got, _, err := svc.Comments(context.Background(), "K5")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, _, err = svc.Comments(context.Background(), "Ray")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExpand_KeepsDuplicatesAndLoadsComments(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)

	repo.On("List", mock.Anything, query.BuildReviewsByCar("K5")).Return(reviewRows("K5", "K5"), nil)
	repo.On("Comments", mock.Anything, "K5").Return([]domain.Comment{{Nickname: "곰"}}, nil)

	detail, notice, err := svc.Expand(context.Background(), "K5")
	require.NoError(t, err)
	assert.Nil(t, notice)
	assert.Len(t, detail.Reviews, 2)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, []domain.ChartPoint{{Category: "디자인", Value: 9.0}}, detail.Reviews[1].Breakdown)
	repo.AssertExpectations(t)
}

func TestExpand_UnexpectedErrorPropagates(t *testing.T) {
	repo := new(mockReviewRepository)
	svc := newTestReviewService(repo)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, _, err := svc.Expand(context.Background(), "K5")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// StatisticsService
// ---------------------------------------------------------------------------

func TestStatistics(t *testing.T) {
	repo := new(mockStatisticsRepository)
	svc := NewStatisticsService(repo, DefaultOptions(), newTestLogger())

	filter := query.StatsFilter{Gender: "female"}
	repo.On("Rows", mock.Anything, query.BuildStatistics(filter)).Return([]domain.StatRow{
		{Age: 31, Gender: "female", JobName: "사무직", CarName: "K5"},
		{Age: 33, Gender: "female", JobName: "사무직", CarName: "K5"},
		{Age: 35, Gender: "female", JobName: "IT/개발", CarName: "Casper"},
	}, nil)

	stats, notice, err := svc.Statistics(context.Background(), filter)
	require.NoError(t, err)
	assert.Nil(t, notice)
	assert.Equal(t, 3, stats.Total)
	require.Len(t, stats.ByAge, 1)
	assert.Equal(t, []domain.CarCount{{CarName: "K5", Count: 2}, {CarName: "Casper", Count: 1}}, stats.ByAge[0].Cars)
}

func TestStatistics_EmptyHistory(t *testing.T) {
	repo := new(mockStatisticsRepository)
	svc := NewStatisticsService(repo, DefaultOptions(), newTestLogger())
	repo.On("Rows", mock.Anything, mock.Anything).Return(nil, nil)

	stats, notice, err := svc.Statistics(context.Background(), query.StatsFilter{})
	require.NoError(t, err)
	assert.True(t, stats.Empty())
	assert.Equal(t, domain.NoticeEmpty, notice.Kind)
}

func TestStatistics_StoreUnavailable(t *testing.T) {
	repo := new(mockStatisticsRepository)
	svc := NewStatisticsService(repo, DefaultOptions(), newTestLogger())
	repo.On("Rows", mock.Anything, mock.Anything).Return(nil, apperrors.StoreUnavailable(errors.New("refused")))

	stats, notice, err := svc.Statistics(context.Background(), query.StatsFilter{})
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Equal(t, domain.NoticeStoreUnavailable, notice.Kind)
}
