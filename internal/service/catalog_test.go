package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	apperrors "github.com/chageun/carpick/pkg/errors"
)

func floatPtr(f float64) *float64 { return &f }

func vehicles(names ...string) []domain.Vehicle {
	out := make([]domain.Vehicle, len(names))
	for i, n := range names {
		out[i] = domain.Vehicle{ID: int64(i + 1), Name: n, Price: 2000 + i*100}
	}
	return out
}

// ---------------------------------------------------------------------------
// Ranker
// ---------------------------------------------------------------------------

func TestRanker_OrdersByFirstPreferenceOnly(t *testing.T) {
	repo := new(mockVehicleRepository)
	r := NewRanker(repo, false, 20)

	a := domain.Vehicle{ID: 1, Name: "A", Efficiency: floatPtr(15)}
	b := domain.Vehicle{ID: 2, Name: "B", Efficiency: floatPtr(10)}
	prefs := domain.Preferences{First: domain.PrefEfficiency, Second: domain.PrefRating, Third: domain.PrefSize}

	repo.On("List", mock.Anything, mock.MatchedBy(func(s query.Statement) bool {
		return strings.HasSuffix(s.SQL, "ORDER BY c.car_fuel_efficiency ASC NULLS LAST LIMIT $1 OFFSET $2") &&
			assert.ObjectsAreEqual([]any{20, 0}, s.Args)
	})).Return([]domain.Vehicle{b, a}, nil)

	got, err := r.Rank(context.Background(), query.CatalogFilter{}, prefs)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, []string{got[0].Name, got[1].Name})
	repo.AssertExpectations(t)
}

func TestRanker_TieBreakUsesAllPreferences(t *testing.T) {
	r := NewRanker(nil, true, 20)
	prefs := domain.Preferences{First: domain.PrefPrice, Second: domain.PrefRating, Third: domain.PrefSize}
	assert.Equal(t, query.Ordering{query.SortPrice, query.SortRating, query.SortSize}, r.Ordering(prefs))
}

func TestRanker_EmptyIsNotAnError(t *testing.T) {
	repo := new(mockVehicleRepository)
	r := NewRanker(repo, false, 20)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, nil)

	got, err := r.Rank(context.Background(), query.CatalogFilter{}, domain.Preferences{First: domain.PrefPrice})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ---------------------------------------------------------------------------
// CatalogService
// ---------------------------------------------------------------------------

func newTestCatalogService(v *mockVehicleRepository, l *mockLookupRepository) *CatalogService {
	return NewCatalogService(v, l, DefaultOptions(), newTestLogger())
}

func TestBrowse_SecondPage(t *testing.T) {
	repo := new(mockVehicleRepository)
	svc := newTestCatalogService(repo, nil)

	filter := query.CatalogFilter{BodyType: "SUV"}
	repo.On("Count", mock.Anything, mock.MatchedBy(func(s query.Statement) bool {
		return s.Predicates == 1 && len(s.Args) == 1
	})).Return(17, nil)
	repo.On("List", mock.Anything, mock.MatchedBy(func(s query.Statement) bool {
		return assert.ObjectsAreEqual([]any{"SUV", 8, 8}, s.Args)
	})).Return(vehicles("A", "B"), nil)

	page, err := svc.Browse(context.Background(), filter, "", 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, []int{1, 2, 3}, page.Window.Pages)
	assert.Equal(t, 2, page.Window.CurrentPage)
	assert.False(t, page.Window.HasPrev)
	assert.False(t, page.Window.HasNext)
	assert.Nil(t, page.Notice)
	repo.AssertExpectations(t)
}

func TestBrowse_ClampsPageBeyondEnd(t *testing.T) {
	repo := new(mockVehicleRepository)
	svc := newTestCatalogService(repo, nil)

	repo.On("Count", mock.Anything, mock.Anything).Return(9, nil)
	repo.On("List", mock.Anything, mock.MatchedBy(func(s query.Statement) bool {
		return s.Args[len(s.Args)-1] == 8
	})).Return(vehicles("I"), nil)

	page, err := svc.Browse(context.Background(), query.CatalogFilter{}, query.SortPrice, 40)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Window.CurrentPage)
	repo.AssertExpectations(t)
}

func TestBrowse_EmptyResult(t *testing.T) {
	repo := new(mockVehicleRepository)
	svc := newTestCatalogService(repo, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(0, nil)

	page, err := svc.Browse(context.Background(), query.CatalogFilter{}, "", 3)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, []int{1}, page.Window.Pages)
	require.NotNil(t, page.Notice)
	assert.Equal(t, domain.NoticeEmpty, page.Notice.Kind)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestBrowse_StoreUnavailable(t *testing.T) {
	repo := new(mockVehicleRepository)
	svc := newTestCatalogService(repo, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(0, apperrors.StoreUnavailable(errors.New("refused")))

	page, err := svc.Browse(context.Background(), query.CatalogFilter{}, "", 1)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, domain.NoticeStoreUnavailable, page.Notice.Kind)
}

func TestBrowse_QueryFailureStatementExposure(t *testing.T) {
	for _, expose := range []bool{true, false} {
		repo := new(mockVehicleRepository)
		opts := DefaultOptions()
		opts.ExposeStatements = expose
		svc := NewCatalogService(repo, nil, opts, newTestLogger())

		repo.On("Count", mock.Anything, mock.Anything).Return(4, nil)
		repo.On("List", mock.Anything, mock.Anything).Return(nil, apperrors.QueryFailure("SELECT broken", errors.New("syntax")))

		page, err := svc.Browse(context.Background(), query.CatalogFilter{}, "", 1)
		require.NoError(t, err)
		assert.Equal(t, domain.NoticeQueryFailed, page.Notice.Kind)
		if expose {
			assert.Equal(t, "SELECT broken", page.Notice.Statement)
		} else {
			assert.Empty(t, page.Notice.Statement)
		}
	}
}

func TestBrowse_UnexpectedErrorPropagates(t *testing.T) {
	repo := new(mockVehicleRepository)
	svc := newTestCatalogService(repo, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(0, errors.New("boom"))

	_, err := svc.Browse(context.Background(), query.CatalogFilter{}, "", 1)
	assert.Error(t, err)
}

func TestDetail(t *testing.T) {
	repo := new(mockVehicleRepository)
	svc := newTestCatalogService(repo, nil)
	repo.On("GetByName", mock.Anything, "K5").Return(&domain.Vehicle{ID: 7, Name: "K5"}, nil)
	repo.On("GetByName", mock.Anything, "Pony").Return(nil, apperrors.NotFound("vehicle", "Pony"))

	v, err := svc.Detail(context.Background(), "K5")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v.ID)

	_, err = svc.Detail(context.Background(), "Pony")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFilterOptions_StoreDownFallsBackToSentinels(t *testing.T) {
	lookups := new(mockLookupRepository)
	svc := newTestCatalogService(nil, lookups)
	lookups.On("FilterOptions", mock.Anything).Return(nil, apperrors.StoreUnavailable(errors.New("refused")))

	opts, notice, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"all"}, opts.BodyTypes)
	assert.Equal(t, domain.NoticeStoreUnavailable, notice.Kind)
}
