package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chageun/carpick/internal/domain"
	apperrors "github.com/chageun/carpick/pkg/errors"
	"github.com/chageun/carpick/pkg/validator"
)

type sessionFixture struct {
	sessions  *mockSessionRepository
	profiles  *mockProfileRepository
	records   *mockRecommendationRepository
	vehicles  *mockVehicleRepository
	reviews   *mockReviewRepository
	stats     *mockStatisticsRepository
	publisher *mockPublisher
	svc       *SessionService
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		sessions:  new(mockSessionRepository),
		profiles:  new(mockProfileRepository),
		records:   new(mockRecommendationRepository),
		vehicles:  new(mockVehicleRepository),
		reviews:   new(mockReviewRepository),
		stats:     new(mockStatisticsRepository),
		publisher: new(mockPublisher),
	}
	opts := DefaultOptions()
	logger := newTestLogger()
	f.svc = NewSessionService(SessionDeps{
		Sessions:        f.sessions,
		Profiles:        f.profiles,
		Recommendations: f.records,
		Ranker:          NewRanker(f.vehicles, false, opts.RecommendationLimit),
		Catalog:         NewCatalogService(f.vehicles, nil, opts, logger),
		Reviews:         NewReviewService(f.reviews, opts, logger),
		Statistics:      NewStatisticsService(f.stats, opts, logger),
		Publisher:       f.publisher,
	}, opts, logger)
	return f
}

func completedSession() *domain.Session {
	s := domain.NewSession()
	s.Age = 34
	s.Gender = domain.GenderFemale
	s.Purpose = domain.PurposeTravel
	s.JobID = 3
	s.FuelType = "가솔린"
	s.BodyType = "SUV"
	s.Preferences = domain.Preferences{First: domain.PrefEfficiency, Second: domain.PrefPrice, Third: domain.PrefRating}
	return s
}

func recommendationRequested() domain.Event {
	return domain.Event{Type: domain.EventRecommendationRequested}
}

func TestCreateSession(t *testing.T) {
	f := newSessionFixture()
	f.sessions.On("Save", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	s, err := f.svc.Create(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StageHome, s.Stage)
	f.sessions.AssertExpectations(t)
}

func TestResetSession(t *testing.T) {
	f := newSessionFixture()
	s := completedSession()
	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)

	got, err := f.svc.Reset(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Gender)
	assert.Equal(t, s.ID, got.ID)
}

func TestDispatch_RecommendationRecordedOnce(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()
	s := completedSession()
	car := domain.Vehicle{ID: 7, Name: "Casper"}

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.profiles.On("Create", mock.Anything, mock.AnythingOfType("*domain.UserProfile")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.UserProfile).ID = 42 }).
		Return(nil).Once()
	f.vehicles.On("List", mock.Anything, mock.Anything).Return([]domain.Vehicle{car, {ID: 8, Name: "Ray"}}, nil)
	f.records.On("Record", mock.Anything, int64(42), int64(7)).
		Return(&domain.RecommendationRecord{ID: 1, UserID: 42, CarID: 7}, nil).Once()
	f.publisher.On("PublishRecommendationRecorded", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	view, err := f.svc.Dispatch(ctx, s.ID, recommendationRequested())
	require.NoError(t, err)
	require.NotNil(t, view.Recommendation)
	assert.Equal(t, "Casper", view.Recommendation.Name)
	assert.Equal(t, int64(42), s.ProfileID)
	assert.Equal(t, &domain.RecordKey{UserID: 42, CarID: 7}, s.LastRecorded)

	// Requesting again with an unchanged questionnaire shows the same car
	// without a second record.
	_, err = f.svc.Dispatch(ctx, s.ID, recommendationRequested())
	require.NoError(t, err)

	view, err = f.svc.Recommendation(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Casper", view.Recommendation.Name)

	f.profiles.AssertNumberOfCalls(t, "Create", 1)
	f.records.AssertNumberOfCalls(t, "Record", 1)
	f.publisher.AssertExpectations(t)
}

func TestDispatch_ChangedQuestionnaireCreatesNewProfile(t *testing.T) {
	f := newSessionFixture()
	ctx := context.Background()
	s := completedSession()
	s.ProfileID = 42
	s.LastRecorded = &domain.RecordKey{UserID: 42, CarID: 7}

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.profiles.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.UserProfile) bool { return p.Age == 40 })).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.UserProfile).ID = 43 }).
		Return(nil)
	f.vehicles.On("List", mock.Anything, mock.Anything).Return([]domain.Vehicle{{ID: 7, Name: "Casper"}}, nil)
	f.records.On("Record", mock.Anything, int64(43), int64(7)).
		Return(&domain.RecommendationRecord{ID: 2, UserID: 43, CarID: 7}, nil)
	f.publisher.On("PublishRecommendationRecorded", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Dispatch(ctx, s.ID, domain.Event{Type: domain.EventQuestionnaireFieldChanged, Field: "age", Value: "40"})
	require.NoError(t, err)
	assert.True(t, s.ProfileDirty)
	assert.Nil(t, s.Recommended)

	_, err = f.svc.Dispatch(ctx, s.ID, recommendationRequested())
	require.NoError(t, err)
	assert.Equal(t, int64(43), s.ProfileID)
	assert.False(t, s.ProfileDirty)
	f.records.AssertExpectations(t)
}

func TestDispatch_NoMatchingVehicle(t *testing.T) {
	f := newSessionFixture()
	s := completedSession()
	s.ProfileID = 42

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.vehicles.On("List", mock.Anything, mock.Anything).Return(nil, nil)

	view, err := f.svc.Dispatch(context.Background(), s.ID, recommendationRequested())
	require.NoError(t, err)
	assert.Nil(t, view.Recommendation)
	assert.Equal(t, domain.NoticeNoRecommendation, view.Notice.Kind)
	f.records.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_StoreDownSkipsWrites(t *testing.T) {
	f := newSessionFixture()
	s := completedSession()
	down := apperrors.StoreUnavailable(errors.New("refused"))

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.profiles.On("Create", mock.Anything, mock.Anything).Return(down)
	f.vehicles.On("List", mock.Anything, mock.Anything).Return(nil, down)

	view, err := f.svc.Dispatch(context.Background(), s.ID, recommendationRequested())
	require.NoError(t, err)
	assert.Equal(t, domain.NoticeStoreUnavailable, view.Notice.Kind)
	assert.Zero(t, s.ProfileID)
	f.records.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_RecordFailureAndPublishFailureAreNotFatal(t *testing.T) {
	f := newSessionFixture()
	s := completedSession()
	s.ProfileID = 42

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.vehicles.On("List", mock.Anything, mock.Anything).Return([]domain.Vehicle{{ID: 7}}, nil)
	f.records.On("Record", mock.Anything, int64(42), int64(7)).
		Return(&domain.RecommendationRecord{ID: 3, UserID: 42, CarID: 7}, nil)
	f.publisher.On("PublishRecommendationRecorded", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("no brokers"))

	view, err := f.svc.Dispatch(context.Background(), s.ID, recommendationRequested())
	require.NoError(t, err)
	assert.Equal(t, int64(7), view.Recommendation.ID)
	assert.NotNil(t, s.LastRecorded)
}

func TestDispatch_IncompleteQuestionnaireRejected(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()
	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)

	_, err := f.svc.Dispatch(context.Background(), s.ID, recommendationRequested())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDispatch_InvalidEventPayload(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()

	_, err := f.svc.Dispatch(context.Background(), s.ID, domain.Event{Type: domain.EventDetailRequested})
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "Vehicle")
	f.sessions.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDispatch_FilterChangedRendersCatalog(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()
	s.CatalogPage = 3

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.vehicles.On("Count", mock.Anything, mock.Anything).Return(3, nil)
	f.vehicles.On("List", mock.Anything, mock.Anything).Return(vehicles("A", "B", "C"), nil)

	view, err := f.svc.Dispatch(context.Background(), s.ID,
		domain.Event{Type: domain.EventFilterChanged, Field: "catalog.price", Value: "2000s"})
	require.NoError(t, err)
	require.NotNil(t, view.Catalog)
	assert.Len(t, view.Catalog.Items, 3)
	assert.Equal(t, 1, s.CatalogPage)
	assert.Equal(t, domain.StageCatalog, s.Stage)
}

func TestDispatch_BadBucketRejected(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()
	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)

	_, err := f.svc.Dispatch(context.Background(), s.ID,
		domain.Event{Type: domain.EventFilterChanged, Field: "catalog.efficiency", Value: "fast"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDispatch_ExpandToggleRendersExpandedReviews(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()
	s.Stage = domain.StageReviews

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.reviews.On("List", mock.Anything, mock.Anything).Return(reviewRows("K5", "K5", "Ray"), nil)
	f.reviews.On("Comments", mock.Anything, "K5").Return([]domain.Comment{{Nickname: "곰"}}, nil)

	view, err := f.svc.Dispatch(context.Background(), s.ID,
		domain.Event{Type: domain.EventReviewExpandToggled, Vehicle: "K5"})
	require.NoError(t, err)
	require.NotNil(t, view.Reviews)
	assert.Len(t, view.Reviews.Items, 2)
	require.Len(t, view.Expanded, 1)
	assert.Equal(t, "K5", view.Expanded[0].CarName)
	assert.Len(t, view.Expanded[0].Comments, 1)
}

func TestDispatch_DetailRequested(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.vehicles.On("GetByName", mock.Anything, "K5").Return(&domain.Vehicle{ID: 7, Name: "K5"}, nil)

	view, err := f.svc.Dispatch(context.Background(), s.ID, domain.Event{Type: domain.EventDetailRequested, Vehicle: "K5"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), view.Detail.ID)
	assert.Equal(t, domain.StageDetail, s.Stage)
}

func TestDispatch_StatisticsPage(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()

	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.sessions.On("Save", mock.Anything, s).Return(nil)
	f.stats.On("Rows", mock.Anything, mock.Anything).Return(nil, nil)

	view, err := f.svc.Dispatch(context.Background(), s.ID, domain.Event{Type: domain.EventPageRequested, View: "statistics"})
	require.NoError(t, err)
	require.NotNil(t, view.Statistics)
	assert.Equal(t, domain.NoticeEmpty, view.Notice.Kind)
}

func TestDispatch_SessionNotFound(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()
	f.sessions.On("Get", mock.Anything, s.ID).Return(nil, apperrors.NotFound("session", s.ID.String()))

	_, err := f.svc.Dispatch(context.Background(), s.ID, recommendationRequested())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHistory(t *testing.T) {
	f := newSessionFixture()
	s := completedSession()
	s.ProfileID = 42
	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.records.On("ListByUser", mock.Anything, int64(42)).Return([]domain.RecommendationRecord{
		{ID: 1, UserID: 42, CarID: 7},
	}, nil)

	records, notice, err := f.svc.History(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Nil(t, notice)
	require.Len(t, records, 1)
	assert.Equal(t, int64(7), records[0].CarID)
}

func TestHistory_NoProfileYet(t *testing.T) {
	f := newSessionFixture()
	s := domain.NewSession()
	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)

	records, notice, err := f.svc.History(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, domain.NoticeEmpty, notice.Kind)
	f.records.AssertNotCalled(t, "ListByUser", mock.Anything, mock.Anything)
}

func TestHistory_StoreDown(t *testing.T) {
	f := newSessionFixture()
	s := completedSession()
	s.ProfileID = 42
	f.sessions.On("Get", mock.Anything, s.ID).Return(s, nil)
	f.records.On("ListByUser", mock.Anything, int64(42)).
		Return(nil, apperrors.StoreUnavailable(errors.New("refused")))

	records, notice, err := f.svc.History(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, domain.NoticeStoreUnavailable, notice.Kind)
}
