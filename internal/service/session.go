package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/chageun/carpick/internal/domain"
	"github.com/chageun/carpick/internal/query"
	"github.com/chageun/carpick/internal/repository"
	"github.com/chageun/carpick/pkg/validator"
)

var recommendationsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "carpick_recommendations_recorded_total",
	Help: "Total number of recommendation records appended",
})

// RecommendationPublisher announces appended recommendation records.
type RecommendationPublisher interface {
	PublishRecommendationRecorded(ctx context.Context, rec *domain.RecommendationRecord, car *domain.Vehicle) error
}

// View is everything a client needs to render a session after an event.
// Only the parts relevant to the session's stage are set.
type View struct {
	Session        *domain.Session       `json:"session"`
	Recommendation *domain.Vehicle       `json:"recommendation,omitempty"`
	Detail         *domain.Vehicle       `json:"detail,omitempty"`
	Catalog        *CatalogPage          `json:"catalog,omitempty"`
	Reviews        *ReviewPage           `json:"reviews,omitempty"`
	Expanded       []domain.ReviewDetail `json:"expanded,omitempty"`
	Statistics     *domain.Statistics    `json:"statistics,omitempty"`
	Notice         *domain.Notice        `json:"notice,omitempty"`
}

// SessionDeps groups the collaborators of a SessionService.
type SessionDeps struct {
	Sessions        repository.SessionRepository
	Profiles        repository.ProfileRepository
	Recommendations repository.RecommendationRepository
	Ranker          *Ranker
	Catalog         *CatalogService
	Reviews         *ReviewService
	Statistics      *StatisticsService
	// Publisher may be nil, in which case no events are sent.
	Publisher RecommendationPublisher
}

// SessionService applies client events to stored sessions and runs the
// queries each event implies.
type SessionService struct {
	deps   SessionDeps
	opts   Options
	logger *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(deps SessionDeps, opts Options, logger *slog.Logger) *SessionService {
	return &SessionService{deps: deps, opts: opts, logger: logger}
}

// Create stores a new session in its default state.
func (s *SessionService) Create(ctx context.Context) (*domain.Session, error) {
	sess := domain.NewSession()
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.logger.InfoContext(ctx, "session created", slog.String("session_id", sess.ID.String()))
	return sess, nil
}

// Get loads a session.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, err := s.deps.Sessions.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

// Reset restores a session's defaults, keeping its id.
func (s *SessionService) Reset(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Reset()
	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("reset session: %w", err)
	}
	return sess, nil
}

// Recommendation re-displays the session's current recommendation without
// recording it again.
func (s *SessionService) Recommendation(ctx context.Context, id uuid.UUID) (*View, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &View{Session: sess, Recommendation: sess.Recommended}
	if sess.Recommended == nil {
		view.Notice = &domain.Notice{Kind: domain.NoticeNoRecommendation, Message: "no recommendation has been made"}
	}
	return view, nil
}

// History returns the recommendation records of the session's current
// profile, oldest first. A session that never stored a profile has none.
func (s *SessionService) History(ctx context.Context, id uuid.UUID) ([]domain.RecommendationRecord, *domain.Notice, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if sess.ProfileID == 0 {
		return []domain.RecommendationRecord{}, domain.EmptyNotice("no recommendation has been recorded"), nil
	}

	records, err := s.deps.Recommendations.ListByUser(ctx, sess.ProfileID)
	if err != nil {
		notice := storeNotice(ctx, s.logger, "ListRecommendations", err, s.opts.ExposeStatements)
		if notice == nil {
			return nil, nil, fmt.Errorf("list recommendation history: %w", err)
		}
		return []domain.RecommendationRecord{}, notice, nil
	}
	if len(records) == 0 {
		return []domain.RecommendationRecord{}, domain.EmptyNotice("no recommendation has been recorded"), nil
	}
	return records, nil, nil
}

// Dispatch applies ev to the session, runs the resulting queries, saves the
// session and returns the view to render. Invalid events leave the stored
// session untouched.
func (s *SessionService) Dispatch(ctx context.Context, id uuid.UUID, ev domain.Event) (*View, error) {
	if err := validator.Validate(ev); err != nil {
		return nil, err
	}

	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Apply(ev); err != nil {
		return nil, err
	}

	view := &View{Session: sess}
	switch ev.Type {
	case domain.EventRecommendationRequested:
		if err := s.recommend(ctx, sess, view); err != nil {
			return nil, err
		}
	case domain.EventDetailRequested:
		v, err := s.deps.Catalog.Detail(ctx, sess.SelectedCar)
		if err != nil {
			return nil, err
		}
		view.Detail = v
	case domain.EventQuestionnaireFieldChanged:
	default:
		if err := s.render(ctx, sess, view); err != nil {
			return nil, err
		}
	}

	if err := s.deps.Sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.DebugContext(ctx, "session event applied",
		slog.String("event", string(ev.Type)),
		slog.String("stage", string(sess.Stage)),
	)
	return view, nil
}

// render fills the view for the session's current stage.
func (s *SessionService) render(ctx context.Context, sess *domain.Session, view *View) error {
	switch sess.Stage {
	case domain.StageCatalog:
		filter, err := query.CatalogFilterFrom(sess.Catalog)
		if err != nil {
			return err
		}
		page, err := s.deps.Catalog.Browse(ctx, filter, query.SortPrice, sess.CatalogPage)
		if err != nil {
			return err
		}
		sess.CatalogPage = page.Window.CurrentPage
		view.Catalog = page
		view.Notice = page.Notice

	case domain.StageReviews:
		filter, sort, err := query.ReviewFilterFrom(sess.Reviews)
		if err != nil {
			return err
		}
		page, err := s.deps.Reviews.Page(ctx, filter, sort, sess.ReviewPage)
		if err != nil {
			return err
		}
		sess.ReviewPage = page.Window.CurrentPage
		view.Reviews = page
		view.Notice = page.Notice

		for _, item := range page.Items {
			if !sess.IsExpanded(item.CarName) {
				continue
			}
			detail, notice, err := s.deps.Reviews.Expand(ctx, item.CarName)
			if err != nil {
				return err
			}
			view.Expanded = append(view.Expanded, *detail)
			if view.Notice == nil {
				view.Notice = notice
			}
		}

	case domain.StageStatistics:
		stats, notice, err := s.deps.Statistics.Statistics(ctx, query.StatsFilter{})
		if err != nil {
			return err
		}
		view.Statistics = stats
		view.Notice = notice

	case domain.StageRecommendation:
		view.Recommendation = sess.Recommended
	}
	return nil
}

// recommend stores the profile when it is new or changed, ranks the catalog
// and records the top vehicle once per profile.
func (s *SessionService) recommend(ctx context.Context, sess *domain.Session, view *View) error {
	if sess.ProfileID == 0 || sess.ProfileDirty {
		profile := sess.Profile()
		if err := s.deps.Profiles.Create(ctx, &profile); err != nil {
			if storeNotice(ctx, s.logger, "CreateProfile", err, s.opts.ExposeStatements) == nil {
				return fmt.Errorf("save profile: %w", err)
			}
			s.logger.WarnContext(ctx, "profile not saved, recommendation will not be recorded")
		} else {
			sess.ProfileID = profile.ID
			sess.ProfileDirty = false
			sess.LastRecorded = nil
		}
	}

	ranked, err := s.deps.Ranker.Rank(ctx, query.RecommendationFilter(sess), sess.Preferences)
	if err != nil {
		notice := storeNotice(ctx, s.logger, "Rank", err, s.opts.ExposeStatements)
		if notice == nil {
			return err
		}
		sess.Recommended = nil
		view.Notice = notice
		return nil
	}
	if len(ranked) == 0 {
		sess.Recommended = nil
		view.Notice = &domain.Notice{Kind: domain.NoticeNoRecommendation, Message: "no vehicle matches the questionnaire"}
		return nil
	}

	top := ranked[0]
	sess.Recommended = &top
	view.Recommendation = &top

	if sess.NeedsRecord(top.ID) {
		s.record(ctx, sess, &top)
	}
	return nil
}

// record appends the recommendation record and publishes its event. Failures
// are logged and never fail the request.
func (s *SessionService) record(ctx context.Context, sess *domain.Session, car *domain.Vehicle) {
	rec, err := s.deps.Recommendations.Record(ctx, sess.ProfileID, car.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "recommendation not recorded",
			slog.Int64("user_id", sess.ProfileID),
			slog.Int64("car_id", car.ID),
			slog.String("error", err.Error()),
		)
		return
	}
	sess.LastRecorded = &domain.RecordKey{UserID: rec.UserID, CarID: rec.CarID}
	recommendationsRecorded.Inc()

	s.logger.InfoContext(ctx, "recommendation recorded",
		slog.Int64("user_id", rec.UserID),
		slog.Int64("car_id", rec.CarID),
	)

	if s.deps.Publisher == nil {
		return
	}
	if err := s.deps.Publisher.PublishRecommendationRecorded(ctx, rec, car); err != nil {
		s.logger.WarnContext(ctx, "failed to publish recommendation event", slog.String("error", err.Error()))
	}
}
