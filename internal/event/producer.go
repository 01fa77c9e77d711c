package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/chageun/carpick/internal/domain"
	pkgkafka "github.com/chageun/carpick/pkg/kafka"
	"github.com/chageun/carpick/pkg/logger"
)

// Aggregate type constant.
const AggregateTypeRecommendation = "recommendation"

// TopicRecommendationRecorded receives one event per appended recommendation record.
var TopicRecommendationRecorded = pkgkafka.Topic(AggregateTypeRecommendation, "recorded")

// SourceCarpick identifies events originating from this service.
const SourceCarpick = "carpick"

// RecommendationRecordedData is the payload for a recommendation.recorded event.
type RecommendationRecordedData struct {
	RecommendationID int64     `json:"recommendation_id"`
	UserID           int64     `json:"user_id"`
	CarID            int64     `json:"car_id"`
	CarName          string    `json:"car_name"`
	BrandName        string    `json:"brand_name"`
	Price            int       `json:"price"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// Publisher is the part of *pkgkafka.Producer used here.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes recommendation events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new recommendation event producer.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishRecommendationRecorded publishes a recommendation.recorded event
// keyed by the profile id.
func (p *Producer) PublishRecommendationRecorded(ctx context.Context, rec *domain.RecommendationRecord, car *domain.Vehicle) error {
	data := RecommendationRecordedData{
		RecommendationID: rec.ID,
		UserID:           rec.UserID,
		CarID:            rec.CarID,
		CarName:          car.Name,
		BrandName:        car.BrandName,
		Price:            car.Price,
		RecordedAt:       rec.CreatedAt,
	}

	userID := strconv.FormatInt(rec.UserID, 10)
	event, err := pkgkafka.NewEvent(TopicRecommendationRecorded, userID, SourceCarpick, data)
	if err != nil {
		return fmt.Errorf("create recommendation.recorded event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}
	if sid := logger.SessionIDFromContext(ctx); sid != "" {
		event.WithMetadata("session_id", sid)
	}

	if err := p.kafka.Publish(ctx, TopicRecommendationRecorded, event); err != nil {
		return fmt.Errorf("publish recommendation.recorded event: %w", err)
	}

	p.logger.DebugContext(ctx, "published recommendation.recorded event",
		slog.Int64("user_id", rec.UserID),
		slog.Int64("car_id", rec.CarID),
	)
	return nil
}
