package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for the store circuit breaker.
type BreakerConfig struct {
	// Name identifies this breaker in metrics and logs.
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state for clearing counts.
	Interval time.Duration

	// Timeout is how long the breaker stays open before moving to half-open.
	Timeout time.Duration

	// FailureRatio trips the breaker once this share of requests has failed.
	FailureRatio float64

	// MinRequests is the minimum number of requests before the ratio is evaluated.
	MinRequests uint32
}

// DefaultBreakerConfig returns defaults suited to a single Postgres pool.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var storeBreakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "store_circuit_breaker_state",
		Help: "Current state of the store circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func init() {
	prometheus.MustRegister(storeBreakerState)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// BreakerDB wraps a DBTX so repeated connection failures short-circuit into
// fast errors instead of piling up on a dead pool. Statement errors (syntax,
// constraint) do not count against the breaker.
type BreakerDB struct {
	db      DBTX
	breaker *gobreaker.TwoStepCircuitBreaker[struct{}]
}

// NewBreakerDB wraps db with a two-step circuit breaker.
func NewBreakerDB(db DBTX, cfg BreakerConfig, logger *slog.Logger) *BreakerDB {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		IsSuccessful: func(err error) bool {
			return !IsConnectionError(err)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			storeBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	storeBreakerState.WithLabelValues(cfg.Name).Set(0)

	return &BreakerDB{
		db:      db,
		breaker: gobreaker.NewTwoStepCircuitBreaker[struct{}](settings),
	}
}

// State returns the current breaker state.
func (b *BreakerDB) State() gobreaker.State {
	return b.breaker.State()
}

// Exec runs a statement through the breaker.
func (b *BreakerDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	done, err := b.breaker.Allow()
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	tag, err := b.db.Exec(ctx, sql, args...)
	done(err)
	return tag, err
}

// Query runs a query through the breaker.
func (b *BreakerDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	done, err := b.breaker.Allow()
	if err != nil {
		return nil, err
	}
	rows, err := b.db.Query(ctx, sql, args...)
	done(err)
	return rows, err
}

// QueryRow runs a single-row query through the breaker. The outcome is
// reported when the caller scans the row.
func (b *BreakerDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	done, err := b.breaker.Allow()
	if err != nil {
		return errRow{err: err}
	}
	return &breakerRow{row: b.db.QueryRow(ctx, sql, args...), done: done}
}

type breakerRow struct {
	row  pgx.Row
	done func(error)
}

func (r *breakerRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	r.done(err)
	return err
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}
