// Package breaker wraps a RecordStore with a circuit breaker so a failing
// remote backend is reported as unavailable instead of being hammered.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/utafrali/EcommerceGo/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/storefront/internal/repository"
)

// Config holds the breaker thresholds.
type Config struct {
	// Name identifies the breaker in metrics and logs.
	Name string

	// MaxRequests is how many probes are let through while half-open.
	MaxRequests uint32

	// Interval clears the failure counts while closed. 0 never clears them.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureRatio trips the breaker once at least MinRequests were seen.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultConfig returns thresholds suited to a remote KV backend.
func DefaultConfig(name string) Config {
	return Config{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      15 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "storefront_storage_breaker_state",
		Help: "Current state of the storage circuit breaker (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

func stateValue(state gobreaker.State) float64 {
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

// Store guards every call to the wrapped RecordStore with one breaker.
type Store struct {
	next    repository.RecordStore
	breaker *gobreaker.CircuitBreaker[[]byte]
	name    string
}

var _ repository.RecordStore = (*Store)(nil)

// New wraps next. Absent records and canceled requests never count as
// failures.
func New(next repository.RecordStore, cfg Config, logger *slog.Logger) *Store {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, apperrors.ErrNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("storage circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateValue(to))
		},
	}

	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &Store{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
		name:    cfg.Name,
	}
}

// Get reads through the breaker.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.breaker.Execute(func() ([]byte, error) {
		return s.next.Get(ctx, key)
	})
	return data, s.translate(err)
}

// Put writes through the breaker.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.breaker.Execute(func() ([]byte, error) {
		return nil, s.next.Put(ctx, key, data)
	})
	return s.translate(err)
}

// Delete deletes through the breaker.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.breaker.Execute(func() ([]byte, error) {
		return nil, s.next.Delete(ctx, key)
	})
	return s.translate(err)
}

// State returns the current breaker state.
func (s *Store) State() gobreaker.State {
	return s.breaker.State()
}

// Ping reports the breaker as unhealthy while it is open, then defers to the
// wrapped store if it can be pinged.
func (s *Store) Ping(ctx context.Context) error {
	if s.breaker.State() == gobreaker.StateOpen {
		return apperrors.ServiceUnavailable("storage circuit breaker " + s.name + " is open")
	}
	if p, ok := s.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Store) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.ServiceUnavailable("storage is temporarily unavailable")
	}
	return err
}
