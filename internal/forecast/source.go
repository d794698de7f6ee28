// Package forecast holds the current hourly forecast snapshot and keeps it fresh.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/weather-glance/internal/domain"
	"github.com/couchcryptid/weather-glance/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned by Refresh when a manual refresh arrives too
// soon after the previous one.
var ErrRateLimited = errors.New("forecast refresh rate limited")

// Fetcher retrieves a complete hourly forecast.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.Snapshot, error)
}

// Source publishes forecast snapshots. Each successful fetch replaces the
// snapshot whole and bumps the version; readers never see a partial update.
type Source struct {
	fetcher  Fetcher
	clock    clockwork.Clock
	interval time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu      sync.RWMutex
	snap    domain.Snapshot
	version uint64
	pending atomic.Bool
}

// NewSource creates a Source that refetches every interval once running.
// Manual refreshes are allowed at most once per minSpacing.
func NewSource(f Fetcher, clock clockwork.Clock, interval, minSpacing time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Source {
	return &Source{
		fetcher:  f,
		clock:    clock,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(minSpacing), 1),
		logger:   logger,
		metrics:  metrics,
	}
}

// Snapshot returns the current forecast and its version. ok is false until
// the first fetch succeeds.
func (s *Source) Snapshot() (snap domain.Snapshot, version uint64, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.version, s.version > 0
}

// Version returns the number of snapshots published so far.
func (s *Source) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Ready reports whether a snapshot is available.
func (s *Source) Ready() bool {
	return s.Version() > 0
}

// Pending reports whether a fetch is in flight.
func (s *Source) Pending() bool {
	return s.pending.Load()
}

// CheckReadiness returns nil once a forecast is available.
func (s *Source) CheckReadiness(_ context.Context) error {
	if !s.Ready() {
		return errors.New("forecast not loaded yet")
	}
	return nil
}

// Refresh fetches immediately, subject to the manual refresh rate limit.
func (s *Source) Refresh(ctx context.Context) error {
	if !s.limiter.AllowN(s.clock.Now(), 1) {
		s.metrics.WeatherFetches.WithLabelValues("rate_limited").Inc()
		return ErrRateLimited
	}
	return s.fetch(ctx)
}

// Run fetches until the first snapshot lands, backing off between failures,
// then refetches every interval until ctx is cancelled. Failed refetches keep
// the previous snapshot.
func (s *Source) Run(ctx context.Context) error {
	s.logger.Info("forecast source started", "refresh_interval", s.interval)

	// Exponential backoff: start at 2s, double each retry, cap at 2m.
	backoff := initialBackoff
	for !s.Ready() {
		err := s.fetch(ctx)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Error("initial forecast fetch failed", "error", err, "retry_in", backoff)
		if !sleepWithContext(ctx, s.clock, backoff) {
			return nil
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("forecast source stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if err := s.fetch(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("forecast refresh failed, keeping previous snapshot", "error", err)
			}
		}
	}
}

func (s *Source) fetch(ctx context.Context) error {
	s.pending.Store(true)
	defer s.pending.Store(false)

	snap, err := s.fetcher.Fetch(ctx)
	if err == nil {
		err = snap.Validate()
	}
	if err != nil {
		s.metrics.WeatherFetches.WithLabelValues("error").Inc()
		return fmt.Errorf("fetch forecast: %w", err)
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = s.clock.Now()
	}

	s.mu.Lock()
	s.snap = snap
	s.version++
	version := s.version
	s.mu.Unlock()

	s.metrics.WeatherFetches.WithLabelValues("success").Inc()
	s.metrics.WeatherReady.Set(1)
	s.logger.Info("forecast updated", "version", version, "samples", len(snap.Samples))
	return nil
}

const (
	initialBackoff = 2 * time.Second
	maxBackoff     = 2 * time.Minute
)

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
