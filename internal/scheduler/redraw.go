// Package scheduler decides when the display owes a redraw.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-glance/internal/observability"
	"github.com/jonboulle/clockwork"
)

// TickInterval keeps the clock label current when nothing else changes.
const TickInterval = 30 * time.Second

// State is whether a redraw is owed.
type State int

const (
	Idle State = iota
	Dirty
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "idle"
}

// Redraw reasons, used as the metric label.
const (
	ReasonWeather = "weather"
	ReasonMode    = "mode"
	ReasonTick    = "tick"
)

// Redraw is the Idle/Dirty state machine between the frame loop and the
// events that invalidate the current frame. It starts Idle; the first
// forecast marks it Dirty. It is safe for concurrent use.
type Redraw struct {
	mu             sync.Mutex
	state          State
	weatherVersion uint64

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an Idle scheduler. clock drives RunTicker.
func New(clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Redraw {
	return &Redraw{
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// WeatherReady reports that forecast version is available. Versions start
// at 1 and grow with each replaced snapshot; only a version newer than the
// last one seen marks the frame dirty. It returns whether it did.
func (r *Redraw) WeatherReady(version uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if version == 0 || version <= r.weatherVersion {
		return false
	}
	r.weatherVersion = version
	r.markLocked(ReasonWeather)
	return true
}

// ModeChanged marks the frame dirty after the display mode advances.
func (r *Redraw) ModeChanged() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markLocked(ReasonMode)
}

// Tick marks the frame dirty so the clock label is refreshed.
func (r *Redraw) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markLocked(ReasonTick)
}

func (r *Redraw) markLocked(reason string) {
	r.metrics.RedrawRequests.WithLabelValues(reason).Inc()
	if r.state == Dirty {
		return
	}
	r.state = Dirty
	r.logger.Debug("redraw requested", "reason", reason)
}

// State returns the current state.
func (r *Redraw) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// ShouldRedraw reports whether the frame loop must encode and draw now.
func (r *Redraw) ShouldRedraw() bool {
	return r.State() == Dirty
}

// Rendered returns the scheduler to Idle after a completed frame.
func (r *Redraw) Rendered() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = Idle
}

// RunTicker calls Tick every TickInterval until ctx is cancelled. The
// ticker is stopped before it returns.
func (r *Redraw) RunTicker(ctx context.Context) error {
	ticker := r.clock.NewTicker(TickInterval)
	defer ticker.Stop()

	r.logger.Info("clock ticker started", "interval", TickInterval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("clock ticker stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			r.Tick()
		}
	}
}
