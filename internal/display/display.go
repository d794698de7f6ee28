// Package display runs the frame loop that turns forecast snapshots and
// activate events into drawn frames.
package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/weather-glance/internal/domain"
	"github.com/couchcryptid/weather-glance/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Forecast provides the current snapshot and its version.
type Forecast interface {
	Snapshot() (snap domain.Snapshot, version uint64, ok bool)
}

// Scheduler decides when a frame is stale.
type Scheduler interface {
	WeatherReady(version uint64) bool
	ModeChanged()
	ShouldRedraw() bool
	Rendered()
}

// Surface draws a complete frame.
type Surface interface {
	Draw(f domain.Frame) error
}

// Display owns the display mode and serializes encoding and drawing.
type Display struct {
	encoder  *domain.Encoder
	forecast Forecast
	sched    Scheduler
	surface  Surface
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu   sync.Mutex
	mode domain.ModeState
}

// New creates a Display in the default mode. interval is the frame loop period.
func New(enc *domain.Encoder, f Forecast, sched Scheduler, s Surface, clock clockwork.Clock, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Display {
	return &Display{
		encoder:  enc,
		forecast: f,
		sched:    sched,
		surface:  s,
		clock:    clock,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
		mode:     domain.DefaultModeState(),
	}
}

// Mode returns the current display mode.
func (d *Display) Mode() domain.DisplayMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode.Mode()
}

// Activate advances to the next display mode and requests a redraw.
// It returns the new mode.
func (d *Display) Activate() domain.DisplayMode {
	d.mu.Lock()
	d.mode = domain.Advance(d.mode)
	mode := d.mode.Mode()
	d.mu.Unlock()

	d.metrics.ModeAdvances.Inc()
	d.sched.ModeChanged()
	d.logger.Info("display mode advanced",
		"show_numbers", mode.ShowNumbers,
		"stepping", mode.Stepping.String(),
	)
	return mode
}

// ShouldRedraw reports whether the next Step will draw.
func (d *Display) ShouldRedraw() bool {
	return d.sched.ShouldRedraw()
}

// Run draws the loading frame, then steps every interval until ctx is cancelled.
func (d *Display) Run(ctx context.Context) error {
	d.logger.Info("display loop started", "interval", d.interval)
	if err := d.surface.Draw(d.encoder.Loading()); err != nil {
		d.metrics.RenderErrors.Inc()
		d.logger.Error("draw loading frame failed", "error", err)
	}

	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("display loop stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if _, err := d.Step(); err != nil {
				d.logger.Error("render frame failed", "error", err)
			}
		}
	}
}

// Step runs one frame loop iteration. It syncs the scheduler with the
// forecast version and, if the frame is stale, encodes and draws it.
// It reports whether a frame was drawn. A failed draw leaves the frame
// stale so the next Step retries it.
func (d *Display) Step() (bool, error) {
	snap, version, ok := d.forecast.Snapshot()
	if ok {
		d.sched.WeatherReady(version)
	}
	if !d.sched.ShouldRedraw() {
		d.metrics.FramesSkipped.Inc()
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	start := d.clock.Now()
	frame := d.encodeLocked(snap, ok, start)
	if err := d.surface.Draw(frame); err != nil {
		d.metrics.RenderErrors.Inc()
		return false, fmt.Errorf("draw frame: %w", err)
	}
	d.sched.Rendered()

	d.metrics.FramesRendered.Inc()
	d.metrics.RenderDuration.Observe(d.clock.Since(start).Seconds())
	return true, nil
}

func (d *Display) encodeLocked(snap domain.Snapshot, ok bool, now time.Time) domain.Frame {
	if !ok {
		return d.encoder.Loading()
	}
	mode := d.mode.Mode()
	frame, err := d.encoder.Encode(snap, mode, now)
	if err != nil {
		var missing *domain.MissingDataError
		if errors.As(err, &missing) {
			d.logger.Warn("forecast too short for mode, showing loading frame",
				"need", missing.Need,
				"have", missing.Have,
				"stepping", mode.Stepping.String(),
			)
		} else {
			d.logger.Error("encode frame failed", "error", err)
		}
		d.metrics.RenderErrors.Inc()
		return d.encoder.Loading()
	}
	return frame
}
