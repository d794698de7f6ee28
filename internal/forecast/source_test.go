package forecast

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/weather-glance/internal/domain"
	"github.com/couchcryptid/weather-glance/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type scriptedFetcher struct {
	mu    sync.Mutex
	errs  []error // consumed in order; nil entries succeed
	calls int
	temp  float64
}

func (f *scriptedFetcher) Fetch(_ context.Context) (domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return domain.Snapshot{}, err
		}
	}
	f.temp++
	samples := make([]domain.Sample, domain.MinSamples)
	for i := range samples {
		samples[i].Temperature = f.temp
	}
	return domain.Snapshot{Samples: samples}, nil
}

func (f *scriptedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type shortFetcher struct{}

func (shortFetcher) Fetch(_ context.Context) (domain.Snapshot, error) {
	return domain.Snapshot{Samples: make([]domain.Sample, 12)}, nil
}

func newTestSource(f Fetcher, clock clockwork.Clock) (*Source, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSource(f, clock, 15*time.Minute, time.Minute, logger, metrics), metrics
}

// --- tests ---

func TestSource_NotReadyInitially(t *testing.T) {
	src, _ := newTestSource(&scriptedFetcher{}, clockwork.NewFakeClock())

	_, version, ok := src.Snapshot()
	assert.False(t, ok)
	assert.Zero(t, version)
	assert.False(t, src.Ready())
	assert.False(t, src.Pending())
	assert.Error(t, src.CheckReadiness(context.Background()))
}

func TestSource_Refresh(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	src, metrics := newTestSource(&scriptedFetcher{}, clock)

	require.NoError(t, src.Refresh(context.Background()))

	snap, version, ok := src.Snapshot()
	require.True(t, ok)
	assert.Equal(t, uint64(1), version)
	assert.Len(t, snap.Samples, domain.MinSamples)
	assert.Equal(t, clock.Now(), snap.FetchedAt, "missing fetch time is stamped")
	assert.NoError(t, src.CheckReadiness(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherReady))
}

func TestSource_RefreshRateLimited(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src, metrics := newTestSource(&scriptedFetcher{}, clock)

	require.NoError(t, src.Refresh(context.Background()))
	err := src.Refresh(context.Background())
	require.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherFetches.WithLabelValues("rate_limited")))

	clock.Advance(time.Minute)
	require.NoError(t, src.Refresh(context.Background()))
	assert.Equal(t, uint64(2), src.Version())
}

func TestSource_RejectsShortForecast(t *testing.T) {
	src, metrics := newTestSource(shortFetcher{}, clockwork.NewFakeClock())

	err := src.Refresh(context.Background())
	require.Error(t, err)

	var missing *domain.MissingDataError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, domain.MinSamples, missing.Need)
	assert.False(t, src.Ready())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WeatherFetches.WithLabelValues("error")))
}

func TestSource_Run_RetriesThenRefreshes(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{errs: []error{errors.New("upstream down")}}
	src, _ := newTestSource(fetcher, clock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	// First attempt fails and the loop sleeps on the backoff timer.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, 1, fetcher.Calls())
	assert.False(t, src.Ready())

	clock.Advance(initialBackoff)
	require.Eventually(t, src.Ready, time.Second, time.Millisecond)
	assert.Equal(t, uint64(1), src.Version())

	// Now waiting on the refresh ticker.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(15 * time.Minute)
	require.Eventually(t, func() bool { return src.Version() == 2 }, time.Second, time.Millisecond)

	snap, _, _ := src.Snapshot()
	assert.Equal(t, 2.0, snap.Samples[0].Temperature, "second snapshot replaced the first")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("source did not stop after cancel")
	}
}

func TestSource_Run_FailedRefreshKeepsSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	fetcher := &scriptedFetcher{errs: []error{nil, errors.New("timeout")}}
	src, _ := newTestSource(fetcher, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = src.Run(ctx) }()

	require.Eventually(t, src.Ready, time.Second, time.Millisecond)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(15 * time.Minute)

	require.Eventually(t, func() bool { return fetcher.Calls() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, uint64(1), src.Version())
	assert.True(t, src.Ready())
}

func TestSource_Run_CancelledBeforeFirstFetch(t *testing.T) {
	fetcher := &scriptedFetcher{errs: []error{errors.New("down")}}
	src, _ := newTestSource(fetcher, clockwork.NewFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, src.Run(ctx))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 4*time.Second, nextBackoff(2*time.Second, maxBackoff))
	assert.Equal(t, maxBackoff, nextBackoff(90*time.Second, maxBackoff))
}
