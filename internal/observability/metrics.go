package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the glance display.
type Metrics struct {
	FramesRendered prometheus.Counter
	FramesSkipped  prometheus.Counter
	RenderErrors   prometheus.Counter
	RenderDuration prometheus.Histogram

	// Redraw scheduling.
	RedrawRequests *prometheus.CounterVec // labels: reason={weather,mode,tick}
	ModeAdvances   prometheus.Counter

	// Forecast source.
	WeatherFetches *prometheus.CounterVec // labels: outcome={success,error,rate_limited}
	WeatherReady   prometheus.Gauge
}

// NewMetrics creates and registers all display metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FramesRendered,
		m.FramesSkipped,
		m.RenderErrors,
		m.RenderDuration,
		m.RedrawRequests,
		m.ModeAdvances,
		m.WeatherFetches,
		m.WeatherReady,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_glance",
			Name:      "frames_rendered_total",
			Help:      "Total frames encoded and drawn to the surface.",
		}),
		FramesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_glance",
			Name:      "frames_skipped_total",
			Help:      "Frame loop iterations skipped because nothing changed.",
		}),
		RenderErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_glance",
			Name:      "render_errors_total",
			Help:      "Frames that failed to encode or draw.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "weather_glance",
			Name:      "render_duration_seconds",
			Help:      "Duration of one encode-and-draw pass.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		RedrawRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_glance",
			Name:      "redraw_requests_total",
			Help:      "Requests to redraw by reason.",
		}, []string{"reason"}),
		ModeAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_glance",
			Name:      "mode_advances_total",
			Help:      "Activate interactions that advanced the display mode.",
		}),
		WeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_glance",
			Name:      "weather_fetches_total",
			Help:      "Forecast fetches by outcome.",
		}, []string{"outcome"}),
		WeatherReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weather_glance",
			Name:      "weather_ready",
			Help:      "1 once a forecast snapshot is available, 0 before.",
		}),
	}
}
