package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/couchcryptid/weather-glance/internal/adapter/fixture"
	httpadapter "github.com/couchcryptid/weather-glance/internal/adapter/http"
	"github.com/couchcryptid/weather-glance/internal/adapter/openmeteo"
	"github.com/couchcryptid/weather-glance/internal/adapter/raster"
	"github.com/couchcryptid/weather-glance/internal/config"
	"github.com/couchcryptid/weather-glance/internal/display"
	"github.com/couchcryptid/weather-glance/internal/domain"
	"github.com/couchcryptid/weather-glance/internal/forecast"
	"github.com/couchcryptid/weather-glance/internal/observability"
	"github.com/couchcryptid/weather-glance/internal/scheduler"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// A missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	var fetcher forecast.Fetcher
	switch cfg.WeatherSource {
	case config.SourceFixture:
		fetcher = fixture.NewLoader(cfg.WeatherFixture)
		logger.Info("using fixture forecast", "path", cfg.WeatherFixture)
	default:
		fetcher = openmeteo.NewClient(cfg.WeatherLatitude, cfg.WeatherLongitude, cfg.WeatherTimeout, clock, logger)
		logger.Info("using open-meteo forecast",
			"latitude", cfg.WeatherLatitude,
			"longitude", cfg.WeatherLongitude,
			"timeout", cfg.WeatherTimeout,
		)
	}

	source := forecast.NewSource(fetcher, clock, cfg.WeatherRefreshInterval, cfg.RefreshRateLimit, logger, metrics)

	surface, err := raster.NewSurface(cfg.CanvasWidth, cfg.CanvasHeight)
	if err != nil {
		logger.Error("failed to create surface", "error", err)
		os.Exit(1)
	}

	enc := domain.NewEncoder(float64(cfg.CanvasWidth), float64(cfg.CanvasHeight), domain.Palette{ClampRatio: cfg.ClampRatio})
	sched := scheduler.New(clock, logger, metrics)
	disp := display.New(enc, source, sched, surface, clock, cfg.FrameInterval, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, source, source, disp, surface, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				logger.Error(name+" error", "error", err)
			}
		}()
	}
	run("forecast source", source.Run)
	run("clock ticker", sched.RunTicker)
	run("display loop", disp.Run)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	wg.Wait()

	logger.Info("shutdown complete")
}
