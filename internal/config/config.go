package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Weather source kinds.
const (
	SourceOpenMeteo = "openmeteo"
	SourceFixture   = "fixture"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Canvas and frame loop.
	CanvasWidth   int
	CanvasHeight  int
	FrameInterval time.Duration
	ClampRatio    bool

	// Forecast source.
	WeatherSource          string
	WeatherFixture         string
	WeatherLatitude        float64
	WeatherLongitude       float64
	WeatherTimeout         time.Duration
	WeatherRefreshInterval time.Duration
	RefreshRateLimit       time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	width, err := parsePositiveInt("CANVAS_WIDTH", "360")
	if err != nil {
		return nil, err
	}
	height, err := parsePositiveInt("CANVAS_HEIGHT", "740")
	if err != nil {
		return nil, err
	}

	frameInterval, err := parsePositiveDuration("FRAME_INTERVAL", "100ms")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parsePositiveDuration("WEATHER_REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	refreshRateLimit, err := parsePositiveDuration("REFRESH_RATE_LIMIT", "1m")
	if err != nil {
		return nil, err
	}

	lat, err := parseFloatInRange("WEATHER_LATITUDE", "40.7128", -90, 90)
	if err != nil {
		return nil, err
	}
	lon, err := parseFloatInRange("WEATHER_LONGITUDE", "-74.0060", -180, 180)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CanvasWidth:   width,
		CanvasHeight:  height,
		FrameInterval: frameInterval,
		ClampRatio:    os.Getenv("CLAMP_TEMPERATURE_RATIO") == "true",

		WeatherSource:          sharedcfg.EnvOrDefault("WEATHER_SOURCE", SourceOpenMeteo),
		WeatherFixture:         os.Getenv("WEATHER_FIXTURE"),
		WeatherLatitude:        lat,
		WeatherLongitude:       lon,
		WeatherTimeout:         weatherTimeout,
		WeatherRefreshInterval: refreshInterval,
		RefreshRateLimit:       refreshRateLimit,
	}

	switch cfg.WeatherSource {
	case SourceOpenMeteo:
	case SourceFixture:
		if cfg.WeatherFixture == "" {
			return nil, errors.New("WEATHER_SOURCE is fixture but WEATHER_FIXTURE is not set")
		}
	default:
		return nil, fmt.Errorf("invalid WEATHER_SOURCE %q: want %s or %s", cfg.WeatherSource, SourceOpenMeteo, SourceFixture)
	}

	return cfg, nil
}

func parsePositiveInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloatInRange(key, def string, lo, hi float64) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}
