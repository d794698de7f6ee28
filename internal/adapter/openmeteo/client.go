package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/weather-glance/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
)

const defaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Consecutive failed requests that open the breaker, and how long it stays
// open before a trial request is let through.
const (
	breakerFailures = 3
	breakerCooldown = 2 * time.Minute
)

var hourlyFields = []string{
	"temperature_2m",
	"precipitation_probability",
	"relative_humidity_2m",
	"wind_speed_10m",
	"weather_code",
}

// Client implements forecast.Fetcher using the Open-Meteo hourly forecast API.
type Client struct {
	lat, lon   float64
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client for one location.
func NewClient(lat, lon float64, timeout time.Duration, clock clockwork.Clock, logger *slog.Logger) *Client {
	return &Client{
		lat: lat,
		lon: lon,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		breaker: newBreaker(logger),
		clock:   clock,
		logger:  logger,
	}
}

func newBreaker(logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

// Fetch returns the hourly forecast starting at the current hour. Requests
// fail fast with gobreaker.ErrOpenState while the upstream keeps failing.
func (c *Client) Fetch(ctx context.Context) (domain.Snapshot, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return domain.Snapshot{}, fmt.Errorf("open-meteo unavailable: %w", err)
		}
		return domain.Snapshot{}, err
	}
	fr := result.(response)

	now := c.clock.Now()
	samples, err := fr.samples(now)
	if err != nil {
		return domain.Snapshot{}, err
	}
	c.logger.Debug("open-meteo forecast decoded", "samples", len(samples), "timezone", fr.Timezone)

	return domain.Snapshot{Samples: samples, FetchedAt: now}, nil
}

func (c *Client) doRequest(ctx context.Context) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(), nil)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return response{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var fr response
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}
	return fr, nil
}

func (c *Client) buildURL() string {
	params := url.Values{
		"latitude":         {strconv.FormatFloat(c.lat, 'f', 4, 64)},
		"longitude":        {strconv.FormatFloat(c.lon, 'f', 4, 64)},
		"hourly":           {strings.Join(hourlyFields, ",")},
		"temperature_unit": {"fahrenheit"},
		"wind_speed_unit":  {"mph"},
		"timezone":         {"auto"},
		"forecast_hours":   {strconv.Itoa(domain.MinSamples + 1)},
	}
	return c.baseURL + "?" + params.Encode()
}

// Open-Meteo API response types.

type response struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Hourly           hourly `json:"hourly"`
}

type hourly struct {
	Time              []string   `json:"time"` // local wall time, "2006-01-02T15:04"
	Temperature       []float64  `json:"temperature_2m"`
	PrecipProbability []*float64 `json:"precipitation_probability"` // percent; null past the model horizon
	Humidity          []float64  `json:"relative_humidity_2m"`
	WindSpeed         []float64  `json:"wind_speed_10m"`
	WeatherCode       []int      `json:"weather_code"`
}

const timeLayout = "2006-01-02T15:04"

// samples converts the parallel hourly arrays into samples, dropping hours
// that ended before now so index 0 is the current hour.
func (r response) samples(now time.Time) ([]domain.Sample, error) {
	h := r.Hourly
	n := len(h.Time)
	if len(h.Temperature) != n || len(h.PrecipProbability) != n || len(h.Humidity) != n ||
		len(h.WindSpeed) != n || len(h.WeatherCode) != n {
		return nil, fmt.Errorf("open-meteo hourly arrays differ in length")
	}

	loc := time.FixedZone(r.Timezone, r.UTCOffsetSeconds)
	start := 0
	for start < n {
		t, err := time.ParseInLocation(timeLayout, h.Time[start], loc)
		if err != nil {
			return nil, fmt.Errorf("parse hourly time %q: %w", h.Time[start], err)
		}
		if t.Add(time.Hour).After(now) {
			break
		}
		start++
	}

	samples := make([]domain.Sample, 0, n-start)
	for i := start; i < n; i++ {
		var precip float64
		if p := h.PrecipProbability[i]; p != nil {
			precip = *p / 100
		}
		samples = append(samples, domain.Sample{
			Temperature:       h.Temperature[i],
			PrecipProbability: precip,
			Humidity:          h.Humidity[i],
			WindSpeed:         h.WindSpeed[i],
			Summary:           Summary(h.WeatherCode[i]),
		})
	}
	return samples, nil
}
