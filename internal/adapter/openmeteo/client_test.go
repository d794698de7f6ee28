package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/weather-glance/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
	edtOffset         = -4 * 60 * 60
)

// 12:30 EDT.
var testNow = time.Date(2026, 10, 14, 16, 30, 0, 0, time.UTC)

func testClient(baseURL string) *Client {
	return &Client{
		lat:        40.7128,
		lon:        -74.0060,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		breaker:    newBreaker(slog.New(slog.NewTextHandler(io.Discard, nil))),
		clock:      clockwork.NewFakeClockAt(testNow),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func ptr(v float64) *float64 { return &v }

// hourlyResponse builds n hours starting at 11:00 local, one hour before now.
func hourlyResponse(n int) response {
	start := time.Date(2026, 10, 14, 11, 0, 0, 0, time.FixedZone("EDT", edtOffset))
	r := response{Timezone: "America/New_York", UTCOffsetSeconds: edtOffset}
	for i := 0; i < n; i++ {
		r.Hourly.Time = append(r.Hourly.Time, start.Add(time.Duration(i)*time.Hour).Format(timeLayout))
		r.Hourly.Temperature = append(r.Hourly.Temperature, 60+float64(i))
		r.Hourly.PrecipProbability = append(r.Hourly.PrecipProbability, ptr(float64(i%101)))
		r.Hourly.Humidity = append(r.Hourly.Humidity, 70)
		r.Hourly.WindSpeed = append(r.Hourly.WindSpeed, 5.5)
		r.Hourly.WeatherCode = append(r.Hourly.WeatherCode, 3)
	}
	return r
}

func serve(t *testing.T, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "40.7128", q.Get("latitude"))
		assert.Equal(t, "-74.0060", q.Get("longitude"))
		assert.Equal(t, "fahrenheit", q.Get("temperature_unit"))
		assert.Equal(t, "mph", q.Get("wind_speed_unit"))
		assert.Contains(t, q.Get("hourly"), "precipitation_probability")
		assert.Equal(t, fmt.Sprint(domain.MinSamples+1), q.Get("forecast_hours"))

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := serve(t, hourlyResponse(51))

	snap, err := testClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Samples, 50, "the elapsed 11:00 hour is dropped")
	assert.Equal(t, testNow, snap.FetchedAt)

	first := snap.Samples[0]
	assert.Equal(t, 61.0, first.Temperature)
	assert.InDelta(t, 0.01, first.PrecipProbability, 1e-9)
	assert.Equal(t, 70.0, first.Humidity)
	assert.Equal(t, 5.5, first.WindSpeed)
	assert.Equal(t, "Overcast", first.Summary)
	assert.NoError(t, snap.Validate())
}

func TestClient_Fetch_NullPrecipitation(t *testing.T) {
	body := hourlyResponse(51)
	body.Hourly.PrecipProbability[50] = nil
	srv := serve(t, body)

	snap, err := testClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, snap.Samples[len(snap.Samples)-1].PrecipProbability)
}

func TestClient_Fetch_MismatchedArrays(t *testing.T) {
	body := hourlyResponse(51)
	body.Hourly.WindSpeed = body.Hourly.WindSpeed[:10]
	srv := serve(t, body)

	_, err := testClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "differ in length")
}

func TestClient_Fetch_BadTime(t *testing.T) {
	body := hourlyResponse(3)
	body.Hourly.Time[0] = "yesterday"
	srv := serve(t, body)

	_, err := testClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse hourly time")
}

func TestClient_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Latitude must be in range")
}

func TestClient_Fetch_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	for range breakerFailures {
		_, err := c.Fetch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	}

	_, err := c.Fetch(context.Background())
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(breakerFailures), hits.Load(), "open breaker skips the request")
}

func TestClient_Fetch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Fetch_ContextCancelled(t *testing.T) {
	srv := serve(t, hourlyResponse(51))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Fetch(ctx)
	require.Error(t, err)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Clear", Summary(0))
	assert.Equal(t, "Rain", Summary(63))
	assert.Equal(t, "Thunderstorm", Summary(95))
	assert.Equal(t, "Unknown", Summary(42))
}

func TestNewClient(t *testing.T) {
	c := NewClient(1, 2, 3*time.Second, clockwork.NewRealClock(), slog.Default())
	assert.Equal(t, defaultBaseURL, c.baseURL)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}
