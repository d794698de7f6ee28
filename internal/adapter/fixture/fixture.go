// Package fixture serves a forecast from a JSON file, for offline displays
// and demos.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/weather-glance/internal/domain"
)

// Loader implements forecast.Fetcher by reading a snapshot file. The file
// is re-read on every fetch so edits show up on the next refresh.
type Loader struct {
	path string
}

// NewLoader creates a Loader for the JSON snapshot at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Fetch reads and decodes the snapshot file. The fetch time is left unset
// so the source stamps it.
func (l *Loader) Fetch(ctx context.Context) (domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("read fixture: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse fixture %s: %w", l.path, err)
	}
	snap.FetchedAt = time.Time{}
	return snap, nil
}

// Generate builds a deterministic hours-long forecast: a daily temperature
// swing around base°F and a rain band peaking mid-window.
func Generate(hours int, base float64) domain.Snapshot {
	samples := make([]domain.Sample, hours)
	for i := range samples {
		phase := 2 * math.Pi * float64(i) / 24
		precip := math.Max(0, math.Sin(math.Pi*float64(i)/float64(max(hours-1, 1))))
		samples[i] = domain.Sample{
			Temperature:       round1(base + 15*math.Sin(phase)),
			PrecipProbability: round2(precip * 0.8),
			Humidity:          round1(55 + 30*precip),
			WindSpeed:         round1(4 + 6*math.Abs(math.Cos(phase))),
			Summary:           summaryFor(precip * 0.8),
		}
	}
	return domain.Snapshot{Samples: samples}
}

func summaryFor(precip float64) string {
	switch {
	case precip > 0.6:
		return "Rain"
	case precip > 0.3:
		return "Cloudy"
	case precip > 0.1:
		return "Partly Cloudy"
	default:
		return "Clear"
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
