package domain

import (
	"fmt"
	"time"
)

// Sample is the forecast for one hour.
type Sample struct {
	Temperature       float64 `json:"temperature"`        // °F
	PrecipProbability float64 `json:"precip_probability"` // 0.0–1.0
	Humidity          float64 `json:"humidity"`
	WindSpeed         float64 `json:"wind_speed"`
	Summary           string  `json:"summary,omitempty"`
}

// Snapshot is one complete hourly forecast, indexed by hours from now.
// Snapshots are replaced whole and never modified after publication.
type Snapshot struct {
	Samples   []Sample  `json:"samples"`
	FetchedAt time.Time `json:"fetched_at"`
}

// MinSamples covers the furthest hour either stepping reads.
const MinSamples = 49

// MissingDataError reports a snapshot too short for the hours requested.
type MissingDataError struct {
	Need int
	Have int
}

func (e *MissingDataError) Error() string {
	return fmt.Sprintf("forecast has %d hourly samples, need %d", e.Have, e.Need)
}

// Require returns a *MissingDataError if the snapshot has fewer than n samples.
func (s Snapshot) Require(n int) error {
	if len(s.Samples) < n {
		return &MissingDataError{Need: n, Have: len(s.Samples)}
	}
	return nil
}

// Validate checks the snapshot covers both steppings.
func (s Snapshot) Validate() error {
	return s.Require(MinSamples)
}
