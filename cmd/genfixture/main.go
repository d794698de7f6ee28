// Command genfixture writes a deterministic synthetic hourly forecast for
// the fixture weather source.
//
// Usage:
//
//	go run ./cmd/genfixture -out data/forecast.json -hours 49 -base 55
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/weather-glance/internal/adapter/fixture"
	"github.com/couchcryptid/weather-glance/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the forecast JSON fixture")
	hours := flag.Int("hours", domain.MinSamples, "number of hourly samples")
	base := flag.Float64("base", 55, "mean temperature in °F")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *hours < domain.MinSamples {
		return fmt.Errorf("-hours must be at least %d to cover long stepping", domain.MinSamples)
	}

	snap := fixture.Generate(*hours, *base)
	if err := snap.Validate(); err != nil {
		return err
	}

	if err := writeJSON(*out, snap); err != nil {
		return err
	}
	log.Printf("wrote %d samples to %s", len(snap.Samples), *out)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
