package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// formatPercent renders a 0–1 probability as a whole percentage, e.g. 0.42 → "42%".
func formatPercent(p float64) string {
	return strconv.Itoa(int(math.Round(p*100))) + "%"
}

// formatDegrees renders a temperature rounded to the nearest degree, e.g. 71.6 → "72°".
func formatDegrees(t float64) string {
	return strconv.Itoa(int(math.Round(t))) + "°"
}

// formatTenths renders a value with one decimal place.
func formatTenths(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ClockText formats t on a 12-hour clock with zero-padded minutes, e.g. "9:05".
// Midnight and noon read as 12.
func ClockText(t time.Time) string {
	h := t.Hour() % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d", h, t.Minute())
}
