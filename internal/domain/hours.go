package domain

import "fmt"

// Stepping selects which fixed set of hour offsets is displayed.
type Stepping int

const (
	// Short shows now through 12 hours ahead in 3-hour steps.
	Short Stepping = iota
	// Long shows now through 48 hours ahead in 12-hour steps.
	Long
)

var (
	shortOffsets = [RingCount]int{0, 3, 6, 9, 12}
	longOffsets  = [RingCount]int{0, 12, 24, 36, 48}

	// ringFractions are ring sizes as a fraction of surface height. Index i
	// pairs with offset index i for either stepping.
	ringFractions = [RingCount]float64{0.31, 0.52, 0.70, 0.90, 1.50}
)

// RingCount is the number of hours shown at once.
const RingCount = 5

// HourRing pairs a forecast hour offset with its ring size.
type HourRing struct {
	Offset   int     // hours ahead of now
	Fraction float64 // ring size as a fraction of surface height
}

// String implements fmt.Stringer.
func (s Stepping) String() string {
	switch s {
	case Short:
		return "short"
	case Long:
		return "long"
	default:
		return fmt.Sprintf("stepping(%d)", int(s))
	}
}

// MarshalText encodes the stepping by name.
func (s Stepping) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stepping name written by MarshalText.
func (s *Stepping) UnmarshalText(text []byte) error {
	switch string(text) {
	case "short":
		*s = Short
	case "long":
		*s = Long
	default:
		return fmt.Errorf("unknown stepping %q", text)
	}
	return nil
}

// offsets returns the hour offsets for the stepping, smallest first.
func (s Stepping) offsets() [RingCount]int {
	if s == Long {
		return longOffsets
	}
	return shortOffsets
}

// MaxOffset returns the furthest hour the stepping reads. A snapshot must
// hold at least MaxOffset()+1 samples.
func (s Stepping) MaxOffset() int {
	o := s.offsets()
	return o[RingCount-1]
}

// fontStep is how many hours of the data window one offset hour costs when
// scaling label sizes. Short rings are close together in time, so they are
// spread out more to keep the text sizes distinguishable.
func (s Stepping) fontStep() int {
	if s == Long {
		return 1
	}
	return 4
}

// SelectHours returns the rings for a stepping, ordered from the nearest
// hour (smallest ring) outwards. Callers paint in reverse so larger rings
// sit underneath.
func SelectHours(s Stepping) []HourRing {
	offsets := s.offsets()
	rings := make([]HourRing, RingCount)
	for i := range rings {
		rings[i] = HourRing{Offset: offsets[i], Fraction: ringFractions[i]}
	}
	return rings
}
