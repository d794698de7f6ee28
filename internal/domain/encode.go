package domain

import (
	"math"
	"time"
)

// Ink and layout constants for the glance face.
var (
	BackgroundColor = MustParseHex("#f7f7f7")
	InkColor        = MustParseHex("#3c3c3c")
	InkOnDarkColor  = MustParseHex("#ededed")
	LoadingColor    = MustParseHex("#030037")
)

const (
	// DarkPrecipThreshold is the probability above which the precipitation
	// band is dark enough that labels over it switch to light ink.
	DarkPrecipThreshold = 0.3

	minFontSize       = 12.0
	secondaryFontRate = 0.8
	summaryFontSize   = 23.0
	loadingFontSize   = 40.0
	squareCorner      = 2.0

	indicatorDiameter = 6.0
	indicatorSpacing  = 30.0
	indicatorCount    = 3
)

// Encoder turns a forecast snapshot into the shapes of one frame for a
// canvas of fixed size. It holds no state between calls.
type Encoder struct {
	Width   float64
	Height  float64
	Palette Palette
}

// NewEncoder creates an encoder for a width × height canvas.
func NewEncoder(width, height float64, palette Palette) *Encoder {
	return &Encoder{Width: width, Height: height, Palette: palette}
}

func (e *Encoder) center() Point {
	return Point{X: e.Width / 2, Y: e.Height / 2}
}

// Encode builds the frame for snap in the given mode, with now as the clock
// reading. The returned shapes are in paint order: temperature squares
// largest first, then precipitation arcs largest first, then labels, then
// the stepping indicators.
//
// It returns a *MissingDataError if snap does not reach the furthest hour
// the mode's stepping reads.
func (e *Encoder) Encode(snap Snapshot, mode DisplayMode, now time.Time) (Frame, error) {
	if err := snap.Require(mode.Stepping.MaxOffset() + 1); err != nil {
		return Frame{}, err
	}

	rings := SelectHours(mode.Stepping)
	samples := snap.Samples
	c := e.center()

	shapes := make([]Shape, 0, 2*RingCount+4*RingCount+indicatorCount)

	for i := len(rings) - 1; i >= 0; i-- {
		size := rings[i].Fraction * e.Height
		shapes = append(shapes, Shape{
			Kind:         KindSquare,
			Center:       c,
			HalfExtent:   size * 0.5,
			CornerRadius: squareCorner,
			Color:        e.Palette.Temperature(samples[rings[i].Offset].Temperature),
		})
	}

	// Arcs go over every square so the precipitation band stays visible.
	for i := len(rings) - 1; i >= 0; i-- {
		size := rings[i].Fraction * e.Height
		shapes = append(shapes, Shape{
			Kind:     KindArc,
			Center:   c,
			Diameter: size,
			Start:    math.Pi,
			Stop:     2 * math.Pi,
			Color:    e.Palette.Precip(samples[rings[i].Offset].PrecipProbability),
		})
	}

	if mode.ShowNumbers {
		shapes = append(shapes, e.numberLabels(samples, rings, mode.Stepping)...)
	} else {
		shapes = append(shapes, e.summaryLabels(samples[0], now)...)
	}

	shapes = append(shapes, e.indicators(mode.Stepping)...)

	return Frame{
		Width:      e.Width,
		Height:     e.Height,
		Background: BackgroundColor,
		Mode:       mode,
		Shapes:     shapes,
	}, nil
}

// Loading returns the frame shown until the first forecast arrives.
func (e *Encoder) Loading() Frame {
	return Frame{
		Width:      e.Width,
		Height:     e.Height,
		Background: BackgroundColor,
		Shapes: []Shape{{
			Kind:     KindLabel,
			Center:   e.center(),
			Text:     "Loading...",
			FontSize: loadingFontSize,
			Color:    LoadingColor,
		}},
	}
}

// numberLabels places four readings around the centre for every ring,
// moving outwards with the ring index.
func (e *Encoder) numberLabels(samples []Sample, rings []HourRing, s Stepping) []Shape {
	c := e.center()
	shapes := make([]Shape, 0, 4*len(rings))

	for i, ring := range rings {
		sample := samples[ring.Offset]
		step := float64(i + 1)
		fs := e.fontSize(len(samples), ring.Offset, s)
		small := secondaryFontRate * fs
		ink := inkFor(sample.PrecipProbability)

		shapes = append(shapes,
			Shape{
				Kind:     KindLabel,
				Center:   Point{X: c.X, Y: c.Y - step*e.Height/11 - 10},
				Text:     formatPercent(sample.PrecipProbability),
				FontSize: fs,
				Color:    ink,
			},
			Shape{
				Kind:     KindLabel,
				Center:   Point{X: c.X, Y: c.Y + step*e.Height/11 + 10},
				Text:     formatDegrees(sample.Temperature),
				FontSize: fs,
				Color:    InkColor,
			},
			Shape{
				Kind:     KindLabel,
				Center:   Point{X: c.X + step*e.Width/5.3 + 15, Y: c.Y - 0.6*fs},
				Text:     formatTenths(sample.Humidity),
				FontSize: small,
				Color:    ink,
			},
			Shape{
				Kind:     KindLabel,
				Center:   Point{X: c.X - step*e.Width/5.3 - 15, Y: c.Y + 0.4*fs},
				Text:     formatTenths(sample.WindSpeed),
				FontSize: small,
				Color:    InkColor,
			},
		)
	}
	return shapes
}

// fontSize scales text with how much of the data window lies beyond the
// offset, so hours nearer now read larger.
func (e *Encoder) fontSize(window, offset int, s Stepping) float64 {
	maxSize := math.Max(minFontSize, e.Width/10)
	n := float64(window)
	fs := remap(n-float64(offset*s.fontStep()), 0, n, minFontSize, maxSize)
	return clamp(fs, minFontSize, maxSize)
}

func (e *Encoder) summaryLabels(now Sample, clock time.Time) []Shape {
	c := e.center()
	return []Shape{
		{
			Kind:     KindLabel,
			Center:   Point{X: c.X, Y: c.Y - 0.8*summaryFontSize},
			Text:     now.Summary,
			FontSize: summaryFontSize,
			Bold:     true,
			Color:    inkFor(now.PrecipProbability),
		},
		{
			Kind:     KindLabel,
			Center:   Point{X: c.X, Y: c.Y + 30},
			Text:     ClockText(clock),
			FontSize: summaryFontSize,
			Bold:     true,
			Color:    InkColor,
		},
	}
}

// indicators draws the stepping cue in the bottom-left corner: three dots,
// with the first swapped for a small square on Long stepping.
func (e *Encoder) indicators(s Stepping) []Shape {
	x := e.Width * 0.01
	y := e.Height - 20
	shapes := make([]Shape, indicatorCount)
	for j := range shapes {
		shapes[j] = Shape{
			Kind:     KindIndicator,
			Center:   Point{X: x + float64(j)*indicatorSpacing, Y: y},
			Diameter: indicatorDiameter,
			Round:    !(j == 0 && s == Long),
			Color:    InkColor,
		}
	}
	return shapes
}

func inkFor(precip float64) Color {
	if precip > DarkPrecipThreshold {
		return InkOnDarkColor
	}
	return InkColor
}
