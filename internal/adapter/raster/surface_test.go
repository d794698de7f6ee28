package raster

import (
	"bytes"
	"image/png"
	"math"
	"testing"
	"time"

	"github.com/couchcryptid/weather-glance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = domain.Color{R: 0xff}
	blue  = domain.Color{B: 0xff}
	green = domain.Color{G: 0xff}
)

func newTestSurface(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := NewSurface(w, h)
	require.NoError(t, err)
	return s
}

func pixel(s *Surface, x, y int) domain.Color {
	c := s.Image().RGBAAt(x, y)
	return domain.Color{R: c.R, G: c.G, B: c.B}
}

func TestSurface_BackgroundOnly(t *testing.T) {
	s := newTestSurface(t, 20, 10)
	_, ok := s.Frame()
	assert.False(t, ok)

	require.NoError(t, s.Draw(domain.Frame{Background: domain.BackgroundColor}))

	assert.Equal(t, domain.BackgroundColor, pixel(s, 0, 0))
	assert.Equal(t, domain.BackgroundColor, pixel(s, 19, 9))
	_, ok = s.Frame()
	assert.True(t, ok)
}

func TestSurface_ArcCoversTopOfSquare(t *testing.T) {
	s := newTestSurface(t, 100, 100)
	center := domain.Point{X: 50, Y: 50}
	frame := domain.Frame{
		Background: green,
		Shapes: []domain.Shape{
			{Kind: domain.KindSquare, Center: center, HalfExtent: 20, CornerRadius: 2, Color: red},
			{Kind: domain.KindArc, Center: center, Diameter: 40, Start: math.Pi, Stop: 2 * math.Pi, Color: blue},
		},
	}
	require.NoError(t, s.Draw(frame))

	assert.Equal(t, blue, pixel(s, 50, 40), "top half is precipitation")
	assert.Equal(t, red, pixel(s, 50, 60), "bottom half is temperature")
	assert.Equal(t, red, pixel(s, 33, 33), "square corner outside the disc")
	assert.Equal(t, green, pixel(s, 50, 75), "outside the square")
	assert.Equal(t, green, pixel(s, 30, 30), "rounded corner is clipped")
}

func TestSurface_LaterShapesPaintOver(t *testing.T) {
	s := newTestSurface(t, 50, 50)
	center := domain.Point{X: 25, Y: 25}
	require.NoError(t, s.Draw(domain.Frame{
		Background: green,
		Shapes: []domain.Shape{
			{Kind: domain.KindSquare, Center: center, HalfExtent: 20, Color: red},
			{Kind: domain.KindSquare, Center: center, HalfExtent: 5, Color: blue},
		},
	}))
	assert.Equal(t, blue, pixel(s, 25, 25))
	assert.Equal(t, red, pixel(s, 10, 25))
}

func TestSurface_OversizedShapesClip(t *testing.T) {
	s := newTestSurface(t, 30, 30)
	require.NoError(t, s.Draw(domain.Frame{
		Shapes: []domain.Shape{
			{Kind: domain.KindSquare, Center: domain.Point{X: 15, Y: 15}, HalfExtent: 500, Color: red},
		},
	}))
	assert.Equal(t, red, pixel(s, 0, 0))
	assert.Equal(t, red, pixel(s, 29, 29))
}

func TestSurface_Indicators(t *testing.T) {
	s := newTestSurface(t, 40, 20)
	require.NoError(t, s.Draw(domain.Frame{
		Background: green,
		Shapes: []domain.Shape{
			{Kind: domain.KindIndicator, Center: domain.Point{X: 10, Y: 10}, Diameter: 6, Round: false, Color: red},
			{Kind: domain.KindIndicator, Center: domain.Point{X: 30, Y: 10}, Diameter: 6, Round: true, Color: blue},
		},
	}))
	assert.Equal(t, red, pixel(s, 7, 7), "square mark fills its corner")
	assert.Equal(t, blue, pixel(s, 30, 10))
	assert.Equal(t, green, pixel(s, 27, 7), "round mark leaves its corner")
}

func TestSurface_Label(t *testing.T) {
	s := newTestSurface(t, 120, 60)
	require.NoError(t, s.Draw(domain.Frame{
		Background: domain.BackgroundColor,
		Shapes: []domain.Shape{
			{Kind: domain.KindLabel, Center: domain.Point{X: 60, Y: 30}, Text: "Cloudy", FontSize: 23, Bold: true, Color: domain.InkColor},
		},
	}))

	inked := 0
	img := s.Image()
	for y := 15; y < 45; y++ {
		for x := 20; x < 100; x++ {
			if img.RGBAAt(x, y) != rgba(domain.BackgroundColor) {
				inked++
			}
		}
	}
	assert.Greater(t, inked, 50, "label pixels around the centre")
	assert.Equal(t, domain.BackgroundColor, pixel(s, 2, 2))
}

func TestSurface_UnknownKind(t *testing.T) {
	s := newTestSurface(t, 10, 10)
	err := s.Draw(domain.Frame{Shapes: []domain.Shape{{Kind: "triangle"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "triangle")
}

func TestSurface_EncodedFrame(t *testing.T) {
	samples := make([]domain.Sample, domain.MinSamples)
	for i := range samples {
		samples[i] = domain.Sample{Temperature: float64(i * 2), PrecipProbability: float64(i) / 48, Summary: "Clear"}
	}
	snap := domain.Snapshot{Samples: samples}
	now := time.Date(2026, 10, 14, 9, 5, 0, 0, time.UTC)

	enc := domain.NewEncoder(360, 740, domain.Palette{})
	frame, err := enc.Encode(snap, domain.ModeTable[0], now)
	require.NoError(t, err)

	s := newTestSurface(t, 360, 740)
	require.NoError(t, s.Draw(frame))

	// Inside the nearest ring: arc above the centre, square below.
	assert.Equal(t, domain.PrecipColor(samples[0].PrecipProbability), pixel(s, 270, 310))
	assert.Equal(t, domain.TemperatureColor(samples[0].Temperature), pixel(s, 270, 430))
	// The canvas corners fall inside the outermost 12h ring.
	assert.Equal(t, domain.PrecipColor(samples[12].PrecipProbability), pixel(s, 2, 2))
	assert.Equal(t, domain.TemperatureColor(samples[12].Temperature), pixel(s, 200, 738))

	var buf bytes.Buffer
	require.NoError(t, s.WritePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 360, decoded.Bounds().Dx())
	assert.Equal(t, 740, decoded.Bounds().Dy())
}

func TestFaceCache_Reuses(t *testing.T) {
	c, err := newFaceCache()
	require.NoError(t, err)

	a, err := c.get(12.1, false)
	require.NoError(t, err)
	b, err := c.get(12.0, false)
	require.NoError(t, err)
	assert.Same(t, a, b)

	bold, err := c.get(12, true)
	require.NoError(t, err)
	assert.NotSame(t, a, bold)
}
