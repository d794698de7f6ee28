package domain

import (
	"fmt"
	"math"
	"strconv"
)

// Color represents an 8-bit RGB color value.
type Color struct {
	R, G, B uint8
}

// Ramp anchors for temperature and precipitation.
var (
	ColdColor = MustParseHex("#0000ff")
	MildColor = MustParseHex("#ea89f5")
	HotColor  = MustParseHex("#ff0000")

	DryColor = MustParseHex("#d7e9f9")
	WetColor = MustParseHex("#343f49")
)

// Temperature ramp stops in display units (°F). The mild stop is shared by
// both segments so the ramp is continuous at MildTemp.
const (
	ColdTemp = -20.0
	MildTemp = 55.0
	HotTemp  = 110.0
)

// Hex returns the color as a CSS hex string.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA implements image/color.Color. Colors are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// MarshalText encodes the color as its hex string so frames serialize as
// "#rrggbb" rather than an object.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText parses a "#rrggbb" string.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseHex parses a "#rrggbb" color string.
func ParseHex(s string) (Color, error) {
	if len(s) != 7 || s[0] != '#' {
		return Color{}, fmt.Errorf("parse color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseHex is ParseHex for package-level literals. It panics on malformed input.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Lerp blends from a to b by amt. amt is not clamped: values outside [0,1]
// extrapolate, and each channel saturates at 0 or 255.
func Lerp(a, b Color, amt float64) Color {
	return Color{
		R: lerpChannel(a.R, b.R, amt),
		G: lerpChannel(a.G, b.G, amt),
		B: lerpChannel(a.B, b.B, amt),
	}
}

func lerpChannel(a, b uint8, amt float64) uint8 {
	v := math.Round(float64(a) + (float64(b)-float64(a))*amt)
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Palette maps weather magnitudes to colors. The zero value reproduces the
// unclamped ramps; ClampRatio pins the blend ratio to [0,1] so temperatures
// outside [ColdTemp, HotTemp] hold the end colors instead of drifting.
type Palette struct {
	ClampRatio bool
}

// Temperature returns the color for t on the two-segment cold/mild/hot ramp.
func (p Palette) Temperature(t float64) Color {
	if t < MildTemp {
		return Lerp(ColdColor, MildColor, p.ratio(normalize(t, ColdTemp, MildTemp)))
	}
	return Lerp(MildColor, HotColor, p.ratio(normalize(t, MildTemp, HotTemp)))
}

// Precip returns the color for a precipitation probability in [0,1].
func (p Palette) Precip(prob float64) Color {
	return Lerp(DryColor, WetColor, p.ratio(prob))
}

func (p Palette) ratio(v float64) float64 {
	if !p.ClampRatio {
		return v
	}
	return clamp(v, 0, 1)
}

// TemperatureColor maps a temperature to its ramp color without clamping.
func TemperatureColor(t float64) Color {
	return Palette{}.Temperature(t)
}

// PrecipColor maps a precipitation probability to its ramp color without clamping.
func PrecipColor(p float64) Color {
	return Palette{}.Precip(p)
}

// normalize re-maps v from [lo, hi] to [0, 1] without clamping.
func normalize(v, lo, hi float64) float64 {
	return (v - lo) / (hi - lo)
}

// remap re-maps v from [inLo, inHi] to [outLo, outHi] without clamping.
func remap(v, inLo, inHi, outLo, outHi float64) float64 {
	return outLo + (outHi-outLo)*normalize(v, inLo, inHi)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
