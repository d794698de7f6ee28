// Package domain encodes an hourly weather forecast as a glanceable ring face.
//
// # Face Layout
//
// Five forecast hours are drawn as nested shapes around the canvas centre.
// The nearest hour is the smallest ring; ring sizes are fixed fractions of
// the canvas height regardless of which hours are shown:
//
//	ring     0     1     2     3     4
//	size   0.31  0.52  0.70  0.90  1.50   × height
//	short    0h    3h    6h    9h   12h
//	long     0h   12h   24h   36h   48h
//
// Each ring contributes a filled square (temperature) and a filled top
// half-disc (precipitation probability). Squares are painted largest first,
// then arcs largest first, so every ring's band stays visible and the
// precipitation layer sits over the temperature layer.
//
// # Color Ramps
//
// Temperature (°F) uses two linear segments through a shared middle stop:
//
//	-20 #0000ff  →  55 #ea89f5  →  110 #ff0000
//
// Precipitation probability blends #d7e9f9 (0) to #343f49 (1). Ratios are
// not clamped by default; channels saturate instead. See [Palette].
//
// # Display Modes
//
// A single activate interaction steps through [ModeTable]: numbers off/on ×
// short/long stepping. With numbers on, every ring gets its precipitation
// (top), temperature (bottom), humidity (right) and wind speed (left). With
// numbers off, the face shows the current summary and a 12-hour clock.
//
// Labels above a precipitation probability of 0.3 switch to light ink, where
// the arc underneath turns dark.
package domain
