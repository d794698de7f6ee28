package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/couchcryptid/weather-glance/internal/domain"
)

func rgba(c domain.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

func fillRect(img *image.RGBA, r image.Rectangle, c domain.Color) {
	col := rgba(c)
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}

// span returns the pixel rectangle covering a box of half-extent r around
// c, clipped to the image.
func span(img *image.RGBA, c domain.Point, r float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(c.X-r)), int(math.Floor(c.Y-r)),
		int(math.Ceil(c.X+r))+1, int(math.Ceil(c.Y+r))+1,
	).Intersect(img.Bounds())
}

// fillRoundedSquare fills a square of the given half-extent centred on c,
// with corners rounded to radius corner. Pixels are sampled at their centres.
func fillRoundedSquare(img *image.RGBA, c domain.Point, half, corner float64, fill domain.Color) {
	col := rgba(fill)
	corner = math.Min(corner, half)
	inner := half - corner
	b := span(img, c, half)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := math.Abs(float64(y) + 0.5 - c.Y)
		if dy > half {
			continue
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := math.Abs(float64(x) + 0.5 - c.X)
			if dx > half {
				continue
			}
			if dx > inner && dy > inner {
				ox, oy := dx-inner, dy-inner
				if ox*ox+oy*oy > corner*corner {
					continue
				}
			}
			img.SetRGBA(x, y, col)
		}
	}
}

func fillCircle(img *image.RGBA, c domain.Point, radius float64, fill domain.Color) {
	fillArc(img, c, radius, 0, 2*math.Pi, fill)
}

// fillArc fills the pie slice of a disc swept clockwise (screen
// coordinates, y down) from start to stop radians, measured from +x.
func fillArc(img *image.RGBA, c domain.Point, radius, start, stop float64, fill domain.Color) {
	sweep := stop - start
	if sweep <= 0 {
		return
	}
	full := sweep >= 2*math.Pi
	start = normalizeAngle(start)
	col := rgba(fill)

	r2 := radius * radius
	b := span(img, c, radius)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		dy := float64(y) + 0.5 - c.Y
		for x := b.Min.X; x < b.Max.X; x++ {
			dx := float64(x) + 0.5 - c.X
			if dx*dx+dy*dy > r2 {
				continue
			}
			if !full && normalizeAngle(math.Atan2(dy, dx)-start) > sweep {
				continue
			}
			img.SetRGBA(x, y, col)
		}
	}
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
