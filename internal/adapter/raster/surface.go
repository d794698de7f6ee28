// Package raster draws frames into RGBA images.
package raster

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"sync"

	"github.com/couchcryptid/weather-glance/internal/domain"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Surface is a fixed-size drawing target that keeps the last frame it drew.
// It is safe for concurrent use; Draw replaces the image whole.
type Surface struct {
	width, height int
	faces         *faceCache

	mu    sync.RWMutex
	img   *image.RGBA
	frame domain.Frame
	drawn bool
}

// NewSurface creates a width × height surface with the Go fonts loaded.
func NewSurface(width, height int) (*Surface, error) {
	faces, err := newFaceCache()
	if err != nil {
		return nil, err
	}
	return &Surface{
		width:  width,
		height: height,
		faces:  faces,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// Draw paints the frame's shapes in order over its background.
func (s *Surface) Draw(f domain.Frame) error {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	fillRect(img, img.Bounds(), f.Background)

	for i, sh := range f.Shapes {
		var err error
		switch sh.Kind {
		case domain.KindSquare:
			fillRoundedSquare(img, sh.Center, sh.HalfExtent, sh.CornerRadius, sh.Color)
		case domain.KindArc:
			fillArc(img, sh.Center, sh.Diameter/2, sh.Start, sh.Stop, sh.Color)
		case domain.KindIndicator:
			if sh.Round {
				fillCircle(img, sh.Center, sh.Diameter/2, sh.Color)
			} else {
				fillRoundedSquare(img, sh.Center, sh.Diameter/2, 0, sh.Color)
			}
		case domain.KindLabel:
			err = s.drawLabel(img, sh)
		default:
			err = fmt.Errorf("unknown shape kind %q", sh.Kind)
		}
		if err != nil {
			return fmt.Errorf("draw shape %d: %w", i, err)
		}
	}

	s.mu.Lock()
	s.img = img
	s.frame = f
	s.drawn = true
	s.mu.Unlock()
	return nil
}

// Image returns the most recently drawn image. It is not modified afterwards.
func (s *Surface) Image() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

// Frame returns the most recently drawn frame, and false before the first Draw.
func (s *Surface) Frame() (domain.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.drawn
}

// WritePNG encodes the most recently drawn image as PNG.
func (s *Surface) WritePNG(w io.Writer) error {
	return png.Encode(w, s.Image())
}

func (s *Surface) drawLabel(img *image.RGBA, sh domain.Shape) error {
	if sh.Text == "" {
		return nil
	}
	face, err := s.faces.get(sh.FontSize, sh.Bold)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(sh.Color),
		Face: face,
	}
	m := face.Metrics()
	width := d.MeasureString(sh.Text)
	d.Dot = fixed.Point26_6{
		X: toFixed(sh.Center.X) - width/2,
		Y: toFixed(sh.Center.Y) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(sh.Text)
	return nil
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

// faceCache holds one font face per (size, weight). Sizes are rounded to
// the nearest half point.
type faceCache struct {
	regular, bold *opentype.Font

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	halfPoints int
	bold       bool
}

func newFaceCache() (*faceCache, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	return &faceCache{regular: regular, bold: bold, faces: make(map[faceKey]font.Face)}, nil
}

func (c *faceCache) get(size float64, bold bool) (font.Face, error) {
	key := faceKey{halfPoints: int(math.Round(size * 2)), bold: bold}
	if key.halfPoints < 2 {
		key.halfPoints = 2
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.faces[key]; ok {
		return f, nil
	}

	src := c.regular
	if bold {
		src = c.bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    float64(key.halfPoints) / 2,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face %.1fpt: %w", size, err)
	}
	c.faces[key] = f
	return f, nil
}
