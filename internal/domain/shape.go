package domain

// Kind tags which fields of a Shape are meaningful.
type Kind string

const (
	KindSquare    Kind = "square"
	KindArc       Kind = "arc"
	KindLabel     Kind = "label"
	KindIndicator Kind = "indicator"
)

// Point is a position on the canvas in pixels, origin top-left.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is one drawable primitive. Kind selects the variant:
//
//	square:    Center, HalfExtent, CornerRadius, Color
//	arc:       Center, Diameter, Start, Stop (radians, clockwise from +x), Color
//	label:     Text, Center (text is centred on it), FontSize, Bold, Color
//	indicator: Center, Diameter, Round (false draws a square of Diameter/2 half-extent), Color
type Shape struct {
	Kind         Kind    `json:"kind"`
	Center       Point   `json:"center"`
	Color        Color   `json:"color"`
	HalfExtent   float64 `json:"half_extent,omitempty"`
	CornerRadius float64 `json:"corner_radius,omitempty"`
	Diameter     float64 `json:"diameter,omitempty"`
	Start        float64 `json:"start,omitempty"`
	Stop         float64 `json:"stop,omitempty"`
	Text         string  `json:"text,omitempty"`
	FontSize     float64 `json:"font_size,omitempty"`
	Bold         bool    `json:"bold,omitempty"`
	Round        bool    `json:"round,omitempty"`
}

// Frame is the ordered shape list for one redraw. Shapes are painted in
// slice order, so later entries cover earlier ones.
type Frame struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Background Color       `json:"background"`
	Mode       DisplayMode `json:"mode"`
	Shapes     []Shape     `json:"shapes"`
}

// ShapesOf returns the shapes of the given kind, preserving order.
func (f Frame) ShapesOf(kind Kind) []Shape {
	var out []Shape
	for _, s := range f.Shapes {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
