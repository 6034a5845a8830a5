// Package render defines the drawing surface reports are written to and the
// geometry of the marks drawn on it.
package render

// Style selects whether a shape is stroked, filled, or both.
type Style int

const (
	Stroke Style = iota
	Fill
	FillStroke
)

func (s Style) String() string {
	switch s {
	case Fill:
		return "fill"
	case FillStroke:
		return "fillStroke"
	}
	return "stroke"
}

// Align is horizontal text alignment within TextOptions.Width.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font is a Helvetica face at a point size.
type Font struct {
	Bold bool
	Size float64
}

// TextOptions position a string inside a box starting at the text origin.
// A zero Width means the natural width of the string.
type TextOptions struct {
	Width  float64
	Align  Align
	Indent float64
}

// Sink is an ordered, append-only drawing surface. Coordinates are points
// from the top-left corner of the page. Text is drawn with its top at y, in
// the current fill color.
type Sink interface {
	AddPage()
	SetFont(f Font)
	SetFillColor(c Color, opacity float64)
	SetStrokeColor(c Color)
	SetLineWidth(w float64)
	// SetDash sets a dash pattern; no arguments means solid.
	SetDash(pattern ...float64)
	Line(x1, y1, x2, y2 float64)
	Rect(x, y, w, h float64, style Style)
	Circle(x, y, r float64, style Style)
	Path(p Path, style Style)
	Text(s string, x, y float64, opts TextOptions)
}

// Metrics measures text for layout before anything is drawn.
type Metrics interface {
	StringWidth(s string, f Font) float64
	LineHeight(size float64) float64
}

// HelveticaLineHeight is the line height of the Helvetica core fonts as a
// multiple of the point size, gap included.
const HelveticaLineHeight = 1.156

// ApproxMetrics estimates Helvetica metrics without a PDF backend, using an
// average glyph width.
type ApproxMetrics struct{}

func (ApproxMetrics) StringWidth(s string, f Font) float64 {
	perGlyph := 0.5
	if f.Bold {
		perGlyph = 0.55
	}
	return float64(len([]rune(s))) * f.Size * perGlyph
}

func (ApproxMetrics) LineHeight(size float64) float64 {
	return size * HelveticaLineHeight
}
