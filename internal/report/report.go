// Package report composes paginated documents from independent renderers.
// Every renderer is sized and packed before the first page is drawn, so page
// totals are known while pages are rendered.
package report

import (
	"github.com/chrissnell/printview/internal/layout"
	"github.com/chrissnell/printview/internal/render"
)

// Renderer produces one section of a document.
type Renderer interface {
	Title() string
	// DateRange is the first and last day the section covers, formatted.
	DateRange() (string, string)
	EstimateHeights(pl layout.PageLayout, m render.Metrics) Sized
}

// Sized is a section whose blocks have known heights.
type Sized interface {
	PackPages() Packed
}

// Packed is a section laid out onto pages numbered from 0.
type Packed interface {
	PageCount() int
	RenderPage(c *Canvas, page int) error
}

// Canvas is what a renderer draws a page with.
type Canvas struct {
	render.Sink
	Metrics render.Metrics
	Layout  layout.PageLayout
	Palette render.Palette
}

// Font sets the current font.
func (c *Canvas) Font(bold bool, size float64) render.Font {
	f := render.Font{Bold: bold, Size: size}
	c.SetFont(f)
	return f
}

// LineHeight of the given font size.
func (c *Canvas) LineHeight(size float64) float64 {
	return c.Metrics.LineHeight(size)
}

// Width of s in f.
func (c *Canvas) Width(s string, f render.Font) float64 {
	return c.Metrics.StringWidth(s, f)
}

// StrokeLine draws a solid line in color at width w.
func (c *Canvas) StrokeLine(x1, y1, x2, y2, w float64, color render.Color) {
	c.SetLineWidth(w)
	c.SetStrokeColor(color)
	c.Line(x1, y1, x2, y2)
}

// FillCircle draws an opaque filled circle.
func (c *Canvas) FillCircle(x, y, r float64, color render.Color) {
	c.SetFillColor(color, 1)
	c.Circle(x, y, r, render.Fill)
}

// Ink resets the fill to opaque black for text.
func (c *Canvas) Ink() {
	c.SetFillColor(render.Black, 1)
}
