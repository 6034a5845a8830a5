// Package pdf implements the render.Sink drawing surface on fpdf.
package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/chrissnell/printview/internal/render"
)

const (
	regular = ""
	bold    = "B"
	family  = "Helvetica"
)

// Options describe the document being produced.
type Options struct {
	PageWidth  float64
	PageHeight float64
	Title      string
	Subject    string
	Creator    string
	// Keywords carries the document ID.
	Keywords string
}

// Sink draws onto a single PDF document.
type Sink struct {
	pdf       *fpdf.Fpdf
	tr        func(string) string
	font      render.Font
	fillAlpha float64
}

var _ render.Sink = (*Sink)(nil)

// New starts an empty document in points.
func New(opts Options) *Sink {
	p := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: opts.PageWidth, Ht: opts.PageHeight},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.SetCellMargin(0)
	p.SetTitle(opts.Title, true)
	p.SetSubject(opts.Subject, true)
	p.SetCreator(opts.Creator, true)
	p.SetKeywords(opts.Keywords, true)

	s := &Sink{
		pdf:       p,
		tr:        p.UnicodeTranslatorFromDescriptor(""),
		fillAlpha: 1,
	}
	s.SetFont(render.Font{Size: 10})
	return s
}

func (s *Sink) AddPage() {
	s.pdf.AddPage()
	s.SetFont(s.font)
}

func (s *Sink) SetFont(f render.Font) {
	s.font = f
	style := regular
	if f.Bold {
		style = bold
	}
	s.pdf.SetFont(family, style, f.Size)
}

func (s *Sink) SetFillColor(c render.Color, opacity float64) {
	s.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	s.fillAlpha = opacity
}

func (s *Sink) SetStrokeColor(c render.Color) {
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func (s *Sink) SetLineWidth(w float64) {
	s.pdf.SetLineWidth(w)
}

func (s *Sink) SetDash(pattern ...float64) {
	s.pdf.SetDashPattern(pattern, 0)
}

// alpha applies the fill opacity to filled shapes and full opacity to
// outlines; fpdf keeps a single alpha for both.
func (s *Sink) alpha(style render.Style) string {
	switch style {
	case render.Fill:
		s.pdf.SetAlpha(s.fillAlpha, "Normal")
		return "F"
	case render.FillStroke:
		s.pdf.SetAlpha(s.fillAlpha, "Normal")
		return "FD"
	}
	s.pdf.SetAlpha(1, "Normal")
	return "D"
}

func (s *Sink) Line(x1, y1, x2, y2 float64) {
	s.alpha(render.Stroke)
	s.pdf.Line(x1, y1, x2, y2)
}

func (s *Sink) Rect(x, y, w, h float64, style render.Style) {
	s.pdf.Rect(x, y, w, h, s.alpha(style))
}

func (s *Sink) Circle(x, y, r float64, style render.Style) {
	s.pdf.Circle(x, y, r, s.alpha(style))
}

func (s *Sink) Path(p render.Path, style render.Style) {
	if p.Empty() {
		return
	}
	for _, op := range p.Ops {
		switch op.Kind {
		case render.MoveTo:
			s.pdf.MoveTo(op.X, op.Y)
		case render.LineTo:
			s.pdf.LineTo(op.X, op.Y)
		case render.ClosePath:
			s.pdf.ClosePath()
		}
	}
	s.pdf.DrawPath(s.alpha(style))
}

func (s *Sink) Text(str string, x, y float64, opts render.TextOptions) {
	str = s.tr(str)
	x += opts.Indent
	w := opts.Width - opts.Indent
	if opts.Width == 0 {
		w = s.pdf.GetStringWidth(str)
	}

	align := "L"
	switch opts.Align {
	case render.AlignCenter:
		align = "C"
	case render.AlignRight:
		align = "R"
	}

	s.pdf.SetAlpha(s.fillAlpha, "Normal")
	s.pdf.SetXY(x, y)
	s.pdf.CellFormat(w, s.font.Size*render.HelveticaLineHeight, str, "", 0, align+"T", false, 0, "")
}

// Output writes the finished document.
func (s *Sink) Output(w io.Writer) error {
	if err := s.pdf.Error(); err != nil {
		return fmt.Errorf("building pdf: %w", err)
	}
	if err := s.pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

// Metrics measures Helvetica with the same core-font tables the sink draws
// with, on a scratch document so measuring never disturbs drawing state.
type Metrics struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

var _ render.Metrics = (*Metrics)(nil)

func NewMetrics() *Metrics {
	p := fpdf.New("P", "pt", "Letter", "")
	return &Metrics{pdf: p, tr: p.UnicodeTranslatorFromDescriptor("")}
}

func (m *Metrics) StringWidth(s string, f render.Font) float64 {
	style := regular
	if f.Bold {
		style = bold
	}
	m.pdf.SetFont(family, style, f.Size)
	return m.pdf.GetStringWidth(m.tr(s))
}

func (m *Metrics) LineHeight(size float64) float64 {
	return size * render.HelveticaLineHeight
}
