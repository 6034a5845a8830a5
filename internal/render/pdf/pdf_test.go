package pdf

import (
	"bytes"
	"math"
	"testing"

	"github.com/chrissnell/printview/internal/render"
)

func TestOutput(t *testing.T) {
	s := New(Options{PageWidth: 612, PageHeight: 792, Title: "Daily View"})
	s.AddPage()
	s.SetFillColor(render.DefaultPalette().Target, 0.4)
	s.Circle(100, 100, 3, render.Fill)
	s.SetStrokeColor(render.Black)
	s.SetDash(3, 4)
	s.Line(36, 200, 576, 200)
	s.SetDash()

	var p render.Path
	p.MoveTo(10, 10).LineTo(20, 10).LineTo(20, 20).Close()
	s.Path(p, render.FillStroke)
	s.Path(render.Path{}, render.Fill)

	s.SetFont(render.Font{Bold: true, Size: 8})
	s.Text("1¼ hrs", 40, 40, render.TextOptions{Width: 60, Align: render.AlignRight})

	var buf bytes.Buffer
	if err := s.Output(&buf); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected a PDF header")
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	regular := m.StringWidth("Average BG", render.Font{Size: 8})
	heavy := m.StringWidth("Average BG", render.Font{Bold: true, Size: 8})
	if regular <= 0 || heavy <= regular {
		t.Errorf("expected bold text to be wider, got %f and %f", regular, heavy)
	}
	if got := m.LineHeight(10); math.Abs(got-11.56) > 1e-9 {
		t.Errorf("expected line height 11.56, got %f", got)
	}
}
