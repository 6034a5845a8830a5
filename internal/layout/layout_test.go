package layout

import (
	"math"
	"testing"
)

type fixedLines float64

func (f fixedLines) LineHeight(size float64) float64 {
	return size * float64(f)
}

func TestPack(t *testing.T) {
	area := ChartArea{Top: 10, Bottom: 140}

	tests := []struct {
		name       string
		heights    []float64
		padding    float64
		maxPerPage int
		pages      [][]int
	}{
		{
			name:    "six equal days",
			heights: []float64{40, 40, 40, 40, 40, 40},
			pages:   [][]int{{0, 1, 2}, {3, 4, 5}},
		},
		{
			name:    "padding pushes third day over",
			heights: []float64{40, 40, 40},
			padding: 10,
			pages:   [][]int{{0, 1}, {2}},
		},
		{
			name:    "oversized day goes alone",
			heights: []float64{40, 200, 40},
			pages:   [][]int{{0}, {1}, {2}},
		},
		{
			name:       "per-page cap",
			heights:    []float64{10, 10, 10, 10},
			maxPerPage: 3,
			pages:      [][]int{{0, 1, 2}, {3}},
		},
		{
			name:    "nothing to pack",
			heights: nil,
			pages:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := Pack(tt.heights, area, tt.padding, tt.maxPerPage)

			if len(ps) != len(tt.heights) {
				t.Fatalf("expected every block placed once, got %d of %d", len(ps), len(tt.heights))
			}
			if PageCount(ps) != len(tt.pages) {
				t.Fatalf("expected %d pages, got %d", len(tt.pages), PageCount(ps))
			}

			for page, expected := range tt.pages {
				on := OnPage(ps, page)
				if len(on) != len(expected) {
					t.Fatalf("page %d: expected %d blocks, got %d", page, len(expected), len(on))
				}
				for j, p := range on {
					if p.Index != expected[j] {
						t.Errorf("page %d slot %d: expected block %d, got %d", page, j, expected[j], p.Index)
					}
					if j == 0 && p.Top != area.Top {
						t.Errorf("page %d: expected first block at %f, got %f", page, area.Top, p.Top)
					}
					if j > 0 && math.Abs(p.Top-(on[j-1].Bottom+tt.padding)) > 1e-9 {
						t.Errorf("page %d slot %d: expected top %f, got %f", page, j, on[j-1].Bottom+tt.padding, p.Top)
					}
					if math.Abs(p.Height()-tt.heights[p.Index]) > 1e-9 {
						t.Errorf("block %d: height changed", p.Index)
					}
				}
			}

			for i := 1; i < len(ps); i++ {
				if ps[i].Index != ps[i-1].Index+1 || ps[i].Page < ps[i-1].Page {
					t.Errorf("expected date order to be preserved at %d", i)
				}
			}
		})
	}
}

func TestMinimums(t *testing.T) {
	m := Minimums(ChartArea{Top: 0, Bottom: 650})
	perChart := 200.0

	if math.Abs(m.Total-perChart) > 1e-9 {
		t.Errorf("expected per-chart total %f, got %f", perChart, m.Total)
	}
	if math.Abs(m.NotesEtc-30) > 1e-9 || math.Abs(m.BgEtcChart-90) > 1e-9 {
		t.Errorf("unexpected notes/bg regions %f/%f", m.NotesEtc, m.BgEtcChart)
	}
	if math.Abs(m.BolusDetails-40) > 1e-9 || math.Abs(m.BasalChart-30) > 1e-9 || math.Abs(m.BelowBasal-10) > 1e-9 {
		t.Errorf("unexpected bolus/basal regions %f/%f/%f", m.BolusDetails, m.BasalChart, m.BelowBasal)
	}
	if math.Abs(m.PaddingBelow-50.0/3) > 1e-9 {
		t.Errorf("expected padding %f, got %f", 50.0/3, m.PaddingBelow)
	}
	if math.Abs(m.Fixed()+m.BolusDetails-m.Total) > 1e-9 {
		t.Errorf("expected regions to sum to the nominal chart height")
	}
}

func TestSize(t *testing.T) {
	m := Minimums(ChartArea{Top: 0, Bottom: 650})

	tests := []struct {
		name    string
		needed  float64
		details float64
		chart   float64
	}{
		{"empty ledger", 0, 40, 200},
		{"small ledger", 25, 40, 200},
		{"tall ledger", 100, 100, 260},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details, chart := m.Size(tt.needed)
			if math.Abs(details-tt.details) > 1e-9 {
				t.Errorf("expected details %f, got %f", tt.details, details)
			}
			if math.Abs(chart-tt.chart) > 1e-9 {
				t.Errorf("expected chart %f, got %f", tt.chart, chart)
			}
			if chart < m.Total {
				t.Errorf("chart height below minimum")
			}
		})
	}
}

func TestChartArea(t *testing.T) {
	pl := DefaultPageLayout()
	area := pl.ChartArea(fixedLines(1), true)

	if pl.Width() != 540 || pl.Height() != 720 {
		t.Fatalf("expected 540x720 printable area, got %fx%f", pl.Width(), pl.Height())
	}
	if area.Top != 36+14*4 {
		t.Errorf("expected top %f, got %f", 36.0+14*4, area.Top)
	}
	if area.Bottom != 756-8*9 {
		t.Errorf("expected bottom %f, got %f", 756.0-8*9, area.Bottom)
	}
	if math.Abs(area.Left-(36+0.22*540)) > 1e-9 {
		t.Errorf("expected left %f, got %f", 36+0.22*540, area.Left)
	}
	if area.Right != 576 {
		t.Errorf("expected right 576, got %f", area.Right)
	}

	if plain := pl.ChartArea(fixedLines(1), false); plain.Left != 36 {
		t.Errorf("expected full-width area to start at the margin, got %f", plain.Left)
	}
}

func TestMinimumChartsFillPage(t *testing.T) {
	area := DefaultPageLayout().ChartArea(fixedLines(1.156), true)
	m := Minimums(area)

	ps := Pack([]float64{m.Total, m.Total, m.Total, m.Total}, area, m.PaddingBelow, 0)
	if got := len(OnPage(ps, 0)); got != 3 {
		t.Errorf("expected three minimum charts on the first page, got %d", got)
	}
}
