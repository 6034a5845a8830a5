// Package layout sizes the printable page and packs elastic-height blocks
// onto fixed-height pages.
package layout

// DPI is the PDF user-space resolution.
const DPI = 72

// Margins in points.
type Margins struct {
	Top    float64 `json:"top" yaml:"top"`
	Right  float64 `json:"right" yaml:"right"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" yaml:"left"`
}

// Fonts are the point sizes used across a report.
type Fonts struct {
	Default       float64 `json:"default" yaml:"default"`
	Large         float64 `json:"large" yaml:"large"`
	Small         float64 `json:"small" yaml:"small"`
	ExtraSmall    float64 `json:"extraSmall" yaml:"extra_small"`
	Header        float64 `json:"header" yaml:"header"`
	Footer        float64 `json:"footer" yaml:"footer"`
	SummaryHeader float64 `json:"summaryHeader" yaml:"summary_header"`
}

// PageLayout describes the physical page and its typography.
type PageLayout struct {
	PageWidth       float64 `json:"pageWidth"`
	PageHeight      float64 `json:"pageHeight"`
	Margins         Margins `json:"margins"`
	Fonts           Fonts   `json:"fonts"`
	SummaryWidthPct float64 `json:"summaryWidthPct"`
	SummaryGapPct   float64 `json:"summaryGapPct"`
	ChartsPerPage   int     `json:"chartsPerPage"`
}

// DefaultPageLayout is US Letter, portrait, with half-inch margins.
func DefaultPageLayout() PageLayout {
	return PageLayout{
		PageWidth:  8.5 * DPI,
		PageHeight: 11 * DPI,
		Margins:    Margins{Top: DPI / 2, Right: DPI / 2, Bottom: DPI / 2, Left: DPI / 2},
		Fonts: Fonts{
			Default:       10,
			Large:         12,
			Small:         8,
			ExtraSmall:    6,
			Header:        14,
			Footer:        8,
			SummaryHeader: 10,
		},
		SummaryWidthPct: 0.18,
		SummaryGapPct:   0.04,
		ChartsPerPage:   3,
	}
}

// Width is the printable width inside the margins.
func (p PageLayout) Width() float64 {
	return p.PageWidth - p.Margins.Left - p.Margins.Right
}

// Height is the printable height inside the margins.
func (p PageLayout) Height() float64 {
	return p.PageHeight - p.Margins.Top - p.Margins.Bottom
}

func (p PageLayout) RightEdge() float64 {
	return p.Margins.Left + p.Width()
}

func (p PageLayout) BottomEdge() float64 {
	return p.Margins.Top + p.Height()
}

// SummaryRight is the right edge of the per-chart summary column.
func (p PageLayout) SummaryRight() float64 {
	return p.Margins.Left + p.SummaryWidthPct*p.Width()
}

// LineHeighter reports the line height of the body font at a size.
type LineHeighter interface {
	LineHeight(size float64) float64
}

// ChartArea is the region charts may occupy once header, footer, and the
// summary column are reserved.
type ChartArea struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

func (a ChartArea) Height() float64 {
	return a.Bottom - a.Top
}

func (a ChartArea) Width() float64 {
	return a.Right - a.Left
}

// ChartArea reserves four header lines and nine footer lines. withSummary
// also reserves the summary column and its gap on the left.
func (p PageLayout) ChartArea(m LineHeighter, withSummary bool) ChartArea {
	left := p.Margins.Left
	if withSummary {
		left += (p.SummaryWidthPct + p.SummaryGapPct) * p.Width()
	}
	return ChartArea{
		Top:    p.Margins.Top + m.LineHeight(p.Fonts.Header)*4,
		Bottom: p.BottomEdge() - m.LineHeight(p.Fonts.Footer)*9,
		Left:   left,
		Right:  p.RightEdge(),
	}
}
