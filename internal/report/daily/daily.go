// Package daily renders one chart per calendar day: glucose, insulin, carbs
// and basal delivery on a shared time axis, with a summary column.
//
// Rendering is a pipeline of explicit values. Days are sized from their
// bolus ledgers, packed onto pages, then given scales; each stage is a pure
// function of the one before it.
package daily

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/chrissnell/printview/internal/dataset"
	"github.com/chrissnell/printview/internal/device"
	"github.com/chrissnell/printview/internal/layout"
	"github.com/chrissnell/printview/internal/render"
	"github.com/chrissnell/printview/internal/report"
	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/scale"
)

const (
	bgAxisFontSize = 5
	carbsFontSize  = 5.5
	markerFontSize = 5

	carbRadius = 4.25
	cbgRadius  = 1
	smbgRadius = 3

	// ledger line spacing as a multiple of the small font line height
	ledgerLineFactor = 1.25
	// gap between the top of the ledger band and its first line
	ledgerTopPad = 2
)

// Renderer is the daily charts section.
type Renderer struct {
	days   []dataset.Day
	prefs  types.BgPrefs
	loc    *time.Location
	device device.Profile
}

var _ report.Renderer = (*Renderer)(nil)

func New(ds *dataset.Dataset, profile device.Profile) *Renderer {
	loc := ds.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{
		days:   ds.Days,
		prefs:  ds.Prefs,
		loc:    loc,
		device: profile,
	}
}

func (r *Renderer) Title() string {
	return "Daily View"
}

func (r *Renderer) DateRange() (string, string) {
	if len(r.days) == 0 {
		return "", ""
	}
	first, last := r.days[0].Start, r.days[len(r.days)-1].Start
	return first.Format("Jan 2, 2006"), last.Format("Jan 2, 2006")
}

// frame is the page geometry every chart shares.
type frame struct {
	r        *Renderer
	pl       layout.PageLayout
	area     layout.ChartArea
	minimums layout.ChartMinimums
}

// SizedDay is a day with its estimated chart height.
type SizedDay struct {
	Day                dataset.Day `json:"-"`
	Date               string      `json:"date"`
	BolusDetailsHeight float64     `json:"bolusDetailsHeight"`
	ChartHeight        float64     `json:"chartHeight"`
}

// SizedDays is the first pipeline stage.
type SizedDays struct {
	frame
	Days []SizedDay
}

// LedgerLines is the number of bolus ledger lines in the busiest three-hour
// bin. Extended and combination boluses take two lines.
func LedgerLines(events []dataset.InsulinEvent) int {
	bins := lo.GroupBy(events, func(e dataset.InsulinEvent) int { return e.ThreeHourBin })
	lines := lo.MapToSlice(bins, func(_ int, es []dataset.InsulinEvent) int {
		return lo.SumBy(es, func(e dataset.InsulinEvent) int { return e.DetailLines() })
	})
	return lo.Max(lines)
}

// ledgerHeight is the room a ledger of n lines needs below the bolus chart.
func ledgerHeight(lines int, lineHeight float64) float64 {
	if lines == 0 {
		return 0
	}
	return ledgerTopPad + float64(lines)*lineHeight
}

// Size estimates every day's chart height once.
func Size(days []dataset.Day, mins layout.ChartMinimums, lineHeight float64) []SizedDay {
	return lo.Map(days, func(d dataset.Day, _ int) SizedDay {
		details, chart := mins.Size(ledgerHeight(LedgerLines(d.Bolus), lineHeight))
		return SizedDay{
			Day:                d,
			Date:               d.Key,
			BolusDetailsHeight: details,
			ChartHeight:        chart,
		}
	})
}

func (r *Renderer) EstimateHeights(pl layout.PageLayout, m render.Metrics) report.Sized {
	area := pl.ChartArea(m, true)
	mins := layout.Minimums(area)
	lineHeight := m.LineHeight(pl.Fonts.Small) * ledgerLineFactor

	return &SizedDays{
		frame: frame{r: r, pl: pl, area: area, minimums: mins},
		Days:  Size(r.days, mins, lineHeight),
	}
}

// PackedDay is a sized day placed on a page.
type PackedDay struct {
	SizedDay
	layout.Placement
}

// PackedDays is the second pipeline stage.
type PackedDays struct {
	frame
	Days []PackedDay
}

// Pack places the sized days onto pages.
func (s *SizedDays) Pack() *PackedDays {
	heights := lo.Map(s.Days, func(d SizedDay, _ int) float64 { return d.ChartHeight })
	placements := layout.Pack(heights, s.area, s.minimums.PaddingBelow, s.pl.ChartsPerPage)

	out := &PackedDays{frame: s.frame}
	for _, p := range placements {
		out.Days = append(out.Days, PackedDay{SizedDay: s.Days[p.Index], Placement: p})
	}
	return out
}

func (s *SizedDays) PackPages() report.Packed {
	return s.Pack().Scale()
}

// DayChart is a placed day with its four scales.
type DayChart struct {
	PackedDay
	X     scale.Time
	Bg    scale.Linear
	Bolus scale.Linear
	Basal scale.Linear
	// BgCeiling is the top of the glucose domain.
	BgCeiling float64
}

// ScaledDays is the final pipeline stage, ready to draw.
type ScaledDays struct {
	frame
	Charts []DayChart
}

var _ report.Packed = (*ScaledDays)(nil)

// Scale builds each chart's scales from its own day's data and placement.
func (p *PackedDays) Scale() *ScaledDays {
	out := &ScaledDays{frame: p.frame}
	bounds := p.r.prefs.Bounds
	m := p.minimums

	for _, d := range p.Days {
		ranges := d.Day.Ranges()
		ceiling := math.Min(math.Max(ranges.BgMax, bounds.TargetUpper), bounds.VeryHigh)
		top, bottom := d.Top, d.Bottom

		out.Charts = append(out.Charts, DayChart{
			PackedDay: d,
			X: scale.NewTime(d.Day.Start, d.Day.End, [2]float64{
				p.area.Left + cbgRadius,
				p.area.Right - cbgRadius,
			}),
			Bg: scale.NewLinear([2]float64{0, ceiling}, [2]float64{
				top + m.NotesEtc + m.BgEtcChart + cbgRadius,
				top + m.NotesEtc - cbgRadius,
			}),
			Bolus: scale.NewLinear([2]float64{0, ranges.BolusMax}, [2]float64{
				top + m.NotesEtc + m.BgEtcChart,
				top + m.NotesEtc + m.BgEtcChart/3,
			}),
			Basal: scale.NewLinear([2]float64{0, ranges.BasalMax}, [2]float64{
				bottom - m.BelowBasal,
				bottom - m.BelowBasal - m.BasalChart,
			}),
			BgCeiling: ceiling,
		})
	}
	return out
}

func (s *ScaledDays) PageCount() int {
	return layout.PageCount(s.Placements())
}

// Placements returns where every chart landed.
func (s *ScaledDays) Placements() []layout.Placement {
	return lo.Map(s.Charts, func(c DayChart, _ int) layout.Placement { return c.Placement })
}

// RenderPage draws the legend and then each chart on the page, top to
// bottom.
func (s *ScaledDays) RenderPage(c *report.Canvas, page int) error {
	charts := lo.Filter(s.Charts, func(ch DayChart, _ int) bool { return ch.Page == page })

	s.renderLegend(c)
	for i, ch := range charts {
		s.renderChart(c, ch, i == len(charts)-1)
	}
	return nil
}
