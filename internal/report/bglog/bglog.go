// Package bglog renders meter readings as a table: one row per day, newest
// first, with a column per three-hour slot.
package bglog

import (
	"math"
	"strconv"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/printview/internal/dataset"
	"github.com/chrissnell/printview/internal/format"
	"github.com/chrissnell/printview/internal/layout"
	"github.com/chrissnell/printview/internal/render"
	"github.com/chrissnell/printview/internal/report"
	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/scale"
)

const (
	slots      = 8
	smbgRadius = 3

	cellPadTop    = 12
	cellPadBottom = 8
	labelGap      = 1
)

type Renderer struct {
	days  []dataset.Day
	prefs types.BgPrefs
	loc   *time.Location
}

var _ report.Renderer = (*Renderer)(nil)

func New(ds *dataset.Dataset) *Renderer {
	loc := ds.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{days: ds.Days, prefs: ds.Prefs, loc: loc}
}

func (r *Renderer) Title() string {
	return "BG Log"
}

func (r *Renderer) DateRange() (string, string) {
	if len(r.days) == 0 {
		return "", ""
	}
	first, last := r.days[0].Start, r.days[len(r.days)-1].Start
	return format.PrintDate(first), format.PrintDate(last)
}

// Row is one day of the table.
type Row struct {
	Day    dataset.Day
	Slots  [slots][]types.Glucose
	Lanes  int
	Height float64
}

type frame struct {
	r            *Renderer
	pl           layout.PageLayout
	area         layout.ChartArea
	headerHeight float64
	colWidth     float64
}

// Sized holds the rows and the closing summary block with their heights.
type Sized struct {
	frame
	Rows          []Row
	SummaryHeight float64
}

func slotOf(t time.Time, loc *time.Location) int {
	return dataset.ThreeHourBin(t, loc) / 3
}

// lanes is how many label lines each side of the busiest slot needs.
// Labels alternate above and below the readings.
func lanes(slotsOfDay [slots][]types.Glucose, labelWidth, colWidth float64) int {
	busiest := lo.Max(lo.Map(slotsOfDay[:], func(s []types.Glucose, _ int) int { return len(s) }))
	perSide := (busiest + 1) / 2
	need := int(math.Ceil(float64(perSide) * labelWidth / colWidth))
	return max(1, need)
}

func (r *Renderer) EstimateHeights(pl layout.PageLayout, m render.Metrics) report.Sized {
	area := pl.ChartArea(m, false)
	f := frame{
		r:            r,
		pl:           pl,
		area:         area,
		headerHeight: m.LineHeight(pl.Fonts.Default) + 8,
		colWidth:     area.Width() / (slots + 1),
	}

	sample := "000"
	if r.prefs.Units == types.MmolL {
		sample = "00.0"
	}
	labelWidth := m.StringWidth(sample, render.Font{Size: pl.Fonts.Small}) + 2
	smallLine := m.LineHeight(pl.Fonts.Small)
	base := cellPadTop + m.LineHeight(pl.Fonts.Default) + cellPadBottom

	s := &Sized{frame: f}
	for i := len(r.days) - 1; i >= 0; i-- {
		d := r.days[i]
		row := Row{Day: d}
		for _, g := range d.SMBG {
			idx := slotOf(g.Time, r.loc)
			row.Slots[idx] = append(row.Slots[idx], g)
		}
		row.Lanes = lanes(row.Slots, labelWidth, f.colWidth)
		stacked := 2*(float64(row.Lanes)*smallLine+labelGap) + 2*smbgRadius + 8
		row.Height = max(base, stacked)
		s.Rows = append(s.Rows, row)
	}

	s.SummaryHeight = 20 + 2*(m.LineHeight(pl.Fonts.Default)+10)
	return s
}

// Packed is the table laid out onto pages; the summary is the last block.
type Packed struct {
	frame
	Rows          []Row
	SummaryHeight float64
	Placements    []layout.Placement
}

var _ report.Packed = (*Packed)(nil)

func (s *Sized) PackPages() report.Packed {
	heights := lo.Map(s.Rows, func(r Row, _ int) float64 { return r.Height })
	heights = append(heights, s.SummaryHeight)

	area := s.area
	area.Top += s.headerHeight

	return &Packed{
		frame:         s.frame,
		Rows:          s.Rows,
		SummaryHeight: s.SummaryHeight,
		Placements:    layout.Pack(heights, area, 0, 0),
	}
}

func (p *Packed) PageCount() int {
	return layout.PageCount(p.Placements)
}

func (p *Packed) RenderPage(c *report.Canvas, page int) error {
	placed := layout.OnPage(p.Placements, page)
	hasRows := lo.SomeBy(placed, func(pl layout.Placement) bool { return pl.Index < len(p.Rows) })
	if hasRows {
		p.renderColumnHeader(c)
	}

	for _, pl := range placed {
		if pl.Index == len(p.Rows) {
			p.renderSummary(c, pl.Top+20)
			continue
		}
		p.renderRow(c, p.Rows[pl.Index], pl.Top)
	}
	return nil
}

func (p *Packed) slotX(i int) float64 {
	return p.area.Left + p.colWidth*float64(i+1)
}

func (p *Packed) renderColumnHeader(c *report.Canvas) {
	top := p.area.Top
	day := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	c.SetLineWidth(0.5)
	c.SetStrokeColor(c.Palette.Axes)
	font := c.Font(false, p.pl.Fonts.Default)
	for i := 0; i < slots; i++ {
		x := p.slotX(i)
		c.SetFillColor(c.Palette.SmbgHeader, 1)
		c.Rect(x, top, p.colWidth, p.headerHeight, render.FillStroke)
		c.Ink()
		c.SetFont(font)
		c.Text(format.SlotLabel(day.Add(time.Duration(i*3)*time.Hour)), x, top+6, render.TextOptions{
			Width: p.colWidth,
			Align: render.AlignCenter,
		})
	}
}

func (p *Packed) renderRow(c *report.Canvas, row Row, top float64) {
	loc := p.r.loc
	start := row.Day.Start.In(loc)
	weekday := start.Weekday()

	fill := render.White
	if weekday == time.Saturday || weekday == time.Sunday {
		fill = c.Palette.ZebraEven
	}
	c.SetFillColor(fill, 1)
	c.Rect(p.area.Left, top, p.area.Width(), row.Height, render.Fill)

	c.SetLineWidth(0.5)
	c.SetStrokeColor(c.Palette.Axes)
	for i := 0; i < slots; i++ {
		c.Rect(p.slotX(i), top, p.colWidth, row.Height, render.Stroke)
	}

	center := top + row.Height/2
	c.Ink()
	c.Font(false, p.pl.Fonts.Default)
	c.Text(format.RowDate(start), p.area.Left, center-c.LineHeight(p.pl.Fonts.Default)/2, render.TextOptions{
		Width: p.colWidth - 4,
		Align: render.AlignRight,
	})

	small := render.Font{Size: p.pl.Fonts.Small}
	smallLine := c.LineHeight(small.Size)
	bounds := p.r.prefs.Bounds

	for i, readings := range row.Slots {
		slotStart := time.Date(start.Year(), start.Month(), start.Day(), i*3, 0, 0, 0, loc)
		x0 := p.slotX(i)
		xs := scale.NewTime(slotStart, slotStart.Add(3*time.Hour), [2]float64{x0, x0 + p.colWidth})

		for j, g := range readings {
			x := xs.AtTime(g.Time)
			c.FillCircle(x, center, smbgRadius, c.Palette.Bg(bounds.ClassifyFive(g.Value)))

			label := format.BgValue(g.Value, p.r.prefs, g.OutOfRange)
			width := c.Width(label, small)
			lane := float64((j / 2) % row.Lanes)
			y := center + smbgRadius + labelGap + lane*smallLine
			if j%2 == 0 {
				y = center - smbgRadius - labelGap - (lane+1)*smallLine
			}

			startX := x - width/2
			endX := startX + width
			if dateEdge := p.area.Left + p.colWidth; startX-1 <= dateEdge {
				startX = dateEdge + 2
			}
			if endX+1 >= p.area.Right {
				startX -= endX + 1 - p.area.Right + 1
			}

			c.SetFillColor(render.White, 1)
			c.Rect(startX-1, y-1, width+2, smallLine, render.Fill)
			c.Ink()
			c.SetFont(small)
			c.Text(label, startX, y, render.TextOptions{Width: width, Align: render.AlignCenter})
		}
	}
}

// Summary is the closing totals of the log.
type Summary struct {
	Days           int
	Readings       int
	AveragePerDay  int
	AverageGlucose float64
}

func (r *Renderer) Summary() Summary {
	values := lo.FlatMap(r.days, func(d dataset.Day, _ int) []float64 {
		return lo.Map(d.SMBG, func(g types.Glucose, _ int) float64 { return g.Value })
	})
	s := Summary{Days: len(r.days), Readings: len(values), AverageGlucose: math.NaN()}
	if s.Days > 0 {
		s.AveragePerDay = int(math.Round(float64(s.Readings) / float64(s.Days)))
	}
	if len(values) > 0 {
		s.AverageGlucose = stat.Mean(values, nil)
	}
	return s
}

func (p *Packed) renderSummary(c *report.Canvas, top float64) {
	s := p.r.Summary()
	avg := "--"
	if !math.IsNaN(s.AverageGlucose) {
		avg = format.BgValue(s.AverageGlucose, p.r.prefs, nil)
	}

	cells := [][2]string{
		{"Days In Report", strconv.Itoa(s.Days)},
		{"Total BG Readings", strconv.Itoa(s.Readings)},
		{"Avg. BG Readings / Day", strconv.Itoa(s.AveragePerDay)},
		{"Avg. BG (" + p.r.prefs.Units + ")", avg},
	}

	lineHeight := c.LineHeight(p.pl.Fonts.Default)
	rowHeight := lineHeight + 10
	width := (p.area.Width() - p.colWidth) / float64(len(cells))
	font := c.Font(false, p.pl.Fonts.Default)

	c.SetLineWidth(0.5)
	c.SetStrokeColor(c.Palette.Axes)
	for i, cell := range cells {
		x := p.area.Left + p.colWidth + width*float64(i)

		c.SetFillColor(c.Palette.SmbgHeader, 1)
		c.Rect(x, top, width, rowHeight, render.FillStroke)
		c.Rect(x, top+rowHeight, width, rowHeight, render.Stroke)

		c.Ink()
		c.SetFont(font)
		opts := render.TextOptions{Width: width, Align: render.AlignCenter}
		c.Text(cell[0], x, top+5, opts)
		c.Text(cell[1], x, top+rowHeight+5, opts)
	}
}
