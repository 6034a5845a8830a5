package daily

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/chrissnell/printview/internal/dataset"
	"github.com/chrissnell/printview/internal/format"
	"github.com/chrissnell/printview/internal/render"
	"github.com/chrissnell/printview/internal/report"
	"github.com/chrissnell/printview/pkg/basal"
	"github.com/chrissnell/printview/pkg/bolus"
	"github.com/chrissnell/printview/pkg/scale"
)

// chartState carries the positions one chart's drawing steps share.
type chartState struct {
	DayChart
	bottomOfBgEtc        float64
	bottomOfBolusDetails float64
	bottomOfBasal        float64
	binX                 [8]float64
	binWidth             [8]float64
}

func (s *ScaledDays) renderChart(c *report.Canvas, ch DayChart, lastOnPage bool) {
	st := &chartState{DayChart: ch}

	s.renderSummary(c, ch)
	s.renderXAxes(c, st)
	s.renderYAxes(c, st)
	s.renderCbgs(c, st)
	s.renderSmbgs(c, st)
	s.renderInsulinEvents(c, st)
	s.renderFood(c, st)
	s.renderSiteChanges(c, st)
	s.renderBolusDetails(c, st)
	s.renderBasalPaths(c, st)
	s.renderBasalRates(c, st)
	if !lastOnPage {
		s.renderDivider(c, st)
	}
}

func (s *ScaledDays) renderXAxes(c *report.Canvas, st *chartState) {
	m := s.minimums
	left, right := s.area.Left, s.area.Right

	st.bottomOfBgEtc = st.Top + m.NotesEtc + m.BgEtcChart
	st.bottomOfBolusDetails = st.bottomOfBgEtc + st.BolusDetailsHeight
	st.bottomOfBasal = st.bottomOfBolusDetails + m.BasalChart

	for _, y := range []float64{st.bottomOfBgEtc, st.bottomOfBolusDetails, st.bottomOfBasal} {
		c.StrokeLine(left, y, right, y, 0.25, c.Palette.Axes)
	}
}

// renderYAxes draws the three-hour gridlines and the glucose guides, and
// records where each three-hour ledger column sits.
func (s *ScaledDays) renderYAxes(c *report.Canvas, st *chartState) {
	start := st.Day.Start.In(s.r.loc)
	small := s.pl.Fonts.Small

	for i := 0; i <= 8; i++ {
		tick := time.Date(start.Year(), start.Month(), start.Day(), i*3, 0, 0, 0, s.r.loc)
		x := st.X.AtTime(tick)
		switch i {
		case 0:
			x = s.area.Left
		case 8:
			x = s.area.Right
		}
		if i > 0 {
			st.binWidth[i-1] = x - st.binX[i-1]
		}
		if i < 8 {
			st.binX[i] = x
			c.Ink()
			c.Font(false, small)
			c.Text(format.HourLabel(tick), x, st.Top, render.TextOptions{Indent: 3, Width: 40})
		}
		c.StrokeLine(x, st.Top, x, st.bottomOfBasal, 0.25, c.Palette.Axes)
	}

	b := s.r.prefs.Bounds
	precision := s.r.prefs.Precision()
	labelOpts := render.TextOptions{
		Align: render.AlignRight,
		Width: s.area.Left - s.pl.SummaryRight() - 3,
	}
	guides := []struct {
		value  float64
		dashed bool
	}{
		{b.VeryLow, false},
		{b.TargetLower, true},
		{b.TargetUpper, true},
		{b.VeryHigh, false},
	}

	for _, g := range guides {
		if g.value > st.BgCeiling {
			continue
		}
		y := st.Bg.At(g.value)
		if g.dashed {
			c.SetDash(3, 4)
			c.StrokeLine(s.area.Left, y, s.area.Right, y, 0.25, c.Palette.Axes)
			c.SetDash()
		}
		c.SetFillColor(c.Palette.Axes, 1)
		c.Font(false, bgAxisFontSize)
		c.Text(format.Decimal(g.value, precision), s.pl.SummaryRight(), y-c.LineHeight(bgAxisFontSize)/2, labelOpts)
	}
}

func (s *ScaledDays) renderCbgs(c *report.Canvas, st *chartState) {
	for _, g := range st.Day.CBG {
		c.FillCircle(st.X.AtTime(g.Time), st.Bg.At(g.Value), cbgRadius, c.Palette.Bg(s.r.prefs.Bounds.Classify(g.Value)))
	}
}

func (s *ScaledDays) renderSmbgs(c *report.Canvas, st *chartState) {
	font := render.Font{Bold: true, Size: s.pl.Fonts.Small}

	for _, g := range st.Day.SMBG {
		x := st.X.AtTime(g.Time)
		y := st.Bg.At(g.Value)
		label := format.BgValue(g.Value, s.r.prefs, g.OutOfRange)
		width := c.Width(label, font)

		c.FillCircle(x, y, smbgRadius, c.Palette.Bg(s.r.prefs.Bounds.Classify(g.Value)))

		// keep the label inside the chart horizontally
		start := x - width/2
		end := start + width
		if start <= s.area.Left {
			start = s.area.Left + 1
		}
		if end >= s.area.Right {
			start -= end - s.area.Right + 1
		}

		c.Ink()
		c.SetFont(font)
		c.Text(label, start, y-12.5, render.TextOptions{})
	}
}

func (s *ScaledDays) drawEventPaths(c *report.Canvas, paths []render.BolusPath) {
	for _, p := range paths {
		color := c.Palette.Bolus(p.Kind)
		if p.Stroked() {
			c.SetLineWidth(0.5)
			c.SetDash(0.5, 1)
			c.SetStrokeColor(color)
			c.Path(p.Path, render.Stroke)
			c.SetDash()
			continue
		}
		c.SetFillColor(color, 1)
		c.Path(p.Path, render.Fill)
	}
}

func (s *ScaledDays) renderCarbBadge(c *report.Canvas, x, y, carbs float64) {
	c.FillCircle(x, y, carbRadius, c.Palette.Carbs)
	c.Ink()
	c.Font(false, carbsFontSize)
	c.Text(format.Decimal(carbs, 0), x-carbRadius*2, y-1.75, render.TextOptions{
		Align: render.AlignCenter,
		Width: carbRadius * 4,
	})
}

func (s *ScaledDays) renderInsulinEvents(c *report.Canvas, st *chartState) {
	for _, e := range st.Day.Bolus {
		s.drawEventPaths(c, render.BolusPaths(e.Event, st.X.AtTime, st.Bolus, render.DefaultBolusGeometry()))

		if carbs := e.Carbs(); carbs > 0 {
			top := e.MaxValue()
			if math.IsNaN(top) {
				top = 0
			}
			s.renderCarbBadge(c, st.X.AtTime(e.When()), st.Bolus.At(top)-carbRadius-1, carbs)
		}
	}
}

func (s *ScaledDays) renderFood(c *report.Canvas, st *chartState) {
	for _, f := range st.Day.Food {
		if f.Carbs <= 0 {
			continue
		}
		s.renderCarbBadge(c, st.X.AtTime(f.Time), st.Bolus.At(0)-carbRadius-1, f.Carbs)
	}
}

// renderSiteChanges marks infusion site changes in the notes band, with the
// days since the previous change when it is known.
func (s *ScaledDays) renderSiteChanges(c *report.Canvas, st *chartState) {
	if len(st.Day.SiteChanges) == 0 {
		return
	}
	y := st.Top + s.minimums.NotesEtc*0.6
	label := s.r.device.Labels.SiteChange
	labelFont := render.Font{Size: s.pl.Fonts.ExtraSmall}

	for _, sc := range st.Day.SiteChanges {
		x := st.X.AtTime(sc.Time)

		c.SetFillColor(render.White, 1)
		c.SetStrokeColor(c.Palette.DarkGrey)
		c.SetLineWidth(0.5)
		c.Circle(x, y, carbRadius, render.FillStroke)

		c.SetFillColor(c.Palette.DarkGrey, 1)
		if !math.IsNaN(sc.DaysSince) {
			c.Font(true, markerFontSize)
			c.Text(format.Decimal(sc.DaysSince, 0), x-carbRadius, y-c.LineHeight(markerFontSize)/2, render.TextOptions{
				Align: render.AlignCenter,
				Width: carbRadius * 2,
			})
		}

		c.SetFont(labelFont)
		lx := x + carbRadius + 2
		if w := c.Width(label, labelFont); lx+w > s.area.Right {
			lx = x - carbRadius - 2 - w
		}
		c.Text(label, lx, y-c.LineHeight(labelFont.Size)/2, render.TextOptions{})
	}
}

func ledgerDelivered(e bolus.Event) string {
	d := e.Delivered()
	if math.IsNaN(d) {
		return "--"
	}
	return format.RemoveTrailingZeroes(format.Decimal(d, 2))
}

func (s *ScaledDays) renderBolusDetails(c *report.Canvas, st *chartState) {
	small := s.pl.Fonts.Small
	c.Ink()
	c.Font(false, small)
	step := c.LineHeight(small) * ledgerLineFactor
	top := st.Bolus.Range()[0] + ledgerTopPad

	bins := lo.GroupBy(st.Day.Bolus, func(e dataset.InsulinEvent) int { return e.ThreeHourBin / 3 })
	for bin := 0; bin < len(st.binX); bin++ {
		events := bins[bin]
		sort.SliceStable(events, func(i, j int) bool { return events[i].When().Before(events[j].When()) })

		x := st.binX[bin]
		opts := render.TextOptions{Indent: 2, Width: st.binWidth[bin] - 2}
		y := top

		for _, e := range events {
			c.Text(format.ClockLabel(e.When().In(s.r.loc)), x, y, opts)
			c.Text(ledgerDelivered(e.Event), x, y, render.TextOptions{Width: opts.Width, Align: render.AlignRight})

			if e.HasExtended() {
				y += step
				duration := format.Duration(e.MaxDuration())
				text := "over " + duration
				if pct, ok := e.ExtendedPercentage(); ok {
					text = format.Percentage(float64(pct)/100) + " " + duration
				}
				c.Text(text, x, y, opts)
			}
			y += step
		}
	}
}

func (s *ScaledDays) basalColor(c *report.Canvas, automated bool) render.Color {
	if automated {
		return c.Palette.BasalAutomated
	}
	return c.Palette.Basal
}

func (s *ScaledDays) renderBasalPaths(c *report.Canvas, st *chartState) {
	drawBasal(c, st.Day.Basal, st.X.AtTime, st.Basal)
	s.renderModeMarkers(c, st)
}

// drawBasal draws sequence fills, displaced-delivery traces and the
// delivered outline of each path group.
func drawBasal(c *report.Canvas, segs []basal.Segment, x render.XFunc, y scale.Linear) {
	for _, seq := range basal.Sequences(segs) {
		for _, p := range render.SequencePaths(seq, x, y) {
			if p.Stroke {
				width := 0.5
				if p.SuppressedMode == basal.ModeAutomated {
					width = 1.5
				}
				c.SetLineWidth(width)
				c.SetDash(1, 2)
				c.SetStrokeColor(c.Palette.Basal)
				c.Path(p.Path, render.Stroke)
				c.SetDash()
				continue
			}

			opacity := 0.2
			if p.Mode == basal.ModeScheduled || p.Mode == basal.ModeAutomated {
				opacity = 0.4
			}
			color := c.Palette.Basal
			if p.Mode == basal.ModeAutomated {
				color = c.Palette.BasalAutomated
			}
			c.SetFillColor(color, opacity)
			c.Path(p.Path, render.Fill)
		}
	}

	for _, group := range basal.PathGroups(segs) {
		color := c.Palette.Basal
		if basal.PathGroupType(group[0]) == basal.GroupAutomated {
			color = c.Palette.BasalAutomated
		}
		c.SetLineWidth(0.5)
		c.SetStrokeColor(color)
		c.Path(render.BasalPath(group, x, y, render.BasalPathOptions{FlushBottomOffset: -0.25}), render.Stroke)
	}
}

// renderModeMarkers flags each switch between automated and manual delivery
// with the first letter of the new mode's label.
func (s *ScaledDays) renderModeMarkers(c *report.Canvas, st *chartState) {
	labels := s.r.device.Labels
	groups := basal.PathGroups(st.Day.Basal)

	for i, group := range groups {
		if i == 0 {
			continue
		}
		automated := basal.PathGroupType(group[0]) == basal.GroupAutomated
		x := st.X.AtTime(group[0].Start)
		y := st.Basal.Range()[1] + carbRadius + 1
		fill := s.basalColor(c, automated)

		c.StrokeLine(x, y, x, st.Basal.Range()[0], 0.5, fill)
		c.FillCircle(x, y, carbRadius, fill)

		label, ink := labels.Scheduled, render.White
		if automated {
			label, ink = labels.Automated, c.Palette.DarkGrey
		}
		c.SetFillColor(ink, 1)
		c.Font(true, markerFontSize)
		c.Text(firstLetter(label), x-carbRadius, y-c.LineHeight(markerFontSize)/2, render.TextOptions{
			Align: render.AlignCenter,
			Width: carbRadius * 2,
		})
	}
}

func firstLetter(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

type labeledSchedule struct {
	start    time.Time
	rate     float64
	duration time.Duration
}

// scheduledRateLabels finds the hour-plus scheduled runs whose rate differs
// from the previous labeled run.
func scheduledRateLabels(segs []basal.Segment) []labeledSchedule {
	var (
		out     []labeledSchedule
		rate    float64
		pending time.Duration
	)
	for _, seg := range segs {
		if seg.Mode != basal.ModeScheduled || seg.Rate <= 0 || seg.Duration < time.Hour {
			continue
		}
		switch {
		case seg.Rate != rate:
			out = append(out, labeledSchedule{start: seg.Start, rate: seg.Rate, duration: pending + seg.Duration})
			rate = seg.Rate
			pending = 0
		case len(out) > 0:
			out[len(out)-1].duration += seg.Duration
		default:
			pending += seg.Duration
		}
	}
	return out
}

func (s *ScaledDays) renderBasalRates(c *report.Canvas, st *chartState) {
	font := render.Font{Size: s.pl.Fonts.ExtraSmall}
	c.Ink()
	c.SetFont(font)

	for _, ls := range scheduledRateLabels(st.Day.Basal) {
		start := st.X.AtTime(ls.start)
		end := st.X.AtTime(ls.start.Add(ls.duration))
		label := format.RemoveTrailingZeroes(format.Decimal(ls.rate, 3))
		x := (start+end)/2 - c.Width(label, font)/2
		c.Text(label, x, st.bottomOfBasal-10, render.TextOptions{})
	}
}

func (s *ScaledDays) renderDivider(c *report.Canvas, st *chartState) {
	padding := st.Bottom - st.bottomOfBasal + s.minimums.PaddingBelow
	y := st.bottomOfBasal + padding/2
	c.StrokeLine(s.pl.Margins.Left, y, s.area.Right, y, 1, c.Palette.LightGrey)
}
