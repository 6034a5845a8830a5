package daily

import (
	"time"

	"github.com/chrissnell/printview/internal/render"
	"github.com/chrissnell/printview/internal/report"
	"github.com/chrissnell/printview/pkg/basal"
	"github.com/chrissnell/printview/pkg/bolus"
	"github.com/chrissnell/printview/pkg/scale"
)

const (
	legendTitleFontSize = 9
	legendItemLeft      = 9
	legendLabelOffset   = 6
)

// legendEpoch anchors the sample marks drawn in the legend.
var legendEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

func legendHours(h float64) time.Time {
	return legendEpoch.Add(time.Duration(h * float64(time.Hour)))
}

// renderLegend draws the key to every mark at the bottom of the page.
func (s *ScaledDays) renderLegend(c *report.Canvas) {
	pl := s.pl
	left := pl.Margins.Left
	bottom := pl.BottomEdge()
	lineHeight := c.LineHeight(legendTitleFontSize)

	c.Ink()
	c.Font(false, legendTitleFontSize)
	c.Text("Legend", left, bottom-lineHeight*8, render.TextOptions{})

	height := lineHeight * 4
	top := bottom - lineHeight*6
	c.SetLineWidth(1)
	c.SetStrokeColor(render.Black)
	c.Rect(left, top, pl.Width(), height, render.Stroke)

	small := c.Font(false, pl.Fonts.Small)
	middle := top + lineHeight*2
	textMiddle := middle - c.LineHeight(pl.Fonts.Small)/2
	cursor := left + legendItemLeft

	label := func(text string) {
		c.Ink()
		c.SetFont(small)
		c.Text(text, cursor, textMiddle, render.TextOptions{})
		cursor += c.Width(text, small) + legendItemLeft*2
	}

	// cgm: a falling trace through high, target and low
	adjust := []float64{2.25, 1, 0.25, 0, 0, -0.25, -1, -2.25}
	for i := 0; i < 8; i++ {
		dx := float64(i * 2)
		dy := dx - 7 + adjust[i]
		color := c.Palette.Target
		switch {
		case dx < 4:
			color = c.Palette.High
		case dx >= 12:
			color = c.Palette.Low
		}
		c.FillCircle(cursor+dx, middle+dy, cbgRadius, color)
	}
	cursor += 16 + legendLabelOffset
	label("CGM")

	c.FillCircle(cursor, middle, smbgRadius, c.Palette.Target)
	c.FillCircle(cursor+smbgRadius*2, middle-smbgRadius*2, smbgRadius, c.Palette.High)
	c.FillCircle(cursor+smbgRadius*2, middle+smbgRadius*2, smbgRadius, c.Palette.Low)
	cursor += smbgRadius*3 + legendLabelOffset
	label("BGM")

	geometry := render.DefaultBolusGeometry()
	bolusY := scale.NewLinear([2]float64{0, 10}, [2]float64{top + height - height/4, top + height/4})
	xAt := func(from float64) render.XFunc {
		return scale.NewTime(legendEpoch, legendHours(10), [2]float64{from, from + 10}).AtTime
	}
	f := bolus.Float

	s.drawEventPaths(c, render.BolusPaths(bolus.Event{
		Type:  bolus.TypeBolus,
		Bolus: &bolus.Bolus{Time: legendEpoch, Normal: f(10)},
	}, xAt(cursor), bolusY, geometry))
	cursor += geometry.Width + legendLabelOffset
	label("Bolus")

	ride := xAt(cursor)
	s.drawEventPaths(c, render.BolusPaths(bolus.Event{
		Type:        bolus.TypeWizard,
		Recommended: &bolus.Recommended{Net: f(8), Carb: f(8), Correction: f(0)},
		Bolus:       &bolus.Bolus{Time: legendEpoch, Normal: f(10)},
	}, ride, bolusY, geometry))
	s.drawEventPaths(c, render.BolusPaths(bolus.Event{
		Type:        bolus.TypeWizard,
		Recommended: &bolus.Recommended{Net: f(10), Carb: f(8), Correction: f(2)},
		Bolus:       &bolus.Bolus{Time: legendHours(5), Normal: f(5)},
	}, ride, bolusY, geometry))
	cursor += geometry.Width*3 + legendLabelOffset
	label("Override up & down")

	s.drawEventPaths(c, render.BolusPaths(bolus.Event{
		Type:  bolus.TypeBolus,
		Bolus: &bolus.Bolus{Time: legendEpoch, Normal: f(6), ExpectedNormal: f(10)},
	}, xAt(cursor), bolusY, geometry))
	cursor += geometry.Width + legendLabelOffset
	label("Interrupted")

	s.drawEventPaths(c, render.BolusPaths(bolus.Event{
		Type:  bolus.TypeBolus,
		Bolus: &bolus.Bolus{Time: legendEpoch, Normal: f(5), Extended: f(5), Duration: 10 * time.Hour},
	}, xAt(cursor), bolusY, geometry))
	cursor += geometry.Width/2 + 10 + legendLabelOffset
	label("Combo/Extended")

	c.FillCircle(cursor, middle, carbRadius, c.Palette.Carbs)
	c.Ink()
	c.Font(false, carbsFontSize)
	c.Text("25", cursor-carbRadius, middle-carbRadius/2, render.TextOptions{Align: render.AlignCenter, Width: carbRadius * 2})
	cursor += carbRadius + legendLabelOffset
	label("Carbs")

	basalY := scale.NewLinear([2]float64{0, 2}, [2]float64{top + height - height/4, top + height/4})
	basalX := scale.NewTime(legendEpoch, legendHours(10), [2]float64{cursor, cursor + 50})
	drawBasal(c, legendBasals(), basalX.AtTime, basalY)
	cursor += 50 + legendLabelOffset
	label("Basals")
}

// legendBasals is a scheduled rate interrupted by a lower temp, a higher
// temp, and a suspend.
func legendBasals() []basal.Segment {
	seg := func(start, hours, rate float64, mode basal.Mode, suppressed float64) basal.Segment {
		s := basal.Segment{
			Start:    legendHours(start),
			Duration: time.Duration(hours * float64(time.Hour)),
			Rate:     rate,
			Mode:     mode,
		}
		if suppressed > 0 {
			s.Suppressed = &basal.Suppressed{Mode: basal.ModeScheduled, Rate: suppressed}
		}
		return s
	}
	return []basal.Segment{
		seg(0, 2, 1.5, basal.ModeScheduled, 0),
		seg(2, 2.5, 0.5, basal.ModeTemporary, 1.5),
		seg(4.5, 1.5, 1.75, basal.ModeScheduled, 0),
		seg(6, 2, 2, basal.ModeTemporary, 1.75),
		seg(8, 2, 0, basal.ModeSuspended, 1.75),
	}
}
