package daily

import (
	"fmt"

	"github.com/chrissnell/printview/internal/format"
	"github.com/chrissnell/printview/internal/render"
	"github.com/chrissnell/printview/internal/report"
	"github.com/chrissnell/printview/internal/types"
)

// summarySection is one block of the summary column. Inline sections print
// their value on the title line.
type summarySection struct {
	title  string
	inline string
	rows   [][2]string
}

func (s *ScaledDays) summarySections(ch DayChart) []summarySection {
	st := ch.Day.Stats
	prefs := s.r.prefs
	precision := prefs.Precision()
	var out []summarySection

	if st.TimeInRange.Total > 0 {
		b := prefs.Bounds
		out = append(out, summarySection{
			title: "Time in Target",
			rows: [][2]string{
				{
					fmt.Sprintf("%s - %s", format.Decimal(b.TargetLower, precision), format.Decimal(b.TargetUpper, precision)),
					format.Percentage(st.TimeInRange.Fraction(types.BgTarget)),
				},
				{
					"Below " + format.Decimal(b.VeryLow, precision),
					format.Percentage(st.TimeInRange.Fraction(types.BgVeryLow)),
				},
			},
		})
	}

	total := st.TotalInsulin()
	if total > 0 {
		if s.r.device.Automated && st.TimeInAuto.Total() > 0 {
			labels := s.r.device.Labels
			auto := st.TimeInAuto.AutomatedFraction()
			out = append(out, summarySection{
				title: "Time in " + labels.Automated,
				rows: [][2]string{
					{labels.Scheduled, format.Percentage(1 - auto)},
					{labels.Automated, format.Percentage(auto)},
				},
			})
		} else {
			out = append(out, summarySection{
				title: "Basal:Bolus Ratio",
				rows: [][2]string{
					{"Basal", fmt.Sprintf("%s, ~%s U", format.Percentage(st.TotalBasal/total), format.Decimal(st.TotalBasal, 0))},
					{"Bolus", fmt.Sprintf("%s, ~%s U", format.Percentage(st.TotalBolus/total), format.Decimal(st.TotalBolus, 0))},
				},
			})
		}
	}

	if st.HasAverageGlucose() {
		out = append(out, summarySection{
			title:  "Average BG",
			inline: fmt.Sprintf("%s %s", format.Decimal(st.AverageGlucose, precision), prefs.Units),
		})
	}

	if total > 0 {
		out = append(out, summarySection{
			title:  "Total Insulin",
			inline: fmt.Sprintf("%s U", format.Decimal(total, 1)),
		})
	}

	if st.Carbs > 0 {
		out = append(out, summarySection{
			title:  "Total Carbs",
			inline: fmt.Sprintf("%s g", format.Decimal(st.Carbs, 0)),
		})
	}

	return out
}

func (s *ScaledDays) renderSummary(c *report.Canvas, ch DayChart) {
	pl := s.pl
	left := pl.Margins.Left
	right := pl.SummaryRight()
	smallIndent := left + 4
	const statsIndent = 6
	width := right - left - statsIndent

	c.Ink()
	c.Font(true, pl.Fonts.SummaryHeader)
	c.Text(format.ChartDate(ch.Day.Start), left, ch.Top, render.TextOptions{})

	y := ch.Top + c.LineHeight(pl.Fonts.SummaryHeader)*1.5
	c.StrokeLine(left, y, right, y, 0.5, c.Palette.LightDividers)

	step := c.LineHeight(pl.Fonts.Small)
	update := func() float64 {
		y += step * 1.25
		return y
	}

	for i, sec := range s.summarySections(ch) {
		if i > 0 {
			update()
			c.StrokeLine(left, y, right, y, 0.5, c.Palette.LightDividers)
		}

		c.Ink()
		c.Font(true, pl.Fonts.Small)
		c.Text(sec.title, smallIndent, update(), render.TextOptions{})

		if sec.rows == nil {
			c.Font(false, pl.Fonts.Small)
			c.Text(sec.inline, smallIndent, y, render.TextOptions{Width: width, Align: render.AlignRight})
			y += step * 0.75
			continue
		}

		c.Font(false, pl.Fonts.Small)
		for _, row := range sec.rows {
			update()
			c.Text(row[0], smallIndent, y, render.TextOptions{Indent: statsIndent, Width: width})
			c.Text(row[1], smallIndent, y, render.TextOptions{Width: width, Align: render.AlignRight})
		}
		update()
	}
}
