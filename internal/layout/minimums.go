package layout

// ChartMinimums are the fixed vertical regions of a daily chart, derived
// from the chart area.
type ChartMinimums struct {
	NotesEtc     float64 `json:"notesEtc"`
	BgEtcChart   float64 `json:"bgEtcChart"`
	BolusDetails float64 `json:"bolusDetails"`
	BasalChart   float64 `json:"basalChart"`
	BelowBasal   float64 `json:"belowBasal"`
	PaddingBelow float64 `json:"paddingBelow"`
	Total        float64 `json:"total"`
}

// Minimums divides the chart area into 3.25 nominal charts and splits each
// into twentieths.
func Minimums(area ChartArea) ChartMinimums {
	total := area.Height()
	perChart := total / 3.25
	return ChartMinimums{
		NotesEtc:     perChart * 3 / 20,
		BgEtcChart:   perChart * 9 / 20,
		BolusDetails: perChart * 4 / 20,
		BasalChart:   perChart * 3 / 20,
		BelowBasal:   perChart * 1 / 20,
		PaddingBelow: total / 13 / 3,
		Total:        perChart,
	}
}

// Fixed is the height of every region except the bolus details.
func (m ChartMinimums) Fixed() float64 {
	return m.NotesEtc + m.BgEtcChart + m.BasalChart + m.BelowBasal
}

// Size returns the bolus-details height and chart height for a chart whose
// ledger needs neededDetails points.
func (m ChartMinimums) Size(neededDetails float64) (details, chart float64) {
	details = max(m.BolusDetails, neededDetails)
	chart = max(m.Total, neededDetails+m.Fixed())
	return details, chart
}
