// Package stats computes the per-day summary figures printed beside each
// daily chart.
package stats

import (
	"math"
	"time"

	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/basal"
	"github.com/chrissnell/printview/pkg/bolus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TimeInRange counts CGM readings per glucose bucket.
type TimeInRange struct {
	VeryLow  int `json:"veryLow"`
	Low      int `json:"low"`
	Target   int `json:"target"`
	High     int `json:"high"`
	VeryHigh int `json:"veryHigh"`
	Total    int `json:"total"`
}

// Fraction is the share of readings in class, or NaN with no readings.
func (t TimeInRange) Fraction(class types.BgClass) float64 {
	if t.Total == 0 {
		return math.NaN()
	}
	var n int
	switch class {
	case types.BgVeryLow:
		n = t.VeryLow
	case types.BgLow:
		n = t.Low
	case types.BgTarget:
		n = t.Target
	case types.BgHigh:
		n = t.High
	case types.BgVeryHigh:
		n = t.VeryHigh
	}
	return float64(n) / float64(t.Total)
}

// Day is the summary for one calendar day.
type Day struct {
	TimeInRange    TimeInRange          `json:"timeInRange"`
	AverageGlucose float64              `json:"averageGlucose"`
	TotalBasal     float64              `json:"totalBasal"`
	TotalBolus     float64              `json:"totalBolus"`
	TimeInAuto     basal.GroupDurations `json:"timeInAuto"`
	Carbs          float64              `json:"carbs"`
}

// TotalInsulin is basal plus bolus.
func (d Day) TotalInsulin() float64 {
	return d.TotalBasal + d.TotalBolus
}

// HasAverageGlucose reports whether any glucose reading fed the average.
func (d Day) HasAverageGlucose() bool {
	return !math.IsNaN(d.AverageGlucose) && d.AverageGlucose > 0
}

// Input is the data one day's statistics are computed from.
type Input struct {
	Start, End time.Time
	Bounds     types.BgBounds
	Basal      []basal.Segment
	Bolus      []bolus.Event
	CBG        []types.Glucose
	SMBG       []types.Glucose
	Food       []types.Food
}

// ForDay computes the summary for a day.
func ForDay(in Input) Day {
	d := Day{
		TimeInRange: timeInRange(in.CBG, in.Bounds),
		TotalBasal:  basal.TotalDose(in.Basal, in.Start, in.End),
		TotalBolus:  bolus.TotalDelivered(in.Bolus),
		TimeInAuto:  basal.ComputeGroupDurations(in.Basal, in.Start, in.End),
		Carbs:       carbs(in.Bolus, in.Food),
	}

	source := in.CBG
	if len(source) == 0 {
		source = in.SMBG
	}
	d.AverageGlucose = average(source)

	return d
}

func timeInRange(readings []types.Glucose, bounds types.BgBounds) TimeInRange {
	var tir TimeInRange
	for _, r := range readings {
		switch bounds.ClassifyFive(r.Value) {
		case types.BgVeryLow:
			tir.VeryLow++
		case types.BgLow:
			tir.Low++
		case types.BgTarget:
			tir.Target++
		case types.BgHigh:
			tir.High++
		case types.BgVeryHigh:
			tir.VeryHigh++
		}
		tir.Total++
	}
	return tir
}

func average(readings []types.Glucose) float64 {
	if len(readings) == 0 {
		return math.NaN()
	}
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}
	return stat.Mean(values, nil)
}

func carbs(events []bolus.Event, food []types.Food) float64 {
	amounts := make([]float64, 0, len(events)+len(food))
	for _, e := range events {
		amounts = append(amounts, e.Carbs())
	}
	for _, f := range food {
		amounts = append(amounts, f.Carbs)
	}
	return floats.Sum(amounts)
}
