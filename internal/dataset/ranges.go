package dataset

import (
	"math"

	"github.com/chrissnell/printview/pkg/basal"
	"github.com/samber/lo"
)

// BasalHeadroom pads the basal axis so the tallest rate does not touch the
// bolus area above it.
const BasalHeadroom = 1.1

// Ranges are the data maxima a day's scales are built from.
type Ranges struct {
	BgMax    float64 `json:"bgMax"`
	BolusMax float64 `json:"bolusMax"`
	BasalMax float64 `json:"basalMax"`
}

// Ranges computes the day's glucose, bolus and basal maxima.
func (d Day) Ranges() Ranges {
	var r Ranges

	for _, g := range d.CBG {
		r.BgMax = max(r.BgMax, g.Value)
	}
	for _, g := range d.SMBG {
		r.BgMax = max(r.BgMax, g.Value)
	}

	if len(d.Bolus) > 0 {
		r.BolusMax = lo.Max(lo.Map(d.Bolus, func(e InsulinEvent, _ int) float64 {
			v := max(e.Delivered(), e.MaxValue())
			if math.IsNaN(v) {
				return 0
			}
			return v
		}))
	}

	r.BasalMax = basal.MaxRate(d.Basal) * BasalHeadroom
	return r
}
