package types

import "fmt"

// Glucose display units.
const (
	MgdL  = "mg/dL"
	MmolL = "mmol/L"

	// MgdLPerMmolL converts between the two unit systems.
	MgdLPerMmolL = 18.01559
)

// BgBounds are the glucose classification thresholds, in display units.
type BgBounds struct {
	VeryLow     float64 `json:"veryLowThreshold" yaml:"very_low"`
	TargetLower float64 `json:"targetLowerBound" yaml:"target_lower"`
	TargetUpper float64 `json:"targetUpperBound" yaml:"target_upper"`
	VeryHigh    float64 `json:"veryHighThreshold" yaml:"very_high"`
}

// DefaultBgBounds returns the standard thresholds for units.
func DefaultBgBounds(units string) BgBounds {
	if units == MmolL {
		return BgBounds{VeryLow: 3.0, TargetLower: 3.9, TargetUpper: 10.0, VeryHigh: 13.9}
	}
	return BgBounds{VeryLow: 54, TargetLower: 70, TargetUpper: 180, VeryHigh: 250}
}

// Validate checks that the thresholds are strictly increasing.
func (b BgBounds) Validate() error {
	if !(b.VeryLow < b.TargetLower && b.TargetLower < b.TargetUpper && b.TargetUpper < b.VeryHigh) {
		return fmt.Errorf("glucose bounds must increase: %v < %v < %v < %v",
			b.VeryLow, b.TargetLower, b.TargetUpper, b.VeryHigh)
	}
	return nil
}

// BgPrefs pairs display units with their bounds.
type BgPrefs struct {
	Units  string   `json:"bgUnits"`
	Bounds BgBounds `json:"bgBounds"`
}

// Precision is the number of decimals glucose values display with.
func (p BgPrefs) Precision() int {
	if p.Units == MmolL {
		return 1
	}
	return 0
}

// BgClass is a glucose classification bucket.
type BgClass string

const (
	BgVeryLow  BgClass = "veryLow"
	BgLow      BgClass = "low"
	BgTarget   BgClass = "target"
	BgHigh     BgClass = "high"
	BgVeryHigh BgClass = "veryHigh"
)

// ClassifyFive places a value in one of five buckets.
func (b BgBounds) ClassifyFive(v float64) BgClass {
	switch {
	case v < b.VeryLow:
		return BgVeryLow
	case v < b.TargetLower:
		return BgLow
	case v <= b.TargetUpper:
		return BgTarget
	case v <= b.VeryHigh:
		return BgHigh
	}
	return BgVeryHigh
}

// Classify places a value in low, target or high, the buckets the charts
// color by.
func (b BgBounds) Classify(v float64) BgClass {
	switch {
	case v < b.TargetLower:
		return BgLow
	case v > b.TargetUpper:
		return BgHigh
	}
	return BgTarget
}

// ConvertGlucose converts v from one unit system to another.
func ConvertGlucose(v float64, from, to string) float64 {
	if from == to || from == "" {
		return v
	}
	if from == MmolL && to == MgdL {
		return v * MgdLPerMmolL
	}
	if from == MgdL && to == MmolL {
		return v / MgdLPerMmolL
	}
	return v
}
