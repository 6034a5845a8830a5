package bolus

import (
	"math"
	"testing"
	"time"
)

var f = Float

func plain(b Bolus) Event {
	return Event{Type: TypeBolus, Bolus: &b}
}

func wizard(b *Bolus, rec *Recommended) Event {
	return Event{Type: TypeWizard, Bolus: b, Recommended: rec}
}

var (
	normal                = plain(Bolus{Normal: f(5)})
	cancelled             = plain(Bolus{Normal: f(2), ExpectedNormal: f(5)})
	immediatelyCancelled  = plain(Bolus{Normal: f(0), ExpectedNormal: f(5)})
	override              = wizard(&Bolus{Normal: f(2)}, &Recommended{Carb: f(0), Correction: f(0)})
	underride             = wizard(&Bolus{Normal: f(1)}, &Recommended{Carb: f(1), Correction: f(0.5)})
	combo                 = plain(Bolus{Normal: f(1), Extended: f(2), Duration: time.Hour})
	cancelledInNormal     = plain(Bolus{Normal: f(0.2), ExpectedNormal: f(1), Extended: f(0), ExpectedExtended: f(2), ExpectedDuration: time.Hour})
	cancelledInExtended   = plain(Bolus{Normal: f(1), Extended: f(0.5), ExpectedExtended: f(2), Duration: 15 * time.Minute, ExpectedDuration: time.Hour})
	comboOverride         = wizard(&Bolus{Normal: f(1.5), Extended: f(2.5)}, &Recommended{Carb: f(3)})
	comboUnderrideStopped = wizard(&Bolus{Normal: f(1), Extended: f(1), ExpectedExtended: f(3), Duration: 20 * time.Minute, ExpectedDuration: time.Hour}, &Recommended{Carb: f(5)})
	extended              = plain(Bolus{Extended: f(2), Duration: time.Hour})
	cancelledExtended     = plain(Bolus{Extended: f(0.2), ExpectedExtended: f(2), Duration: 6 * time.Minute, ExpectedDuration: time.Hour})
	extendedUnderride     = wizard(&Bolus{Extended: f(3)}, &Recommended{Correction: f(3.5)})
	withNetRec            = wizard(&Bolus{Normal: f(1)}, &Recommended{Net: f(2)})
)

func TestProgrammed(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected float64
	}{
		{"normal", normal, 5},
		{"extended", extended, 2},
		{"combo", combo, 3},
		{"cancelled normal", cancelled, 5},
		{"cancelled extended", cancelledExtended, 2},
		{"normal-cancelled combo", cancelledInNormal, 3},
		{"extended-cancelled combo", cancelledInExtended, 3},
		{"underride", underride, 1},
		{"override", override, 2},
		{"combo override", comboOverride, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Programmed(); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}

	if !math.IsNaN(wizard(nil, nil).Programmed()) {
		t.Errorf("expected NaN for a wizard without a bolus")
	}
}

func TestRecommendedTotal(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected float64
	}{
		{"carb and correction", underride, 1.5},
		{"carb only", comboOverride, 3},
		{"correction only", extendedUnderride, 3.5},
		{"net wins", withNetRec, 2},
		{"zero recommendation", override, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.RecommendedTotal(); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}

	if !math.IsNaN(normal.RecommendedTotal()) {
		t.Errorf("expected NaN for a manual bolus")
	}
}

func TestDeliveredAndMaxValue(t *testing.T) {
	tests := []struct {
		name      string
		event     Event
		delivered float64
		maxValue  float64
	}{
		{"normal", normal, 5, 5},
		{"cancelled", cancelled, 2, 5},
		{"extended-cancelled combo", cancelledInExtended, 1.5, 3},
		{"underride", underride, 1, 1.5},
		{"override", override, 2, 2},
		{"extended underride", extendedUnderride, 3, 3.5},
		{"combo override", comboOverride, 4, 4},
		{"cancelled combo underride", comboUnderrideStopped, 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Delivered(); math.Abs(got-tt.delivered) > 1e-9 {
				t.Errorf("delivered: expected %f, got %f", tt.delivered, got)
			}
			if got := tt.event.MaxValue(); math.Abs(got-tt.maxValue) > 1e-9 {
				t.Errorf("max value: expected %f, got %f", tt.maxValue, got)
			}
		})
	}
}

func TestFlags(t *testing.T) {
	tests := []struct {
		name        string
		event       Event
		extended    bool
		interrupted bool
		over        bool
		under       bool
	}{
		{"normal", normal, false, false, false, false},
		{"cancelled", cancelled, false, true, false, false},
		{"immediately cancelled", immediatelyCancelled, false, true, false, false},
		{"combo", combo, true, false, false, false},
		{"normal-cancelled combo", cancelledInNormal, true, true, false, false},
		{"override", override, false, false, true, false},
		{"underride", underride, false, false, false, true},
		{"net recommendation", withNetRec, false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.HasExtended(); got != tt.extended {
				t.Errorf("HasExtended: expected %v, got %v", tt.extended, got)
			}
			if got := tt.event.IsInterrupted(); got != tt.interrupted {
				t.Errorf("IsInterrupted: expected %v, got %v", tt.interrupted, got)
			}
			if got := tt.event.IsOverride(); got != tt.over {
				t.Errorf("IsOverride: expected %v, got %v", tt.over, got)
			}
			if got := tt.event.IsUnderride(); got != tt.under {
				t.Errorf("IsUnderride: expected %v, got %v", tt.under, got)
			}
		})
	}
}

func TestPercentages(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		normal   int
		extended int
		ok       bool
	}{
		{"combo", combo, 33, 67, true},
		{"combo override", comboOverride, 38, 63, true},
		{"normal-cancelled combo", cancelledInNormal, 33, 67, true},
		{"cancelled combo underride", comboUnderrideStopped, 25, 75, true},
		{"square bolus", extended, 0, 0, false},
		{"plain normal", normal, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := tt.event.NormalPercentage()
			if ok != tt.ok || n != tt.normal {
				t.Errorf("normal: expected %d/%v, got %d/%v", tt.normal, tt.ok, n, ok)
			}
			e, ok := tt.event.ExtendedPercentage()
			if ok != tt.ok || e != tt.extended {
				t.Errorf("extended: expected %d/%v, got %d/%v", tt.extended, tt.ok, e, ok)
			}
		})
	}
}

func TestMaxDuration(t *testing.T) {
	if got := extended.MaxDuration(); got != time.Hour {
		t.Errorf("expected 1h, got %v", got)
	}
	if got := cancelledExtended.MaxDuration(); got != time.Hour {
		t.Errorf("expected expected duration of 1h, got %v", got)
	}
	if got := comboUnderrideStopped.MaxDuration(); got != time.Hour {
		t.Errorf("expected 1h, got %v", got)
	}
}

func TestDetailLines(t *testing.T) {
	if normal.DetailLines() != 1 {
		t.Errorf("expected 1 line for a normal bolus")
	}
	if cancelledInNormal.DetailLines() != 2 {
		t.Errorf("expected 2 lines for a bolus with an expected extended portion")
	}
}

func TestTotalDelivered(t *testing.T) {
	if got := TotalDelivered(nil); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	got := TotalDelivered([]Event{cancelled, cancelledInExtended, extendedUnderride, comboOverride, wizard(nil, nil)})
	if math.Abs(got-10.5) > 1e-9 {
		t.Errorf("expected 10.5, got %f", got)
	}
}

func TestCarbs(t *testing.T) {
	e := wizard(&Bolus{Normal: f(5)}, &Recommended{Carb: f(5)})
	e.CarbInput = f(75)
	if e.Carbs() != 75 {
		t.Errorf("expected 75, got %f", e.Carbs())
	}
	if normal.Carbs() != 0 {
		t.Errorf("expected 0 carbs on a plain bolus")
	}
}
