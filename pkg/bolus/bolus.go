// Package bolus derives programmed, delivered, and recommended insulin
// amounts from bolus and calculator (wizard) events.
package bolus

import (
	"math"
	"time"
)

// EventType distinguishes a bare bolus from a calculator event wrapping one.
type EventType string

const (
	TypeBolus  EventType = "bolus"
	TypeWizard EventType = "wizard"
)

// Bolus is a single insulin dose. Nil amounts were not reported by the device.
type Bolus struct {
	ID               string        `json:"id,omitempty"`
	Time             time.Time     `json:"time"`
	Normal           *float64      `json:"normal,omitempty"`
	ExpectedNormal   *float64      `json:"expectedNormal,omitempty"`
	Extended         *float64      `json:"extended,omitempty"`
	ExpectedExtended *float64      `json:"expectedExtended,omitempty"`
	Duration         time.Duration `json:"duration,omitempty"`
	ExpectedDuration time.Duration `json:"expectedDuration,omitempty"`
}

// Recommended holds a calculator's suggestion.
type Recommended struct {
	Carb       *float64 `json:"carb,omitempty"`
	Correction *float64 `json:"correction,omitempty"`
	Net        *float64 `json:"net,omitempty"`
}

// Event is an insulin event: either a bolus or a wizard wrapping one.
type Event struct {
	Type        EventType    `json:"type"`
	ID          string       `json:"id,omitempty"`
	Time        time.Time    `json:"time"`
	Bolus       *Bolus       `json:"bolus,omitempty"`
	Recommended *Recommended `json:"recommended,omitempty"`
	CarbInput   *float64     `json:"carbInput,omitempty"`
}

// Float returns a pointer to v, for building optional amounts.
func Float(v float64) *float64 {
	return &v
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// When is the delivery time of the event's bolus, falling back to the event.
func (e Event) When() time.Time {
	if e.Bolus != nil && !e.Bolus.Time.IsZero() {
		return e.Bolus.Time
	}
	return e.Time
}

// Carbs returns the calculator carb input, or 0.
func (e Event) Carbs() float64 {
	if e.Type != TypeWizard {
		return 0
	}
	return val(e.CarbInput)
}

// Programmed is the amount the user asked the pump to deliver. NaN when a
// wizard has no bolus attached.
func (e Event) Programmed() float64 {
	b := e.Bolus
	if b == nil {
		return math.NaN()
	}

	normal := val(b.Normal)
	if b.ExpectedNormal != nil {
		normal = *b.ExpectedNormal
	}

	if b.Extended == nil && b.ExpectedExtended == nil {
		return normal
	}

	extended := val(b.Extended)
	if b.ExpectedExtended != nil {
		extended = *b.ExpectedExtended
	}
	return normal + extended
}

// Delivered is the amount actually delivered. NaN when a wizard has no bolus.
func (e Event) Delivered() float64 {
	b := e.Bolus
	if b == nil {
		return math.NaN()
	}
	return val(b.Normal) + val(b.Extended)
}

// RecommendedTotal is the calculator's net recommendation, or the sum of its carb
// and correction parts. NaN when there was no recommendation.
func (e Event) RecommendedTotal() float64 {
	r := e.Recommended
	if r == nil {
		return math.NaN()
	}
	if r.Net != nil {
		return *r.Net
	}
	return val(r.Carb) + val(r.Correction)
}

// MaxValue is the tallest bar the event needs: the larger of programmed and
// recommended.
func (e Event) MaxValue() float64 {
	programmed := e.Programmed()
	rec := e.RecommendedTotal()
	if math.IsNaN(rec) || rec < programmed {
		return programmed
	}
	return rec
}

// HasExtended reports a non-zero extended or expected-extended portion.
func (e Event) HasExtended() bool {
	b := e.Bolus
	if b == nil {
		return false
	}
	return val(b.Extended) > 0 || val(b.ExpectedExtended) > 0
}

// Extended is the delivered extended amount.
func (e Event) Extended() float64 {
	if e.Bolus == nil {
		return 0
	}
	return val(e.Bolus.Extended)
}

// Duration is the elapsed extended delivery time.
func (e Event) Duration() time.Duration {
	if e.Bolus == nil {
		return 0
	}
	return e.Bolus.Duration
}

// MaxDuration is the programmed extended duration, falling back to the
// delivered one.
func (e Event) MaxDuration() time.Duration {
	if e.Bolus == nil {
		return 0
	}
	if e.Bolus.ExpectedDuration > 0 {
		return e.Bolus.ExpectedDuration
	}
	return e.Bolus.Duration
}

// IsInterrupted reports a bolus whose delivery fell short of what was
// programmed.
func (e Event) IsInterrupted() bool {
	b := e.Bolus
	if b == nil {
		return false
	}
	if b.ExpectedNormal != nil && val(b.Normal) != *b.ExpectedNormal {
		return true
	}
	if b.ExpectedExtended != nil && val(b.Extended) != *b.ExpectedExtended {
		return true
	}
	return false
}

// IsOverride reports a programmed amount above the recommendation.
func (e Event) IsOverride() bool {
	rec := e.RecommendedTotal()
	return !math.IsNaN(rec) && rec < e.Programmed()
}

// IsUnderride reports a programmed amount below the recommendation.
func (e Event) IsUnderride() bool {
	rec := e.RecommendedTotal()
	return !math.IsNaN(rec) && rec > e.Programmed()
}

// IsCombo reports a bolus with both a normal and an extended portion.
func (e Event) IsCombo() bool {
	b := e.Bolus
	if b == nil || !e.HasExtended() {
		return false
	}
	return val(b.Normal) > 0 || val(b.ExpectedNormal) > 0
}

// NormalPercentage is the programmed normal share of a combo bolus, rounded
// to a whole percent. ok is false for anything but a combo.
func (e Event) NormalPercentage() (pct int, ok bool) {
	return e.share(func(b *Bolus) float64 {
		if b.ExpectedNormal != nil {
			return *b.ExpectedNormal
		}
		return val(b.Normal)
	})
}

// ExtendedPercentage is the programmed extended share of a combo bolus.
func (e Event) ExtendedPercentage() (pct int, ok bool) {
	return e.share(func(b *Bolus) float64 {
		if b.ExpectedExtended != nil {
			return *b.ExpectedExtended
		}
		return val(b.Extended)
	})
}

func (e Event) share(part func(*Bolus) float64) (int, bool) {
	if !e.IsCombo() {
		return 0, false
	}
	programmed := e.Programmed()
	if programmed <= 0 {
		return 0, false
	}
	return int(math.Round(part(e.Bolus) / programmed * 100)), true
}

// DetailLines is how many ledger lines the event occupies in the bolus
// details table.
func (e Event) DetailLines() int {
	if e.HasExtended() {
		return 2
	}
	return 1
}

// TotalDelivered sums delivered insulin across events, skipping wizards with
// no bolus.
func TotalDelivered(events []Event) float64 {
	var total float64
	for _, e := range events {
		if d := e.Delivered(); !math.IsNaN(d) {
			total += d
		}
	}
	return total
}
