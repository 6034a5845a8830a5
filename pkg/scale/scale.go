// Package scale maps data domains onto page coordinates.
package scale

import "time"

// Linear is a continuous linear mapping from a domain to a range.
type Linear struct {
	domain [2]float64
	rng    [2]float64
}

// NewLinear builds a scale mapping domain onto rng. The range may be
// inverted (top > bottom) as page y coordinates grow downward.
func NewLinear(domain, rng [2]float64) Linear {
	return Linear{domain: domain, rng: rng}
}

// At maps v into the range. A degenerate domain maps everything to the
// middle of the range.
func (l Linear) At(v float64) float64 {
	span := l.domain[1] - l.domain[0]
	if span == 0 {
		return (l.rng[0] + l.rng[1]) / 2
	}
	return l.rng[0] + (v-l.domain[0])/span*(l.rng[1]-l.rng[0])
}

func (l Linear) Domain() [2]float64 {
	return l.domain
}

func (l Linear) Range() [2]float64 {
	return l.rng
}

// Time is a linear scale over instants.
type Time struct {
	Linear
	start, end time.Time
}

// NewTime maps [start, end] onto rng.
func NewTime(start, end time.Time, rng [2]float64) Time {
	return Time{
		Linear: NewLinear([2]float64{ms(start), ms(end)}, rng),
		start:  start,
		end:    end,
	}
}

// AtTime maps an instant into the range.
func (t Time) AtTime(v time.Time) float64 {
	return t.At(ms(v))
}

// Bounds returns the time domain.
func (t Time) Bounds() (time.Time, time.Time) {
	return t.start, t.end
}

// Ticks returns instants from start (inclusive) to end (exclusive) spaced by
// step.
func Ticks(start, end time.Time, step time.Duration) []time.Time {
	if step <= 0 {
		return nil
	}
	var out []time.Time
	for t := start; t.Before(end); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}

func ms(t time.Time) float64 {
	return float64(t.UnixMilli())
}
