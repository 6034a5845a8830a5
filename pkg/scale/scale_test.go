package scale

import (
	"math"
	"testing"
	"time"
)

func TestLinear(t *testing.T) {
	tests := []struct {
		name     string
		domain   [2]float64
		rng      [2]float64
		in       float64
		expected float64
	}{
		{"identity", [2]float64{0, 10}, [2]float64{0, 10}, 4, 4},
		{"inverted range", [2]float64{0, 400}, [2]float64{300, 100}, 100, 250},
		{"extrapolates", [2]float64{0, 1}, [2]float64{0, 10}, 2, 20},
		{"degenerate domain", [2]float64{5, 5}, [2]float64{0, 10}, 42, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLinear(tt.domain, tt.rng).At(tt.in)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestTime(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewTime(start, start.Add(24*time.Hour), [2]float64{100, 340})

	if got := s.AtTime(start.Add(12 * time.Hour)); math.Abs(got-220) > 1e-9 {
		t.Errorf("expected 220, got %f", got)
	}
	if got := s.AtTime(start); got != 100 {
		t.Errorf("expected 100, got %f", got)
	}
}

func TestTicks(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ticks := Ticks(start, start.Add(24*time.Hour), 3*time.Hour)
	if len(ticks) != 8 {
		t.Fatalf("expected 8 ticks, got %d", len(ticks))
	}
	if ticks[7].Hour() != 21 {
		t.Errorf("expected last tick at 21:00, got %d", ticks[7].Hour())
	}
	if Ticks(start, start.Add(time.Hour), 0) != nil {
		t.Errorf("expected nil ticks for zero step")
	}
}
