package basal

import (
	"math"
	"testing"
	"time"
)

var day0 = time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)

func seg(startHour, hours float64, rate float64, mode Mode) Segment {
	return Segment{
		Start:    day0.Add(time.Duration(startHour * float64(time.Hour))),
		Duration: time.Duration(hours * float64(time.Hour)),
		Rate:     rate,
		Mode:     mode,
	}
}

func sixHourDay() []Segment {
	return []Segment{
		seg(0, 6, 1, ModeScheduled),
		seg(6, 6, 1, ModeScheduled),
		seg(12, 6, 1, ModeScheduled),
		seg(18, 6, 1, ModeScheduled),
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		name         string
		subType      string
		deliveryType string
		expected     Mode
	}{
		{"subType only", "automated", "", ModeAutomated},
		{"deliveryType only", "", "temp", ModeTemporary},
		{"subType wins", "suspend", "scheduled", ModeSuspended},
		{"unknown", "", "bogus", ModeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMode(tt.subType, tt.deliveryType); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSequences(t *testing.T) {
	tests := []struct {
		name     string
		segs     []Segment
		expected []int
	}{
		{
			name:     "contiguous same mode",
			segs:     sixHourDay(),
			expected: []int{4},
		},
		{
			name: "mode change",
			segs: []Segment{
				seg(0, 1, 1, ModeScheduled),
				seg(1, 1, 2, ModeTemporary),
				seg(2, 1, 1, ModeScheduled),
			},
			expected: []int{1, 1, 1},
		},
		{
			name: "gap without mode change",
			segs: []Segment{
				seg(0, 1, 1, ModeScheduled),
				seg(1, 1, 1, ModeScheduled),
				seg(3, 1, 1, ModeScheduled),
			},
			expected: []int{2, 1},
		},
		{
			name:     "empty",
			segs:     nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seqs := Sequences(tt.segs)
			if len(seqs) != len(tt.expected) {
				t.Fatalf("expected %d sequences, got %d", len(tt.expected), len(seqs))
			}

			var flat []Segment
			for i, s := range seqs {
				if len(s) != tt.expected[i] {
					t.Errorf("sequence %d: expected %d segments, got %d", i, tt.expected[i], len(s))
				}
				for j := 1; j < len(s); j++ {
					if s[j].Mode != s[0].Mode {
						t.Errorf("sequence %d mixes modes", i)
					}
					if !s[j-1].End().Equal(s[j].Start) {
						t.Errorf("sequence %d has a gap at %d", i, j)
					}
				}
				flat = append(flat, s...)
			}

			if len(flat) != len(tt.segs) {
				t.Fatalf("expected lossless partition of %d, got %d", len(tt.segs), len(flat))
			}
			for i := range flat {
				if !flat[i].Start.Equal(tt.segs[i].Start) {
					t.Errorf("segment %d out of order", i)
				}
			}
		})
	}
}

func TestPathGroups(t *testing.T) {
	segs := []Segment{
		seg(0, 1, 0.5, ModeAutomated),
		{
			Start:      day0.Add(time.Hour),
			Duration:   time.Hour,
			Mode:       ModeSuspended,
			Suppressed: &Suppressed{Mode: ModeAutomated, Rate: 0.5},
		},
		// gap, still automated
		seg(3, 1, 0.6, ModeAutomated),
		seg(4, 2, 1, ModeScheduled),
		seg(6, 1, 2, ModeTemporary),
		seg(7, 1, 0.4, ModeAutomated),
	}

	groups := PathGroups(segs)
	expected := []int{3, 2, 1}
	if len(groups) != len(expected) {
		t.Fatalf("expected %d groups, got %d", len(expected), len(groups))
	}
	for i, g := range groups {
		if len(g) != expected[i] {
			t.Errorf("group %d: expected %d segments, got %d", i, expected[i], len(g))
		}
	}

	if seqs := Sequences(segs); len(groups) > len(seqs) {
		t.Errorf("expected at most %d groups, got %d", len(seqs), len(groups))
	}

	if PathGroupType(segs[1]) != GroupAutomated {
		t.Errorf("expected suspend of automated delivery to be automated")
	}
	manualSuspend := Segment{Mode: ModeSuspended, Suppressed: &Suppressed{Mode: ModeScheduled}}
	if PathGroupType(manualSuspend) != GroupManual {
		t.Errorf("expected suspend of scheduled delivery to be manual")
	}
}

func TestGetEndpoints(t *testing.T) {
	extendFirst := func(segs []Segment) []Segment {
		segs[0].Start = segs[0].Start.Add(-time.Hour)
		segs[0].Duration += time.Hour
		return segs
	}

	tests := []struct {
		name      string
		segs      []Segment
		start     time.Time
		inclusive bool
		startIdx  int
		endIdx    int
	}{
		{
			name:     "exact day",
			segs:     sixHourDay(),
			start:    day0,
			startIdx: 0,
			endIdx:   3,
		},
		{
			name:     "single superset segment",
			segs:     []Segment{{Start: day0.Add(-24 * time.Hour), Duration: 48 * time.Hour, Rate: 1}},
			start:    day0.Add(-23 * time.Hour),
			startIdx: 0,
			endIdx:   0,
		},
		{
			name: "overlaps both ends",
			segs: func() []Segment {
				s := extendFirst(sixHourDay())
				s[3].Duration += time.Hour
				return s
			}(),
			start:    day0,
			startIdx: 0,
			endIdx:   3,
		},
		{
			name:      "overlaps only start, inclusive",
			segs:      extendFirst(sixHourDay())[:3],
			start:     day0,
			inclusive: true,
			startIdx:  0,
			endIdx:    2,
		},
		{
			name:     "overlaps only start, exclusive",
			segs:     extendFirst(sixHourDay())[:3],
			start:    day0,
			startIdx: 0,
			endIdx:   -1,
		},
		{
			name:      "overlaps only end, inclusive",
			segs:      sixHourDay()[1:],
			start:     day0.Add(-time.Hour),
			inclusive: true,
			startIdx:  0,
			endIdx:    2,
		},
		{
			name:     "overlaps only end, exclusive",
			segs:     sixHourDay()[1:],
			start:    day0.Add(-time.Hour),
			startIdx: -1,
			endIdx:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := tt.start.Add(24 * time.Hour)
			ep := GetEndpoints(tt.segs, tt.start, end, tt.inclusive)
			if ep.Start.Index != tt.startIdx {
				t.Errorf("expected start index %d, got %d", tt.startIdx, ep.Start.Index)
			}
			if ep.End.Index != tt.endIdx {
				t.Errorf("expected end index %d, got %d", tt.endIdx, ep.End.Index)
			}
			if !ep.Start.Time.Equal(tt.start) || !ep.End.Time.Equal(end) {
				t.Errorf("expected endpoint times to echo the window")
			}
		})
	}
}

func TestComputeGroupDurations(t *testing.T) {
	t.Run("half automated", func(t *testing.T) {
		segs := sixHourDay()
		for i := range segs {
			if i%2 == 0 {
				segs[i].Mode = ModeAutomated
			}
		}
		got := ComputeGroupDurations(segs, day0, day0.Add(24*time.Hour))
		if got.Automated != got.Manual {
			t.Errorf("expected equal buckets, got %v and %v", got.Automated, got.Manual)
		}
		if got.Total() != 24*time.Hour {
			t.Errorf("expected 24h total, got %v", got.Total())
		}
		if math.Abs(got.AutomatedFraction()-0.5) > 1e-9 {
			t.Errorf("expected fraction 0.5, got %f", got.AutomatedFraction())
		}
	})

	t.Run("clipped at start", func(t *testing.T) {
		segs := sixHourDay()
		segs[0].Mode = ModeAutomated
		start := day0.Add(time.Hour)
		got := ComputeGroupDurations(segs, start, start.Add(24*time.Hour))
		if got.Automated != 5*time.Hour {
			t.Errorf("expected 5h automated, got %v", got.Automated)
		}
		if got.Total() != 23*time.Hour {
			t.Errorf("expected 23h total, got %v", got.Total())
		}
	})

	t.Run("clipped at end", func(t *testing.T) {
		segs := sixHourDay()
		segs[3].Mode = ModeAutomated
		start := day0.Add(-time.Hour)
		got := ComputeGroupDurations(segs, start, start.Add(24*time.Hour))
		if got.Automated != 5*time.Hour {
			t.Errorf("expected 5h automated, got %v", got.Automated)
		}
		if got.Total() != 23*time.Hour {
			t.Errorf("expected 23h total, got %v", got.Total())
		}
	})

	t.Run("gap counts toward neither", func(t *testing.T) {
		segs := []Segment{seg(0, 2, 1, ModeAutomated), seg(4, 2, 1, ModeScheduled)}
		got := ComputeGroupDurations(segs, day0, day0.Add(6*time.Hour))
		if got.Automated != 2*time.Hour || got.Manual != 2*time.Hour {
			t.Errorf("expected 2h/2h, got %v/%v", got.Automated, got.Manual)
		}
	})

	t.Run("missing endpoint", func(t *testing.T) {
		ep := Endpoints{Start: Endpoint{Time: day0, Index: -1}, End: Endpoint{Time: day0.Add(time.Hour), Index: 0}}
		got := GroupDurationsFromEndpoints(sixHourDay(), ep)
		if got.Total() != 0 {
			t.Errorf("expected zero contribution, got %v", got.Total())
		}
	})
}

func TestSegmentDose(t *testing.T) {
	if got := SegmentDose(90*time.Minute, 0.8); math.Abs(got-1.2) > 1e-9 {
		t.Errorf("expected 1.2, got %f", got)
	}
}

func TestTotalDoseWindowShift(t *testing.T) {
	segs := []Segment{
		seg(0, 3, 0.25, ModeScheduled),
		seg(3, 2, 0.75, ModeTemporary),
		seg(5, 19, 0.5, ModeScheduled),
	}
	at := func(h float64) time.Time { return day0.Add(time.Duration(h * float64(time.Hour))) }

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		// moveStart shifts the start boundary later; otherwise the end moves later
		moveStart bool
		delta     time.Duration
		rate      float64
	}{
		{"end by a millisecond", at(1), at(8), false, time.Millisecond, 0.5},
		{"end by a second", at(1), at(8), false, time.Second, 0.5},
		{"end by seven minutes", at(1), at(8), false, 7 * time.Minute, 0.5},
		{"end by ninety minutes", at(1), at(8), false, 90 * time.Minute, 0.5},
		{"end to the segment edge", at(1), at(8), false, 16 * time.Hour, 0.5},
		{"start by a second", at(3.25), at(12), true, time.Second, 0.75},
		{"start by forty minutes", at(3.25), at(12), true, 40 * time.Minute, 0.75},
		{"start by an hour and a half", at(3.25), at(12), true, 90 * time.Minute, 0.75},
		{"start inside the first segment", at(0.5), at(12), true, 2 * time.Hour, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := TotalDose(segs, tt.start, tt.end)

			expected := float64(tt.delta) / float64(time.Hour) * tt.rate
			shifted := TotalDose(segs, tt.start, tt.end.Add(tt.delta))
			if tt.moveStart {
				shifted = TotalDose(segs, tt.start.Add(tt.delta), tt.end)
				expected = -expected
			}

			if got := shifted - base; math.Abs(got-expected) > 1e-9 {
				t.Errorf("expected the total to change by %v, got %v", expected, got)
			}
		})
	}
}

func TestTotalBasalFromEndpoints(t *testing.T) {
	segs := []Segment{
		seg(0, 3, 0.25, ModeScheduled),
		seg(3, 2, 0.75, ModeTemporary),
		seg(5, 19, 0.5, ModeScheduled),
	}

	tests := []struct {
		name     string
		start    time.Time
		expected string
	}{
		{"full day", day0, "11.75"},
		// the hour before midnight is a gap and the final hour at 0.5/h is lost
		{"shifted an hour early", day0.Add(-time.Hour), "11.25"},
		{"shifted an hour late", day0.Add(time.Hour), "11.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalBasalFromEndpoints(segs, [2]time.Time{tt.start, tt.start.Add(24 * time.Hour)})
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestTotalBasalSuperset(t *testing.T) {
	segs := []Segment{{Start: day0.Add(-12 * time.Hour), Duration: 48 * time.Hour, Rate: 1}}
	if got := TotalBasalFromEndpoints(segs, [2]time.Time{day0, day0.Add(24 * time.Hour)}); got != "24.00" {
		t.Errorf("expected 24.00, got %s", got)
	}
}

func TestTotalBasalBoundaryTouching(t *testing.T) {
	segs := []Segment{seg(-2, 2, 3, ModeScheduled)}
	if got := TotalBasalFromEndpoints(segs, [2]time.Time{day0, day0.Add(time.Hour)}); got != "0.00" {
		t.Errorf("expected 0.00, got %s", got)
	}
}

func TestTrim(t *testing.T) {
	segs := []Segment{
		{Start: day0.Add(-time.Hour), Duration: 3 * time.Hour, Rate: 1, Mode: ModeTemporary, Suppressed: &Suppressed{Mode: ModeScheduled, Rate: 0.5}},
		seg(2, 20, 1, ModeScheduled),
		seg(22, 4, 1, ModeScheduled),
		seg(30, 1, 1, ModeScheduled),
	}

	trimmed := Trim(segs, day0, day0.Add(24*time.Hour))
	if len(trimmed) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(trimmed))
	}
	if !trimmed[0].Start.Equal(day0) || trimmed[0].Duration != 2*time.Hour {
		t.Errorf("expected first segment clipped to 00:00-02:00, got %v +%v", trimmed[0].Start, trimmed[0].Duration)
	}
	if trimmed[2].Duration != 2*time.Hour {
		t.Errorf("expected last segment clipped to 2h, got %v", trimmed[2].Duration)
	}
	if segs[0].Duration != 3*time.Hour {
		t.Errorf("expected input to be left untouched")
	}
	trimmed[0].Suppressed.Rate = 9
	if segs[0].Suppressed.Rate != 0.5 {
		t.Errorf("expected suppressed record to be copied")
	}
}

func TestMaxRate(t *testing.T) {
	segs := []Segment{
		seg(0, 1, 0.8, ModeScheduled),
		{Start: day0.Add(time.Hour), Duration: time.Hour, Mode: ModeSuspended, Suppressed: &Suppressed{Mode: ModeScheduled, Rate: 1.3}},
	}
	if got := MaxRate(segs); got != 1.3 {
		t.Errorf("expected 1.3, got %f", got)
	}
}
