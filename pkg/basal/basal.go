// Package basal implements interval arithmetic over basal insulin delivery
// segments: sequence and path-group partitioning, endpoint lookup, and clipped
// dose and duration integration over arbitrary time windows.
package basal

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Mode is the delivery mode of a basal segment. It is resolved once, at
// ingestion, from the stored subType/deliveryType pair.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeScheduled
	ModeAutomated
	ModeTemporary
	ModeSuspended
)

// ParseMode resolves the legacy dual encoding of a basal's delivery mode.
// A non-empty subType always wins over deliveryType.
func ParseMode(subType, deliveryType string) Mode {
	raw := subType
	if raw == "" {
		raw = deliveryType
	}

	switch raw {
	case "scheduled":
		return ModeScheduled
	case "automated":
		return ModeAutomated
	case "temp":
		return ModeTemporary
	case "suspend":
		return ModeSuspended
	}
	return ModeUnknown
}

func (m Mode) String() string {
	switch m {
	case ModeScheduled:
		return "scheduled"
	case ModeAutomated:
		return "automated"
	case ModeTemporary:
		return "temp"
	case ModeSuspended:
		return "suspend"
	}
	return "unknown"
}

// MarshalText lets modes serialize as their wire names.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts the same names ParseMode does.
func (m *Mode) UnmarshalText(b []byte) error {
	*m = ParseMode(string(b), "")
	return nil
}

// Suppressed describes the delivery a temp or suspend segment displaced.
type Suppressed struct {
	Mode Mode    `json:"mode"`
	Rate float64 `json:"rate"`
}

// Segment is one basal delivery interval at a constant rate (units/hour).
type Segment struct {
	ID         string        `json:"id,omitempty"`
	Start      time.Time     `json:"start"`
	Duration   time.Duration `json:"duration"`
	Rate       float64       `json:"rate"`
	Mode       Mode          `json:"mode"`
	Suppressed *Suppressed   `json:"suppressed,omitempty"`
}

// End returns the exclusive end of the segment.
func (s Segment) End() time.Time {
	return s.Start.Add(s.Duration)
}

// GroupType is the coarse automated/manual split used for outlines and
// time-in-automated statistics.
type GroupType int

const (
	GroupManual GroupType = iota
	GroupAutomated
)

func (g GroupType) String() string {
	if g == GroupAutomated {
		return "automated"
	}
	return "manual"
}

// PathGroupType classifies a segment as automated or manual. A suspend that
// interrupted automated delivery still belongs to the automated group.
func PathGroupType(s Segment) GroupType {
	if s.Mode == ModeAutomated {
		return GroupAutomated
	}
	if s.Mode == ModeSuspended && s.Suppressed != nil && s.Suppressed.Mode == ModeAutomated {
		return GroupAutomated
	}
	return GroupManual
}

// Sequences splits segments into maximal runs that share a mode and are
// temporally contiguous. Concatenating the result yields the input.
func Sequences(segs []Segment) [][]Segment {
	return partition(segs, func(prev, cur Segment) bool {
		return cur.Mode != prev.Mode || !prev.End().Equal(cur.Start)
	})
}

// PathGroups splits segments on changes of PathGroupType only; gaps do not
// break a group.
func PathGroups(segs []Segment) [][]Segment {
	return partition(segs, func(prev, cur Segment) bool {
		return PathGroupType(cur) != PathGroupType(prev)
	})
}

func partition(segs []Segment, split func(prev, cur Segment) bool) [][]Segment {
	var out [][]Segment
	var cur []Segment
	for i, s := range segs {
		if i > 0 && split(segs[i-1], s) {
			out = append(out, cur)
			cur = nil
		}
		cur = append(cur, s)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// Endpoint is a window boundary with the index of the segment that covers it,
// or -1 when no segment qualifies.
type Endpoint struct {
	Time  time.Time `json:"time"`
	Index int       `json:"index"`
}

// Endpoints bounds a window over a segment list.
type Endpoints struct {
	Start Endpoint `json:"start"`
	End   Endpoint `json:"end"`
}

// GetEndpoints finds the first and last segments relevant to [start, end].
// With inclusive set, segments that only partially overlap the window
// boundaries still qualify.
func GetEndpoints(segs []Segment, start, end time.Time, inclusive bool) Endpoints {
	startIdx, endIdx := -1, -1

	for i, s := range segs {
		if (inclusive || !s.Start.After(start)) && !start.After(s.End()) {
			startIdx = i
			break
		}
	}

	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		if !s.Start.After(end) && (inclusive || !end.After(s.End())) {
			endIdx = i
			break
		}
	}

	return Endpoints{
		Start: Endpoint{Time: start, Index: startIdx},
		End:   Endpoint{Time: end, Index: endIdx},
	}
}

// GroupDurations holds delivery time split by path group type.
type GroupDurations struct {
	Automated time.Duration `json:"automated"`
	Manual    time.Duration `json:"manual"`
}

// Total is the sum of both buckets.
func (g GroupDurations) Total() time.Duration {
	return g.Automated + g.Manual
}

// AutomatedFraction is the share of delivery time spent in automated mode,
// or 0 when nothing was delivered.
func (g GroupDurations) AutomatedFraction() float64 {
	total := g.Total()
	if total <= 0 {
		return 0
	}
	return float64(g.Automated) / float64(total)
}

// ComputeGroupDurations returns clipped automated and manual durations over
// [start, end]. Gaps between segments count toward neither bucket.
func ComputeGroupDurations(segs []Segment, start, end time.Time) GroupDurations {
	return GroupDurationsFromEndpoints(segs, GetEndpoints(segs, start, end, true))
}

// GroupDurationsFromEndpoints integrates durations over pre-resolved
// endpoints. A -1 index on either side contributes nothing.
func GroupDurationsFromEndpoints(segs []Segment, ep Endpoints) GroupDurations {
	var out GroupDurations
	if ep.Start.Index < 0 || ep.End.Index < 0 {
		return out
	}

	for i := ep.Start.Index; i <= ep.End.Index && i < len(segs); i++ {
		d := ClippedDuration(segs[i], ep.Start.Time, ep.End.Time)
		if PathGroupType(segs[i]) == GroupAutomated {
			out.Automated += d
		} else {
			out.Manual += d
		}
	}
	return out
}

// ClippedDuration is the portion of a segment that lies inside [start, end].
func ClippedDuration(s Segment, start, end time.Time) time.Duration {
	from := s.Start
	if start.After(from) {
		from = start
	}
	to := s.End()
	if end.Before(to) {
		to = end
	}
	if !to.After(from) {
		return 0
	}
	return to.Sub(from)
}

// SegmentDose is the insulin delivered at rate units/hour for d.
func SegmentDose(d time.Duration, rate float64) float64 {
	return d.Hours() * rate
}

// TotalDose sums the clipped dose of every segment over [start, end].
func TotalDose(segs []Segment, start, end time.Time) float64 {
	return lo.SumBy(segs, func(s Segment) float64 {
		return SegmentDose(ClippedDuration(s, start, end), s.Rate)
	})
}

// TotalBasalFromEndpoints returns the clipped basal total over the window as
// a two-decimal string.
func TotalBasalFromEndpoints(segs []Segment, window [2]time.Time) string {
	return fmt.Sprintf("%.2f", TotalDose(segs, window[0], window[1]))
}

// Trim returns copies of the segments overlapping [start, end) with their
// extents clipped to the window. The input is not modified.
func Trim(segs []Segment, start, end time.Time) []Segment {
	var out []Segment
	for _, s := range segs {
		if !s.End().After(start) || !s.Start.Before(end) {
			continue
		}
		c := s
		if c.Start.Before(start) {
			c.Duration -= start.Sub(c.Start)
			c.Start = start
		}
		if c.End().After(end) {
			c.Duration = end.Sub(c.Start)
		}
		if c.Suppressed != nil {
			sup := *c.Suppressed
			c.Suppressed = &sup
		}
		out = append(out, c)
	}
	return out
}

// MaxRate is the largest delivered or suppressed rate across segments.
func MaxRate(segs []Segment) float64 {
	var max float64
	for _, s := range segs {
		if s.Rate > max {
			max = s.Rate
		}
		if s.Suppressed != nil && s.Suppressed.Rate > max {
			max = s.Suppressed.Rate
		}
	}
	return max
}
