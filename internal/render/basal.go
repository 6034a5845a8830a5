package render

import (
	"github.com/chrissnell/printview/pkg/basal"
	"github.com/chrissnell/printview/pkg/scale"
)

// BasalPathOptions shape a basal outline.
type BasalPathOptions struct {
	StartAtZero bool
	EndAtZero   bool
	Filled      bool
	// FlushBottomOffset shifts zero-rate runs off the axis line.
	FlushBottomOffset float64
}

// BasalPath traces the step outline of consecutive segments. Where one
// segment does not start at the previous one's end, the outline drops to the
// axis and resumes from it.
func BasalPath(segs []basal.Segment, x XFunc, y scale.Linear, opts BasalPathOptions) Path {
	var p Path
	if len(segs) == 0 {
		return p
	}

	zero := y.Range()[0]
	flush := zero + opts.FlushBottomOffset
	level := func(rate float64) float64 {
		if rate > 0 {
			return y.At(rate) + opts.FlushBottomOffset
		}
		return flush
	}

	first := segs[0]
	startX := x(first.Start)
	if opts.StartAtZero {
		p.MoveTo(startX, flush).LineTo(startX, level(first.Rate))
	} else {
		p.MoveTo(startX, level(first.Rate))
	}

	for i, s := range segs {
		if i > 0 && !segs[i-1].End().Equal(s.Start) {
			p.LineTo(x(segs[i-1].End()), flush)
			p.MoveTo(x(s.Start), flush)
		}
		yy := level(s.Rate)
		p.LineTo(x(s.Start), yy).LineTo(x(s.End()), yy)
	}

	if opts.EndAtZero {
		p.LineTo(x(segs[len(segs)-1].End()), flush)
	}
	if opts.Filled {
		p.Close()
	}
	return p
}

// SequencePath is one mark of a basal sequence: a filled delivery area or a
// dashed trace of the delivery it displaced.
type SequencePath struct {
	Stroke bool
	Mode   basal.Mode
	// SuppressedMode is the displaced delivery's mode on stroke paths.
	SuppressedMode basal.Mode
	Path           Path
}

// SequencePaths lays out the marks for one basal sequence.
func SequencePaths(seq []basal.Segment, x XFunc, y scale.Linear) []SequencePath {
	if len(seq) == 0 {
		return nil
	}
	mode := seq[0].Mode

	var out []SequencePath
	delivering := false
	for _, s := range seq {
		if s.Rate > 0 {
			delivering = true
			break
		}
	}
	if delivering {
		out = append(out, SequencePath{
			Mode: mode,
			Path: BasalPath(seq, x, y, BasalPathOptions{StartAtZero: true, EndAtZero: true, Filled: true}),
		})
	}

	if mode == basal.ModeScheduled || mode == basal.ModeAutomated {
		return out
	}

	var displaced []basal.Segment
	suppressedMode := basal.ModeUnknown
	for _, s := range seq {
		if s.Suppressed == nil {
			continue
		}
		d := s
		d.Rate = s.Suppressed.Rate
		displaced = append(displaced, d)
		if suppressedMode == basal.ModeUnknown {
			suppressedMode = s.Suppressed.Mode
		}
	}
	if len(displaced) > 0 {
		out = append(out, SequencePath{
			Stroke:         true,
			Mode:           mode,
			SuppressedMode: suppressedMode,
			Path:           BasalPath(displaced, x, y, BasalPathOptions{}),
		})
	}
	return out
}
