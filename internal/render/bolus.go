package render

import (
	"math"
	"time"

	"github.com/chrissnell/printview/pkg/bolus"
	"github.com/chrissnell/printview/pkg/scale"
)

// BolusPathKind names a component of a drawn insulin event.
type BolusPathKind string

const (
	BolusUndelivered                 BolusPathKind = "undelivered"
	BolusProgrammed                  BolusPathKind = "programmed"
	BolusUnderride                   BolusPathKind = "underride"
	BolusDelivered                   BolusPathKind = "delivered"
	BolusExtended                    BolusPathKind = "extendedPath"
	BolusExtendedExpectation         BolusPathKind = "extendedExpectationPath"
	BolusExtendedInterrupted         BolusPathKind = "extendedInterrupted"
	BolusExtendedTriangle            BolusPathKind = "extendedTriangle"
	BolusExtendedTriangleInterrupted BolusPathKind = "extendedTriangleInterrupted"
	BolusUnderrideTriangle           BolusPathKind = "underrideTriangle"
	BolusOverrideTriangle            BolusPathKind = "overrideTriangle"
	BolusInterrupted                 BolusPathKind = "interrupted"
)

// BolusPath is one component of a drawn insulin event. Programmed outlines
// are stroked; everything else is filled.
type BolusPath struct {
	Kind BolusPathKind
	Path Path
}

// Stroked reports whether the component is drawn as an outline.
func (b BolusPath) Stroked() bool {
	return b.Kind == BolusProgrammed
}

// BolusGeometry sizes the marks of an insulin event.
type BolusGeometry struct {
	Width                    float64
	ExtendedLineThickness    float64
	InterruptedLineThickness float64
	TriangleHeight           float64
}

func DefaultBolusGeometry() BolusGeometry {
	return BolusGeometry{
		Width:                    3,
		ExtendedLineThickness:    0.75,
		InterruptedLineThickness: 0.5,
		TriangleHeight:           1.25,
	}
}

// XFunc maps an instant to a horizontal page position.
type XFunc func(time.Time) float64

func present(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}

// BolusPaths lays out the components of one insulin event, back to front.
func BolusPaths(e bolus.Event, x XFunc, y scale.Linear, g BolusGeometry) []BolusPath {
	var paths []BolusPath

	bottom := y.Range()[0]
	center := x(e.When())
	left := center - g.Width/2
	right := center + g.Width/2

	delivered := e.Delivered()
	underride := e.IsUnderride() && present(delivered)
	override := e.IsOverride() && present(delivered)
	interrupted := e.IsInterrupted()

	if interrupted {
		paths = append(paths, BolusPath{
			Kind: BolusUndelivered,
			Path: Rect(left, right, y.At(e.MaxValue()), bottom),
		})

		programmedY := y.At(e.Programmed())
		deliveredY := y.At(delivered)
		const fractionStroke = 0.5

		var p Path
		p.MoveTo(left+fractionStroke, deliveredY).
			LineTo(left+fractionStroke, programmedY+fractionStroke).
			LineTo(right-fractionStroke, programmedY+fractionStroke).
			LineTo(right-fractionStroke, deliveredY)
		paths = append(paths, BolusPath{Kind: BolusProgrammed, Path: p})
	} else if underride {
		paths = append(paths, BolusPath{
			Kind: BolusUnderride,
			Path: Rect(left, right, y.At(e.RecommendedTotal()), bottom),
		})
	}

	if present(delivered) || present(e.Programmed()) {
		paths = append(paths, BolusPath{
			Kind: BolusDelivered,
			Path: Rect(left, right, y.At(delivered), bottom),
		})
	}

	if e.HasExtended() {
		paths = append(paths, extendedPaths(e, x, y, g, center, interrupted)...)
	}

	if underride {
		programmedY := y.At(e.Programmed())
		var p Path
		p.MoveTo(left, programmedY).
			LineTo(left+g.Width/2, programmedY+g.TriangleHeight).
			LineTo(right, programmedY).
			Close()
		paths = append(paths, BolusPath{Kind: BolusUnderrideTriangle, Path: p})
	}

	if override {
		recommendedY := y.At(e.RecommendedTotal())
		var p Path
		p.MoveTo(left, recommendedY).
			LineTo(left+g.Width/2, recommendedY-g.TriangleHeight).
			LineTo(right, recommendedY).
			Close()
		paths = append(paths, BolusPath{Kind: BolusOverrideTriangle, Path: p})
	}

	// the interruption line sits on top of everything
	if interrupted {
		lineBottom := y.At(delivered)
		paths = append(paths, BolusPath{
			Kind: BolusInterrupted,
			Path: Rect(left, right, lineBottom+g.InterruptedLineThickness, lineBottom),
		})
	}

	return paths
}

func extendedPaths(e bolus.Event, x XFunc, y scale.Linear, g BolusGeometry, center float64, interrupted bool) []BolusPath {
	var paths []BolusPath

	extended := e.Extended()
	thick := g.ExtendedLineThickness
	triangle := 4.5 * thick
	start := e.When()
	triangleStart := x(start.Add(e.MaxDuration())) - triangle
	extendedY := y.At(extended) + thick/2

	arm := func(from float64) Path {
		var p Path
		p.MoveTo(from, extendedY+thick/2).
			LineTo(from, extendedY-thick/2).
			LineTo(triangleStart+thick, extendedY-thick/2).
			LineTo(triangleStart+thick, extendedY+thick/2).
			Close()
		return p
	}

	if extended > 0 {
		paths = append(paths, BolusPath{Kind: BolusExtended, Path: arm(center)})
	}

	interruptedExtended := interrupted && extended > 0
	if interruptedExtended {
		stop := x(start.Add(e.Duration()))
		paths = append(paths, BolusPath{Kind: BolusExtendedExpectation, Path: arm(stop)})

		half := g.InterruptedLineThickness / 2
		var p Path
		p.MoveTo(stop, extendedY-half).
			LineTo(stop-g.InterruptedLineThickness*2, extendedY-half).
			LineTo(stop-g.InterruptedLineThickness*2, extendedY+half).
			LineTo(stop, extendedY+half).
			Close()
		paths = append(paths, BolusPath{Kind: BolusExtendedInterrupted, Path: p})
	}

	if extended > 0 {
		kind := BolusExtendedTriangle
		if interruptedExtended {
			kind = BolusExtendedTriangleInterrupted
		}
		var p Path
		p.MoveTo(triangleStart+triangle, extendedY-triangle/2).
			LineTo(triangleStart+triangle, extendedY+triangle/2).
			LineTo(triangleStart, extendedY).
			Close()
		paths = append(paths, BolusPath{Kind: kind, Path: p})
	}

	return paths
}
