package render

import (
	"fmt"
	"strings"
)

// PathOpKind is a path drawing instruction.
type PathOpKind int

const (
	MoveTo PathOpKind = iota
	LineTo
	ClosePath
)

// PathOp is one instruction of a path.
type PathOp struct {
	Kind PathOpKind
	X, Y float64
}

// Path is a sequence of straight-line drawing instructions.
type Path struct {
	Ops []PathOp
}

func (p *Path) MoveTo(x, y float64) *Path {
	p.Ops = append(p.Ops, PathOp{Kind: MoveTo, X: x, Y: y})
	return p
}

func (p *Path) LineTo(x, y float64) *Path {
	p.Ops = append(p.Ops, PathOp{Kind: LineTo, X: x, Y: y})
	return p
}

func (p *Path) Close() *Path {
	p.Ops = append(p.Ops, PathOp{Kind: ClosePath})
	return p
}

func (p Path) Empty() bool {
	return len(p.Ops) == 0
}

// Rect builds a closed rectangle path from its edges, starting bottom-left.
func Rect(left, right, top, bottom float64) Path {
	var p Path
	p.MoveTo(left, bottom).LineTo(left, top).LineTo(right, top).LineTo(right, bottom).Close()
	return p
}

// String renders the path in SVG path-data syntax.
func (p Path) String() string {
	var b strings.Builder
	for i, op := range p.Ops {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch op.Kind {
		case MoveTo:
			fmt.Fprintf(&b, "M %g,%g", op.X, op.Y)
		case LineTo:
			fmt.Fprintf(&b, "L %g,%g", op.X, op.Y)
		case ClosePath:
			b.WriteByte('Z')
		}
	}
	return b.String()
}
