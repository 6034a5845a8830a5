package render

// OpKind identifies a recorded sink call.
type OpKind string

const (
	OpPage      OpKind = "page"
	OpFont      OpKind = "font"
	OpFill      OpKind = "fill"
	OpStroke    OpKind = "stroke"
	OpLineWidth OpKind = "lineWidth"
	OpDash      OpKind = "dash"
	OpLine      OpKind = "line"
	OpRect      OpKind = "rect"
	OpCircle    OpKind = "circle"
	OpPath      OpKind = "path"
	OpText      OpKind = "text"
)

// Op is one recorded sink call.
type Op struct {
	Kind    OpKind
	Page    int
	Color   Color
	Opacity float64
	Font    Font
	Style   Style
	Coords  []float64
	Dash    []float64
	Path    Path
	Text    string
	Options TextOptions
}

// Recorder is a Sink that keeps every call in order. Pages are numbered from
// 1; calls before the first AddPage land on page 0.
type Recorder struct {
	Ops  []Op
	page int
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) add(op Op) {
	op.Page = r.page
	r.Ops = append(r.Ops, op)
}

func (r *Recorder) AddPage() {
	r.page++
	r.add(Op{Kind: OpPage})
}

func (r *Recorder) SetFont(f Font) {
	r.add(Op{Kind: OpFont, Font: f})
}

func (r *Recorder) SetFillColor(c Color, opacity float64) {
	r.add(Op{Kind: OpFill, Color: c, Opacity: opacity})
}

func (r *Recorder) SetStrokeColor(c Color) {
	r.add(Op{Kind: OpStroke, Color: c})
}

func (r *Recorder) SetLineWidth(w float64) {
	r.add(Op{Kind: OpLineWidth, Coords: []float64{w}})
}

func (r *Recorder) SetDash(pattern ...float64) {
	r.add(Op{Kind: OpDash, Dash: append([]float64(nil), pattern...)})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.add(Op{Kind: OpLine, Coords: []float64{x1, y1, x2, y2}})
}

func (r *Recorder) Rect(x, y, w, h float64, style Style) {
	r.add(Op{Kind: OpRect, Coords: []float64{x, y, w, h}, Style: style})
}

func (r *Recorder) Circle(x, y, radius float64, style Style) {
	r.add(Op{Kind: OpCircle, Coords: []float64{x, y, radius}, Style: style})
}

func (r *Recorder) Path(p Path, style Style) {
	r.add(Op{Kind: OpPath, Path: p, Style: style})
}

func (r *Recorder) Text(s string, x, y float64, opts TextOptions) {
	r.add(Op{Kind: OpText, Text: s, Coords: []float64{x, y}, Options: opts})
}

// Pages is the number of pages started.
func (r *Recorder) Pages() int {
	return r.page
}

// Filter returns the recorded calls of one kind, on one page when page > 0.
func (r *Recorder) Filter(kind OpKind, page int) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind && (page <= 0 || op.Page == page) {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns every string drawn on a page, or on all pages when page <= 0.
func (r *Recorder) Texts(page int) []string {
	var out []string
	for _, op := range r.Filter(OpText, page) {
		out = append(out, op.Text)
	}
	return out
}
