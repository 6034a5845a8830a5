package layout

import "github.com/samber/lo"

// fitTolerance absorbs floating-point error: three minimum-height charts
// with their padding exactly fill the chart area.
const fitTolerance = 1e-6

// Placement positions one block on a page. Pages are numbered from 0 within
// a single packing run.
type Placement struct {
	Index  int     `json:"index"`
	Page   int     `json:"page"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Height of the placed block.
func (p Placement) Height() float64 {
	return p.Bottom - p.Top
}

// Pack lays blocks of the given heights onto pages in order. A page closes
// as soon as the next block plus padding would overflow the area. A block
// taller than the whole area goes alone on its own page. maxPerPage <= 0
// means no cap.
func Pack(heights []float64, area ChartArea, padding float64, maxPerPage int) []Placement {
	available := area.Height()
	out := make([]Placement, 0, len(heights))

	page := 0
	i := 0
	for i < len(heights) {
		used := 0.0
		placed := 0
		top := area.Top

		for i < len(heights) {
			if maxPerPage > 0 && placed >= maxPerPage {
				break
			}
			h := heights[i]
			if used+h+padding > available+fitTolerance {
				if placed == 0 {
					out = append(out, Placement{Index: i, Page: page, Top: area.Top, Bottom: area.Top + h})
					i++
				}
				break
			}
			out = append(out, Placement{Index: i, Page: page, Top: top, Bottom: top + h})
			used += h + padding
			top += h + padding
			placed++
			i++
		}
		page++
	}
	return out
}

// PageCount is the number of pages a packing result spans.
func PageCount(ps []Placement) int {
	if len(ps) == 0 {
		return 0
	}
	return ps[len(ps)-1].Page + 1
}

// OnPage returns the placements on one page, in order.
func OnPage(ps []Placement, page int) []Placement {
	return lo.Filter(ps, func(p Placement, _ int) bool {
		return p.Page == page
	})
}
