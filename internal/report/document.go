package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chrissnell/printview/internal/format"
	"github.com/chrissnell/printview/internal/layout"
	"github.com/chrissnell/printview/internal/render"
)

// Patient identifies whose data a document shows.
type Patient struct {
	FullName  string `json:"fullName"`
	Birthdate string `json:"birthdate,omitempty"`
}

// Document renders an ordered list of sections into one paginated output.
type Document struct {
	ID       uuid.UUID
	Layout   layout.PageLayout
	Palette  render.Palette
	Patient  Patient
	Product  string
	HelpText string
	Now      func() time.Time

	renderers []Renderer
}

// Section reports how many pages a renderer produced.
type Section struct {
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
	Pages int    `json:"pages"`
}

// Result describes a rendered document.
type Result struct {
	ID       string    `json:"id"`
	Pages    int       `json:"pages"`
	Sections []Section `json:"sections"`
}

func NewDocument(pl layout.PageLayout, patient Patient) *Document {
	return &Document{
		ID:       uuid.New(),
		Layout:   pl,
		Palette:  render.DefaultPalette(),
		Patient:  patient,
		Product:  "printview",
		HelpText: "Values are as reported by the uploaded devices.",
		Now:      time.Now,
	}
}

// Add appends a section.
func (d *Document) Add(r Renderer) {
	d.renderers = append(d.renderers, r)
}

type section struct {
	renderer Renderer
	packed   Packed
}

// Render draws every section in order. Nothing is drawn if there are no
// sections.
func (d *Document) Render(sink render.Sink, m render.Metrics) (*Result, error) {
	res := &Result{ID: d.ID.String()}

	var sections []section
	for _, r := range d.renderers {
		packed := r.EstimateHeights(d.Layout, m).PackPages()
		start, end := r.DateRange()
		sections = append(sections, section{renderer: r, packed: packed})
		res.Sections = append(res.Sections, Section{
			Title: r.Title(),
			Start: start,
			End:   end,
			Pages: packed.PageCount(),
		})
		res.Pages += packed.PageCount()
	}

	c := &Canvas{Sink: sink, Metrics: m, Layout: d.Layout, Palette: d.Palette}
	printed := format.PrintDate(d.Now())

	n := 0
	for _, s := range sections {
		for page := 0; page < s.packed.PageCount(); page++ {
			n++
			sink.AddPage()
			d.renderHeader(c, s.renderer, printed)
			d.renderFooter(c, n, res.Pages)
			if err := s.packed.RenderPage(c, page); err != nil {
				return nil, fmt.Errorf("rendering %s page %d: %w", s.renderer.Title(), page+1, err)
			}
		}
	}

	return res, nil
}

func (d *Document) renderHeader(c *Canvas, r Renderer, printed string) {
	pl := d.Layout
	left, top := pl.Margins.Left, pl.Margins.Top

	c.Ink()
	info := c.Font(false, 10)
	infoLine := c.LineHeight(10) + 2
	c.Text(d.Patient.FullName, left, top, render.TextOptions{})
	infoWidth := c.Width(d.Patient.FullName, info)
	infoBottom := top + infoLine
	if d.Patient.Birthdate != "" {
		c.Text(d.Patient.Birthdate, left, infoBottom, render.TextOptions{})
		infoWidth = max(infoWidth, c.Width(d.Patient.Birthdate, info))
		infoBottom += infoLine
	}

	const padding = 10
	c.StrokeLine(left+infoWidth+padding, top, left+infoWidth+padding, infoBottom, 1, render.Black)

	titleFont := c.Font(false, 14)
	titleLine := c.LineHeight(14)
	titleX := left + infoWidth + padding*2 + 1
	titleY := top + (infoBottom-top)/2 - titleLine/2
	c.Text(r.Title(), titleX, titleY, render.TextOptions{})
	titleWidth := c.Width(r.Title(), titleFont)

	start, end := r.DateRange()
	c.Font(false, 10)
	c.Text(fmt.Sprintf("Printed from %s: %s", d.Product, printed), titleX+titleWidth, titleY+4, render.TextOptions{
		Width: pl.RightEdge() - (titleX + titleWidth),
		Align: render.AlignCenter,
	})
	if start != "" {
		c.Text(start+" - "+end, titleX, titleY+titleLine+2, render.TextOptions{})
	}

	y := titleLine*2.25 + top
	c.StrokeLine(left, y, left+pl.Width(), y, 1, render.Black)
}

func (d *Document) renderFooter(c *Canvas, page, total int) {
	pl := d.Layout
	size := pl.Fonts.Footer
	y := pl.BottomEdge() - c.LineHeight(size)*1.5

	c.Ink()
	c.Font(false, size)
	c.Text(d.HelpText, pl.Margins.Left, y, render.TextOptions{Width: pl.Width(), Align: render.AlignCenter})
	c.Text(fmt.Sprintf("page %d of %d", page, total), pl.Margins.Left, y, render.TextOptions{
		Width: pl.Width(),
		Align: render.AlignRight,
	})
}
