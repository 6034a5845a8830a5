package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/chrissnell/printview/internal/constants"
	"github.com/chrissnell/printview/internal/dataset"
	"github.com/chrissnell/printview/internal/device"
	"github.com/chrissnell/printview/internal/layout"
	"github.com/chrissnell/printview/internal/render/pdf"
	"github.com/chrissnell/printview/internal/report"
	"github.com/chrissnell/printview/internal/report/bglog"
	"github.com/chrissnell/printview/internal/report/daily"
	"github.com/chrissnell/printview/internal/storage"
	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/config"
)

// siteChangeLookback is how far before the first printed day site changes are
// loaded, so the first day's markers can count days since the previous one.
const siteChangeLookback = 30 * 24 * time.Hour

// ErrBadRequest marks a request that can never succeed as given.
var ErrBadRequest = errors.New("bad request")

// Request selects the days to print. With no dates the configured number of
// days ending on the latest datum is printed.
type Request struct {
	PatientID string
	// Start and End are calendar dates, inclusive, in the report timezone.
	Start time.Time
	End   time.Time
}

// ParseDate reads a YYYY-MM-DD calendar date in loc. An empty string is the
// zero time.
func ParseDate(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(constants.DateLayout, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrBadRequest, v)
	}
	return t, nil
}

// Service turns stored records into documents.
type Service struct {
	source storage.Source
	cfg    *config.ConfigData
	loc    *time.Location
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewService(source storage.Source, cfg *config.ConfigData, logger *zap.SugaredLogger) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("report timezone: %w", err)
	}
	return &Service{source: source, cfg: cfg, loc: loc, logger: logger, now: time.Now}, nil
}

// Location is the timezone days are bucketed in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// PageLayout converts the report configuration into a page layout.
func PageLayout(r config.ReportData) layout.PageLayout {
	pl := layout.DefaultPageLayout()
	pl.PageWidth = r.Page.Width
	pl.PageHeight = r.Page.Height
	pl.Margins = layout.Margins{
		Top:    r.Page.MarginTop,
		Right:  r.Page.MarginRight,
		Bottom: r.Page.MarginBottom,
		Left:   r.Page.MarginLeft,
	}
	pl.Fonts = layout.Fonts{
		Default:       r.Fonts.Default,
		Large:         r.Fonts.Large,
		Small:         r.Fonts.Small,
		ExtraSmall:    r.Fonts.ExtraSmall,
		Header:        r.Fonts.Header,
		Footer:        r.Fonts.Footer,
		SummaryHeader: r.Fonts.SummaryHeader,
	}
	pl.ChartsPerPage = r.ChartsPerPage
	return pl
}

// Prefs converts the configured units and bounds.
func Prefs(r config.ReportData) types.BgPrefs {
	return types.BgPrefs{
		Units: r.BgUnits,
		Bounds: types.BgBounds{
			VeryLow:     r.BgBounds.VeryLow,
			TargetLower: r.BgBounds.TargetLower,
			TargetUpper: r.BgBounds.TargetUpper,
			VeryHigh:    r.BgBounds.VeryHigh,
		},
	}
}

func (s *Service) patientID(req Request) string {
	if req.PatientID != "" {
		return req.PatientID
	}
	return s.cfg.Patient.ID
}

// Dataset loads and buckets the requested days.
func (s *Service) Dataset(ctx context.Context, req Request) (*dataset.Dataset, error) {
	if req.Start.IsZero() != req.End.IsZero() {
		return nil, fmt.Errorf("%w: start and end must be given together", ErrBadRequest)
	}

	prefs := Prefs(s.cfg.Report)
	q := storage.Query{PatientID: s.patientID(req), Units: prefs.Units}
	if !req.Start.IsZero() {
		if req.End.Before(req.Start) {
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, dataset.ErrInvalidRange)
		}
		first := time.Date(req.Start.Year(), req.Start.Month(), req.Start.Day(), 0, 0, 0, 0, s.loc)
		last := time.Date(req.End.Year(), req.End.Month(), req.End.Day(), 0, 0, 0, 0, s.loc)
		q.Start = first.Add(-siteChangeLookback)
		q.End = last.AddDate(0, 0, 1)
	}

	rec, err := s.source.Load(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	if rec.Empty() {
		return nil, dataset.ErrNoData
	}

	if req.Start.IsZero() {
		return dataset.SelectRecent(rec, s.cfg.Report.Days, s.loc, prefs)
	}
	return dataset.Select(rec, req.Start, req.End, s.loc, prefs)
}

func (s *Service) document() *report.Document {
	doc := report.NewDocument(PageLayout(s.cfg.Report), report.Patient{
		FullName:  s.cfg.Patient.FullName,
		Birthdate: s.cfg.Patient.Birthdate,
	})
	if s.cfg.Report.HelpText != "" {
		doc.HelpText = s.cfg.Report.HelpText
	}
	doc.Now = s.now
	return doc
}

func (s *Service) write(doc *report.Document, w io.Writer) (*report.Result, error) {
	sink := pdf.New(pdf.Options{
		PageWidth:  doc.Layout.PageWidth,
		PageHeight: doc.Layout.PageHeight,
		Title:      "Diabetes data report",
		Subject:    doc.Patient.FullName,
		Creator:    doc.Product,
		Keywords:   doc.ID.String(),
	})

	res, err := doc.Render(sink, pdf.NewMetrics())
	if err != nil {
		return nil, err
	}
	if err := sink.Output(w); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	s.logger.Infow("rendered document", "id", res.ID, "pages", res.Pages)
	return res, nil
}

// DailyPDF writes the daily charts for the requested days.
func (s *Service) DailyPDF(ctx context.Context, req Request, w io.Writer) (*report.Result, error) {
	ds, err := s.Dataset(ctx, req)
	if err != nil {
		return nil, err
	}
	doc := s.document()
	doc.Add(daily.New(ds, device.ProfileFor(ds.LatestPump)))
	return s.write(doc, w)
}

// BgLogPDF writes the meter log for the requested days.
func (s *Service) BgLogPDF(ctx context.Context, req Request, w io.Writer) (*report.Result, error) {
	ds, err := s.Dataset(ctx, req)
	if err != nil {
		return nil, err
	}
	doc := s.document()
	doc.Add(bglog.New(ds))
	return s.write(doc, w)
}

// PlacedDay is where one day's chart lands.
type PlacedDay struct {
	Date               string  `json:"date"`
	Page               int     `json:"page"`
	Top                float64 `json:"top"`
	Bottom             float64 `json:"bottom"`
	ChartHeight        float64 `json:"chartHeight"`
	BolusDetailsHeight float64 `json:"bolusDetailsHeight"`
}

// LayoutSummary is the daily report's page packing, without drawing it.
type LayoutSummary struct {
	Start  string            `json:"start"`
	End    string            `json:"end"`
	Pages  int               `json:"pages"`
	Layout layout.PageLayout `json:"layout"`
	Days   []PlacedDay       `json:"days"`
}

// Layout packs the requested days and reports where each one lands.
func (s *Service) Layout(ctx context.Context, req Request) (*LayoutSummary, error) {
	ds, err := s.Dataset(ctx, req)
	if err != nil {
		return nil, err
	}

	pl := PageLayout(s.cfg.Report)
	r := daily.New(ds, device.ProfileFor(ds.LatestPump))
	sized, ok := r.EstimateHeights(pl, pdf.NewMetrics()).(*daily.SizedDays)
	if !ok {
		return nil, errors.New("unexpected daily sizing result")
	}
	packed := sized.Pack()

	start, end := r.DateRange()
	summary := &LayoutSummary{Start: start, End: end, Layout: pl}
	for _, d := range packed.Days {
		summary.Days = append(summary.Days, PlacedDay{
			Date:               d.Date,
			Page:               d.Page + 1,
			Top:                d.Top,
			Bottom:             d.Bottom,
			ChartHeight:        d.ChartHeight,
			BolusDetailsHeight: d.BolusDetailsHeight,
		})
	}
	summary.Pages = layout.PageCount(lo.Map(packed.Days, func(d daily.PackedDay, _ int) layout.Placement {
		return d.Placement
	}))
	return summary, nil
}
