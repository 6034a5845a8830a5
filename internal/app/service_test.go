package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/printview/internal/dataset"
	"github.com/chrissnell/printview/internal/storage"
	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/basal"
	"github.com/chrissnell/printview/pkg/bolus"
	"github.com/chrissnell/printview/pkg/config"
)

var day0 = time.Date(2017, time.March, 12, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	rec   *types.Records
	query storage.Query
}

func (f *fakeSource) Load(_ context.Context, q storage.Query) (*types.Records, error) {
	f.query = q
	return f.rec, nil
}

func (f *fakeSource) Ping(context.Context) error { return nil }
func (f *fakeSource) Close() error               { return nil }

func records(days int) *types.Records {
	rec := &types.Records{}
	for d := 0; d < days; d++ {
		start := day0.AddDate(0, 0, d)
		rec.Basal = append(rec.Basal, basal.Segment{Start: start, Duration: 24 * time.Hour, Rate: 0.9, Mode: basal.ModeScheduled})
		rec.Bolus = append(rec.Bolus, bolus.Event{
			Type:  bolus.TypeBolus,
			Time:  start.Add(8 * time.Hour),
			Bolus: &bolus.Bolus{Time: start.Add(8 * time.Hour), Normal: bolus.Float(3)},
		})
		for h := 0; h < 24; h += 2 {
			rec.CBG = append(rec.CBG, types.Glucose{Time: start.Add(time.Duration(h) * time.Hour), Value: 90 + float64(h*5)})
		}
		rec.SMBG = append(rec.SMBG, types.Glucose{Time: start.Add(7 * time.Hour), Value: 110})
	}
	return rec
}

func newTestService(t *testing.T, src storage.Source) *Service {
	t.Helper()
	cfg := config.DefaultConfigData()
	cfg.Patient = config.PatientData{ID: "p1", FullName: "Jill Jellyfish"}
	cfg.Report.Days = 2

	svc, err := NewService(src, cfg, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("creating service: %v", err)
	}
	svc.now = func() time.Time { return day0.AddDate(0, 1, 0) }
	return svc
}

func TestDatasetRecent(t *testing.T) {
	src := &fakeSource{rec: records(4)}
	ds, err := newTestService(t, src).Dataset(context.Background(), Request{})
	if err != nil {
		t.Fatalf("selecting: %v", err)
	}

	if len(ds.Days) != 2 {
		t.Fatalf("expected the configured 2 days, got %d", len(ds.Days))
	}
	if ds.Days[1].Key != "2017-03-15" {
		t.Errorf("expected the last day to be the latest datum's, got %s", ds.Days[1].Key)
	}
	if src.query.PatientID != "p1" || src.query.Units != types.MgdL {
		t.Errorf("expected the configured patient and units, got %+v", src.query)
	}
	if !src.query.Start.IsZero() {
		t.Errorf("expected an open query, got %+v", src.query)
	}
}

func TestDatasetRange(t *testing.T) {
	src := &fakeSource{rec: records(4)}
	svc := newTestService(t, src)

	ds, err := svc.Dataset(context.Background(), Request{PatientID: "p9", Start: day0.AddDate(0, 0, 1), End: day0.AddDate(0, 0, 2)})
	if err != nil {
		t.Fatalf("selecting: %v", err)
	}
	if len(ds.Days) != 2 || ds.Days[0].Key != "2017-03-13" {
		t.Errorf("expected 3/13 and 3/14, got %d days from %s", len(ds.Days), ds.Days[0].Key)
	}

	if src.query.PatientID != "p9" {
		t.Errorf("expected the requested patient, got %s", src.query.PatientID)
	}
	if !src.query.Start.Equal(day0.AddDate(0, 0, 1).Add(-siteChangeLookback)) {
		t.Errorf("expected the window to reach back for site changes, got %v", src.query.Start)
	}
	if !src.query.End.Equal(day0.AddDate(0, 0, 3)) {
		t.Errorf("expected the window to end after the last day, got %v", src.query.End)
	}
}

func TestDatasetErrors(t *testing.T) {
	tests := []struct {
		name     string
		rec      *types.Records
		req      Request
		expected error
	}{
		{"start without end", records(1), Request{Start: day0}, ErrBadRequest},
		{"inverted range", records(1), Request{Start: day0.AddDate(0, 0, 1), End: day0}, ErrBadRequest},
		{"no data", &types.Records{}, Request{}, dataset.ErrNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(t, &fakeSource{rec: tt.rec}).Dataset(context.Background(), tt.req)
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestDailyPDF(t *testing.T) {
	var buf bytes.Buffer
	res, err := newTestService(t, &fakeSource{rec: records(4)}).DailyPDF(context.Background(), Request{}, &buf)
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	if res.Pages != 1 {
		t.Errorf("expected 2 days on 1 page, got %d", res.Pages)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("expected a PDF")
	}
}

func TestBgLogPDF(t *testing.T) {
	var buf bytes.Buffer
	res, err := newTestService(t, &fakeSource{rec: records(4)}).BgLogPDF(context.Background(), Request{}, &buf)
	if err != nil {
		t.Fatalf("rendering: %v", err)
	}
	if res.Pages != 1 || len(res.Sections) != 1 || res.Sections[0].Title != "BG Log" {
		t.Errorf("expected a one-page BG log, got %+v", res)
	}
	if buf.Len() == 0 {
		t.Errorf("expected PDF output")
	}
}

func TestLayout(t *testing.T) {
	svc := newTestService(t, &fakeSource{rec: records(7)})
	summary, err := svc.Layout(context.Background(), Request{Start: day0, End: day0.AddDate(0, 0, 6)})
	if err != nil {
		t.Fatalf("laying out: %v", err)
	}

	if len(summary.Days) != 7 {
		t.Fatalf("expected 7 placed days, got %d", len(summary.Days))
	}
	if summary.Pages != 3 {
		t.Errorf("expected 3 per page over 3 pages, got %d", summary.Pages)
	}
	if summary.Days[0].Page != 1 || summary.Days[6].Page != 3 {
		t.Errorf("expected pages numbered from 1, got %d and %d", summary.Days[0].Page, summary.Days[6].Page)
	}
	for i := 1; i < 3; i++ {
		if summary.Days[i].Top <= summary.Days[i-1].Top {
			t.Errorf("expected charts to stack down the page")
		}
	}
}

func TestPageLayout(t *testing.T) {
	r := config.DefaultConfigData().Report
	r.Page.Width = 595
	r.ChartsPerPage = 0
	r.Fonts.Small = 7

	pl := PageLayout(r)
	if pl.PageWidth != 595 || pl.ChartsPerPage != 0 || pl.Fonts.Small != 7 {
		t.Errorf("expected configured values, got %+v", pl)
	}
	if pl.SummaryWidthPct != 0.18 {
		t.Errorf("expected the default summary width, got %v", pl.SummaryWidthPct)
	}
}

func TestParseDate(t *testing.T) {
	mst := time.FixedZone("MST", -7*60*60)

	got, err := ParseDate("2017-03-12", mst)
	if err != nil || !got.Equal(time.Date(2017, time.March, 12, 0, 0, 0, 0, mst)) {
		t.Errorf("expected local midnight, got %v (%v)", got, err)
	}
	if got, err := ParseDate("", mst); err != nil || !got.IsZero() {
		t.Errorf("expected the zero time for an empty date, got %v (%v)", got, err)
	}
	if _, err := ParseDate("03/12/2017", mst); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}
