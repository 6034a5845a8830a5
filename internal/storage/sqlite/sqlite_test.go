package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chrissnell/printview/internal/ingest"
	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/basal"
)

func openStore(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "printview.db"), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func readExport(t *testing.T) []ingest.Datum {
	t.Helper()
	f, err := os.Open("../../ingest/testdata/export.json")
	if err != nil {
		t.Fatalf("opening export: %v", err)
	}
	defer f.Close()

	data, err := ingest.ReadData(f)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	return data
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	data := readExport(t)

	n, err := s.Import(ctx, "p1", data)
	if err != nil {
		t.Fatalf("importing: %v", err)
	}
	if n != len(data) {
		t.Errorf("expected %d stored, got %d", len(data), n)
	}

	// a second import replaces rather than duplicates
	if _, err := s.Import(ctx, "p1", data); err != nil {
		t.Fatalf("re-importing: %v", err)
	}

	rec, err := s.Load(ctx, ingest.Query{PatientID: "p1", Units: types.MgdL})
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	if len(rec.Basal) != 4 {
		t.Errorf("expected 4 basals, got %d", len(rec.Basal))
	}
	if len(rec.Basal) > 1 && rec.Basal[1].Mode != basal.ModeTemporary {
		t.Errorf("expected the temp basal to keep its mode, got %s", rec.Basal[1].Mode)
	}
	if len(rec.Bolus) != 3 {
		t.Errorf("expected 3 insulin events, got %d", len(rec.Bolus))
	}
	if len(rec.Bolus) > 0 && rec.Bolus[0].Bolus == nil {
		t.Errorf("expected the wizard to be linked to its bolus")
	}
	// every stored datum belongs to p1, including the one tagged p2 in the file
	if len(rec.CBG) != 3 {
		t.Errorf("expected 3 cbg readings, got %d", len(rec.CBG))
	}
	if len(rec.Uploads) != 2 || len(rec.SiteChanges) != 2 {
		t.Errorf("expected 2 uploads and 2 site changes, got %d and %d", len(rec.Uploads), len(rec.SiteChanges))
	}
}

func TestLoadWindow(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if _, err := s.Import(ctx, "p1", readExport(t)); err != nil {
		t.Fatalf("importing: %v", err)
	}

	mst := time.FixedZone("MST", -7*60*60)
	rec, err := s.Load(ctx, ingest.Query{
		PatientID: "p1",
		Start:     time.Date(2017, time.March, 12, 5, 0, 0, 0, mst),
		End:       time.Date(2017, time.March, 12, 8, 0, 0, 0, mst),
		Units:     types.MgdL,
	})
	if err != nil {
		t.Fatalf("loading: %v", err)
	}

	if len(rec.CBG) != 2 {
		t.Errorf("expected 2 cbg readings between 12:00 and 15:00 UTC, got %d", len(rec.CBG))
	}
	if len(rec.Basal) != 1 {
		t.Errorf("expected 1 basal starting in the window, got %d", len(rec.Basal))
	}
	if len(rec.Uploads) != 2 {
		t.Errorf("expected uploads regardless of window, got %d", len(rec.Uploads))
	}

	other, err := s.Load(ctx, ingest.Query{PatientID: "p2", Units: types.MgdL})
	if err != nil {
		t.Fatalf("loading another patient: %v", err)
	}
	if !other.Empty() {
		t.Errorf("expected no data for an unknown patient")
	}
}

func TestPing(t *testing.T) {
	if err := openStore(t).Ping(context.Background()); err != nil {
		t.Errorf("expected ping to succeed, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "printview.db")
	logger := zap.NewNop().Sugar()

	s, err := New(ctx, path, logger)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if _, err := s.Import(ctx, "p1", readExport(t)); err != nil {
		t.Fatalf("importing: %v", err)
	}
	s.Close()

	s, err = New(ctx, path, logger)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s.Close()

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil || version != 2 {
		t.Errorf("expected schema version 2, got %d (%v)", version, err)
	}
	rec, err := s.Load(ctx, ingest.Query{PatientID: "p1", Units: types.MgdL})
	if err != nil || len(rec.CBG) == 0 {
		t.Errorf("expected imported data to survive a reopen, got %v", err)
	}
}
