package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/basal"
	"github.com/chrissnell/printview/pkg/bolus"
)

// StoredUnits is the unit the export records glucose in when a datum omits
// its units.
const StoredUnits = types.MmolL

// Query bounds what a source loads. Zero times leave that side open.
// Glucose is decoded into Units.
type Query struct {
	PatientID string
	Start     time.Time
	End       time.Time
	Units     string
}

var (
	openStart = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	openEnd   = time.Date(9999, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// Bounds returns the window with open sides filled in, for stores that need
// concrete values to compare against.
func (q Query) Bounds() (time.Time, time.Time) {
	start, end := q.Start, q.End
	if start.IsZero() {
		start = openStart
	}
	if end.IsZero() {
		end = openEnd
	}
	return start.UTC(), end.UTC()
}

// Contains reports whether t falls in [Start, End).
func (q Query) Contains(t time.Time) bool {
	if !q.Start.IsZero() && t.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && !t.Before(q.End) {
		return false
	}
	return true
}

// Decoder accumulates data into records. Wizards are linked to their boluses
// when Records is called, so the two may arrive in any order.
type Decoder struct {
	units   string
	rec     types.Records
	boluses map[string]bolus.Bolus
	wizards []wizard
	skipped int
}

type wizard struct {
	event   bolus.Event
	bolusID string
}

// NewDecoder decodes glucose into units.
func NewDecoder(units string) *Decoder {
	return &Decoder{
		units:   units,
		boluses: make(map[string]bolus.Bolus),
	}
}

// Skipped is the number of data of types the reports do not use.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Add decodes one datum.
func (d *Decoder) Add(datum Datum) error {
	switch datum.Type {
	case "basal":
		d.rec.Basal = append(d.rec.Basal, d.basal(datum))
	case "bolus":
		b := bolusOf(datum)
		if datum.ID != "" {
			d.boluses[datum.ID] = b
		}
	case "wizard":
		return d.wizard(datum)
	case "cbg":
		d.rec.CBG = append(d.rec.CBG, d.glucose(datum))
	case "smbg":
		d.rec.SMBG = append(d.rec.SMBG, d.glucose(datum))
	case "food":
		if n := datum.Nutrition; n != nil && n.Carbohydrate != nil {
			d.rec.Food = append(d.rec.Food, types.Food{Time: datum.Time, Carbs: n.Carbohydrate.Net})
		}
	case "upload":
		d.rec.Uploads = append(d.rec.Uploads, types.Upload{
			Time:          datum.Time,
			Source:        datum.Source,
			Manufacturers: datum.DeviceManufacturers,
			Model:         datum.DeviceModel,
			IsPump:        lo.Contains(datum.DeviceTags, "insulin-pump"),
		})
	case "deviceEvent":
		if kind, ok := siteChangeKind(datum); ok {
			d.rec.SiteChanges = append(d.rec.SiteChanges, types.SiteChange{Time: datum.Time, Kind: kind})
		}
	default:
		d.skipped++
	}
	return nil
}

func (d *Decoder) basal(datum Datum) basal.Segment {
	seg := basal.Segment{
		ID:       datum.ID,
		Start:    datum.Time,
		Duration: ms(datum.Duration),
		Rate:     value(datum.Rate),
		Mode:     basal.ParseMode(datum.SubType, datum.DeliveryType),
	}
	if s := datum.Suppressed; s != nil {
		// a suspend over a temp suppresses the temp, which itself suppressed
		// the schedule; the schedule is what resumes
		for s.Suppressed != nil && s.Rate == nil {
			s = s.Suppressed
		}
		seg.Suppressed = &basal.Suppressed{
			Mode: basal.ParseMode(s.SubType, s.DeliveryType),
			Rate: value(s.Rate),
		}
	}
	return seg
}

func bolusOf(datum Datum) bolus.Bolus {
	return bolus.Bolus{
		ID:               datum.ID,
		Time:             datum.Time,
		Normal:           datum.Normal,
		ExpectedNormal:   datum.ExpectedNormal,
		Extended:         datum.Extended,
		ExpectedExtended: datum.ExpectedExtended,
		Duration:         ms(datum.Duration),
		ExpectedDuration: ms(datum.ExpectedDuration),
	}
}

func (d *Decoder) wizard(datum Datum) error {
	id, embedded, err := datum.BolusRef()
	if err != nil {
		return fmt.Errorf("wizard %s: bad bolus reference: %w", datum.ID, err)
	}

	w := wizard{
		event: bolus.Event{
			Type:      bolus.TypeWizard,
			ID:        datum.ID,
			Time:      datum.Time,
			CarbInput: datum.CarbInput,
		},
		bolusID: id,
	}
	if r := datum.Recommended; r != nil {
		w.event.Recommended = &bolus.Recommended{Carb: r.Carb, Correction: r.Correction, Net: r.Net}
	}
	if embedded != nil {
		b := bolusOf(*embedded)
		w.event.Bolus = &b
		w.bolusID = ""
		if id != "" {
			// the same bolus may also arrive on its own
			d.boluses[id] = b
			w.bolusID = id
		}
	}
	d.wizards = append(d.wizards, w)
	return nil
}

func (d *Decoder) glucose(datum Datum) types.Glucose {
	from := datum.Units
	if from == "" {
		from = StoredUnits
	}
	g := types.Glucose{
		Time:  datum.Time,
		Value: types.ConvertGlucose(value(datum.Value), from, d.units),
	}
	for _, n := range datum.Annotate {
		if n.Code == "bg/out-of-range" {
			g.OutOfRange = &types.OutOfRange{
				Direction: n.Value,
				Threshold: types.ConvertGlucose(n.Threshold, from, d.units),
			}
		}
	}
	return g
}

func siteChangeKind(datum Datum) (string, bool) {
	switch datum.SubType {
	case types.SiteChangeReservoir:
		return types.SiteChangeReservoir, true
	case "prime":
		if datum.PrimeTarget == "cannula" {
			return types.SiteChangeCannula, true
		}
		return types.SiteChangeTubing, true
	}
	return "", false
}

// Records links wizards to their boluses and returns every list sorted by
// time. A bolus claimed by a wizard is reported only through the wizard.
func (d *Decoder) Records() *types.Records {
	rec := d.rec
	rec.Bolus = nil

	claimed := make(map[string]bool)
	for _, w := range d.wizards {
		e := w.event
		if w.bolusID != "" {
			if b, ok := d.boluses[w.bolusID]; ok {
				e.Bolus = &b
				claimed[w.bolusID] = true
			}
		}
		rec.Bolus = append(rec.Bolus, e)
	}
	for id, b := range d.boluses {
		if claimed[id] {
			continue
		}
		rec.Bolus = append(rec.Bolus, bolus.Event{Type: bolus.TypeBolus, ID: id, Time: b.Time, Bolus: &b})
	}

	byTime := func(a, b time.Time) int { return a.Compare(b) }
	slices.SortStableFunc(rec.Basal, func(a, b basal.Segment) int { return byTime(a.Start, b.Start) })
	slices.SortStableFunc(rec.Bolus, func(a, b bolus.Event) int {
		if c := byTime(a.Time, b.Time); c != 0 {
			return c
		}
		if c := byTime(a.When(), b.When()); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortStableFunc(rec.CBG, func(a, b types.Glucose) int { return byTime(a.Time, b.Time) })
	slices.SortStableFunc(rec.SMBG, func(a, b types.Glucose) int { return byTime(a.Time, b.Time) })
	slices.SortStableFunc(rec.Food, func(a, b types.Food) int { return byTime(a.Time, b.Time) })
	slices.SortStableFunc(rec.Uploads, func(a, b types.Upload) int { return byTime(a.Time, b.Time) })
	slices.SortStableFunc(rec.SiteChanges, func(a, b types.SiteChange) int { return byTime(a.Time, b.Time) })

	return &rec
}

// ReadData reads an export: a JSON array of data.
func ReadData(r io.Reader) ([]Datum, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, errors.New("reading export: expected a JSON array")
	}

	var data []Datum
	for dec.More() {
		var d Datum
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("reading export datum %d: %w", len(data), err)
		}
		data = append(data, d)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	return data, nil
}

// Decode reads an export and decodes the data q selects.
func Decode(r io.Reader, q Query) (*types.Records, error) {
	data, err := ReadData(r)
	if err != nil {
		return nil, err
	}

	d := NewDecoder(q.Units)
	for _, datum := range data {
		if q.PatientID != "" && datum.UserID != "" && datum.UserID != q.PatientID {
			continue
		}
		// uploads describe the device regardless of the window
		if datum.Type != "upload" && !q.Contains(datum.Time) {
			continue
		}
		if err := d.Add(datum); err != nil {
			return nil, err
		}
	}
	return d.Records(), nil
}

// DecodeStored decodes data a store kept as JSON payloads. The store has
// already applied the query.
func DecodeStored(payloads []string, units string) (*types.Records, error) {
	d := NewDecoder(units)
	for i, p := range payloads {
		var datum Datum
		if err := json.Unmarshal([]byte(p), &datum); err != nil {
			return nil, fmt.Errorf("decoding stored datum %d: %w", i, err)
		}
		if err := d.Add(datum); err != nil {
			return nil, err
		}
	}
	return d.Records(), nil
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
