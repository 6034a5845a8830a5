// Package dataset buckets a patient's decoded records into calendar days in
// the report's timezone and attaches everything a printed day needs.
package dataset

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/chrissnell/printview/internal/stats"
	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/basal"
	"github.com/chrissnell/printview/pkg/bolus"
	"github.com/samber/lo"
)

// DateLayout is the key format for calendar days.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidRange is returned when the last day precedes the first.
	ErrInvalidRange = errors.New("dataset: last day precedes first day")
	// ErrNoData is returned when there are no records to select from.
	ErrNoData = errors.New("dataset: no diabetes data")
)

// InsulinEvent is a bolus or wizard with its three-hour local-time bin.
type InsulinEvent struct {
	bolus.Event
	ThreeHourBin int `json:"threeHrBin"`
}

// SiteChangeMark is a site change with the whole days elapsed since the one
// before it. DaysSince is NaN when no earlier change is known.
type SiteChangeMark struct {
	types.SiteChange
	DaysSince float64 `json:"daysSince"`
}

// Day is one calendar day's slice of the data. Bounds are [Start, End).
type Day struct {
	Key         string           `json:"date"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Basal       []basal.Segment  `json:"basal"`
	Bolus       []InsulinEvent   `json:"bolus"`
	CBG         []types.Glucose  `json:"cbg"`
	SMBG        []types.Glucose  `json:"smbg"`
	Food        []types.Food     `json:"food"`
	SiteChanges []SiteChangeMark `json:"siteChanges"`
	Stats       stats.Day        `json:"stats"`
}

// Sequences partitions the day's basal into render sequences.
func (d Day) Sequences() [][]basal.Segment {
	return basal.Sequences(d.Basal)
}

// Events returns the bare insulin events.
func (d Day) Events() []bolus.Event {
	return lo.Map(d.Bolus, func(e InsulinEvent, _ int) bolus.Event { return e.Event })
}

// Dataset is the selection a report is rendered from.
type Dataset struct {
	Days       []Day          `json:"days"`
	Prefs      types.BgPrefs  `json:"bgPrefs"`
	Location   *time.Location `json:"-"`
	LatestPump *types.Upload  `json:"latestPumpUpload,omitempty"`
}

// First and Last return the bounding days' starts.
func (d *Dataset) First() time.Time { return d.Days[0].Start }
func (d *Dataset) Last() time.Time  { return d.Days[len(d.Days)-1].Start }

// Select buckets records into every calendar day from first through last
// (inclusive) in loc. Days with no data are still present.
func Select(rec *types.Records, first, last time.Time, loc *time.Location, prefs types.BgPrefs) (*Dataset, error) {
	if loc == nil {
		loc = time.UTC
	}
	from := midnight(first, loc)
	to := midnight(last, loc)
	if to.Before(from) {
		return nil, ErrInvalidRange
	}

	ds := &Dataset{
		Prefs:      prefs,
		Location:   loc,
		LatestPump: rec.LatestPumpUpload(),
	}

	sites := sortedSiteChanges(rec.SiteChanges)

	for start := from; !start.After(to); start = start.AddDate(0, 0, 1) {
		end := start.AddDate(0, 0, 1)
		ds.Days = append(ds.Days, selectDay(rec, sites, start, end, loc, prefs))
	}

	return ds, nil
}

// SelectRecent selects the numDays calendar days ending on the day of the
// most recent datum.
func SelectRecent(rec *types.Records, numDays int, loc *time.Location, prefs types.BgPrefs) (*Dataset, error) {
	latest, ok := MostRecent(rec)
	if !ok {
		return nil, ErrNoData
	}
	if numDays < 1 {
		numDays = 1
	}
	if loc == nil {
		loc = time.UTC
	}
	last := midnight(latest, loc)
	return Select(rec, last.AddDate(0, 0, -(numDays-1)), last, loc, prefs)
}

// MostRecent is the time of the latest diabetes datum.
func MostRecent(rec *types.Records) (time.Time, bool) {
	var times []time.Time
	for _, s := range rec.Basal {
		times = append(times, s.Start)
	}
	for _, e := range rec.Bolus {
		times = append(times, e.When())
	}
	for _, g := range rec.CBG {
		times = append(times, g.Time)
	}
	for _, g := range rec.SMBG {
		times = append(times, g.Time)
	}
	for _, f := range rec.Food {
		times = append(times, f.Time)
	}
	if len(times) == 0 {
		return time.Time{}, false
	}
	return lo.MaxBy(times, func(a, b time.Time) bool { return a.After(b) }), true
}

func selectDay(rec *types.Records, sites []types.SiteChange, start, end time.Time, loc *time.Location, prefs types.BgPrefs) Day {
	in := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	d := Day{
		Key:   start.Format(DateLayout),
		Start: start,
		End:   end,
		Basal: basal.Trim(rec.Basal, start, end),
		CBG:   lo.Filter(rec.CBG, func(g types.Glucose, _ int) bool { return in(g.Time) }),
		SMBG:  lo.Filter(rec.SMBG, func(g types.Glucose, _ int) bool { return in(g.Time) }),
		Food:  lo.Filter(rec.Food, func(f types.Food, _ int) bool { return in(f.Time) }),
	}

	for _, e := range rec.Bolus {
		if !in(e.When()) {
			continue
		}
		d.Bolus = append(d.Bolus, InsulinEvent{
			Event:        e,
			ThreeHourBin: ThreeHourBin(e.When(), loc),
		})
	}

	for i, s := range sites {
		if !in(s.Time) {
			continue
		}
		mark := SiteChangeMark{SiteChange: s, DaysSince: math.NaN()}
		if i > 0 {
			mark.DaysSince = float64(CalendarDaysBetween(sites[i-1].Time, s.Time, loc))
		}
		d.SiteChanges = append(d.SiteChanges, mark)
	}

	d.Stats = stats.ForDay(stats.Input{
		Start:  start,
		End:    end,
		Bounds: prefs.Bounds,
		Basal:  d.Basal,
		Bolus:  d.Events(),
		CBG:    d.CBG,
		SMBG:   d.SMBG,
		Food:   d.Food,
	})

	return d
}

// ThreeHourBin is floor(local hour / 3) * 3.
func ThreeHourBin(t time.Time, loc *time.Location) int {
	return t.In(loc).Hour() / 3 * 3
}

// CalendarDaysBetween counts local calendar-day boundaries from a to b.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	da := midnight(a, loc)
	db := midnight(b, loc)
	// round to absorb DST-length days
	return int(math.Round(db.Sub(da).Hours() / 24))
}

func midnight(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

func sortedSiteChanges(in []types.SiteChange) []types.SiteChange {
	out := append([]types.SiteChange(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
