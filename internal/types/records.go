package types

import (
	"time"

	"github.com/chrissnell/printview/pkg/basal"
	"github.com/chrissnell/printview/pkg/bolus"
)

// Glucose is a single CGM (cbg) or meter (smbg) reading, already converted to
// the report's display units.
type Glucose struct {
	Time       time.Time   `json:"time"`
	Value      float64     `json:"value"`
	OutOfRange *OutOfRange `json:"outOfRange,omitempty"`
}

// OutOfRange marks a meter reading the device could only report as beyond a
// threshold (e.g. "HI" above 600 mg/dL).
type OutOfRange struct {
	Direction string  `json:"direction"`
	Threshold float64 `json:"threshold"`
}

// Food is a manually logged carbohydrate entry.
type Food struct {
	Time  time.Time `json:"time"`
	Carbs float64   `json:"carbs"`
}

// Upload describes one device upload session.
type Upload struct {
	Time          time.Time `json:"time"`
	Source        string    `json:"source,omitempty"`
	Manufacturers []string  `json:"manufacturers,omitempty"`
	Model         string    `json:"model,omitempty"`
	IsPump        bool      `json:"isPump"`
}

// SiteChange is an infusion site or reservoir change event.
type SiteChange struct {
	Time time.Time `json:"time"`
	Kind string    `json:"kind"`
}

const (
	SiteChangeReservoir = "reservoirChange"
	SiteChangeTubing    = "prime"
	SiteChangeCannula   = "cannulaPrime"
)

// Records is the decoded, typed device history for one patient. Every list
// is sorted by time.
type Records struct {
	Basal       []basal.Segment `json:"basal"`
	Bolus       []bolus.Event   `json:"bolus"`
	CBG         []Glucose       `json:"cbg"`
	SMBG        []Glucose       `json:"smbg"`
	Food        []Food          `json:"food"`
	Uploads     []Upload        `json:"uploads"`
	SiteChanges []SiteChange    `json:"siteChanges"`
}

// Empty reports whether no diabetes data was decoded at all.
func (r *Records) Empty() bool {
	return len(r.Basal) == 0 && len(r.Bolus) == 0 && len(r.CBG) == 0 &&
		len(r.SMBG) == 0 && len(r.Food) == 0
}

// LatestPumpUpload returns the most recent upload from an insulin pump.
func (r *Records) LatestPumpUpload() *Upload {
	var latest *Upload
	for i := range r.Uploads {
		u := &r.Uploads[i]
		if !u.IsPump {
			continue
		}
		if latest == nil || u.Time.After(latest.Time) {
			latest = u
		}
	}
	return latest
}
