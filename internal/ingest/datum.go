// Package ingest decodes the stored device-data export into the typed record
// model. Basal delivery mode, wizard/bolus linkage and glucose units are all
// resolved here, once.
package ingest

import (
	"bytes"
	"encoding/json"
	"time"
)

// Datum is one record of the export, as stored. Only the fields the reports
// read are kept.
type Datum struct {
	ID       string    `json:"id"`
	UserID   string    `json:"_userId,omitempty"`
	Type     string    `json:"type"`
	SubType  string    `json:"subType,omitempty"`
	Time     time.Time `json:"time"`
	Units    string    `json:"units,omitempty"`
	Value    *float64  `json:"value,omitempty"`
	Annotate []Note    `json:"annotations,omitempty"`

	// basal
	DeliveryType string    `json:"deliveryType,omitempty"`
	Duration     *float64  `json:"duration,omitempty"` // milliseconds
	Rate         *float64  `json:"rate,omitempty"`
	Suppressed   *Suppress `json:"suppressed,omitempty"`

	// bolus
	Normal           *float64 `json:"normal,omitempty"`
	ExpectedNormal   *float64 `json:"expectedNormal,omitempty"`
	Extended         *float64 `json:"extended,omitempty"`
	ExpectedExtended *float64 `json:"expectedExtended,omitempty"`
	ExpectedDuration *float64 `json:"expectedDuration,omitempty"`

	// wizard
	Bolus       json.RawMessage `json:"bolus,omitempty"`
	CarbInput   *float64        `json:"carbInput,omitempty"`
	Recommended *Recommended    `json:"recommended,omitempty"`

	// food
	Nutrition *Nutrition `json:"nutrition,omitempty"`

	// upload
	Source              string   `json:"source,omitempty"`
	DeviceManufacturers []string `json:"deviceManufacturers,omitempty"`
	DeviceModel         string   `json:"deviceModel,omitempty"`
	DeviceTags          []string `json:"deviceTags,omitempty"`

	// deviceEvent
	PrimeTarget string `json:"primeTarget,omitempty"`
}

// Note is a device annotation such as an out-of-range flag.
type Note struct {
	Code      string  `json:"code"`
	Value     string  `json:"value,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// Suppress is the delivery a temp or suspend basal displaced.
type Suppress struct {
	Type         string    `json:"type,omitempty"`
	SubType      string    `json:"subType,omitempty"`
	DeliveryType string    `json:"deliveryType,omitempty"`
	Rate         *float64  `json:"rate,omitempty"`
	Suppressed   *Suppress `json:"suppressed,omitempty"`
}

type Recommended struct {
	Carb       *float64 `json:"carb,omitempty"`
	Correction *float64 `json:"correction,omitempty"`
	Net        *float64 `json:"net,omitempty"`
}

type Nutrition struct {
	Carbohydrate *struct {
		Net   float64 `json:"net"`
		Units string  `json:"units,omitempty"`
	} `json:"carbohydrate,omitempty"`
}

// BolusRef returns the wizard's bolus, which the export carries either as the
// ID of a separate bolus datum or embedded in full.
func (d *Datum) BolusRef() (id string, embedded *Datum, err error) {
	raw := bytes.TrimSpace(d.Bolus)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil, nil
	}
	if raw[0] == '"' {
		err = json.Unmarshal(raw, &id)
		return id, nil, err
	}
	embedded = &Datum{}
	if err = json.Unmarshal(raw, embedded); err != nil {
		return "", nil, err
	}
	return embedded.ID, embedded, nil
}

func ms(v *float64) time.Duration {
	if v == nil {
		return 0
	}
	return time.Duration(*v * float64(time.Millisecond))
}
