package config

import (
	"fmt"
	"time"
)

// DefaultConfigData returns a US Letter, mg/dL configuration reading from a
// local SQLite store.
func DefaultConfigData() *ConfigData {
	return &ConfigData{
		Report: ReportData{
			Timezone:      "UTC",
			Days:          6,
			ChartsPerPage: 3,
			BgUnits:       "mg/dL",
			BgBounds: BoundsData{
				VeryLow:     54,
				TargetLower: 70,
				TargetUpper: 180,
				VeryHigh:    250,
			},
			Page: PageData{
				Width:        612,
				Height:       792,
				MarginTop:    36,
				MarginRight:  36,
				MarginBottom: 36,
				MarginLeft:   36,
			},
			Fonts: FontData{
				Default:       10,
				Large:         12,
				Small:         8,
				ExtraSmall:    6,
				Header:        14,
				Footer:        8,
				SummaryHeader: 10,
			},
		},
		Storage: StorageData{
			Backend: BackendSQLite,
			SQLite:  &SQLiteData{Path: "printview.db"},
		},
		Server: ServerData{
			ListenAddr: "0.0.0.0",
			Port:       8080,
		},
	}
}

// Validate checks the configuration for values no report can be drawn with
func (c *ConfigData) Validate() error {
	r := c.Report

	if r.BgUnits != "mg/dL" && r.BgUnits != "mmol/L" {
		return fmt.Errorf("unknown glucose units %q", r.BgUnits)
	}
	b := r.BgBounds
	if !(b.VeryLow < b.TargetLower && b.TargetLower < b.TargetUpper && b.TargetUpper < b.VeryHigh) {
		return fmt.Errorf("glucose bounds must increase: %v < %v < %v < %v",
			b.VeryLow, b.TargetLower, b.TargetUpper, b.VeryHigh)
	}

	p := r.Page
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("page size must be positive, got %vx%v", p.Width, p.Height)
	}
	if p.MarginLeft+p.MarginRight >= p.Width || p.MarginTop+p.MarginBottom >= p.Height {
		return fmt.Errorf("page margins leave no printable area")
	}
	if r.Fonts.Default <= 0 || r.Fonts.Small <= 0 || r.Fonts.Header <= 0 || r.Fonts.Footer <= 0 {
		return fmt.Errorf("font sizes must be positive")
	}
	if r.Days < 1 {
		return fmt.Errorf("report must cover at least one day, got %d", r.Days)
	}
	if r.ChartsPerPage < 0 {
		return fmt.Errorf("charts per page cannot be negative")
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", r.Timezone, err)
	}

	switch c.Storage.Backend {
	case BackendJSON:
		if c.Storage.JSONFile == nil || c.Storage.JSONFile.Path == "" {
			return fmt.Errorf("json storage requires a path")
		}
	case BackendSQLite:
		if c.Storage.SQLite == nil || c.Storage.SQLite.Path == "" {
			return fmt.Errorf("sqlite storage requires a path")
		}
	case BackendTimescaleDB:
		if c.Storage.TimescaleDB == nil || c.Storage.TimescaleDB.ConnectionString == "" {
			return fmt.Errorf("timescaledb storage requires a connection string")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	return nil
}
