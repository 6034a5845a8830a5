package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the configuration from the YAML file. Anything the file
// leaves out keeps its DefaultConfigData value.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Patient PatientYAML `yaml:"patient,omitempty"`
		Report  ReportYAML  `yaml:"report,omitempty"`
		Storage StorageYAML `yaml:"storage,omitempty"`
		Server  ServerYAML  `yaml:"server,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	config := DefaultConfigData()

	config.Patient = PatientData{
		ID:        yamlConfig.Patient.ID,
		FullName:  yamlConfig.Patient.FullName,
		Birthdate: yamlConfig.Patient.Birthdate,
	}

	// Convert report
	r := yamlConfig.Report
	report := &config.Report
	setString(&report.Timezone, r.Timezone)
	setInt(&report.Days, r.Days)
	setString(&report.HelpText, r.HelpText)
	if r.ChartsPerPage != nil {
		report.ChartsPerPage = *r.ChartsPerPage
	}
	if r.BgUnits != "" && r.BgUnits != report.BgUnits {
		report.BgUnits = r.BgUnits
		if r.BgUnits == "mmol/L" {
			report.BgBounds = BoundsData{VeryLow: 3.0, TargetLower: 3.9, TargetUpper: 10.0, VeryHigh: 13.9}
		}
	}
	if b := r.BgBounds; b != nil {
		setFloat(&report.BgBounds.VeryLow, b.VeryLow)
		setFloat(&report.BgBounds.TargetLower, b.TargetLower)
		setFloat(&report.BgBounds.TargetUpper, b.TargetUpper)
		setFloat(&report.BgBounds.VeryHigh, b.VeryHigh)
	}
	if p := r.Page; p != nil {
		setFloat(&report.Page.Width, p.Width)
		setFloat(&report.Page.Height, p.Height)
		if m := p.Margins; m != nil {
			setFloat(&report.Page.MarginTop, m.Top)
			setFloat(&report.Page.MarginRight, m.Right)
			setFloat(&report.Page.MarginBottom, m.Bottom)
			setFloat(&report.Page.MarginLeft, m.Left)
		}
	}
	if f := r.Fonts; f != nil {
		setFloat(&report.Fonts.Default, f.Default)
		setFloat(&report.Fonts.Large, f.Large)
		setFloat(&report.Fonts.Small, f.Small)
		setFloat(&report.Fonts.ExtraSmall, f.ExtraSmall)
		setFloat(&report.Fonts.Header, f.Header)
		setFloat(&report.Fonts.Footer, f.Footer)
		setFloat(&report.Fonts.SummaryHeader, f.SummaryHeader)
	}

	// Convert storage
	if yamlConfig.Storage.Backend != "" {
		config.Storage = StorageData{Backend: yamlConfig.Storage.Backend}
	}
	if yamlConfig.Storage.JSONFile != nil {
		config.Storage.JSONFile = &JSONFileData{Path: yamlConfig.Storage.JSONFile.Path}
	}
	if yamlConfig.Storage.SQLite != nil {
		config.Storage.SQLite = &SQLiteData{Path: yamlConfig.Storage.SQLite.Path}
	}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}

	// Convert server
	s := yamlConfig.Server
	setString(&config.Server.Cert, s.Cert)
	setString(&config.Server.Key, s.Key)
	setString(&config.Server.ListenAddr, s.ListenAddr)
	setInt(&config.Server.Port, s.Port)

	y.config = config
	return config, nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// GetReportConfig returns report configuration
func (y *YAMLProvider) GetReportConfig() (*ReportData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Report, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format
type PatientYAML struct {
	ID        string `yaml:"id,omitempty"`
	FullName  string `yaml:"full-name,omitempty"`
	Birthdate string `yaml:"birthdate,omitempty"`
}

type ReportYAML struct {
	Timezone      string      `yaml:"timezone,omitempty"`
	Days          int         `yaml:"days,omitempty"`
	ChartsPerPage *int        `yaml:"charts-per-page,omitempty"`
	BgUnits       string      `yaml:"bg-units,omitempty"`
	BgBounds      *BoundsYAML `yaml:"bg-bounds,omitempty"`
	Page          *PageYAML   `yaml:"page,omitempty"`
	Fonts         *FontsYAML  `yaml:"fonts,omitempty"`
	HelpText      string      `yaml:"help-text,omitempty"`
}

type BoundsYAML struct {
	VeryLow     float64 `yaml:"very-low"`
	TargetLower float64 `yaml:"target-lower"`
	TargetUpper float64 `yaml:"target-upper"`
	VeryHigh    float64 `yaml:"very-high"`
}

type PageYAML struct {
	Width   float64      `yaml:"width,omitempty"`
	Height  float64      `yaml:"height,omitempty"`
	Margins *MarginsYAML `yaml:"margins,omitempty"`
}

type MarginsYAML struct {
	Top    float64 `yaml:"top,omitempty"`
	Right  float64 `yaml:"right,omitempty"`
	Bottom float64 `yaml:"bottom,omitempty"`
	Left   float64 `yaml:"left,omitempty"`
}

type FontsYAML struct {
	Default       float64 `yaml:"default,omitempty"`
	Large         float64 `yaml:"large,omitempty"`
	Small         float64 `yaml:"small,omitempty"`
	ExtraSmall    float64 `yaml:"extra-small,omitempty"`
	Header        float64 `yaml:"header,omitempty"`
	Footer        float64 `yaml:"footer,omitempty"`
	SummaryHeader float64 `yaml:"summary-header,omitempty"`
}

type StorageYAML struct {
	Backend     string           `yaml:"backend,omitempty"`
	JSONFile    *PathYAML        `yaml:"json,omitempty"`
	SQLite      *PathYAML        `yaml:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBYAML `yaml:"timescaledb,omitempty"`
}

type PathYAML struct {
	Path string `yaml:"path"`
}

type TimescaleDBYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type ServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
}

// MarshalYAML renders c in the file format LoadConfig reads.
func MarshalYAML(c *ConfigData) ([]byte, error) {
	charts := c.Report.ChartsPerPage
	b := c.Report.BgBounds
	p := c.Report.Page
	f := c.Report.Fonts

	doc := struct {
		Patient PatientYAML `yaml:"patient,omitempty"`
		Report  ReportYAML  `yaml:"report"`
		Storage StorageYAML `yaml:"storage"`
		Server  ServerYAML  `yaml:"server,omitempty"`
	}{
		Patient: PatientYAML{ID: c.Patient.ID, FullName: c.Patient.FullName, Birthdate: c.Patient.Birthdate},
		Report: ReportYAML{
			Timezone:      c.Report.Timezone,
			Days:          c.Report.Days,
			ChartsPerPage: &charts,
			BgUnits:       c.Report.BgUnits,
			BgBounds:      &BoundsYAML{VeryLow: b.VeryLow, TargetLower: b.TargetLower, TargetUpper: b.TargetUpper, VeryHigh: b.VeryHigh},
			Page: &PageYAML{
				Width:   p.Width,
				Height:  p.Height,
				Margins: &MarginsYAML{Top: p.MarginTop, Right: p.MarginRight, Bottom: p.MarginBottom, Left: p.MarginLeft},
			},
			Fonts: &FontsYAML{
				Default:       f.Default,
				Large:         f.Large,
				Small:         f.Small,
				ExtraSmall:    f.ExtraSmall,
				Header:        f.Header,
				Footer:        f.Footer,
				SummaryHeader: f.SummaryHeader,
			},
			HelpText: c.Report.HelpText,
		},
		Storage: StorageYAML{Backend: c.Storage.Backend},
		Server: ServerYAML{
			Cert:       c.Server.Cert,
			Key:        c.Server.Key,
			Port:       c.Server.Port,
			ListenAddr: c.Server.ListenAddr,
		},
	}
	if s := c.Storage.JSONFile; s != nil {
		doc.Storage.JSONFile = &PathYAML{Path: s.Path}
	}
	if s := c.Storage.SQLite; s != nil {
		doc.Storage.SQLite = &PathYAML{Path: s.Path}
	}
	if s := c.Storage.TimescaleDB; s != nil {
		doc.Storage.TimescaleDB = &TimescaleDBYAML{ConnectionString: s.ConnectionString}
	}

	return yaml.Marshal(doc)
}
