package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetReportConfig() (*ReportData, error)
	GetStorageConfig() (*StorageData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Patient PatientData `json:"patient"`
	Report  ReportData  `json:"report"`
	Storage StorageData `json:"storage"`
	Server  ServerData  `json:"server"`
}

// PatientData identifies whose records are printed
type PatientData struct {
	ID        string `json:"id,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
}

// ReportData holds everything that shapes a printed document
type ReportData struct {
	Timezone      string     `json:"timezone"`
	Days          int        `json:"days"`
	ChartsPerPage int        `json:"charts_per_page"`
	BgUnits       string     `json:"bg_units"`
	BgBounds      BoundsData `json:"bg_bounds"`
	Page          PageData   `json:"page"`
	Fonts         FontData   `json:"fonts"`
	HelpText      string     `json:"help_text,omitempty"`
}

// BoundsData are glucose thresholds in BgUnits
type BoundsData struct {
	VeryLow     float64 `json:"very_low"`
	TargetLower float64 `json:"target_lower"`
	TargetUpper float64 `json:"target_upper"`
	VeryHigh    float64 `json:"very_high"`
}

// PageData is the physical page in points
type PageData struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	MarginTop    float64 `json:"margin_top"`
	MarginRight  float64 `json:"margin_right"`
	MarginBottom float64 `json:"margin_bottom"`
	MarginLeft   float64 `json:"margin_left"`
}

// FontData holds font sizes in points
type FontData struct {
	Default       float64 `json:"default"`
	Large         float64 `json:"large"`
	Small         float64 `json:"small"`
	ExtraSmall    float64 `json:"extra_small"`
	Header        float64 `json:"header"`
	Footer        float64 `json:"footer"`
	SummaryHeader float64 `json:"summary_header"`
}

// Storage backends
const (
	BackendJSON        = "json"
	BackendSQLite      = "sqlite"
	BackendTimescaleDB = "timescaledb"
)

// StorageData selects and configures the record store
type StorageData struct {
	Backend     string           `json:"backend"`
	JSONFile    *JSONFileData    `json:"json,omitempty"`
	SQLite      *SQLiteData      `json:"sqlite,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

type JSONFileData struct {
	Path string `json:"path"`
}

type SQLiteData struct {
	Path string `json:"path"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// ServerData configures the REST server
type ServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}
