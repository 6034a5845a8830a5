package config

// StaticProvider serves configuration built in code, such as
// DefaultConfigData when no file is given.
type StaticProvider struct {
	config *ConfigData
}

func NewStaticProvider(cfg *ConfigData) *StaticProvider {
	return &StaticProvider{config: cfg}
}

func (s *StaticProvider) LoadConfig() (*ConfigData, error) {
	return s.config, nil
}

func (s *StaticProvider) GetReportConfig() (*ReportData, error) {
	return &s.config.Report, nil
}

func (s *StaticProvider) GetStorageConfig() (*StorageData, error) {
	return &s.config.Storage, nil
}

func (s *StaticProvider) IsReadOnly() bool {
	return true
}

func (s *StaticProvider) Close() error {
	return nil
}
