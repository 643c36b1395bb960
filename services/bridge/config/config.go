package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Window kinds accepted in the configuration
const (
	WindowToday   = "today"
	WindowDaysAgo = "days_ago"
	WindowAll     = "all"
)

// Identifiers owned by the bridge itself. Configured units can not use them.
const (
	BatchSetUniqueID  = "picqer_batches"
	BatchUnitIDPrefix = "picqer_batch_"
	BatchSetJobName   = "batches"
	PublisherJobName  = "publisher"
)

// Record schemas accepted in the configuration
const (
	SchemaBatch    = "batch"
	SchemaPicklist = "picklist"
)

// MetricConfig defines a simple stat polled from a path returning {"value": N}
type MetricConfig struct {
	Name       string `toml:"Name"`
	UniqueID   string `toml:"UniqueID"`
	Path       string `toml:"Path"`
	Unit       string `toml:"Unit"`
	StateClass string `toml:"StateClass"`
	Icon       string `toml:"Icon"`
}

// AggregateConfig defines a metric computed from all pages of a list endpoint
type AggregateConfig struct {
	Name       string            `toml:"Name"`
	UniqueID   string            `toml:"UniqueID"`
	Path       string            `toml:"Path"`
	Unit       string            `toml:"Unit"`
	StateClass string            `toml:"StateClass"`
	Icon       string            `toml:"Icon"`
	Schema     string            `toml:"Schema"`
	Window     string            `toml:"Window"`
	DaysAgo    int               `toml:"DaysAgo"`
	Scalar     string            `toml:"Scalar"`
	Params     map[string]string `toml:"Params"`
	StartParam string            `toml:"StartParam"`
	EndParam   string            `toml:"EndParam"`
}

// BatchSetConfig defines the dynamic set of per-batch units
type BatchSetConfig struct {
	Enabled           bool   `toml:"Enabled"`
	Path              string `toml:"Path"`
	Window            string `toml:"Window"`
	DaysAgo           int    `toml:"DaysAgo"`
	IntervalInSeconds uint32 `toml:"IntervalInSeconds"`
}

// Config maps to the config.toml file for the bridge service
type Config struct {
	Name                     string            `toml:"Name"`
	BaseDomain               string            `toml:"BaseDomain"`
	Scheme                   string            `toml:"Scheme"`
	BaseURL                  string            `toml:"BaseURL"`
	Timezone                 string            `toml:"Timezone"`
	QueryIntervalInSeconds   uint32            `toml:"QueryIntervalInSeconds"`
	RequestTimeoutInSeconds  uint32            `toml:"RequestTimeoutInSeconds"`
	PageSize                 int               `toml:"PageSize"`
	ListenAddress            string            `toml:"ListenAddress"`
	HostURL                  string            `toml:"HostURL"`
	PublishIntervalInSeconds uint32            `toml:"PublishIntervalInSeconds"`
	BatchSet                 BatchSetConfig    `toml:"BatchSet"`
	Metrics                  []MetricConfig    `toml:"Metrics"`
	Aggregates               []AggregateConfig `toml:"Aggregates"`
}

// LoadConfig parses a TOML file into the Config struct, fills in the defaults and validates the result
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filepath, err)
	}

	var cfg Config
	err = toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyDefaults()
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills the zero-valued settings with their defaults
func (cfg *Config) ApplyDefaults() {
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}
	if cfg.BaseDomain == "" {
		cfg.BaseDomain = DefaultBaseDomain
	}
	if cfg.Scheme == "" {
		cfg.Scheme = DefaultScheme
	}
	if cfg.QueryIntervalInSeconds == 0 {
		cfg.QueryIntervalInSeconds = DefaultQueryIntervalInSeconds
	}
	if cfg.RequestTimeoutInSeconds == 0 {
		cfg.RequestTimeoutInSeconds = DefaultRequestTimeoutInSeconds
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PublishIntervalInSeconds == 0 {
		cfg.PublishIntervalInSeconds = cfg.QueryIntervalInSeconds
	}
	if cfg.BatchSet.Path == "" {
		cfg.BatchSet.Path = DefaultBatchesPath
	}
	if cfg.BatchSet.Window == "" {
		cfg.BatchSet.Window = WindowToday
	}
	if cfg.BatchSet.IntervalInSeconds == 0 {
		cfg.BatchSet.IntervalInSeconds = DefaultBatchSetIntervalInSeconds
	}
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = DefaultMetrics()
	}

	for i := range cfg.Metrics {
		applyMetricDefaults(&cfg.Metrics[i])
	}
	for i := range cfg.Aggregates {
		applyAggregateDefaults(&cfg.Aggregates[i])
	}
}

func applyMetricDefaults(m *MetricConfig) {
	if m.StateClass == "" {
		m.StateClass = "measurement"
	}
	if m.Icon == "" {
		m.Icon = DefaultIcon
	}
}

func applyAggregateDefaults(a *AggregateConfig) {
	if a.StateClass == "" {
		a.StateClass = "measurement"
	}
	if a.Icon == "" {
		a.Icon = DefaultIcon
	}
	if a.Schema == "" {
		a.Schema = SchemaBatch
	}
	if a.Window == "" {
		a.Window = WindowToday
	}
	if a.Scalar == "" {
		a.Scalar = "count"
	}
}

// Validate checks that every unit is well-defined and unique
func (cfg *Config) Validate() error {
	if cfg.PageSize < 1 {
		return fmt.Errorf("%w: PageSize must be positive, got %d", ErrInvalidConfig, cfg.PageSize)
	}

	reserved := map[string]struct{}{
		BatchSetUniqueID: {},
		BatchSetJobName:  {},
		PublisherJobName: {},
	}
	seen := make(map[string]struct{})
	checkUnique := func(name, uniqueID, path string) error {
		if name == "" || uniqueID == "" || path == "" {
			return fmt.Errorf("%w: Name, UniqueID and Path are required (unit %q)", ErrInvalidConfig, uniqueID)
		}
		if _, isReserved := reserved[uniqueID]; isReserved {
			return fmt.Errorf("%w: UniqueID %q is reserved", ErrInvalidConfig, uniqueID)
		}
		if strings.HasPrefix(uniqueID, BatchUnitIDPrefix) {
			return fmt.Errorf("%w: UniqueID %q uses the reserved prefix %q", ErrInvalidConfig, uniqueID, BatchUnitIDPrefix)
		}
		if _, exists := seen[uniqueID]; exists {
			return fmt.Errorf("%w: duplicate UniqueID %q", ErrInvalidConfig, uniqueID)
		}
		seen[uniqueID] = struct{}{}

		return nil
	}

	for _, m := range cfg.Metrics {
		err := checkUnique(m.Name, m.UniqueID, m.Path)
		if err != nil {
			return err
		}
	}

	for _, a := range cfg.Aggregates {
		err := checkUnique(a.Name, a.UniqueID, a.Path)
		if err != nil {
			return err
		}
		err = checkWindow(a.Window, a.DaysAgo)
		if err != nil {
			return fmt.Errorf("aggregate %q: %w", a.UniqueID, err)
		}
		if a.Schema != SchemaBatch && a.Schema != SchemaPicklist {
			return fmt.Errorf("%w: aggregate %q has unknown schema %q", ErrInvalidConfig, a.UniqueID, a.Schema)
		}
	}

	return checkWindow(cfg.BatchSet.Window, cfg.BatchSet.DaysAgo)
}

func checkWindow(kind string, daysAgo int) error {
	switch kind {
	case WindowToday, WindowAll:
		return nil
	case WindowDaysAgo:
		if daysAgo < 1 {
			return fmt.Errorf("%w: DaysAgo must be at least 1, got %d", ErrInvalidConfig, daysAgo)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown window %q", ErrInvalidConfig, kind)
	}
}
