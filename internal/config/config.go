package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"raisetl/internal/errors"
	"raisetl/internal/validation"
)

// Config represents the complete pipeline configuration
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
	Tracing  TracingConfig  `yaml:"tracing" envconfig:"TRACING"`
	Pipeline PipelineConfig `yaml:"pipeline" ignored:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// MetricsConfig controls the Prometheus textfile written at the end of a run.
// An empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" envconfig:"TEXTFILE"`
}

// TracingConfig controls per-stage OpenTelemetry spans.
type TracingConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"ENABLED"`
	File    string `yaml:"file" envconfig:"FILE" validate:"required_if=Enabled true"`
}

// PipelineConfig describes the inputs, outputs and options of every stage.
// Empty paths fall back to the well-known file names under DataDir (see Paths).
type PipelineConfig struct {
	DataDir     string `yaml:"data_dir" validate:"required"`
	ReportEvery int    `yaml:"report_every" validate:"min=1"`
	Encoding    string `yaml:"encoding" validate:"oneof=auto utf-8 latin-1"`

	Merge         MergeConfig         `yaml:"merge"`
	Employability EmployabilityConfig `yaml:"employability"`
	Demand        DemandConfig        `yaml:"demand"`
	Salary        SalaryConfig        `yaml:"salary"`
	Market        MarketConfig        `yaml:"market"`
	Normalize     NormalizeConfig     `yaml:"normalize"`

	// Stages restricts a run to the listed stage IDs; empty runs all of them.
	Stages []string `yaml:"stages" validate:"dive,oneof=merge employability demand salary market normalize"`
}

// MergeConfig configures the streaming join of the raw extract with the sector map.
type MergeConfig struct {
	Rais  string `yaml:"rais"`
	Cnaes string `yaml:"cnaes"`
	Out   string `yaml:"out"`
}

// EmployabilityConfig configures employment aggregation and the employability metric.
type EmployabilityConfig struct {
	In    string `yaml:"in"`
	Rates string `yaml:"rates"`
	Out   string `yaml:"out"`
}

// DemandConfig configures the opportunity-gain sum.
type DemandConfig struct {
	In  string `yaml:"in"`
	Out string `yaml:"out"`
}

// SalaryConfig configures the per-group wage median.
type SalaryConfig struct {
	In           string `yaml:"in"`
	Out          string `yaml:"out"`
	IncludeZeros bool   `yaml:"include_zeros"`
}

// MarketConfig configures the combined market table.
type MarketConfig struct {
	Out     string `yaml:"out"`
	XLSXOut string `yaml:"xlsx_out"`
}

// NormalizeConfig configures the two-pass min-max normalizer.
type NormalizeConfig struct {
	In         string   `yaml:"in"`
	Out        string   `yaml:"out"`
	GroupBy    []string `yaml:"group_by" validate:"min=1,dive,colname"`
	RangeStore string   `yaml:"range_store"`
}

// Load reads the YAML file at path (optional), then applies RAISETL_* environment
// overrides to the logging, metrics and tracing sections only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, errors.NewConfigError(fmt.Sprintf("failed to load config from %s", path), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.resolvePaths(path); err != nil {
		return nil, errors.NewConfigError("failed to resolve paths", err)
	}

	if err := validation.ValidateStruct(cfg); err != nil {
		return nil, errors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document onto cfg; keys absent from the file keep their defaults.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// resolvePaths makes a relative data_dir relative to the config file's directory.
func (c *Config) resolvePaths(configPath string) error {
	if c.Pipeline.DataDir == "" || filepath.IsAbs(c.Pipeline.DataDir) || configPath == "" {
		return nil
	}
	base, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return err
	}
	c.Pipeline.DataDir = filepath.Join(base, c.Pipeline.DataDir)
	return nil
}

// Paths returns the well-known file layout under the configured data directory.
func (c *Config) Paths() *Paths {
	return NewPaths(c.Pipeline.DataDir)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Pipeline: PipelineConfig{
			DataDir:     DefaultDataDir,
			ReportEvery: DefaultReportEvery,
			Encoding:    EncodingAuto,
			Normalize: NormalizeConfig{
				GroupBy: []string{"ano", "setor"},
			},
		},
	}
}
