package app

import (
	"flag"
	"strings"

	"raisetl/internal/config"
)

// Flags are the options shared by every binary. Zero values leave the
// loaded configuration untouched.
type Flags struct {
	ConfigFile  string
	DataDir     string
	Encoding    string
	ReportEvery int
	LogLevel    string
	LogFormat   string
	Metrics     string
	TraceFile   string
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigFile, "config", "", "YAML configuration file")
	fs.StringVar(&f.DataDir, "data-dir", "", "data directory holding raw/ and processed/ (default \"data\")")
	fs.StringVar(&f.Encoding, "encoding", "", "input text encoding: auto, utf-8 or latin-1")
	fs.IntVar(&f.ReportEvery, "report-every", 0, "log progress every N rows")
	fs.StringVar(&f.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.LogFormat, "log-format", "", "json or text")
	fs.StringVar(&f.Metrics, "metrics-textfile", "", "write Prometheus metrics to this file at exit")
	fs.StringVar(&f.TraceFile, "trace-file", "", "write stage spans to this file")
	return f
}

// Load reads the configuration file and applies the flags on top. When
// stages are given they replace the configured stage list.
func (f *Flags) Load(stages ...string) (*config.Config, error) {
	cfg, err := config.Load(f.ConfigFile)
	if err != nil {
		return nil, err
	}

	if f.DataDir != "" {
		cfg.Pipeline.DataDir = f.DataDir
	}
	if f.Encoding != "" {
		cfg.Pipeline.Encoding = strings.ToLower(f.Encoding)
	}
	if f.ReportEvery > 0 {
		cfg.Pipeline.ReportEvery = f.ReportEvery
	}
	if f.LogLevel != "" {
		cfg.Logging.Level = f.LogLevel
	}
	if f.LogFormat != "" {
		cfg.Logging.Format = f.LogFormat
	}
	if f.Metrics != "" {
		cfg.Metrics.Textfile = f.Metrics
	}
	if f.TraceFile != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.File = f.TraceFile
	}
	if len(stages) > 0 {
		cfg.Pipeline.Stages = stages
	}
	return cfg, nil
}

// SplitList splits a comma-separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
