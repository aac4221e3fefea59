// Package config provides configuration loading for the raisetl pipeline.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (logging, metrics and tracing sections only)
//	2. The YAML file passed with -config
//	3. Default values
//
// Stage inputs, outputs and options are never read from the environment: a run is
// fully described by its YAML file and command-line flags.
//
// # Environment Variables
//
// Ambient overrides follow the pattern RAISETL_<SECTION>_<KEY>:
//
//	RAISETL_LOGGING_LEVEL=debug
//	RAISETL_LOGGING_FORMAT=text
//	RAISETL_METRICS_TEXTFILE=/var/lib/node_exporter/raisetl.prom
//	RAISETL_TRACING_ENABLED=true
//
// # Path Management
//
// Paths maps the well-known file names of every stage under one data directory:
//
//	paths := config.NewPaths("data")
//	paths.RaisCombined // data/raw/rais-combinado.csv
//	paths.Normalized   // data/processed/indicie_de_receptividade_do_mercado.csv
package config
