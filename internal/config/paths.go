package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the file layout of one pipeline run.
// Raw inputs live under RawDir; every stage writes to ProcessedDir.
//
//	data/
//	  ├── raw/         (rais-combinado.csv, cnaes_unicos.csv, desocupacao.json)
//	  └── processed/   (joined extract, summary tables, normalized market table)
type Paths struct {
	DataDir      string
	RawDir       string
	ProcessedDir string

	// Inputs
	RaisCombined string
	CnaesUnicos  string
	Desocupacao  string

	// Stage outputs
	Joined        string
	Employability string
	Demand        string
	Salary        string
	Market        string
	MarketXLSX    string
	Normalized    string
}

// NewPaths returns the well-known layout under dataDir.
func NewPaths(dataDir string) *Paths {
	rawDir := filepath.Join(dataDir, "raw")
	processedDir := filepath.Join(dataDir, "processed")

	return &Paths{
		DataDir:      dataDir,
		RawDir:       rawDir,
		ProcessedDir: processedDir,

		RaisCombined: filepath.Join(rawDir, RaisCombinedFile),
		CnaesUnicos:  filepath.Join(rawDir, CnaesUnicosFile),
		Desocupacao:  filepath.Join(rawDir, DesocupacaoFile),

		Joined:        filepath.Join(processedDir, JoinedFile),
		Employability: filepath.Join(processedDir, EmployabilityFile),
		Demand:        filepath.Join(processedDir, DemandFile),
		Salary:        filepath.Join(processedDir, SalaryFile),
		Market:        filepath.Join(processedDir, MarketFile),
		MarketXLSX:    filepath.Join(processedDir, MarketXLSXFile),
		Normalized:    filepath.Join(processedDir, NormalizedFile),
	}
}

// EnsureDirectories creates the processed directory if it doesn't exist.
// The raw directory is input-only and is never created.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.ProcessedDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", p.ProcessedDir, err)
	}
	slog.Debug("Ensured directory exists", slog.String("directory", p.ProcessedDir))
	return nil
}

// Or returns override when set, else the default path.
func Or(override, def string) string {
	if override != "" {
		return override
	}
	return def
}
