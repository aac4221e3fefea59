package app

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisetl/internal/config"
	"raisetl/internal/errors"
	"raisetl/internal/infrastructure"
	"raisetl/internal/shared/testutil"
)

func TestFlags_Load(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse([]string{
		"--data-dir", "/tmp/rais",
		"--encoding", "LATIN-1",
		"--report-every", "500",
		"--log-level", "debug",
		"--trace-file", "/tmp/rais/trace.json",
	}))

	cfg, err := flags.Load("salary")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/rais", cfg.Pipeline.DataDir)
	assert.Equal(t, config.EncodingLatin1, cfg.Pipeline.Encoding)
	assert.Equal(t, 500, cfg.Pipeline.ReportEvery)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, []string{"salary"}, cfg.Pipeline.Stages)
}

func TestFlags_LoadDefaults(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := BindFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := flags.Load()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDataDir, cfg.Pipeline.DataDir)
	assert.Equal(t, config.DefaultReportEvery, cfg.Pipeline.ReportEvery)
	assert.Empty(t, cfg.Pipeline.Stages)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"setor", []string{"setor"}},
		{" ano , setor,,", []string{"ano", "setor"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitList(tt.in), tt.in)
	}
}

func testConfig(t *testing.T, dataDir string) *config.Config {
	t.Helper()
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	cfg := config.Default()
	cfg.Logging.Level = "error"
	cfg.Pipeline.DataDir = dataDir
	return cfg
}

func TestMain_ExitCodes(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		dir := t.TempDir()
		raw := filepath.Join(dir, "raw")
		testutil.WriteTable(t, raw, config.RaisCombinedFile, ";", testutil.RaisHeader,
			[]string{"2020", "10", "A", "1000", "1500", "100", "10"})
		testutil.WriteTable(t, raw, config.CnaesUnicosFile, ",", []string{"ID CNAE", "SETOR"},
			[]string{"10", "Indústria"})
		testutil.WriteFile(t, raw, config.DesocupacaoFile, `{"2020": 10}`)

		cfg := testConfig(t, dir)
		cfg.Metrics.Textfile = filepath.Join(dir, "metrics", "raisetl.prom")

		assert.Equal(t, errors.ExitOK, Main(cfg))
		assert.FileExists(t, cfg.Paths().Normalized)
		assert.FileExists(t, cfg.Metrics.Textfile)
	})

	t.Run("missing input", func(t *testing.T) {
		cfg := testConfig(t, t.TempDir())
		assert.Equal(t, errors.ExitMissingInput, Main(cfg))
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := testConfig(t, t.TempDir())
		cfg.Pipeline.Encoding = "utf-16"
		assert.Equal(t, errors.ExitConfig, Main(cfg))
	})
}
