package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisetl/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "raisetl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		env      map[string]string
		wantErr  bool
		validate func(t *testing.T, cfg *Config, path string)
	}{
		{
			name: "defaults without file",
			validate: func(t *testing.T, cfg *Config, _ string) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, DefaultDataDir, cfg.Pipeline.DataDir)
				assert.Equal(t, DefaultReportEvery, cfg.Pipeline.ReportEvery)
				assert.Equal(t, []string{"ano", "setor"}, cfg.Pipeline.Normalize.GroupBy)
			},
		},
		{
			name: "yaml overlay keeps unset defaults",
			body: `
pipeline:
  data_dir: work
  salary:
    include_zeros: true
  normalize:
    group_by: [setor]
`,
			validate: func(t *testing.T, cfg *Config, path string) {
				assert.Equal(t, filepath.Join(filepath.Dir(path), "work"), cfg.Pipeline.DataDir)
				assert.True(t, cfg.Pipeline.Salary.IncludeZeros)
				assert.Equal(t, []string{"setor"}, cfg.Pipeline.Normalize.GroupBy)
				assert.Equal(t, DefaultReportEvery, cfg.Pipeline.ReportEvery)
				assert.Equal(t, EncodingAuto, cfg.Pipeline.Encoding)
			},
		},
		{
			name: "environment overrides logging only",
			body: `
logging:
  level: warn
`,
			env: map[string]string{"RAISETL_LOGGING_LEVEL": "debug"},
			validate: func(t *testing.T, cfg *Config, _ string) {
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:    "unknown key rejected",
			body:    "pipeline:\n  datadir: x\n",
			wantErr: true,
		},
		{
			name:    "invalid stage rejected",
			body:    "pipeline:\n  stages: [merge, frobnicate]\n",
			wantErr: true,
		},
		{
			name:    "report interval must be positive",
			body:    "pipeline:\n  report_every: 0\n",
			wantErr: true,
		},
		{
			name:    "tracing requires file",
			body:    "tracing:\n  enabled: true\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.body != "" {
				path = writeConfig(t, tt.body)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ExitConfig, errors.ExitCode(err))
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, cfg, path)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestLoadPipelineIgnoresEnvironment(t *testing.T) {
	t.Setenv("RAISETL_PIPELINE_DATA_DIR", "/elsewhere")
	t.Setenv("RAISETL_PIPELINE_DATADIR", "/elsewhere")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.Pipeline.DataDir)
}
