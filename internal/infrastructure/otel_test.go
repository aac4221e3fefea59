package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisetl/internal/config"
)

func TestTelemetryTextfile(t *testing.T) {
	dir := t.TempDir()
	textfile := filepath.Join(dir, "metrics", "raisetl.prom")

	ctx := WithRunID(context.Background(), "run-1")
	tel, err := InitializeTelemetry(ctx, config.MetricsConfig{Textfile: textfile}, config.TracingConfig{}, nil)
	require.NoError(t, err)

	tel.Metrics.RecordRows(ctx, "merge", 10, 8, map[string]int64{"short_row": 2, "blank": 0})
	tel.Metrics.RecordParseFailures(ctx, "salary", 3)
	tel.Metrics.RecordStage(ctx, "merge", 150*time.Millisecond, "")
	tel.Metrics.RecordStage(ctx, "salary", time.Second, "MISSING_COLUMN")

	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(textfile)
	require.NoError(t, err)
	out := string(content)

	assert.Contains(t, out, "raisetl_rows_read")
	assert.Contains(t, out, `stage="merge"`)
	assert.Contains(t, out, `reason="short_row"`)
	assert.NotContains(t, out, `reason="blank"`)
	assert.Contains(t, out, "raisetl_parse_failures")
	assert.Contains(t, out, `error_type="MISSING_COLUMN"`)
	assert.Contains(t, out, "raisetl_stage_duration_seconds")
}

func TestTelemetryTraceFile(t *testing.T) {
	traceFile := filepath.Join(t.TempDir(), "trace.json")

	ctx := WithRunID(context.Background(), "run-2")
	tel, err := InitializeTelemetry(ctx, config.MetricsConfig{}, config.TracingConfig{Enabled: true, File: traceFile}, nil)
	require.NoError(t, err)

	stageCtx, span := tel.StartStage(ctx, "normalize")
	assert.Equal(t, "normalize", GetStage(stageCtx))
	AddSpanEvent(stageCtx, "rows", map[string]int64{"read": 4})
	RecordError(stageCtx, errors.New("boom"))
	span.End()

	require.NoError(t, tel.Shutdown(ctx))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "stage.normalize")
	assert.Contains(t, string(content), "run-2")
	assert.Contains(t, string(content), "boom")
}

func TestTelemetryDisabledTracing(t *testing.T) {
	ctx := context.Background()
	tel, err := InitializeTelemetry(ctx, config.MetricsConfig{}, config.TracingConfig{}, nil)
	require.NoError(t, err)

	stageCtx, span := tel.StartStage(ctx, "merge")
	assert.False(t, span.IsRecording())
	assert.Equal(t, "merge", GetStage(stageCtx))
	span.End()

	assert.NoError(t, tel.Shutdown(ctx))
}

func TestNilPipelineMetrics(t *testing.T) {
	var m *PipelineMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordRows(ctx, "merge", 1, 1, nil)
		m.RecordParseFailures(ctx, "merge", 1)
		m.RecordStage(ctx, "merge", time.Second, "")
	})
}
