package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics are the row and stage instruments shared by every stage.
// A nil *PipelineMetrics records nothing.
type PipelineMetrics struct {
	RowsRead      metric.Int64Counter
	RowsWritten   metric.Int64Counter
	RowsSkipped   metric.Int64Counter
	ParseFailures metric.Int64Counter
	StageDuration metric.Float64Histogram
	StageErrors   metric.Int64Counter
}

// NewPipelineMetrics creates the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	rowsRead, err := meter.Int64Counter(
		"raisetl_rows_read",
		metric.WithDescription("Data rows read from stage inputs"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"raisetl_rows_written",
		metric.WithDescription("Data rows written to stage outputs"),
	)
	if err != nil {
		return nil, err
	}

	rowsSkipped, err := meter.Int64Counter(
		"raisetl_rows_skipped",
		metric.WithDescription("Data rows skipped, by reason"),
	)
	if err != nil {
		return nil, err
	}

	parseFailures, err := meter.Int64Counter(
		"raisetl_parse_failures",
		metric.WithDescription("Numeric cells that could not be parsed"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"raisetl_stage_duration_seconds",
		metric.WithDescription("Stage execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter(
		"raisetl_stage_errors",
		metric.WithDescription("Stages that failed, by error type"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RowsRead:      rowsRead,
		RowsWritten:   rowsWritten,
		RowsSkipped:   rowsSkipped,
		ParseFailures: parseFailures,
		StageDuration: stageDuration,
		StageErrors:   stageErrors,
	}, nil
}

// RecordRows adds the row counters of one stage.
func (m *PipelineMetrics) RecordRows(ctx context.Context, stage string, read, written int64, skipped map[string]int64) {
	if m == nil {
		return
	}
	stageAttr := attribute.String("stage", stage)

	m.RowsRead.Add(ctx, read, metric.WithAttributes(stageAttr))
	m.RowsWritten.Add(ctx, written, metric.WithAttributes(stageAttr))
	for reason, n := range skipped {
		if n == 0 {
			continue
		}
		m.RowsSkipped.Add(ctx, n, metric.WithAttributes(stageAttr, attribute.String("reason", reason)))
	}
}

// RecordParseFailures adds the unparsable numeric cells of one stage.
func (m *PipelineMetrics) RecordParseFailures(ctx context.Context, stage string, n int64) {
	if m == nil || n == 0 {
		return
	}
	m.ParseFailures.Add(ctx, n, metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordStage records the duration and outcome of one stage.
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, errType string) {
	if m == nil {
		return
	}
	status := "success"
	if errType != "" {
		status = "failure"
		m.StageErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("stage", stage),
			attribute.String("error_type", errType),
		))
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}
