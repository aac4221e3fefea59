package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/time/rate"

	"raisetl/internal/config"
)

// Skip reasons counted in RowStats.
const (
	SkipEmptyKey     = "empty_key"
	SkipEmptyValue   = "empty_value"
	SkipUnparsable   = "unparsable_value"
	SkipZeroValue    = "zero_value"
	SkipMalformedRow = "malformed_row"
)

// RowStats summarizes one streaming pass. Row-level problems never fail a
// stage; they end up here.
type RowStats struct {
	Read    int64
	Written int64
	Groups  int
	Skipped map[string]int64
	// Defaulted counts cells read as 0 because they could not be parsed.
	Defaulted int64
}

func newRowStats() RowStats {
	return RowStats{Skipped: make(map[string]int64)}
}

func (s *RowStats) skip(reason string) {
	if s.Skipped == nil {
		s.Skipped = make(map[string]int64)
	}
	s.Skipped[reason]++
}

// TotalSkipped returns the number of rows skipped for any reason.
func (s RowStats) TotalSkipped() int64 {
	var n int64
	for _, v := range s.Skipped {
		n += v
	}
	return n
}

// ParseFailures returns the numeric cells that could not be parsed, whether
// the row was skipped or the cell read as 0.
func (s RowStats) ParseFailures() int64 {
	return s.Skipped[SkipUnparsable] + s.Defaulted
}

// LogAttrs renders the stats as slog attributes, skip reasons in sorted order.
func (s RowStats) LogAttrs() []any {
	attrs := []any{
		slog.Int64("rows_read", s.Read),
		slog.Int64("rows_written", s.Written),
		slog.Int("groups", s.Groups),
	}
	reasons := make([]string, 0, len(s.Skipped))
	for r := range s.Skipped {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		attrs = append(attrs, slog.Int64("skipped_"+r, s.Skipped[r]))
	}
	if s.Defaulted > 0 {
		attrs = append(attrs, slog.Int64("defaulted_to_zero", s.Defaulted))
	}
	return attrs
}

// Options are the knobs shared by every streaming stage.
type Options struct {
	// Encoding is passed to files.OpenText.
	Encoding string
	// ReportEvery is the progress interval in rows. Incomplete-row warnings are
	// throttled to one per ReportEvery*10 skipped rows.
	ReportEvery int
}

func (o Options) withDefaults() Options {
	if o.ReportEvery <= 0 {
		o.ReportEvery = config.DefaultReportEvery
	}
	if o.Encoding == "" {
		o.Encoding = config.EncodingAuto
	}
	return o
}

// progressReporter throttles the progress and incomplete-row logs of one pass.
type progressReporter struct {
	logger *slog.Logger
	pass   string
	every  int64
	skips  *rate.Sometimes
}

func newProgressReporter(logger *slog.Logger, pass string, every int) *progressReporter {
	return &progressReporter{
		logger: logger,
		pass:   pass,
		every:  int64(every),
		skips:  &rate.Sometimes{Every: every * 10},
	}
}

// due reports whether the row just counted in stats is a progress milestone.
func (p *progressReporter) due(stats *RowStats) bool {
	return stats.Read%p.every == 0
}

// row logs progress at every milestone; extra attributes are evaluated by the caller.
func (p *progressReporter) row(ctx context.Context, stats *RowStats, extra ...any) {
	if !p.due(stats) {
		return
	}
	attrs := append([]any{slog.String("pass", p.pass), slog.Int64("rows_read", stats.Read)}, extra...)
	p.logger.InfoContext(ctx, "Rows processed", attrs...)
}

// skipped is called once per skipped row; the first skip and every
// Every-th skip after it are logged.
func (p *progressReporter) skipped(ctx context.Context, stats *RowStats, reason string, line int) {
	stats.skip(reason)
	p.skips.Do(func() {
		p.logger.WarnContext(ctx, "Incomplete rows skipped",
			slog.String("pass", p.pass),
			slog.String("reason", reason),
			slog.Int("line", line),
			slog.Int64("skipped_total", stats.TotalSkipped()))
	})
}
