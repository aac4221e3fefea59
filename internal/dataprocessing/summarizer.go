package dataprocessing

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"raisetl/internal/config"
	"raisetl/pkg/contracts/domain"
)

// Aggregator accumulates per-(year, sector) statistics in one streaming pass.
type Aggregator struct {
	logger *slog.Logger
	opts   Options
}

// NewAggregator creates an aggregator; a nil logger uses slog.Default().
func NewAggregator(logger *slog.Logger, opts Options) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger: logger.With(slog.String("component", "aggregator")),
		opts:   opts.withDefaults(),
	}
}

// visitFunc receives every row with a valid group key. It returns the skip
// reason for the row, or "" when the row was used.
type visitFunc func(key domain.GroupKey, raw string) string

// scan streams the `;`-delimited table at path, resolving year, sector and
// value (all required) once from the header.
func (a *Aggregator) scan(ctx context.Context, path, pass string, value FieldSpec, stats *RowStats, groups func() int, visit visitFunc) error {
	table, err := OpenTable(path, config.ExtractDelimiter, a.opts.Encoding, a.logger)
	if err != nil {
		return err
	}
	defer table.Close()

	cols, err := table.Resolve(FieldYear.Require(), FieldSector.Require(), value.Require())
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "Aggregating by year and sector",
		slog.String("file", path),
		slog.String("pass", pass),
		slog.String("value_column", table.Header[mustIndex(cols, value.Name)]))

	progress := newProgressReporter(a.logger, pass, a.opts.ReportEvery)
	for {
		record, err := table.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if stderrors.Is(err, ErrMalformedRow) {
				progress.skipped(ctx, stats, SkipMalformedRow, table.Line())
				continue
			}
			return err
		}
		stats.Read++

		key := domain.NewGroupKey(cols.Value(record, FieldYear.Name), cols.Value(record, FieldSector.Name))
		if !key.Valid() {
			progress.skipped(ctx, stats, SkipEmptyKey, table.Line())
		} else if reason := visit(key, cols.Raw(record, value.Name)); reason != "" {
			progress.skipped(ctx, stats, reason, table.Line())
		}

		if progress.due(stats) {
			if err := ctx.Err(); err != nil {
				return err
			}
			progress.row(ctx, stats, slog.Int("groups", groups()))
		}
	}
	return nil
}

func mustIndex(cols *ColumnIndex, field string) int {
	i, _ := cols.Index(field)
	return i
}

// isBlank reports whether raw is empty once quotes and spaces are removed.
func isBlank(raw string) bool {
	return strings.TrimSpace(strings.ReplaceAll(raw, `"`, "")) == ""
}

// Sum adds the parsable values of the value column per group. Rows with an
// empty key, an empty value or an unparsable value are skipped and counted.
// The result is sorted by (year, sector).
func (a *Aggregator) Sum(ctx context.Context, path string, value FieldSpec) ([]domain.GroupValue, RowStats, error) {
	stats := newRowStats()
	sums := make(map[domain.GroupKey]float64)

	err := a.scan(ctx, path, "sum", value, &stats, func() int { return len(sums) }, func(key domain.GroupKey, raw string) string {
		if isBlank(raw) {
			return SkipEmptyValue
		}
		v, ok := ParseDecimal(raw)
		if !ok {
			a.logger.Debug("Could not parse numeric value", slog.String("value", raw))
			return SkipUnparsable
		}
		sums[key] += v
		return ""
	})
	if err != nil {
		return nil, stats, err
	}

	result := make([]domain.GroupValue, 0, len(sums))
	for k, v := range sums {
		result = append(result, domain.GroupValue{Key: k, Value: v})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key.Less(result[j].Key) })

	stats.Groups = len(result)
	a.logger.InfoContext(ctx, "Sum aggregation complete", stats.LogAttrs()...)
	return result, stats, nil
}

// Median keeps every parsable value per group and returns the exact median of
// each group, sorted by (year, sector). Zero values are excluded unless
// includeZeros is set.
func (a *Aggregator) Median(ctx context.Context, path string, value FieldSpec, includeZeros bool) ([]domain.GroupValue, RowStats, error) {
	stats := newRowStats()
	buckets := make(map[domain.GroupKey][]float64)

	err := a.scan(ctx, path, "median", value, &stats, func() int { return len(buckets) }, func(key domain.GroupKey, raw string) string {
		if isBlank(raw) {
			return SkipEmptyValue
		}
		v, ok := ParseDecimal(raw)
		if !ok {
			a.logger.Debug("Could not parse numeric value", slog.String("value", raw))
			return SkipUnparsable
		}
		if v == 0 && !includeZeros {
			return SkipZeroValue
		}
		buckets[key] = append(buckets[key], v)
		return ""
	})
	if err != nil {
		return nil, stats, err
	}

	result, err := Medians(ctx, buckets)
	if err != nil {
		return nil, stats, err
	}

	stats.Groups = len(result)
	a.logger.InfoContext(ctx, "Median aggregation complete",
		append(stats.LogAttrs(), slog.Bool("include_zeros", includeZeros))...)
	return result, stats, nil
}

// Medians computes the median of every bucket, sorted by (year, sector).
// Buckets are independent once filled, so they are sorted in parallel; each
// bucket slice is sorted in place.
func Medians(ctx context.Context, buckets map[domain.GroupKey][]float64) ([]domain.GroupValue, error) {
	keys := make([]domain.GroupKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	result := make([]domain.GroupValue, len(keys))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result[i] = domain.GroupValue{Key: k, Value: Median(buckets[k])}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Median sorts values in place and returns the middle element, or the mean of
// the two middle elements for an even count. An empty slice yields 0.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := n / 2
	if n%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}
