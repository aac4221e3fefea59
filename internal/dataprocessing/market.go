package dataprocessing

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"sort"

	"raisetl/internal/config"
	"raisetl/pkg/contracts/domain"
)

// MarketInputs are the three summary tables the market table is built from.
// An empty path leaves that metric empty for every key.
type MarketInputs struct {
	Employability string
	Demand        string
	Salary        string
}

// MarketCombiner outer-joins the per-group summary tables by (year, sector).
type MarketCombiner struct {
	logger *slog.Logger
	opts   Options
}

// NewMarketCombiner creates a combiner; a nil logger uses slog.Default().
func NewMarketCombiner(logger *slog.Logger, opts Options) *MarketCombiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &MarketCombiner{
		logger: logger.With(slog.String("component", "market")),
		opts:   opts.withDefaults(),
	}
}

// LoadGroupTable reads an `ano;setor;<metric>` table. Rows with an empty key
// or an unparsable value are skipped and counted.
func (m *MarketCombiner) LoadGroupTable(ctx context.Context, path string, value FieldSpec) (map[domain.GroupKey]float64, RowStats, error) {
	stats := newRowStats()
	table, err := OpenTable(path, config.OutputDelimiter, m.opts.Encoding, m.logger)
	if err != nil {
		return nil, stats, err
	}
	defer table.Close()

	cols, err := table.Resolve(FieldYear.Require(), FieldSector.Require(), value.Require())
	if err != nil {
		return nil, stats, err
	}

	progress := newProgressReporter(m.logger, value.Name, m.opts.ReportEvery)
	values := make(map[domain.GroupKey]float64)
	for {
		record, err := table.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if stderrors.Is(err, ErrMalformedRow) {
				progress.skipped(ctx, &stats, SkipMalformedRow, table.Line())
				continue
			}
			return nil, stats, err
		}
		stats.Read++

		key := domain.NewGroupKey(cols.Value(record, FieldYear.Name), cols.Value(record, FieldSector.Name))
		if !key.Valid() {
			progress.skipped(ctx, &stats, SkipEmptyKey, table.Line())
			continue
		}
		v, ok := ParseDecimal(cols.Raw(record, value.Name))
		if !ok {
			progress.skipped(ctx, &stats, SkipUnparsable, table.Line())
			continue
		}
		values[key] = v
	}
	stats.Groups = len(values)
	return values, stats, nil
}

// Combine loads every configured input and returns one record per key seen
// in any of them, sorted by (year, sector).
func (m *MarketCombiner) Combine(ctx context.Context, in MarketInputs) ([]domain.MarketRecord, error) {
	records := make(map[domain.GroupKey]*domain.MarketRecord)
	get := func(k domain.GroupKey) *domain.MarketRecord {
		r, ok := records[k]
		if !ok {
			r = &domain.MarketRecord{Key: k}
			records[k] = r
		}
		return r
	}

	sources := []struct {
		path  string
		spec  FieldSpec
		apply func(r *domain.MarketRecord, v float64)
	}{
		{in.Employability, FieldEmployability, func(r *domain.MarketRecord, v float64) { r.Employability = &v }},
		{in.Demand, FieldDemand, func(r *domain.MarketRecord, v float64) { r.Demand = &v }},
		{in.Salary, FieldSalaryMedian, func(r *domain.MarketRecord, v float64) { r.SalaryMedian = &v }},
	}

	for _, src := range sources {
		if src.path == "" {
			m.logger.WarnContext(ctx, "No input for metric, column will be empty", slog.String("metric", src.spec.Name))
			continue
		}
		values, stats, err := m.LoadGroupTable(ctx, src.path, src.spec)
		if err != nil {
			return nil, err
		}
		for k, v := range values {
			src.apply(get(k), v)
		}
		m.logger.InfoContext(ctx, "Summary table loaded",
			append(stats.LogAttrs(), slog.String("file", src.path), slog.String("metric", src.spec.Name))...)
	}

	result := make([]domain.MarketRecord, 0, len(records))
	for _, r := range records {
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key.Less(result[j].Key) })

	m.logger.InfoContext(ctx, "Market table combined", slog.Int("groups", len(result)))
	return result, nil
}
