package dataprocessing

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"raisetl/internal/exporter"
	"raisetl/pkg/contracts/domain"
)

// groupSeparator joins multi-column group values into one key.
const groupSeparator = "\x1f"

// RangeStore holds the pass-1 (min, max) of every (group, target) pair.
// Update is only called before Seal and Get only after it.
type RangeStore interface {
	Update(ctx context.Context, group, target string, v float64) error
	Seal(ctx context.Context) error
	Get(ctx context.Context, group, target string) (domain.Range, bool, error)
	Close() error
}

type rangeKey struct {
	group  string
	target string
}

// MemoryRangeStore keeps every range in a map.
type MemoryRangeStore struct {
	mu     sync.RWMutex
	ranges map[rangeKey]domain.Range
	sealed bool
}

// NewMemoryRangeStore creates an empty in-memory store.
func NewMemoryRangeStore() *MemoryRangeStore {
	return &MemoryRangeStore{ranges: make(map[rangeKey]domain.Range)}
}

func (m *MemoryRangeStore) Update(_ context.Context, group, target string, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sealed {
		return fmt.Errorf("range store is sealed")
	}
	k := rangeKey{group: group, target: target}
	r, ok := m.ranges[k]
	if !ok {
		r = domain.Range{Min: v, Max: v}
	}
	m.ranges[k] = r.Extend(v)
	return nil
}

func (m *MemoryRangeStore) Seal(context.Context) error {
	m.mu.Lock()
	m.sealed = true
	m.mu.Unlock()
	return nil
}

func (m *MemoryRangeStore) Get(_ context.Context, group, target string) (domain.Range, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.ranges[rangeKey{group: group, target: target}]
	return r, ok, nil
}

func (m *MemoryRangeStore) Close() error { return nil }

// Len returns the number of (group, target) ranges held.
func (m *MemoryRangeStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ranges)
}

// NormalizeTarget maps an input column to its appended normalized column.
type NormalizeTarget struct {
	Spec   FieldSpec
	Output string
}

// DefaultNormalizeTargets normalizes demand and the salary median.
var DefaultNormalizeTargets = []NormalizeTarget{
	{Spec: FieldDemand, Output: domain.ColumnDemandNorm},
	{Spec: FieldSalaryMedian, Output: domain.ColumnSalaryMedianNorm},
}

// DefaultGroupBy is the group key of the summary tables.
var DefaultGroupBy = []string{domain.ColumnYear, domain.ColumnSector}

// NormalizeConfig describes which columns form the group and which are rescaled.
type NormalizeConfig struct {
	GroupBy []string
	Targets []NormalizeTarget
}

// NormalizeResult reports both passes.
type NormalizeResult struct {
	Pass1  RowStats
	Pass2  RowStats
	Groups int
}

// Normalizer rescales target columns to [0, 1] within each group using two
// full passes over the same file.
type Normalizer struct {
	logger *slog.Logger
	opts   Options
	cfg    NormalizeConfig
}

// NewNormalizer creates a normalizer. An empty GroupBy groups by (year, sector)
// and empty Targets use DefaultNormalizeTargets.
func NewNormalizer(logger *slog.Logger, opts Options, cfg NormalizeConfig) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.GroupBy) == 0 {
		cfg.GroupBy = DefaultGroupBy
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = DefaultNormalizeTargets
	}
	return &Normalizer{
		logger: logger.With(slog.String("component", "normalizer")),
		opts:   opts.withDefaults(),
		cfg:    cfg,
	}
}

// groupSpec names the i-th group column.
func groupSpec(i int, column string) FieldSpec {
	return FieldSpec{Name: fmt.Sprintf("group_%d", i), Candidates: []string{column}, Required: true}
}

// normalizeTable is an opened source with group and target columns resolved.
type normalizeTable struct {
	*TableReader
	cols   *ColumnIndex
	groups []FieldSpec
}

func (n *Normalizer) open(path string) (*normalizeTable, error) {
	table, err := OpenTable(path, AutoDelimiter, n.opts.Encoding, n.logger)
	if err != nil {
		return nil, err
	}
	groups := make([]FieldSpec, len(n.cfg.GroupBy))
	specs := make([]FieldSpec, 0, len(groups)+len(n.cfg.Targets))
	for i, g := range n.cfg.GroupBy {
		groups[i] = groupSpec(i, g)
		specs = append(specs, groups[i])
	}
	for _, t := range n.cfg.Targets {
		specs = append(specs, t.Spec.Require())
	}
	cols, err := table.Resolve(specs...)
	if err != nil {
		table.Close()
		return nil, err
	}
	return &normalizeTable{TableReader: table, cols: cols, groups: groups}, nil
}

// groupOf returns the joined group value, or "" when any part is empty.
func (t *normalizeTable) groupOf(record []string) string {
	parts := make([]string, len(t.groups))
	for i, g := range t.groups {
		v := t.cols.Value(record, g.Name)
		if v == "" {
			return ""
		}
		parts[i] = v
	}
	return strings.Join(parts, groupSeparator)
}

// value parses a target cell; unparsable cells read as 0 and are counted.
func (n *Normalizer) value(t *normalizeTable, record []string, target NormalizeTarget, stats *RowStats) float64 {
	raw := t.cols.Raw(record, target.Spec.Name)
	v, ok := ParseDecimal(raw)
	if !ok {
		stats.Defaulted++
		n.logger.Debug("Could not parse numeric value, using 0",
			slog.String("column", target.Spec.Name),
			slog.String("value", raw))
	}
	return v
}

// Scan is pass 1: it records the per-group range of every target in store and
// seals it. Rows with an empty group are skipped.
func (n *Normalizer) Scan(ctx context.Context, path string, store RangeStore) (RowStats, error) {
	stats := newRowStats()
	t, err := n.open(path)
	if err != nil {
		return stats, err
	}
	defer t.Close()

	n.logger.InfoContext(ctx, "Computing group ranges",
		slog.String("file", path),
		slog.Any("group_by", n.cfg.GroupBy))

	progress := newProgressReporter(n.logger, "ranges", n.opts.ReportEvery)
	groups := make(map[string]struct{})
	for {
		record, err := t.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if stderrors.Is(err, ErrMalformedRow) {
				progress.skipped(ctx, &stats, SkipMalformedRow, t.Line())
				continue
			}
			return stats, err
		}
		stats.Read++

		group := t.groupOf(record)
		if group == "" {
			progress.skipped(ctx, &stats, SkipEmptyKey, t.Line())
		} else {
			groups[group] = struct{}{}
			for _, target := range n.cfg.Targets {
				if err := store.Update(ctx, group, target.Spec.Name, n.value(t, record, target, &stats)); err != nil {
					return stats, err
				}
			}
		}

		if progress.due(&stats) {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			progress.row(ctx, &stats, slog.Int("groups", len(groups)))
		}
	}

	if err := store.Seal(ctx); err != nil {
		return stats, err
	}
	stats.Groups = len(groups)
	n.logger.InfoContext(ctx, "Group ranges computed", stats.LogAttrs()...)
	return stats, nil
}

// Apply is pass 2: it re-reads path and writes every row with its original
// columns followed by one normalized column per target. open receives the
// output header and returns the destination.
func (n *Normalizer) Apply(ctx context.Context, path string, store RangeStore, open func(header []string) (RowWriter, error)) (RowStats, error) {
	stats := newRowStats()
	t, err := n.open(path)
	if err != nil {
		return stats, err
	}
	defer t.Close()

	width := len(t.Header)
	header := append(append([]string(nil), t.Header...), n.outputs()...)
	out, err := open(header)
	if err != nil {
		return stats, err
	}

	progress := newProgressReporter(n.logger, "normalize", n.opts.ReportEvery)
	row := make([]string, 0, len(header))
	for {
		record, err := t.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if stderrors.Is(err, ErrMalformedRow) {
				progress.skipped(ctx, &stats, SkipMalformedRow, t.Line())
				continue
			}
			return stats, err
		}
		stats.Read++

		row = append(row[:0], record...)
		for len(row) < width {
			row = append(row, "")
		}

		group := t.groupOf(record)
		for _, target := range n.cfg.Targets {
			scaled := 0.0
			if group != "" {
				r, ok, err := store.Get(ctx, group, target.Spec.Name)
				if err != nil {
					return stats, err
				}
				if ok {
					scaled = r.Scale(n.value(t, record, target, &stats))
				}
			}
			row = append(row, exporter.FormatFloat(scaled))
		}

		if err := out.WriteRecord(row); err != nil {
			return stats, err
		}
		stats.Written++

		if progress.due(&stats) {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			progress.row(ctx, &stats, slog.Int64("rows_written", stats.Written))
		}
	}

	n.logger.InfoContext(ctx, "Normalization complete", stats.LogAttrs()...)
	return stats, nil
}

func (n *Normalizer) outputs() []string {
	out := make([]string, len(n.cfg.Targets))
	for i, t := range n.cfg.Targets {
		out[i] = t.Output
	}
	return out
}

// Run performs both passes in order.
func (n *Normalizer) Run(ctx context.Context, path string, store RangeStore, open func(header []string) (RowWriter, error)) (NormalizeResult, error) {
	var res NormalizeResult
	var err error
	if res.Pass1, err = n.Scan(ctx, path, store); err != nil {
		return res, err
	}
	res.Groups = res.Pass1.Groups
	res.Pass2, err = n.Apply(ctx, path, store, open)
	return res, err
}
