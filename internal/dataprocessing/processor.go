package dataprocessing

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"

	"raisetl/internal/config"
)

// RowWriter receives output rows; exporter.StreamWriter satisfies it.
type RowWriter interface {
	WriteRecord(record []string) error
}

// JoinField is one output column of the join and the input field it copies.
type JoinField struct {
	Output string
	Spec   FieldSpec
}

// DefaultJoinFields is the fixed output layout of the RAIS extract join,
// without the trailing sector column.
var DefaultJoinFields = []JoinField{
	{Output: "Ano", Spec: FieldYear},
	{Output: "ID CNAE", Spec: FieldSectorID},
	{Output: "CNAE", Spec: FieldCNAE},
	{Output: "Massa Salarial", Spec: FieldWageMass},
	{Output: "Salário Médio", Spec: FieldMeanWage},
	{Output: "Número de empregos", Spec: FieldEmployment},
	{Output: "Ganho de Oportunidade", Spec: FieldOpportunityGain},
}

// JoinConfig describes the layout of a streaming join.
type JoinConfig struct {
	// Fields are copied in order; all but the key are optional.
	Fields []JoinField
	// Key is the Spec.Name of the field looked up in the side map.
	Key string
	// SideOutput is the header of the appended side-map column.
	SideOutput string
	// Delimiter of the primary source.
	Delimiter rune
}

// DefaultJoinConfig joins the RAIS extract to the sector map by ID CNAE.
func DefaultJoinConfig() JoinConfig {
	return JoinConfig{
		Fields:     DefaultJoinFields,
		Key:        FieldSectorID.Name,
		SideOutput: "SETOR",
		Delimiter:  config.ExtractDelimiter,
	}
}

// Joiner streams a large primary table against an in-memory JoinMap.
type Joiner struct {
	logger *slog.Logger
	opts   Options
	cfg    JoinConfig
}

// NewJoiner creates a joiner; a nil logger uses slog.Default().
func NewJoiner(logger *slog.Logger, opts Options, cfg JoinConfig) *Joiner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = config.ExtractDelimiter
	}
	return &Joiner{
		logger: logger.With(slog.String("component", "joiner")),
		opts:   opts.withDefaults(),
		cfg:    cfg,
	}
}

// Header returns the output header: the configured fields, then the side column.
func (j *Joiner) Header() []string {
	header := make([]string, 0, len(j.cfg.Fields)+1)
	for _, f := range j.cfg.Fields {
		header = append(header, f.Output)
	}
	return append(header, j.cfg.SideOutput)
}

// Join writes exactly one output row per readable input row, in the fixed
// column order of Header. A key absent from side yields an empty side column.
// Unresolvable non-key fields are written empty; an unresolvable key is fatal.
func (j *Joiner) Join(ctx context.Context, path string, side JoinMap, out RowWriter) (RowStats, error) {
	stats := newRowStats()

	table, err := OpenTable(path, j.cfg.Delimiter, j.opts.Encoding, j.logger)
	if err != nil {
		return stats, err
	}
	defer table.Close()

	specs := make([]FieldSpec, len(j.cfg.Fields))
	for i, f := range j.cfg.Fields {
		if f.Spec.Name == j.cfg.Key {
			specs[i] = f.Spec.Require()
		} else {
			specs[i] = f.Spec.Optional()
		}
	}
	cols, err := table.Resolve(specs...)
	if err != nil {
		return stats, err
	}
	for _, spec := range specs {
		if !cols.Has(spec.Name) {
			j.logger.ErrorContext(ctx, "Expected column not found, values will be empty",
				slog.String("file", path),
				slog.String("field", spec.Name),
				slog.String("candidates", strings.Join(spec.Candidates, " | ")))
		}
	}

	j.logger.InfoContext(ctx, "Starting join",
		slog.String("file", path),
		slog.String("encoding", table.Encoding),
		slog.Int("side_keys", len(side)))

	progress := newProgressReporter(j.logger, "join", j.opts.ReportEvery)
	row := make([]string, len(specs)+1)
	var unmatched int64

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
			return stats, err
		}
		stats.Read++

		for i, spec := range specs {
			row[i] = cols.Value(record, spec.Name)
		}
		key := cols.Value(record, j.cfg.Key)
		sideValue, ok := "", false
		if key != "" {
			sideValue, ok = side[key]
		}
		if !ok {
			unmatched++
		}
		row[len(specs)] = sideValue

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

	j.logger.InfoContext(ctx, "Join complete",
		append(stats.LogAttrs(), slog.Int64("unmatched_keys", unmatched))...)
	return stats, nil
}
