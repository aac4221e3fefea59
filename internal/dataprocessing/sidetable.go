package dataprocessing

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	"raisetl/internal/config"
)

// JoinMap is the fully resident key→value side table of a join.
type JoinMap map[string]string

// SideTableLoader loads small reference tables fully into memory.
type SideTableLoader struct {
	logger *slog.Logger
	opts   Options
}

// NewSideTableLoader creates a loader; a nil logger uses slog.Default().
func NewSideTableLoader(logger *slog.Logger, opts Options) *SideTableLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SideTableLoader{
		logger: logger.With(slog.String("component", "side_table")),
		opts:   opts.withDefaults(),
	}
}

// Load reads path (delimiter delim, or AutoDelimiter) and maps the trimmed key
// column to the trimmed value column. Rows with an empty key are ignored and the
// last occurrence of a duplicate key wins. Both columns are required.
func (l *SideTableLoader) Load(ctx context.Context, path string, delim rune, key, value FieldSpec) (JoinMap, error) {
	l.logger.InfoContext(ctx, "Loading side table", slog.String("file", path))

	table, err := OpenTable(path, delim, l.opts.Encoding, l.logger)
	if err != nil {
		return nil, err
	}
	defer table.Close()

	cols, err := table.Resolve(key.Require(), value.Require())
	if err != nil {
		return nil, err
	}

	m := make(JoinMap)
	var rows, emptyKeys, duplicates int
	for {
		record, err := table.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if stderrors.Is(err, ErrMalformedRow) {
				l.logger.WarnContext(ctx, "Skipping unreadable side table row",
					slog.String("file", path),
					slog.String("error", err.Error()))
				continue
			}
			return nil, err
		}
		rows++

		k := cols.Value(record, key.Name)
		if k == "" {
			emptyKeys++
			continue
		}
		if _, exists := m[k]; exists {
			duplicates++
		}
		m[k] = cols.Value(record, value.Name)
	}

	l.logger.InfoContext(ctx, "Side table loaded",
		slog.String("file", path),
		slog.Int("rows", rows),
		slog.Int("keys", len(m)),
		slog.Int("empty_keys", emptyKeys),
		slog.Int("duplicate_keys", duplicates))
	return m, nil
}

// LoadSectorMap loads the `,`-delimited ID CNAE → SETOR reference table.
func (l *SideTableLoader) LoadSectorMap(ctx context.Context, path string) (JoinMap, error) {
	return l.Load(ctx, path, config.SideTableDelimiter, FieldSectorID, FieldSector)
}
