package dataprocessing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"raisetl/internal/errors"
	"raisetl/internal/files"
)

// RateTable maps a year to its unemployment rate in percent.
type RateTable map[string]float64

// Years returns the years of the table in ascending order.
func (t RateTable) Years() []string {
	years := make([]string, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	sort.Strings(years)
	return years
}

// LoadRateTable reads the unemployment-rate table. A .json file must hold an
// object keyed by year whose values are numbers or numeric strings; any other
// extension is read as a `;` or `,` table with year and rate columns.
// Entries whose rate cannot be parsed are skipped with a warning.
func (l *SideTableLoader) LoadRateTable(ctx context.Context, path string) (RateTable, error) {
	var (
		table RateTable
		err   error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		table, err = l.loadRatesJSON(ctx, path)
	} else {
		table, err = l.loadRatesCSV(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Rate table loaded",
		slog.String("file", path),
		slog.Any("years", table.Years()))
	return table, nil
}

func (l *SideTableLoader) loadRatesJSON(ctx context.Context, path string) (RateTable, error) {
	tf, err := files.OpenText(path, l.opts.Encoding, l.logger)
	if err != nil {
		return nil, err
	}
	defer tf.Close()

	data, err := io.ReadAll(tf)
	if err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("failed to read %s", path), err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewParsingError(fmt.Sprintf("rate table %s must be a JSON object keyed by year", path), err)
	}

	table := make(RateTable, len(raw))
	for k, v := range raw {
		year := strings.TrimSpace(k)
		rate, ok := decodeRate(v)
		if !ok || year == "" {
			l.logger.WarnContext(ctx, "Invalid unemployment rate, entry skipped",
				slog.String("year", k),
				slog.String("value", string(v)))
			continue
		}
		table[year] = rate
	}
	return table, nil
}

// decodeRate accepts a JSON number or a numeric string.
func decodeRate(v json.RawMessage) (float64, bool) {
	if strings.TrimSpace(string(v)) == "null" {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return ParseDecimal(s)
	}
	return 0, false
}

func (l *SideTableLoader) loadRatesCSV(ctx context.Context, path string) (RateTable, error) {
	m, err := l.Load(ctx, path, AutoDelimiter, FieldYear, FieldRate)
	if err != nil {
		return nil, err
	}

	table := make(RateTable, len(m))
	for year, raw := range m {
		rate, ok := ParseDecimal(raw)
		if !ok {
			l.logger.WarnContext(ctx, "Invalid unemployment rate, entry skipped",
				slog.String("year", year),
				slog.String("value", raw))
			continue
		}
		table[year] = rate
	}
	return table, nil
}
