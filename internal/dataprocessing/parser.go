package dataprocessing

import (
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// ParseDecimal converts a locale-ambiguous numeric string to a float.
//
// Quotes and surrounding whitespace are stripped, then three readings are tried
// in order: the text as is ("1234.56"), comma as decimal point ("1234,56"), and
// dot as thousands separator with comma as decimal point ("1.234,56").
// ok is false for empty input, text that fails every reading, and non-finite
// results.
func ParseDecimal(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, `"`, ""))
	if s == "" {
		return 0, false
	}

	if v, ok := parseFinite(s); ok {
		return v, true
	}
	if v, ok := parseFinite(strings.ReplaceAll(s, ",", ".")); ok {
		return v, true
	}
	if v, ok := parseFinite(strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")); ok {
		return v, true
	}
	return 0, false
}

// DecimalOrZero is ParseDecimal with the tolerant default: anything unparsable
// reads as 0. Non-empty failures are logged at debug level.
func DecimalOrZero(raw string, logger *slog.Logger) float64 {
	v, ok := ParseDecimal(raw)
	if !ok && logger != nil && strings.TrimSpace(raw) != "" {
		logger.Debug("Could not parse numeric value, using 0",
			slog.String("value", raw))
	}
	return v
}

func parseFinite(s string) (float64, bool) {
	// Hex floats and digit separators are Go syntax, not data.
	if strings.ContainsAny(s, "xX_") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
