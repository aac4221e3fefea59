package exporter

import (
	"strconv"

	"raisetl/internal/config"
)

// FormatFloat renders f with the fixed output precision (6 decimals).
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', config.FloatPrecision, 64)
}

// formatOptional renders nil as an empty cell.
func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return FormatFloat(*f)
}
