package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"raisetl/internal/shared/testutil"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"dot decimal", "1234.56", 1234.56, true},
		{"comma decimal", "1234,56", 1234.56, true},
		{"thousands dot and comma decimal", "1.234,56", 1234.56, true},
		{"multiple thousands groups", "1.234.567,5", 1234567.5, true},
		{"quoted with spaces", ` "42,5" `, 42.5, true},
		{"integer", "7", 7, true},
		{"negative", "-3,25", -3.25, true},
		{"exponent", "1e3", 1000, true},
		{"dot kept as decimal when parsable", "1.234", 1.234, true},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"text", "abc", 0, false},
		{"nan is unparsed", "NaN", 0, false},
		{"infinity is unparsed", "Inf", 0, false},
		{"hex is unparsed", "0x1p-2", 0, false},
		{"underscore is unparsed", "1_000", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDecimal(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDecimalOrZero(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)

	assert.Equal(t, 1234.56, DecimalOrZero("1.234,56", logger))
	assert.Equal(t, 0.0, DecimalOrZero("", logger))
	assert.Equal(t, 0.0, DecimalOrZero("abc", logger))

	assert.Equal(t, 1, handler.CountMessage("Could not parse numeric value"))
	testutil.AssertLogAttr(t, handler, "value", "abc")
}
