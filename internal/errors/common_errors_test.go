package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "bad rate table",
			},
			wantMessage: "[PARSING] bad rate table",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeStorage,
				Message: "cannot write output",
				Cause:   fmt.Errorf("disk full"),
			},
			wantMessage: "[STORAGE] cannot write output: disk full",
		},
		{
			name: "context is rendered in key order",
			appError: NewAppError(ErrTypeConfig, "bad option", nil).
				WithContext("zeta", 1).
				WithContext("alpha", "x"),
			wantMessage: "[CONFIG] bad option alpha=x zeta=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("open rais.csv: no such file")
	err := NewMissingInputError("rais.csv", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "rais.csv", err.Context["path"])
}

func TestNewMissingColumnError(t *testing.T) {
	err := NewMissingColumnError("data/rais.csv",
		map[string][]string{
			"setor": {"SETOR", "setor"},
			"ano":   {"Ano", "ANO"},
		},
		[]string{"Year", "Sector", "Jobs"},
	)

	require.NotNil(t, err)
	assert.Equal(t, ErrTypeMissingColumn, err.Type)
	assert.Contains(t, err.Error(), "ano (candidates: Ano | ANO), setor (candidates: SETOR | setor)")
	assert.Contains(t, err.Error(), "found: [Year, Sector, Jobs]")
}

func TestHelperConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want ErrorType
	}{
		{name: "missing input", err: NewMissingInputError("a.csv", nil), want: ErrTypeMissingInput},
		{name: "malformed header", err: NewMalformedHeaderError("a.csv", nil), want: ErrTypeMalformedHeader},
		{name: "parsing", err: NewParsingError("x", nil), want: ErrTypeParsing},
		{name: "storage", err: NewStorageError("x", nil), want: ErrTypeStorage},
		{name: "validation", err: NewValidationError("x", nil), want: ErrTypeValidation},
		{name: "config", err: NewConfigError("x", nil), want: ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}
