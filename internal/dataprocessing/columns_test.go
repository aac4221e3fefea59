package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisetl/internal/errors"
)

func TestChooseColumn(t *testing.T) {
	tests := []struct {
		name       string
		header     []string
		candidates []string
		wantIndex  int
		wantOK     bool
	}{
		{
			name:       "exact match",
			header:     []string{"Ano", "ID CNAE", "SETOR"},
			candidates: []string{"SETOR"},
			wantIndex:  2,
			wantOK:     true,
		},
		{
			name:       "case and space folding",
			header:     []string{"  ano ", "Setor"},
			candidates: FieldSector.Candidates,
			wantIndex:  1,
			wantOK:     true,
		},
		{
			name:       "first candidate wins",
			header:     []string{"salario_medio", "salario_mediana"},
			candidates: FieldSalaryMedian.Candidates,
			wantIndex:  1,
			wantOK:     true,
		},
		{
			name:       "accented variant",
			header:     []string{"Ano", "Salario Medio"},
			candidates: FieldMeanWage.Candidates,
			wantIndex:  1,
			wantOK:     true,
		},
		{
			name:       "duplicate header keeps the last",
			header:     []string{"setor", "x", "SETOR"},
			candidates: []string{"setor"},
			wantIndex:  2,
			wantOK:     true,
		},
		{
			name:       "not found",
			header:     []string{"a", "b"},
			candidates: []string{"c"},
			wantIndex:  -1,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, ok := ChooseColumn(tt.header, tt.candidates)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantIndex, i)
		})
	}
}

func TestResolveColumns(t *testing.T) {
	header := []string{"Ano", "ID CNAE", "SETOR", "Número de empregos"}

	t.Run("required and optional", func(t *testing.T) {
		cols, err := ResolveColumns("in.csv", header,
			FieldYear.Require(), FieldSector.Require(), FieldWageMass.Optional())
		require.NoError(t, err)

		assert.True(t, cols.Has(FieldYear.Name))
		assert.False(t, cols.Has(FieldWageMass.Name))

		record := []string{" 2021 ", "10", "Indústria", "7"}
		assert.Equal(t, "2021", cols.Value(record, FieldYear.Name))
		assert.Equal(t, " 2021 ", cols.Raw(record, FieldYear.Name))
		assert.Equal(t, "", cols.Value(record, FieldWageMass.Name))
		assert.Equal(t, "", cols.Value([]string{"2021"}, FieldSector.Name), "short record")
	})

	t.Run("missing required lists expected and found", func(t *testing.T) {
		_, err := ResolveColumns("in.csv", header, FieldYear.Require(), FieldMeanWage.Require())
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeMissingColumn))
		assert.Equal(t, errors.ExitMissingColumn, errors.ExitCode(err))
		assert.Contains(t, err.Error(), FieldMeanWage.Name)
		assert.Contains(t, err.Error(), "Salário Médio")
		assert.Contains(t, err.Error(), "found: [Ano, ID CNAE, SETOR, Número de empregos]")
	})
}
