package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisetl/internal/shared/testutil"
)

func TestStreamWriter(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		records  [][]string
		validate func(t *testing.T, path string)
	}{
		{
			name:    "semicolon delimited without BOM",
			header:  []string{"ano", "setor", "demanda"},
			records: [][]string{{"2020", "Saúde", "1.500000"}},
			validate: func(t *testing.T, path string) {
				content, err := os.ReadFile(path)
				require.NoError(t, err)
				assert.Equal(t, "ano;setor;demanda\n2020;Saúde;1.500000\n", string(content))
			},
		},
		{
			name:    "cells with delimiter are quoted",
			header:  []string{"CNAE", "SETOR"},
			records: [][]string{{"Comércio; varejo", ""}},
			validate: func(t *testing.T, path string) {
				lines := testutil.ReadLines(t, path)
				require.Len(t, lines, 2)
				assert.Equal(t, `"Comércio; varejo";`, lines[1])
			},
		},
		{
			name:   "header only",
			header: []string{"ano", "setor", "salario_mediana"},
			validate: func(t *testing.T, path string) {
				assert.Equal(t, []string{"ano;setor;salario_mediana"}, testutil.ReadLines(t, path))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "table.csv")

			w, err := CreateStreamWriter(path, tt.header)
			require.NoError(t, err)
			defer w.Close()

			for _, rec := range tt.records {
				require.NoError(t, w.WriteRecord(rec))
			}
			assert.Equal(t, len(tt.records), w.Records())
			require.NoError(t, w.Commit())

			tt.validate(t, path)
		})
	}
}

func TestStreamWriterCloseWithoutCommit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.csv")

	w, err := CreateStreamWriter(path, []string{"a"})
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord([]string{"1"}))
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.000000"},
		{0.5, "0.500000"},
		{15, "15.000000"},
		{2.0 / 7.0, "0.285714"},
		{1234.56789, "1234.567890"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}
