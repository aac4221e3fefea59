package dataprocessing

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisetl/internal/config"
	"raisetl/internal/errors"
	"raisetl/internal/shared/testutil"
)

func TestOpenTable(t *testing.T) {
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	t.Run("reads header and rows", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "a.csv", " Ano ;SETOR\n2020;Comércio\n2021;\n")
		table, err := OpenTable(path, ';', config.EncodingAuto, logger)
		require.NoError(t, err)
		defer table.Close()

		assert.Equal(t, []string{"Ano", "SETOR"}, table.Header)
		assert.Equal(t, config.EncodingUTF8, table.Encoding)

		rec, err := table.Read()
		require.NoError(t, err)
		assert.Equal(t, []string{"2020", "Comércio"}, rec)
		assert.Equal(t, 2, table.Line())

		rec, err = table.Read()
		require.NoError(t, err)
		assert.Equal(t, []string{"2021", ""}, rec)

		_, err = table.Read()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("sniffs comma delimiter", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "b.csv", "ID CNAE,SETOR\n10,Serviços\n")
		table, err := OpenTable(path, AutoDelimiter, config.EncodingAuto, logger)
		require.NoError(t, err)
		defer table.Close()
		assert.Equal(t, ',', table.Delimiter)
		assert.Equal(t, []string{"ID CNAE", "SETOR"}, table.Header)
	})

	t.Run("latin-1 header resolves", func(t *testing.T) {
		// "Salário Médio" in ISO-8859-1
		content := []byte("Ano;Sal\xe1rio M\xe9dio\n2020;1500,50\n")
		path := testutil.WriteFile(t, dir, "latin.csv", string(content))
		table, err := OpenTable(path, ';', config.EncodingAuto, logger)
		require.NoError(t, err)
		defer table.Close()

		assert.Equal(t, config.EncodingLatin1, table.Encoding)
		cols, err := table.Resolve(FieldMeanWage.Require())
		require.NoError(t, err)
		rec, err := table.Read()
		require.NoError(t, err)
		assert.Equal(t, "1500,50", cols.Value(rec, FieldMeanWage.Name))
	})

	t.Run("empty file", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "empty.csv", "")
		_, err := OpenTable(path, ';', config.EncodingAuto, logger)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeMalformedHeader))
	})

	t.Run("blank header", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "blank.csv", " ; \n1;2\n")
		_, err := OpenTable(path, ';', config.EncodingAuto, logger)
		require.Error(t, err)
		assert.Equal(t, errors.ExitMalformedHeader, errors.ExitCode(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := OpenTable(filepath.Join(dir, "nope.csv"), ';', config.EncodingAuto, logger)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeMissingInput))
	})
}
