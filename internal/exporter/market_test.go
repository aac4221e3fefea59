package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"raisetl/internal/shared/testutil"
	"raisetl/pkg/contracts/domain"
)

func ptr(f float64) *float64 { return &f }

func sampleMarket() []domain.MarketRecord {
	return []domain.MarketRecord{
		{Key: domain.GroupKey{Year: "2021", Sector: "Saúde"}, Demand: ptr(12)},
		{Key: domain.GroupKey{Year: "2020", Sector: "Saúde"}, Employability: ptr(0.5), Demand: ptr(10), SalaryMedian: ptr(2500.5)},
	}
}

func TestWriteMarketTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mercado.csv")
	require.NoError(t, WriteMarketTable(path, sampleMarket()))

	assert.Equal(t, []string{
		"ano;setor;empregabilidade;demanda;salario_mediana",
		"2020;Saúde;0.500000;10.000000;2500.500000",
		"2021;Saúde;;12.000000;",
	}, testutil.ReadLines(t, path))
}

func TestWriteMarketXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mercado.xlsx")
	require.NoError(t, WriteMarketXLSX(path, sampleMarket()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{MarketSheet}, f.GetSheetList())

	rows, err := f.GetRows(MarketSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, MarketHeader, rows[0])
	assert.Equal(t, []string{"2020", "Saúde", "0.5", "10", "2500.5"}, rows[1])
	assert.Equal(t, "2021", rows[2][0])
	assert.Equal(t, "", rows[2][2])
}
