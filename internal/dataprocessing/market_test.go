package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raisetl/internal/errors"
	"raisetl/internal/shared/testutil"
	"raisetl/pkg/contracts/domain"
)

func TestMarketCombiner_Combine(t *testing.T) {
	dir := t.TempDir()
	emp := testutil.WriteTable(t, dir, "empregabilidade.csv", ";",
		[]string{"ano", "setor", "empregabilidade"},
		[]string{"2020", "A", "0.500000"},
		[]string{"2020", "B", "0.900000"},
	)
	dem := testutil.WriteTable(t, dir, "demanda.csv", ";",
		[]string{"ano", "setor", "demanda"},
		[]string{"2020", "A", "10.000000"},
		[]string{"2021", "A", "12.000000"},
		[]string{"", "A", "1"},
	)
	sal := testutil.WriteTable(t, dir, "salario.csv", ";",
		[]string{"ano", "setor", "salario_mediana"},
		[]string{"2020", "B", "1500.500000"},
	)

	logger, _ := testutil.NewTestLogger(t)
	got, err := NewMarketCombiner(logger, Options{}).Combine(context.Background(), MarketInputs{
		Employability: emp,
		Demand:        dem,
		Salary:        sal,
	})
	require.NoError(t, err)

	f := func(v float64) *float64 { return &v }
	assert.Equal(t, []domain.MarketRecord{
		{Key: domain.GroupKey{Year: "2020", Sector: "A"}, Employability: f(0.5), Demand: f(10)},
		{Key: domain.GroupKey{Year: "2020", Sector: "B"}, Employability: f(0.9), SalaryMedian: f(1500.5)},
		{Key: domain.GroupKey{Year: "2021", Sector: "A"}, Demand: f(12)},
	}, got)
}

func TestMarketCombiner_MissingInput(t *testing.T) {
	dir := t.TempDir()
	logger, handler := testutil.NewTestLogger(t)
	m := NewMarketCombiner(logger, Options{})

	t.Run("empty path leaves metric empty", func(t *testing.T) {
		dem := testutil.WriteTable(t, dir, "demanda.csv", ";", []string{"ano", "setor", "demanda"}, []string{"2020", "A", "1"})
		got, err := m.Combine(context.Background(), MarketInputs{Demand: dem})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Nil(t, got[0].Employability)
		assert.Equal(t, 2, handler.CountMessage("No input for metric, column will be empty"))
	})

	t.Run("absent file is fatal", func(t *testing.T) {
		_, err := m.Combine(context.Background(), MarketInputs{Demand: dir + "/absent.csv"})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeMissingInput))
	})
}
