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

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd", []float64{30, 10, 20}, 20},
		{"even", []float64{20, 10}, 15},
		{"single", []float64{7}, 7},
		{"empty", nil, 0},
		{"unsorted even", []float64{4, 1, 3, 2}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.values))
		})
	}
}

func joinedTable(t *testing.T, dir, name string, rows ...[]string) string {
	t.Helper()
	return testutil.WriteTable(t, dir, name, ";", domain.JoinedHeader, rows...)
}

// joinedRow builds a joined row with only year, sector, mean wage, employment
// and opportunity gain set.
func joinedRow(year, sector, wage, employment, gain string) []string {
	return []string{year, "1", "c", "0", wage, employment, gain, sector}
}

func TestAggregator_Sum(t *testing.T) {
	dir := t.TempDir()
	path := joinedTable(t, dir, "joined.csv",
		joinedRow("2020", "Indústria", "", "10", "1,5"),
		joinedRow("2020", "Indústria", "", "1000", "2"),
		joinedRow("2020", "Comércio", "", "5", ""),
		joinedRow("2020", "", "", "99", "1"),
		joinedRow("2019", "Indústria", "", "abc", "0"),
		joinedRow("2019", "Indústria", "", "", "x"),
		joinedRow("2019", "Indústria", "", "4", "1.234,5"),
	)

	logger, handler := testutil.NewTestLogger(t)
	agg := NewAggregator(logger, Options{ReportEvery: 3})

	t.Run("employment", func(t *testing.T) {
		got, stats, err := agg.Sum(context.Background(), path, FieldEmployment)
		require.NoError(t, err)

		assert.Equal(t, []domain.GroupValue{
			{Key: domain.GroupKey{Year: "2019", Sector: "Indústria"}, Value: 4},
			{Key: domain.GroupKey{Year: "2020", Sector: "Comércio"}, Value: 5},
			{Key: domain.GroupKey{Year: "2020", Sector: "Indústria"}, Value: 1010},
		}, got)
		assert.Equal(t, int64(7), stats.Read)
		assert.Equal(t, 3, stats.Groups)
		assert.Equal(t, int64(1), stats.Skipped[SkipEmptyKey])
		assert.Equal(t, int64(1), stats.Skipped[SkipEmptyValue])
		assert.Equal(t, int64(1), stats.Skipped[SkipUnparsable])
		assert.Equal(t, int64(3), stats.TotalSkipped())
		assert.True(t, handler.ContainsMessage("Incomplete rows skipped"))
		assert.True(t, handler.ContainsMessage("Rows processed"))
	})

	t.Run("opportunity gain", func(t *testing.T) {
		got, _, err := agg.Sum(context.Background(), path, FieldOpportunityGain)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.InDelta(t, 1234.5, got[0].Value, 1e-9)
		assert.InDelta(t, 3.5, got[1].Value, 1e-9)
	})

	t.Run("missing value column", func(t *testing.T) {
		bad := testutil.WriteTable(t, dir, "bad.csv", ";", []string{"Ano", "SETOR"}, []string{"2020", "x"})
		_, _, err := agg.Sum(context.Background(), bad, FieldEmployment)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeMissingColumn))
	})
}

func TestAggregator_Median(t *testing.T) {
	dir := t.TempDir()
	path := joinedTable(t, dir, "joined.csv",
		joinedRow("2020", "Indústria", "10", "", ""),
		joinedRow("2020", "Indústria", "30", "", ""),
		joinedRow("2020", "Indústria", "20", "", ""),
		joinedRow("2020", "Indústria", "0", "", ""),
		joinedRow("2020", "Comércio", "10", "", ""),
		joinedRow("2020", "Comércio", "20", "", ""),
		joinedRow("2020", "Serviços", "0,00", "", ""),
		joinedRow("2021", "Comércio", "n/a", "", ""),
		joinedRow("2021", "Comércio", "", "", ""),
	)

	logger, _ := testutil.NewTestLogger(t)
	agg := NewAggregator(logger, Options{})

	t.Run("zeros excluded", func(t *testing.T) {
		got, stats, err := agg.Median(context.Background(), path, FieldMeanWage, false)
		require.NoError(t, err)
		assert.Equal(t, []domain.GroupValue{
			{Key: domain.GroupKey{Year: "2020", Sector: "Comércio"}, Value: 15},
			{Key: domain.GroupKey{Year: "2020", Sector: "Indústria"}, Value: 20},
		}, got)
		assert.Equal(t, int64(2), stats.Skipped[SkipZeroValue])
		assert.Equal(t, int64(1), stats.Skipped[SkipUnparsable])
		assert.Equal(t, int64(1), stats.Skipped[SkipEmptyValue])
	})

	t.Run("zeros included", func(t *testing.T) {
		got, stats, err := agg.Median(context.Background(), path, FieldMeanWage, true)
		require.NoError(t, err)
		assert.Equal(t, []domain.GroupValue{
			{Key: domain.GroupKey{Year: "2020", Sector: "Comércio"}, Value: 15},
			{Key: domain.GroupKey{Year: "2020", Sector: "Indústria"}, Value: 15},
			{Key: domain.GroupKey{Year: "2020", Sector: "Serviços"}, Value: 0},
		}, got)
		assert.Zero(t, stats.Skipped[SkipZeroValue])
	})
}

func TestMedians_Deterministic(t *testing.T) {
	buckets := map[domain.GroupKey][]float64{
		{Year: "2021", Sector: "b"}: {3, 1, 2},
		{Year: "2020", Sector: "z"}: {5},
		{Year: "2021", Sector: "a"}: {1, 2},
	}

	got, err := Medians(context.Background(), buckets)
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupValue{
		{Key: domain.GroupKey{Year: "2020", Sector: "z"}, Value: 5},
		{Key: domain.GroupKey{Year: "2021", Sector: "a"}, Value: 1.5},
		{Key: domain.GroupKey{Year: "2021", Sector: "b"}, Value: 2},
	}, got)
}
