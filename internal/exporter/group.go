package exporter

import (
	"sort"

	"raisetl/pkg/contracts/domain"
)

// SortGroupValues sorts rows by year, then sector.
func SortGroupValues(rows []domain.GroupValue) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Key.Less(rows[j].Key)
	})
}

// WriteGroupTable writes `ano;setor;<valueColumn>` sorted by (year, sector).
// rows is sorted in place.
func WriteGroupTable(path, valueColumn string, rows []domain.GroupValue) error {
	SortGroupValues(rows)

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Key.Year, r.Key.Sector, FormatFloat(r.Value)})
	}
	return WriteTable(path, []string{domain.ColumnYear, domain.ColumnSector, valueColumn}, records)
}
