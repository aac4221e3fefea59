package exporter

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"raisetl/internal/errors"
	"raisetl/internal/files"
	"raisetl/pkg/contracts/domain"
)

// MarketSheet is the worksheet name of the XLSX market table.
const MarketSheet = "mercado"

// MarketHeader is the column order of the market table.
var MarketHeader = []string{
	domain.ColumnYear,
	domain.ColumnSector,
	domain.ColumnEmployability,
	domain.ColumnDemand,
	domain.ColumnSalaryMedian,
}

func sortMarket(records []domain.MarketRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Key.Less(records[j].Key)
	})
}

// WriteMarketTable writes the market table sorted by (year, sector).
// A missing metric is written as an empty cell.
func WriteMarketTable(path string, records []domain.MarketRecord) error {
	sortMarket(records)

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Key.Year,
			r.Key.Sector,
			formatOptional(r.Employability),
			formatOptional(r.Demand),
			formatOptional(r.SalaryMedian),
		})
	}
	return WriteTable(path, MarketHeader, rows)
}

// WriteMarketXLSX writes the market table to a single-sheet workbook.
// Metrics are stored as numbers; a missing metric leaves the cell empty.
func WriteMarketXLSX(path string, records []domain.MarketRecord) error {
	sortMarket(records)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MarketSheet); err != nil {
		return errors.NewStorageError("failed to name market sheet", err)
	}

	sw, err := f.NewStreamWriter(MarketSheet)
	if err != nil {
		return errors.NewStorageError("failed to create xlsx stream writer", err)
	}

	header := make([]interface{}, len(MarketHeader))
	for i, h := range MarketHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.NewStorageError("failed to write xlsx header", err)
	}

	for i, r := range records {
		row := []interface{}{r.Key.Year, r.Key.Sector, optionalCell(r.Employability), optionalCell(r.Demand), optionalCell(r.SalaryMedian)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.NewStorageError("failed to address xlsx row", err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return errors.NewStorageError(fmt.Sprintf("failed to write xlsx row %d", i+2), err)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.NewStorageError("failed to flush xlsx stream", err)
	}

	out, err := files.CreateAtomic(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := f.WriteTo(out); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to write %s", filepath.Base(path)), err)
	}
	return out.Commit()
}

func optionalCell(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
