// Package exporter writes the pipeline's output tables.
//
// Every table is `;`-delimited UTF-8 without a byte order mark, has a single
// header row and renders floats with six decimals. Group tables are sorted by
// (year, sector) before writing so identical inputs give byte-identical files.
//
// StreamWriter writes row by row into an atomic output file; nothing is visible
// at the target path until Commit:
//
//	w, err := exporter.CreateStreamWriter(path, header)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	for _, rec := range records {
//	    if err := w.WriteRecord(rec); err != nil {
//	        return err
//	    }
//	}
//	return w.Commit()
//
// The market table can additionally be exported as an XLSX workbook.
package exporter
