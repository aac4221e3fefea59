package exporter

import (
	"encoding/csv"
	"fmt"

	"raisetl/internal/config"
	"raisetl/internal/errors"
	"raisetl/internal/files"
)

// StreamWriter provides streaming `;`-delimited writing for large tables
type StreamWriter struct {
	out     *files.AtomicFile
	writer  *csv.Writer
	records int
}

// CreateStreamWriter creates the output file for path and writes the header.
func CreateStreamWriter(path string, header []string) (*StreamWriter, error) {
	out, err := files.CreateAtomic(path)
	if err != nil {
		return nil, err
	}

	writer := csv.NewWriter(out)
	writer.Comma = config.OutputDelimiter

	s := &StreamWriter{out: out, writer: writer}
	if len(header) > 0 {
		if err := writer.Write(header); err != nil {
			out.Close()
			return nil, errors.NewStorageError(fmt.Sprintf("failed to write header to %s", path), err)
		}
	}
	return s, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return errors.NewStorageError(fmt.Sprintf("failed to write record to %s", s.out.Path()), err)
	}
	s.records++
	return nil
}

// Records returns the number of data records written so far.
func (s *StreamWriter) Records() int {
	return s.records
}

// Path returns the final destination of the table.
func (s *StreamWriter) Path() string {
	return s.out.Path()
}

// Commit flushes the table and moves it onto its target path.
func (s *StreamWriter) Commit() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.out.Close()
		return errors.NewStorageError(fmt.Sprintf("failed to flush %s", s.out.Path()), err)
	}
	return s.out.Commit()
}

// Close discards the table unless Commit succeeded.
func (s *StreamWriter) Close() error {
	return s.out.Close()
}

// WriteTable writes a complete table in one call.
func WriteTable(path string, header []string, records [][]string) error {
	w, err := CreateStreamWriter(path, header)
	if err != nil {
		return err
	}
	defer w.Close()

	for _, rec := range records {
		if err := w.WriteRecord(rec); err != nil {
			return err
		}
	}
	return w.Commit()
}
