package dataprocessing

import (
	"bufio"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"raisetl/internal/errors"
	"raisetl/internal/files"
)

// ErrMalformedRow marks a data row the CSV reader could not split. Callers
// count and skip it; the stream continues.
var ErrMalformedRow = stderrors.New("malformed row")

// AutoDelimiter asks OpenTable to pick `;` or `,` from the header line.
const AutoDelimiter rune = 0

// TableReader streams the data rows of a delimited text file.
type TableReader struct {
	Path      string
	Header    []string
	Encoding  string
	Delimiter rune

	tf   *files.TextFile
	csv  *csv.Reader
	line int
}

// OpenTable opens path, decodes it per encoding and reads the header row.
// A file without a readable, non-blank header fails with a malformed-header error.
func OpenTable(path string, delim rune, encoding string, logger *slog.Logger) (*TableReader, error) {
	tf, err := files.OpenText(path, encoding, logger)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReaderSize(tf, 64*1024)
	if delim == AutoDelimiter {
		delim = sniffDelimiter(br)
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		tf.Close()
		if err == io.EOF {
			err = fmt.Errorf("file is empty")
		}
		return nil, errors.NewMalformedHeaderError(path, err)
	}

	header = append([]string(nil), header...)
	blank := true
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if header[i] != "" {
			blank = false
		}
	}
	if blank {
		tf.Close()
		return nil, errors.NewMalformedHeaderError(path, fmt.Errorf("header row is blank"))
	}

	return &TableReader{
		Path:      path,
		Header:    header,
		Encoding:  tf.Encoding,
		Delimiter: delim,
		tf:        tf,
		csv:       r,
		line:      1,
	}, nil
}

// Read returns the next data row. The returned slice is reused by the next
// call. It returns io.EOF at the end of the file and an error wrapping
// ErrMalformedRow for a row that could not be split; any other error is fatal.
func (t *TableReader) Read() ([]string, error) {
	record, err := t.csv.Read()
	if err == nil {
		t.line++
		return record, nil
	}
	if err == io.EOF {
		return nil, io.EOF
	}

	var parseErr *csv.ParseError
	if stderrors.As(err, &parseErr) {
		t.line = parseErr.Line
		return nil, fmt.Errorf("%w at line %d: %v", ErrMalformedRow, parseErr.Line, parseErr.Err)
	}
	return nil, errors.NewParsingError(fmt.Sprintf("failed to read %s", t.Path), err)
}

// Line returns the line number of the last row read.
func (t *TableReader) Line() int {
	return t.line
}

// Resolve resolves specs against the header of this table.
func (t *TableReader) Resolve(specs ...FieldSpec) (*ColumnIndex, error) {
	return ResolveColumns(t.Path, t.Header, specs...)
}

// Close closes the underlying file.
func (t *TableReader) Close() error {
	return t.tf.Close()
}

// sniffDelimiter looks at the first line and picks `;` unless `,` is more frequent.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(4096)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{','}) > bytes.Count(head, []byte{';'}) {
		return ','
	}
	return ';'
}
