package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// WriteTable writes a delimited table with a header row and returns the path.
// Cells are written verbatim; callers quote them if needed.
func WriteTable(t *testing.T, dir, name string, delim string, header []string, rows ...[]string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(strings.Join(header, delim))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(strings.Join(row, delim))
		b.WriteString("\n")
	}
	return WriteFile(t, dir, name, b.String())
}

// ReadLines returns the lines of the file at path without the trailing newline.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// RaisHeader is the column layout of the consolidated RAIS extract.
var RaisHeader = []string{
	"Ano", "ID CNAE", "CNAE", "Massa Salarial", "Salário Médio", "Número de empregos", "Ganho de Oportunidade",
}
