// Package shared holds code used across packages that belongs to no single
// pipeline stage. Today that is only the testutil subpackage: fixture writers
// for raw extracts and side tables, and a capturing slog handler for
// asserting on log output.
package shared
