package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"raisetl/internal/errors"
)

// FileValidator checks stage inputs and outputs before any row is read.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path exists, is a regular file and can be opened.
// Any failure is reported as a missing-input error.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Input file does not exist",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewMissingInputError(path, err)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory, not a file",
			slog.String("path", path))
		return errors.NewMissingInputError(path, fmt.Errorf("%s is a directory", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return errors.NewMissingInputError(path, err)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateInputFiles validates every path and returns the first failure.
func (v *FileValidator) ValidateInputFiles(paths ...string) error {
	for _, p := range paths {
		if err := v.ValidateInputFile(p); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOptionalInputFile is ValidateInputFile for inputs a stage can run
// without. A path that does not exist reports false with no error.
func (v *FileValidator) ValidateOptionalInputFile(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		v.logger.Warn("Optional input file does not exist",
			slog.String("file", path))
		return false, nil
	}
	if err := v.ValidateInputFile(path); err != nil {
		return false, err
	}
	return true, nil
}

// ValidateOutputDirectory ensures the directory holding outputPath exists and is writable.
func (v *FileValidator) ValidateOutputDirectory(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return errors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
