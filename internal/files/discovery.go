package files

import (
	"fmt"
	"os"
	"strings"

	"raisetl/internal/errors"
)

// FindInput returns the first candidate that exists as a regular file.
// Empty candidates are ignored. When none exists the error names every path tried.
func FindInput(candidates ...string) (string, error) {
	tried := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		tried = append(tried, c)
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}

	if len(tried) == 0 {
		return "", errors.NewConfigError("no input path given", nil)
	}
	return "", errors.NewMissingInputError(tried[0],
		fmt.Errorf("none of [%s] exists", strings.Join(tried, ", ")))
}
