package errors

import (
	stderrors "errors"
)

// Process exit codes. Zero is success; every structural failure maps to its own
// non-zero code so wrapper scripts can tell a missing file from a bad header.
const (
	ExitOK              = 0
	ExitFailure         = 1
	ExitMissingInput    = 2
	ExitMalformedHeader = 3
	ExitMissingColumn   = 4
	ExitConfig          = 5
	ExitStorage         = 6
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch TypeOf(err) {
	case ErrTypeMissingInput:
		return ExitMissingInput
	case ErrTypeMalformedHeader:
		return ExitMalformedHeader
	case ErrTypeMissingColumn:
		return ExitMissingColumn
	case ErrTypeConfig, ErrTypeValidation:
		return ExitConfig
	case ErrTypeStorage:
		return ExitStorage
	default:
		return ExitFailure
	}
}
