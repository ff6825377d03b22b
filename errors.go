package qcir

import (
	"errors"
	"fmt"
)

// Failures fall into two classes callers can test with errors.Is.
var (
	// ErrParse marks format, grammar, and semantic violations.
	ErrParse = errors.New("parse error")
	// ErrFile marks file-access failures.
	ErrFile = errors.New("file access error")
)

func parseErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}

func fileErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrFile, fmt.Sprintf(format, args...))
}
