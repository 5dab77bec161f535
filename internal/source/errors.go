package source

import (
	"errors"
	"fmt"
)

// ErrInvalidMigrationFile indicates a migration file whose name or metadata cannot be used
var ErrInvalidMigrationFile = errors.New("invalid migration file")

// FileError wraps a failure on a specific file of a migration tree
type FileError struct {
	Path string // File or directory path
	Op   string // Operation (scan, read, parse)
	Err  error  // Underlying error
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Err
}
