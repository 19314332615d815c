package merge

import (
	"errors"
	"fmt"
)

// Merge error types
var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidRange = errors.New("invalid merge range")
	ErrRangeCount   = errors.New("did not specify all ranges to merge")
	ErrNoInputs     = errors.New("no files provided to merge")
)

// FileNotFoundError reports an input path that does not exist
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("incorrect path to merge file '%s'", e.Path)
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// RangeError reports a merge range that cannot be applied
type RangeError struct {
	Range     MergeRange
	PageCount int
}

func (e *RangeError) Error() string {
	start, end := 0, 0
	if e.Range.Start != nil {
		start = *e.Range.Start
	}
	if e.Range.End != nil {
		end = *e.Range.End
	}
	switch {
	case start < 0:
		return fmt.Sprintf("specified a wrong merge range for path %s: start %d is negative", e.Range.Path, start)
	case start >= end:
		return fmt.Sprintf("specified a wrong merge range for path %s: %d >= %d", e.Range.Path, start, end)
	default:
		return fmt.Sprintf("specified a wrong merge range for path %s: end %d exceeds %d pages", e.Range.Path, end, e.PageCount)
	}
}

func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// OperationError wraps a failure of the PDF engine during one merge step
type OperationError struct {
	Op   string
	Path string
	Err  error
}

func (e *OperationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("merge %s failed for file %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("merge %s failed: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// NewOperationError creates a new operation error
func NewOperationError(op, path string, err error) *OperationError {
	return &OperationError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}
