package pwxconv

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDecode marks a malformed or structurally invalid source document.
	ErrDecode = errors.New("decode source document")
	// ErrSegmentation marks unsorted or out-of-range segment boundaries or samples.
	ErrSegmentation = errors.New("segmentation precondition violated")
	// ErrValidation marks an output document rejected by its schema rules.
	ErrValidation = errors.New("output failed schema validation")
	// ErrUnsupportedFormat marks an unknown source or target format.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// SegmentationError describes which boundary or sample broke the lap preconditions.
type SegmentationError struct {
	Index  int
	Offset float64
	Reason string
}

func (e *SegmentationError) Error() string {
	return fmt.Sprintf("segmentation: index %d at offset %gs: %s", e.Index, e.Offset, e.Reason)
}

func (e *SegmentationError) Is(target error) bool {
	return target == ErrSegmentation
}

// ValidationError carries every rule violation found in one output document.
type ValidationError struct {
	Format     string
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("error validating output %s file: %s", e.Format, strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DecodeError wraps a source parsing failure.
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("decode source document: %v", e.Err)
	}
	return fmt.Sprintf("decode %s document: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
