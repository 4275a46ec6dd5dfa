package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for input that cannot be processed at all. Match them with
// errors.Is; the typed errors below carry the user-facing message.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyInput        = errors.New("empty input")
)

// UnsupportedFormatError is returned when an upload is neither CSV nor XLSX.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return "only .csv or .xlsx files are supported"
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// EmptyInputError is returned when a file holds no usable rows.
type EmptyInputError struct {
	Reason string
}

func (e *EmptyInputError) Error() string { return e.Reason }

func (e *EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// NewEmptyInput builds an EmptyInputError with a formatted reason.
func NewEmptyInput(format string, args ...any) error {
	return &EmptyInputError{Reason: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err describes a problem with the uploaded
// file itself rather than a processing failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrEmptyInput)
}
