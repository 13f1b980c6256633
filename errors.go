// Package sdformat writes the fixed FAT32 volume layout that DS-flashcart
// boot firmware expects onto a disk image or block device.
package sdformat

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// FormatError is the error type returned by every public operation in this
// module. Errors form a chain: the sentinel values below are the roots, and
// WithMessage/Wrap produce derived errors that still satisfy errors.Is
// against their root.
type FormatError interface {
	error
	WithMessage(message string) FormatError
	Wrap(err error) FormatError
}

type baseFormatError string

const rootError = baseFormatError("")

// One sentinel per entry in the result-code taxonomy. InvalidLabel has no
// slot in the bridged enum; label problems are caught before any write ever
// happens.
var ErrInvalidDevice = rootError.WithMessage("Invalid device handle")
var ErrTooSmall = rootError.WithMessage("Device is too small to format")
var ErrAccessDenied = rootError.WithMessage("Permission denied")
var ErrDeviceBusy = rootError.WithMessage("Device or resource busy")
var ErrIOFailed = rootError.WithMessage("Input/output error")
var ErrInvalidLabel = rootError.WithMessage("Invalid volume label")
var ErrUnknown = rootError.WithMessage("Unknown error")

func (e baseFormatError) Error() string {
	return string(e)
}

func (e baseFormatError) WithMessage(message string) FormatError {
	return customFormatError{
		message:       message,
		originalError: e,
	}
}

func (e baseFormatError) Wrap(err error) FormatError {
	return customFormatError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customFormatError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a
// string describing the error.
func (e customFormatError) Error() string {
	return e.message
}

func (e customFormatError) WithMessage(message string) FormatError {
	return customFormatError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customFormatError) Wrap(err error) FormatError {
	return customFormatError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customFormatError) Unwrap() error {
	return e.originalError
}
