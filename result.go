// Result codes exist for the benefit of non-Go callers: the flashcart
// firmware tooling bridges this library through a thin C-style layer that
// can only carry an integer. Go callers should use the sentinel errors in
// errors.go directly; ResultOf is the one-way mapping for the bridge.

package sdformat

import (
	"errors"
	"syscall"
)

// Result is a C-compatible status code. The numeric values are a wire
// contract with the bridge layer and must never be reordered.
type Result int

const (
	Success Result = iota
	AccessDenied
	DeviceBusy
	InvalidDevice
	IOError
	TooSmall
	UnknownError
)

var resultMessages = map[Result]string{
	Success:       "Success",
	AccessDenied:  "Permission denied",
	DeviceBusy:    "Device or resource busy",
	InvalidDevice: "Invalid device handle",
	IOError:       "Input/output error",
	TooSmall:      "Device is too small to format",
	UnknownError:  "Unknown error",
}

// String returns the human-readable message for a result code.
func (r Result) String() string {
	if message, ok := resultMessages[r]; ok {
		return message
	}
	return "Unknown error"
}

// ResultOf maps any error produced by this module to its result code. A nil
// error maps to Success; an error with no recognized root maps to
// UnknownError.
func ResultOf(err error) Result {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrAccessDenied):
		return AccessDenied
	case errors.Is(err, ErrDeviceBusy):
		return DeviceBusy
	case errors.Is(err, ErrInvalidDevice):
		return InvalidDevice
	case errors.Is(err, ErrTooSmall):
		return TooSmall
	case errors.Is(err, ErrIOFailed):
		return IOError
	default:
		return UnknownError
	}
}

// ClassifyOSError converts a raw error from the operating system into the
// matching taxonomy root. Unrecognized errno values become ErrIOFailed so a
// flaky device never surfaces as "unknown".
func ClassifyOSError(err error) FormatError {
	switch {
	case errors.Is(err, syscall.EACCES), errors.Is(err, syscall.EPERM):
		return ErrAccessDenied.Wrap(err)
	case errors.Is(err, syscall.EBUSY):
		return ErrDeviceBusy.Wrap(err)
	case errors.Is(err, syscall.EBADF):
		return ErrInvalidDevice.Wrap(err)
	default:
		return ErrIOFailed.Wrap(err)
	}
}
