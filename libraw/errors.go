//go:build !ios && !android && (amd64 || arm64)

package libraw

import (
	"errors"
	"fmt"
)

// LibRaw error codes (LibRaw_errors values).
// Non-fatal codes are small negatives; fatal codes start at -100007.
const (
	Success                 int32 = 0
	ErrUnspecified          int32 = -1      // Unspecified error
	ErrFileUnsupported      int32 = -2      // Unsupported file format
	ErrNonexistentImage     int32 = -3      // Request for nonexistent image number
	ErrOutOfOrderCall       int32 = -4      // API called out of order
	ErrNoThumbnail          int32 = -5      // No embedded thumbnail
	ErrUnsupportedThumbnail int32 = -6      // Unsupported thumbnail format
	ErrInputClosed          int32 = -7      // Input stream already closed
	ErrNotImplemented       int32 = -8      // Feature not implemented
	ErrNonexistentThumbnail int32 = -9      // Request for nonexistent thumbnail number
	ErrUnsufficientMemory   int32 = -100007 // Out of memory
	ErrDataError            int32 = -100008 // Data corrupted or short file
	ErrIOError              int32 = -100009 // I/O error
	ErrCancelledByCallback  int32 = -100010 // Processing cancelled by callback
	ErrBadCrop              int32 = -100011 // Bad crop box
	ErrTooBig               int32 = -100012 // Image too big for processing
	ErrMempoolOverflow      int32 = -100013 // Internal memory pool overflow
)

// Error represents a LibRaw error.
type Error struct {
	Code    int32  // Raw LibRaw error code
	Message string // Human-readable message
	Op      string // Operation that failed
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("libraw %s: %s (code %d)", e.Op, e.Message, e.Code)
}

// NewError creates a new LibRaw error from an error code.
// Returns nil if code is Success (or positive).
func NewError(code int32, op string) error {
	if code >= 0 {
		return nil
	}
	msg := Strerror(code)
	if msg == "" {
		msg = "unknown error"
	}
	return &Error{
		Code:    code,
		Message: msg,
		Op:      op,
	}
}

// IsNoThumbnail returns true if the error indicates the source carries
// no embedded thumbnail.
func IsNoThumbnail(err error) bool {
	return Code(err) == ErrNoThumbnail
}

// IsUnsupportedThumbnail returns true if the error indicates an
// embedded thumbnail in a format LibRaw cannot decode.
func IsUnsupportedThumbnail(err error) bool {
	return Code(err) == ErrUnsupportedThumbnail
}

// IsUnsupportedFile returns true if the error indicates a container
// format LibRaw does not recognize.
func IsUnsupportedFile(err error) bool {
	return Code(err) == ErrFileUnsupported
}

// IsOutOfOrder returns true if the error indicates an API call made
// before its prerequisite (e.g. unpack before open).
func IsOutOfOrder(err error) bool {
	return Code(err) == ErrOutOfOrderCall
}

// Code returns the LibRaw error code from an error, or 0 if not a LibRaw error.
func Code(err error) int32 {
	var lrErr *Error
	if errors.As(err, &lrErr) {
		return lrErr.Code
	}
	return 0
}
