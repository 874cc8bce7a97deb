//go:build !ios && !android && (amd64 || arm64)

package rawgo

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/rawgo/internal/bindings"
)

// ErrNotLoaded indicates the LibRaw library is not loaded.
var ErrNotLoaded = bindings.ErrNotLoaded

// errSessionClosed signals an operation that raced with Release and
// reached a session after its native state was destroyed. Callers of
// the public API only ever see it converted to *InvalidHandleError.
var errSessionClosed = errors.New("rawgo: session is closed")

// Stage identifies which step of opening a raw file failed.
type Stage string

// Open stages.
const (
	StageOpen   Stage = "open"   // libraw_open_file failed
	StageUnpack Stage = "unpack" // libraw_unpack failed
)

// OpenError is returned when a raw file cannot be opened or unpacked.
// No handle is allocated and no registry entry exists when Open fails.
type OpenError struct {
	Path  string // File that failed
	Stage Stage  // Step that failed (StageOpen or StageUnpack)
	Err   error  // Underlying LibRaw error
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("rawgo: %s %s: %v", e.Stage, e.Path, e.Err)
}

// Unwrap returns the underlying LibRaw error.
func (e *OpenError) Unwrap() error { return e.Err }

// InvalidHandleError is returned when an operation names a handle with
// no live session. Never-issued, already-released, and bogus handles
// are indistinguishable.
type InvalidHandleError struct {
	Handle uint64
}

// Error implements the error interface.
func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("rawgo: invalid handle %d", e.Handle)
}

// ThumbnailError is returned when thumbnail extraction fails for a live
// session: the source has no embedded preview, or the preview is in a
// format LibRaw cannot decode. The handle itself stays valid.
type ThumbnailError struct {
	Handle uint64
	Err    error // Underlying LibRaw error
}

// Error implements the error interface.
func (e *ThumbnailError) Error() string {
	return fmt.Sprintf("rawgo: thumbnail for handle %d: %v", e.Handle, e.Err)
}

// Unwrap returns the underlying LibRaw error.
func (e *ThumbnailError) Unwrap() error { return e.Err }

// IsOpenFailed returns true if the error reports a failed open or unpack.
func IsOpenFailed(err error) bool {
	var oe *OpenError
	return errors.As(err, &oe)
}

// IsInvalidHandle returns true if the error reports a dead or unknown handle.
func IsInvalidHandle(err error) bool {
	var ie *InvalidHandleError
	return errors.As(err, &ie)
}

// IsThumbnailUnavailable returns true if the error reports a missing or
// undecodable embedded thumbnail.
func IsThumbnailUnavailable(err error) bool {
	var te *ThumbnailError
	return errors.As(err, &te)
}
