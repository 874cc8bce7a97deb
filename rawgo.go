//go:build !ios && !android && (amd64 || arm64)

// Package rawgo provides high-level bindings to LibRaw for reading raw
// camera files. It exposes shooting metadata and embedded preview
// thumbnails without CGO using purego.
//
// Opened files are tracked as sessions named by opaque uint64 handles,
// issued by a Manager. The Manager is the single owner of every
// session's native state: a handle either names exactly one live
// session or nothing, handles are strictly increasing and never
// reused, and releasing a handle destroys its session exactly once.
//
// For most use cases the package-level functions on the default
// manager are enough:
//
//	h, err := rawgo.Open("IMG_0001.NEF")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rawgo.Release(h)
//
//	meta, err := rawgo.GetMetadata(h)
//	...
//
// For advanced use cases the low-level libraw package is available.
package rawgo

import (
	"github.com/obinnaokechukwu/rawgo/internal/bindings"
	"github.com/obinnaokechukwu/rawgo/libraw"
)

// Init loads the LibRaw shared library. This is called automatically by
// Open, but can be called explicitly to check for errors up front.
// It is safe to call multiple times.
func Init() error {
	return bindings.Load()
}

// IsLoaded returns true if the LibRaw library has been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Version returns the LibRaw version string (e.g. "0.21.2-Release").
// Returns "" if the library is not loaded.
func Version() string {
	return libraw.Version()
}

// VersionNumber returns the packed numeric LibRaw version
// ((major << 16) | (minor << 8) | patch), or 0 if not loaded.
func VersionNumber() int32 {
	return libraw.VersionNumber()
}
