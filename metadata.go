//go:build !ios && !android && (amd64 || arm64)

package rawgo

// Metadata is the fixed shooting-info record read from an unpacked raw
// file. It is derived read-only from session state; requesting it
// repeatedly on the same live handle returns identical values.
type Metadata struct {
	Make        string  // Camera maker, e.g. "NIKON CORPORATION"
	Model       string  // Camera model, e.g. "NIKON D850"
	ISO         float32 // ISO sensitivity
	Shutter     float32 // Shutter duration in seconds
	Aperture    float32 // Aperture f-number
	FocalLength float32 // Lens focal length in millimeters
}
