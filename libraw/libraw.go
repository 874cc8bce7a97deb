//go:build !ios && !android && (amd64 || arm64)

// Package libraw provides low-level bindings to the LibRaw C API.
// It covers processor lifecycle, raw container unpacking, embedded
// thumbnail extraction, and shooting-info access.
//
// Most users should use the high-level rawgo package instead.
package libraw

import (
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/rawgo/internal/bindings"
)

// Processor is an opaque LibRaw libraw_data_t pointer.
// One processor holds the state of at most one opened raw file.
type Processor = unsafe.Pointer

// ProcessedImage is an opaque LibRaw libraw_processed_image_t pointer,
// as returned by MakeMemThumb. It must be freed with ClearMem.
type ProcessedImage = unsafe.Pointer

// Thumbnail formats stored in libraw_processed_image_t.type
// (LibRaw_image_formats values).
const (
	ImageFormatJPEG   int32 = 1 // Encoded JPEG stream, pass-through
	ImageFormatBitmap int32 = 2 // Raw RGB bitmap rows
)

// Function bindings
var (
	librawInit        func(flags uint32) unsafe.Pointer
	librawClose       func(proc unsafe.Pointer)
	librawRecycle     func(proc unsafe.Pointer)
	librawOpenFile    func(proc unsafe.Pointer, filename string) int32
	librawUnpack      func(proc unsafe.Pointer) int32
	librawUnpackThumb func(proc unsafe.Pointer) int32

	librawMakeMemThumb func(proc unsafe.Pointer, errcode *int32) unsafe.Pointer
	librawClearMem     func(img unsafe.Pointer)

	librawGetIParams  func(proc unsafe.Pointer) unsafe.Pointer
	librawGetImgOther func(proc unsafe.Pointer) unsafe.Pointer

	librawStrerror func(errcode int32) string

	bindingsRegistered bool
)

func init() {
	registerBindings()
}

func registerBindings() {
	if bindingsRegistered {
		return
	}

	if err := bindings.Load(); err != nil {
		return
	}

	lib := bindings.LibRaw()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&librawInit, lib, "libraw_init")
	purego.RegisterLibFunc(&librawClose, lib, "libraw_close")
	purego.RegisterLibFunc(&librawRecycle, lib, "libraw_recycle")
	purego.RegisterLibFunc(&librawOpenFile, lib, "libraw_open_file")
	purego.RegisterLibFunc(&librawUnpack, lib, "libraw_unpack")
	purego.RegisterLibFunc(&librawUnpackThumb, lib, "libraw_unpack_thumb")

	purego.RegisterLibFunc(&librawMakeMemThumb, lib, "libraw_dcraw_make_mem_thumb")
	purego.RegisterLibFunc(&librawClearMem, lib, "libraw_dcraw_clear_mem")

	purego.RegisterLibFunc(&librawGetIParams, lib, "libraw_get_iparams")
	purego.RegisterLibFunc(&librawGetImgOther, lib, "libraw_get_imgother")

	purego.RegisterLibFunc(&librawStrerror, lib, "libraw_strerror")

	bindingsRegistered = true
}

// Version returns the LibRaw version string.
func Version() string {
	return bindings.Version()
}

// VersionNumber returns the packed numeric LibRaw version.
func VersionNumber() int32 {
	return bindings.VersionNumber()
}

// Strerror returns LibRaw's message for an error code.
func Strerror(code int32) string {
	if librawStrerror == nil {
		return ""
	}
	return librawStrerror(code)
}

// NewProcessor allocates a fresh LibRaw processor.
// The processor must be released with Close.
func NewProcessor() (Processor, error) {
	if librawInit == nil {
		return nil, bindings.ErrNotLoaded
	}
	proc := librawInit(0)
	if proc == nil {
		return nil, &Error{Code: ErrUnsufficientMemory, Op: "libraw_init", Message: "allocation failed"}
	}
	return proc, nil
}

// Close destroys a processor and all native state it owns,
// then clears the caller's pointer.
func Close(proc *Processor) {
	if proc == nil || *proc == nil || librawClose == nil {
		return
	}
	librawClose(*proc)
	*proc = nil
}

// Recycle soft-resets a processor to its just-initialized state,
// freeing per-file buffers while keeping the allocation reusable.
func Recycle(proc Processor) {
	if proc == nil || librawRecycle == nil {
		return
	}
	librawRecycle(proc)
}

// OpenFile opens and identifies a raw container.
func OpenFile(proc Processor, path string) error {
	if librawOpenFile == nil {
		return bindings.ErrNotLoaded
	}
	return NewError(librawOpenFile(proc, path), "libraw_open_file")
}

// Unpack decodes the raw sensor data of an opened file into processor memory.
func Unpack(proc Processor) error {
	if librawUnpack == nil {
		return bindings.ErrNotLoaded
	}
	return NewError(librawUnpack(proc), "libraw_unpack")
}

// UnpackThumb decodes the embedded preview of an opened file.
// Fails with ErrNoThumbnail if the container carries none.
func UnpackThumb(proc Processor) error {
	if librawUnpackThumb == nil {
		return bindings.ErrNotLoaded
	}
	return NewError(librawUnpackThumb(proc), "libraw_unpack_thumb")
}

// MakeMemThumb asks LibRaw for an in-memory copy of the unpacked thumbnail.
// The returned image must be freed with ClearMem.
func MakeMemThumb(proc Processor) (ProcessedImage, error) {
	if librawMakeMemThumb == nil {
		return nil, bindings.ErrNotLoaded
	}
	var code int32
	img := librawMakeMemThumb(proc, &code)
	if img == nil {
		if code == 0 {
			code = ErrUnspecified
		}
		return nil, NewError(code, "libraw_dcraw_make_mem_thumb")
	}
	return img, nil
}

// ClearMem frees a processed image returned by MakeMemThumb.
func ClearMem(img ProcessedImage) {
	if img == nil || librawClearMem == nil {
		return
	}
	librawClearMem(img)
}

// libraw_processed_image_t field offsets:
// int32 type @0, ushort height @4, width @6, colors @8, bits @10,
// uint32 data_size @12, payload @16.
const (
	offProcessedType     = 0
	offProcessedHeight   = 4
	offProcessedWidth    = 6
	offProcessedDataSize = 12
	offProcessedData     = 16
)

// ProcessedImageType returns the image format of a processed image
// (ImageFormatJPEG or ImageFormatBitmap).
func ProcessedImageType(img ProcessedImage) int32 {
	if img == nil {
		return 0
	}
	return *(*int32)(unsafe.Pointer(uintptr(img) + offProcessedType))
}

// ProcessedWidth returns the pixel width of a processed image.
func ProcessedWidth(img ProcessedImage) int {
	if img == nil {
		return 0
	}
	return int(*(*uint16)(unsafe.Pointer(uintptr(img) + offProcessedWidth)))
}

// ProcessedHeight returns the pixel height of a processed image.
func ProcessedHeight(img ProcessedImage) int {
	if img == nil {
		return 0
	}
	return int(*(*uint16)(unsafe.Pointer(uintptr(img) + offProcessedHeight)))
}

// ProcessedData copies the payload of a processed image into Go memory.
// The copy stays valid after ClearMem.
func ProcessedData(img ProcessedImage) []byte {
	if img == nil {
		return nil
	}
	size := *(*uint32)(unsafe.Pointer(uintptr(img) + offProcessedDataSize))
	if size == 0 {
		return nil
	}
	src := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(img)+offProcessedData)), size)
	data := make([]byte, size)
	copy(data, src)
	return data
}

// libraw_iparams_t field offsets: char guard[4] @0, make[64] @4, model[64] @68.
const (
	offIParamsMake  = 4
	offIParamsModel = 68
	lenIParamsField = 64
)

// libraw_imgother_t field offsets: float iso_speed @0, shutter @4,
// aperture @8, focal_len @12.
const (
	offOtherISOSpeed = 0
	offOtherShutter  = 4
	offOtherAperture = 8
	offOtherFocalLen = 12
)

// CameraMake returns the camera maker string of an opened file.
func CameraMake(proc Processor) string {
	return iparamsString(proc, offIParamsMake)
}

// CameraModel returns the camera model string of an opened file.
func CameraModel(proc Processor) string {
	return iparamsString(proc, offIParamsModel)
}

func iparamsString(proc Processor, offset uintptr) string {
	if proc == nil || librawGetIParams == nil {
		return ""
	}
	params := librawGetIParams(proc)
	if params == nil {
		return ""
	}
	return goStringN(unsafe.Pointer(uintptr(params)+offset), lenIParamsField)
}

// ISOSpeed returns the ISO sensitivity the shot was taken at.
func ISOSpeed(proc Processor) float32 {
	return imgOtherFloat(proc, offOtherISOSpeed)
}

// Shutter returns the shutter duration in seconds.
func Shutter(proc Processor) float32 {
	return imgOtherFloat(proc, offOtherShutter)
}

// Aperture returns the aperture f-number.
func Aperture(proc Processor) float32 {
	return imgOtherFloat(proc, offOtherAperture)
}

// FocalLength returns the lens focal length in millimeters.
func FocalLength(proc Processor) float32 {
	return imgOtherFloat(proc, offOtherFocalLen)
}

func imgOtherFloat(proc Processor, offset uintptr) float32 {
	if proc == nil || librawGetImgOther == nil {
		return 0
	}
	other := librawGetImgOther(proc)
	if other == nil {
		return 0
	}
	return *(*float32)(unsafe.Pointer(uintptr(other) + offset))
}

// goStringN converts a NUL-terminated C string of at most max bytes
// to a Go string.
func goStringN(ptr unsafe.Pointer, max int) string {
	if ptr == nil {
		return ""
	}
	var buf []byte
	for i := 0; i < max; i++ {
		b := *(*byte)(unsafe.Pointer(uintptr(ptr) + uintptr(i)))
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf)
}
