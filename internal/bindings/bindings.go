//go:build !ios && !android && (amd64 || arm64)

// Package bindings handles loading the LibRaw shared library and registering
// function bindings using purego.
package bindings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/rawgo/internal/platform"
)

// ErrNotLoaded is returned when LibRaw functions are called before Load().
var ErrNotLoaded = errors.New("rawgo: LibRaw library not loaded; call rawgo.Init() first")

// ErrLibraryNotFound is returned when the LibRaw library cannot be found.
var ErrLibraryNotFound = errors.New("rawgo: LibRaw library not found")

// libRawVersions lists soname versions to probe, newest first.
// 23 = LibRaw 0.21.x, 22 = 0.21 betas, 20 = 0.20.x, 19 = 0.19.x, 16 = 0.18.x.
var libRawVersions = []int{23, 22, 20, 19, 16}

var (
	libRaw uintptr

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// Version function bindings
var (
	librawVersion       func() string
	librawVersionNumber func() int32
)

// IsLoaded returns true if the LibRaw library has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Load loads the LibRaw library and registers the version bindings.
// It is safe to call multiple times; subsequent calls are no-ops.
// Returns an error if the library cannot be found or loaded.
func Load() error {
	loadOnce.Do(func() {
		loadErr = doLoad()
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad() error {
	var err error

	libRaw, err = loadLibrary("raw", libRawVersions)
	if err != nil {
		return fmt.Errorf("loading libraw: %w", err)
	}

	purego.RegisterLibFunc(&librawVersion, libRaw, "libraw_version")
	purego.RegisterLibFunc(&librawVersionNumber, libRaw, "libraw_versionNumber")

	return nil
}

// loadLibrary attempts to load a library by trying versioned names.
func loadLibrary(name string, versions []int) (uintptr, error) {
	// Try each search path
	for _, searchPath := range LibrarySearchPaths() {
		// Try versioned names first (more specific)
		for _, ver := range versions {
			libName := platform.FormatLibraryName(name, ver)
			fullPath := filepath.Join(searchPath, libName)

			lib, err := tryOpen(fullPath)
			if err == nil {
				return lib, nil
			}
		}

		// Try unversioned name
		libName := platform.FormatLibraryName(name, 0)
		fullPath := filepath.Join(searchPath, libName)
		lib, err := tryOpen(fullPath)
		if err == nil {
			return lib, nil
		}
	}

	// Try just the library name (let the system find it)
	for _, ver := range versions {
		libName := platform.FormatLibraryName(name, ver)
		lib, err := tryOpen(libName)
		if err == nil {
			return lib, nil
		}
	}

	// Try unversioned
	libName := platform.FormatLibraryName(name, 0)
	lib, err := tryOpen(libName)
	if err == nil {
		return lib, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// tryOpen attempts to open a library with RTLD_NOW | RTLD_LOCAL.
// LibRaw is self-contained, so unlike multi-library codec stacks no
// symbols need to be re-exported to later dlopens.
func tryOpen(path string) (uintptr, error) {
	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return 0, err
	}
	return lib, nil
}

// FindLibrary searches for the LibRaw library and returns its full path.
// This is useful for diagnostics.
func FindLibrary(name string, versions []int) (string, error) {
	for _, searchPath := range LibrarySearchPaths() {
		for _, ver := range versions {
			libName := platform.FormatLibraryName(name, ver)
			fullPath := filepath.Join(searchPath, libName)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
		// Try unversioned
		libName := platform.FormatLibraryName(name, 0)
		fullPath := filepath.Join(searchPath, libName)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, name)
}

// SonameVersions returns the soname versions probed during Load, newest first.
func SonameVersions() []int {
	out := make([]int, len(libRawVersions))
	copy(out, libRawVersions)
	return out
}

// LibrarySearchPaths returns platform-specific library search paths.
func LibrarySearchPaths() []string {
	var paths []string

	switch runtime.GOOS {
	case "linux":
		// Check LD_LIBRARY_PATH first
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		// Standard paths
		paths = append(paths,
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/usr/local/lib",
			"/usr/lib",
			"/lib/x86_64-linux-gnu",
			"/lib",
		)

	case "darwin":
		// Check DYLD_LIBRARY_PATH first
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		// Homebrew paths
		paths = append(paths,
			"/opt/homebrew/lib",            // Apple Silicon
			"/usr/local/lib",               // Intel
			"/opt/homebrew/opt/libraw/lib", // Homebrew LibRaw
			"/usr/local/opt/libraw/lib",    // Homebrew LibRaw (Intel)
		)

	case "windows":
		// Check PATH
		if winPath := os.Getenv("PATH"); winPath != "" {
			paths = append(paths, filepath.SplitList(winPath)...)
		}
		// Executable directory
		if exe, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Dir(exe))
		}
		// Common LibRaw locations
		paths = append(paths,
			"C:\\libraw\\bin",
			"C:\\Program Files\\LibRaw\\bin",
		)

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/usr/local/lib",
			"/usr/lib",
		)
	}

	return paths
}

// Version returns the LibRaw version string (e.g. "0.21.2-Release").
// Returns "" if the library is not loaded.
func Version() string {
	if !loaded || librawVersion == nil {
		return ""
	}
	return librawVersion()
}

// VersionNumber returns the packed LibRaw version number
// ((major << 16) | (minor << 8) | patch). Returns 0 if not loaded.
func VersionNumber() int32 {
	if !loaded || librawVersionNumber == nil {
		return 0
	}
	return librawVersionNumber()
}

// LibRaw returns the LibRaw library handle.
func LibRaw() uintptr {
	return libRaw
}
