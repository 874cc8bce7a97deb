//go:build !ios && !android && (amd64 || arm64)

package rawgo

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/rawgo/internal/bindings"
	"github.com/obinnaokechukwu/rawgo/internal/handles"
)

// Manager is the central authority for the handle→session mapping: the
// sole place where sessions are created, looked up, and destroyed.
//
// Managers are independent of each other; each issues its own handle
// sequence starting at 1. All methods are safe for concurrent use. The
// shared map is guarded by a lock held only for the map access itself;
// slow LibRaw work (unpacking, thumbnail decode) runs outside it, so
// operations on different handles never block each other.
type Manager struct {
	table *handles.Table
	pool  *procPool

	openConcurrency int
}

// ManagerOptions configures manager behavior.
type ManagerOptions struct {
	// ProcessorPoolSize is the maximum number of recycled LibRaw
	// processors kept for reuse by later opens. Zero disables pooling.
	ProcessorPoolSize int

	// OpenConcurrency bounds the number of parallel opens in OpenMany.
	// Zero means runtime.NumCPU().
	OpenConcurrency int
}

// ManagerOption is a functional option for configuring a manager.
type ManagerOption func(*ManagerOptions)

// WithProcessorPool keeps up to n recycled LibRaw processors for reuse
// by later opens. Handles are never reused; only the native allocation is.
func WithProcessorPool(n int) ManagerOption {
	return func(o *ManagerOptions) {
		o.ProcessorPoolSize = n
	}
}

// WithOpenConcurrency bounds the number of parallel opens in OpenMany.
func WithOpenConcurrency(n int) ManagerOption {
	return func(o *ManagerOptions) {
		o.OpenConcurrency = n
	}
}

// NewManager creates an empty manager.
func NewManager(options ...ManagerOption) *Manager {
	opts := &ManagerOptions{}
	for _, opt := range options {
		opt(opts)
	}

	concurrency := opts.OpenConcurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &Manager{
		table:           handles.New(),
		pool:            newProcPool(opts.ProcessorPoolSize),
		openConcurrency: concurrency,
	}
}

// Open opens and unpacks a raw file and returns the handle naming the
// new session. On failure at either stage no handle is allocated, no
// entry is inserted, and the error is an *OpenError identifying the
// failed stage.
//
// Concurrent opens are independent; only the brief map insert is
// serialized.
func (m *Manager) Open(path string) (uint64, error) {
	if err := bindings.Load(); err != nil {
		return 0, err
	}

	s, err := openSession(path, m.pool)
	if err != nil {
		return 0, err
	}

	return m.table.Put(s), nil
}

// OpenMany opens multiple raw files concurrently.
//
// Handles are returned in the same order as the input paths. If any
// file fails to open, all sessions opened by this call are released
// and an error is returned.
func (m *Manager) OpenMany(ctx context.Context, paths ...string) ([]uint64, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.openConcurrency)

	results := make([]uint64, len(paths))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			// Check for cancellation
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			h, err := m.Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			results[i] = h
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Release any sessions this call managed to open
		for _, h := range results {
			if h != 0 {
				m.Release(h)
			}
		}
		return nil, err
	}

	return results, nil
}

// Release removes and destroys the session named by h. Releasing an
// unknown or already-released handle is a silent no-op; a handle value
// is never reissued after release.
func (m *Manager) Release(h uint64) {
	v, ok := m.table.Remove(h)
	if !ok {
		return
	}
	v.(*session).close(m.pool)
}

// Metadata reads the shooting-info record of the session named by h.
// Idempotent: repeated calls on the same live handle return identical
// records. Fails with *InvalidHandleError if h has no live session.
func (m *Manager) Metadata(h uint64) (Metadata, error) {
	s, err := m.lookup(h)
	if err != nil {
		return Metadata{}, err
	}

	meta, err := s.metadata()
	if errors.Is(err, errSessionClosed) {
		return Metadata{}, &InvalidHandleError{Handle: h}
	}
	return meta, err
}

// Thumbnail extracts the embedded preview of the session named by h as
// an owned byte slice, exactly as the camera encoded it (no
// re-encoding, typically a JPEG stream). Fails with
// *InvalidHandleError if h has no live session, or *ThumbnailError if
// the source carries no usable preview; in the latter case h stays
// valid for further operations.
func (m *Manager) Thumbnail(h uint64) ([]byte, error) {
	s, err := m.lookup(h)
	if err != nil {
		return nil, err
	}

	data, err := s.thumbnail()
	switch {
	case err == nil:
		return data, nil
	case errors.Is(err, errSessionClosed):
		return nil, &InvalidHandleError{Handle: h}
	default:
		return nil, &ThumbnailError{Handle: h, Err: err}
	}
}

// Len returns the number of live sessions.
// Useful for debugging and testing resource leaks.
func (m *Manager) Len() int {
	return m.table.Len()
}

// Close releases every live session and destroys any pooled
// processors. The manager stays usable afterwards, but callers
// normally invoke it once at process teardown.
func (m *Manager) Close() error {
	for _, v := range m.table.Drain() {
		v.(*session).close(nil)
	}
	m.pool.close()
	return nil
}

func (m *Manager) lookup(h uint64) (*session, error) {
	v, ok := m.table.Get(h)
	if !ok {
		return nil, &InvalidHandleError{Handle: h}
	}
	return v.(*session), nil
}

// defaultManager backs the package-level functions. It is an ordinary
// manager, not hidden init magic; embedders that want isolated handle
// spaces construct their own with NewManager.
var defaultManager = NewManager()

// Open opens a raw file on the default manager. See Manager.Open.
func Open(path string) (uint64, error) {
	return defaultManager.Open(path)
}

// OpenMany opens multiple raw files concurrently on the default
// manager. See Manager.OpenMany.
func OpenMany(ctx context.Context, paths ...string) ([]uint64, error) {
	return defaultManager.OpenMany(ctx, paths...)
}

// Release releases a handle on the default manager. See Manager.Release.
func Release(h uint64) {
	defaultManager.Release(h)
}

// GetMetadata reads shooting info for a handle on the default manager.
// See Manager.Metadata.
func GetMetadata(h uint64) (Metadata, error) {
	return defaultManager.Metadata(h)
}

// GetThumbnail extracts the embedded preview for a handle on the
// default manager. See Manager.Thumbnail.
func GetThumbnail(h uint64) ([]byte, error) {
	return defaultManager.Thumbnail(h)
}
