//go:build !ios && !android && (amd64 || arm64)

package rawgo

import (
	"sync"

	"github.com/obinnaokechukwu/rawgo/libraw"
)

// session binds one LibRaw processor to one opened, unpacked raw file.
// It is owned exclusively by the manager entry keyed by its handle.
//
// The session mutex serializes concurrent operations against the same
// handle: LibRaw processor state is mutable (unpack_thumb writes into
// it), so per-session access is exclusive. Operations on different
// handles never contend.
type session struct {
	mu            sync.Mutex
	proc          libraw.Processor
	thumbUnpacked bool
	closed        bool
}

// openSession opens and unpacks path on a processor taken from pool
// (or freshly allocated). On failure at either stage the processor is
// returned to the pool or destroyed; nothing leaks and no session is
// created.
func openSession(path string, pool *procPool) (*session, error) {
	proc, ok := pool.get()
	if !ok {
		var err error
		proc, err = libraw.NewProcessor()
		if err != nil {
			return nil, err
		}
	}

	if err := libraw.OpenFile(proc, path); err != nil {
		discardProcessor(proc, pool)
		return nil, &OpenError{Path: path, Stage: StageOpen, Err: err}
	}
	if err := libraw.Unpack(proc); err != nil {
		discardProcessor(proc, pool)
		return nil, &OpenError{Path: path, Stage: StageUnpack, Err: err}
	}

	return &session{proc: proc}, nil
}

// discardProcessor recycles proc back into the pool, or destroys it if
// the pool is absent or full.
func discardProcessor(proc libraw.Processor, pool *procPool) {
	libraw.Recycle(proc)
	if pool.put(proc) {
		return
	}
	libraw.Close(&proc)
}

// metadata reads the shooting-info record from the unpacked state.
// Read-only; repeatable with identical results while the session lives.
func (s *session) metadata() (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Metadata{}, errSessionClosed
	}

	return Metadata{
		Make:        libraw.CameraMake(s.proc),
		Model:       libraw.CameraModel(s.proc),
		ISO:         libraw.ISOSpeed(s.proc),
		Shutter:     libraw.Shutter(s.proc),
		Aperture:    libraw.Aperture(s.proc),
		FocalLength: libraw.FocalLength(s.proc),
	}, nil
}

// thumbnail extracts the embedded preview as an owned byte copy.
// The LibRaw-side buffer is cleared on every exit path; no native
// memory outlives the call.
func (s *session) thumbnail() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errSessionClosed
	}

	if !s.thumbUnpacked {
		if err := libraw.UnpackThumb(s.proc); err != nil {
			return nil, err
		}
		s.thumbUnpacked = true
	}

	img, err := libraw.MakeMemThumb(s.proc)
	if err != nil {
		return nil, err
	}
	defer libraw.ClearMem(img)

	data := libraw.ProcessedData(img)
	if len(data) == 0 {
		return nil, libraw.NewError(libraw.ErrNoThumbnail, "libraw_dcraw_make_mem_thumb")
	}
	return data, nil
}

// close destroys the session's native state exactly once. The
// processor is recycled first (soft reset), then either parked in the
// pool for reuse by a later open or destroyed.
func (s *session) close(pool *procPool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	proc := s.proc
	s.proc = nil
	discardProcessor(proc, pool)
}
