//go:build !ios && !android && (amd64 || arm64)

package rawgo

import (
	"sync"

	"github.com/obinnaokechukwu/rawgo/libraw"
)

// procPool parks recycled LibRaw processors for reuse, avoiding the
// allocation cost of libraw_init on every open. Processors are always
// recycled (soft reset) before they go in, so a pooled processor
// carries no state from the file it previously held.
//
// A nil pool is valid and simply never stores anything.
type procPool struct {
	mu     sync.Mutex
	idle   []libraw.Processor
	max    int
	closed bool
}

// newProcPool creates a pool holding at most max idle processors.
// Returns nil if max <= 0 (pooling disabled).
func newProcPool(max int) *procPool {
	if max <= 0 {
		return nil
	}
	return &procPool{max: max}
}

// get returns a parked processor, if any.
func (p *procPool) get() (libraw.Processor, bool) {
	if p == nil {
		return nil, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.idle)
	if p.closed || n == 0 {
		return nil, false
	}
	proc := p.idle[n-1]
	p.idle[n-1] = nil
	p.idle = p.idle[:n-1]
	return proc, true
}

// put parks an already-recycled processor. Returns false if the pool is
// nil, closed, or full; the caller then destroys the processor.
func (p *procPool) put(proc libraw.Processor) bool {
	if p == nil || proc == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || len(p.idle) >= p.max {
		return false
	}
	p.idle = append(p.idle, proc)
	return true
}

// close destroys all parked processors. Further puts are refused.
func (p *procPool) close() {
	if p == nil {
		return
	}

	p.mu.Lock()
	idle := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()

	for _, proc := range idle {
		libraw.Close(&proc)
	}
}

// size reports the number of parked processors.
func (p *procPool) size() int {
	if p == nil {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}
