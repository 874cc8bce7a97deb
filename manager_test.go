//go:build !ios && !android && (amd64 || arm64)

package rawgo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestOpenNonexistent(t *testing.T) {
	requireLibRaw(t)

	m := NewManager()
	defer m.Close()

	_, err := m.Open("/nonexistent/dir/shot.nef")
	if err == nil {
		t.Fatal("Open on nonexistent path should fail")
	}
	if !IsOpenFailed(err) {
		t.Errorf("expected *OpenError, got %T: %v", err, err)
	}

	var oe *OpenError
	if errors.As(err, &oe) && oe.Stage != StageOpen {
		t.Errorf("Stage = %q, want %q", oe.Stage, StageOpen)
	}

	if m.Len() != 0 {
		t.Errorf("failed open must not insert an entry; Len = %d", m.Len())
	}
}

func TestOpenCorrupt(t *testing.T) {
	requireLibRaw(t)

	path := filepath.Join(t.TempDir(), "garbage.nef")
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x5a}, 4096), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	defer m.Close()

	_, err := m.Open(path)
	if err == nil {
		t.Fatal("Open on garbage bytes should fail")
	}
	if !IsOpenFailed(err) {
		t.Errorf("expected *OpenError, got %T: %v", err, err)
	}
	if m.Len() != 0 {
		t.Errorf("failed open must not insert an entry; Len = %d", m.Len())
	}
}

func TestInvalidHandleOperations(t *testing.T) {
	requireLibRaw(t)

	m := NewManager()
	defer m.Close()

	if _, err := m.Metadata(999); !IsInvalidHandle(err) {
		t.Errorf("Metadata on bogus handle = %v, want InvalidHandleError", err)
	}
	if _, err := m.Thumbnail(999); !IsInvalidHandle(err) {
		t.Errorf("Thumbnail on bogus handle = %v, want InvalidHandleError", err)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	requireLibRaw(t)

	m := NewManager()
	defer m.Close()

	// Never-issued handle: silent no-op
	m.Release(12345)
	m.Release(12345)

	path := testRawFile(t)
	h, err := m.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	m.Release(h)
	m.Release(h) // already released: silent no-op

	if m.Len() != 0 {
		t.Errorf("Len = %d after release, want 0", m.Len())
	}
}

func TestMetadataRepeatable(t *testing.T) {
	requireLibRaw(t)
	path := testRawFile(t)

	m := NewManager()
	defer m.Close()

	h, err := m.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	first, err := m.Metadata(h)
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	second, err := m.Metadata(h)
	if err != nil {
		t.Fatalf("second Metadata failed: %v", err)
	}

	if first != second {
		t.Errorf("repeated Metadata differs:\n first: %+v\nsecond: %+v", first, second)
	}
}

func TestHandlesDistinctAcrossOpens(t *testing.T) {
	requireLibRaw(t)
	path := testRawFile(t)

	m := NewManager()
	defer m.Close()

	seen := make(map[uint64]bool)
	var prev uint64
	for i := 0; i < 5; i++ {
		h, err := m.Open(path)
		if err != nil {
			t.Fatalf("Open #%d failed: %v", i, err)
		}
		if seen[h] {
			t.Fatalf("handle %d issued twice", h)
		}
		if h <= prev {
			t.Fatalf("handle %d issued after %d; must be strictly increasing", h, prev)
		}
		seen[h] = true
		prev = h

		// Release half of them; released values must never come back
		if i%2 == 0 {
			m.Release(h)
		}
	}
}

func TestConcurrentOpens(t *testing.T) {
	requireLibRaw(t)
	path := testRawFile(t)

	m := NewManager()
	defer m.Close()

	const n = 8
	results := make([]uint64, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			h, err := m.Open(path)
			if err != nil {
				t.Errorf("concurrent Open failed: %v", err)
				return
			}
			results[i] = h
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for _, h := range results {
		if h == 0 {
			continue
		}
		if seen[h] {
			t.Errorf("handle %d issued twice", h)
		}
		seen[h] = true

		// Each session must be independently correct
		if _, err := m.Metadata(h); err != nil {
			t.Errorf("Metadata(%d) failed: %v", h, err)
		}
	}
}

func TestSessionsDoNotCrossContaminate(t *testing.T) {
	requireLibRaw(t)
	path := testRawFile(t)

	m := NewManager()
	defer m.Close()

	h1, err := m.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	h2, err := m.Open(path)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two opens produced the same handle %d", h1)
	}

	meta1, err := m.Metadata(h1)
	if err != nil {
		t.Fatalf("Metadata(h1) failed: %v", err)
	}

	// Releasing one session must not disturb the other
	m.Release(h2)

	meta1again, err := m.Metadata(h1)
	if err != nil {
		t.Fatalf("Metadata(h1) after Release(h2) failed: %v", err)
	}
	if meta1 != meta1again {
		t.Errorf("metadata changed after releasing a different handle")
	}
}

func TestOpenMany(t *testing.T) {
	requireLibRaw(t)
	path := testRawFile(t)

	m := NewManager(WithOpenConcurrency(2))
	defer m.Close()

	hs, err := m.OpenMany(context.Background(), path, path, path)
	if err != nil {
		t.Fatalf("OpenMany failed: %v", err)
	}
	if len(hs) != 3 {
		t.Fatalf("got %d handles, want 3", len(hs))
	}
	for _, h := range hs {
		if _, err := m.Metadata(h); err != nil {
			t.Errorf("Metadata(%d) failed: %v", h, err)
		}
	}
}

func TestOpenManyAllOrNothing(t *testing.T) {
	requireLibRaw(t)
	path := testRawFile(t)

	m := NewManager()
	defer m.Close()

	_, err := m.OpenMany(context.Background(), path, "/nonexistent/shot.nef")
	if err == nil {
		t.Fatal("OpenMany with a bad path should fail")
	}
	if m.Len() != 0 {
		t.Errorf("failed OpenMany should release its opened sessions; Len = %d", m.Len())
	}
}

func TestOpenManyEmpty(t *testing.T) {
	m := NewManager()
	defer m.Close()

	hs, err := m.OpenMany(context.Background())
	if err != nil {
		t.Errorf("OpenMany() = %v, want nil error", err)
	}
	if hs != nil {
		t.Errorf("OpenMany() = %v, want nil", hs)
	}
}

func TestManagerClose(t *testing.T) {
	requireLibRaw(t)
	path := testRawFile(t)

	m := NewManager()

	h, err := m.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := m.Metadata(h); !IsInvalidHandle(err) {
		t.Errorf("Metadata after manager Close = %v, want InvalidHandleError", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after Close, want 0", m.Len())
	}
}

func TestProcessorPoolReuse(t *testing.T) {
	requireLibRaw(t)
	path := testRawFile(t)

	m := NewManager(WithProcessorPool(2))
	defer m.Close()

	h, err := m.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m.Release(h)

	if m.pool.size() != 1 {
		t.Errorf("pool size = %d after release, want 1", m.pool.size())
	}

	// Second open drains the pool and must behave identically
	h2, err := m.Open(path)
	if err != nil {
		t.Fatalf("Open from pool failed: %v", err)
	}
	if h2 <= h {
		t.Errorf("pooled processor must still get a fresh handle: %d after %d", h2, h)
	}
	if m.pool.size() != 0 {
		t.Errorf("pool size = %d after reuse, want 0", m.pool.size())
	}

	meta, err := m.Metadata(h2)
	if err != nil {
		t.Fatalf("Metadata on pooled session failed: %v", err)
	}
	if meta.Make == "" {
		t.Error("pooled session returned empty metadata")
	}
}
