package handles

import (
	"sync"
	"testing"
)

func TestPutAndGet(t *testing.T) {
	type testData struct {
		Name  string
		Value int
	}

	tbl := New()

	data := &testData{Name: "test", Value: 42}
	id := tbl.Put(data)

	if id == 0 {
		t.Error("Put should return non-zero handle")
	}

	got, ok := tbl.Get(id)
	if !ok {
		t.Fatal("Get should find the stored value")
	}

	gotData, ok := got.(*testData)
	if !ok {
		t.Fatalf("Get returned wrong type: %T", got)
	}

	if gotData.Name != "test" || gotData.Value != 42 {
		t.Errorf("Get returned wrong data: %+v", gotData)
	}
}

func TestFirstHandleIsOne(t *testing.T) {
	tbl := New()
	if id := tbl.Put("first"); id != 1 {
		t.Errorf("first handle = %d, want 1", id)
	}
}

func TestRemove(t *testing.T) {
	tbl := New()
	id := tbl.Put("test string")

	v, ok := tbl.Remove(id)
	if !ok {
		t.Fatal("Remove should find the stored value")
	}
	if v.(string) != "test string" {
		t.Errorf("Remove returned %v, want stored value", v)
	}

	if _, ok := tbl.Get(id); ok {
		t.Error("Get should fail after Remove")
	}

	// Removing again is a silent no-op
	if _, ok := tbl.Remove(id); ok {
		t.Error("second Remove should report not found")
	}
}

func TestGetNonExistent(t *testing.T) {
	tbl := New()
	if _, ok := tbl.Get(999999); ok {
		t.Error("Get of non-existent handle should report not found")
	}
}

func TestHandlesStrictlyIncreasing(t *testing.T) {
	tbl := New()

	var prev uint64
	for i := 0; i < 1000; i++ {
		id := tbl.Put(i)
		if id <= prev {
			t.Fatalf("handle %d issued after %d; ids must be strictly increasing", id, prev)
		}
		prev = id

		// Removal must not cause reuse
		if i%3 == 0 {
			tbl.Remove(id)
		}
	}
}

func TestDrain(t *testing.T) {
	tbl := New()
	for i := 0; i < 10; i++ {
		tbl.Put(i)
	}

	drained := tbl.Drain()
	if len(drained) != 10 {
		t.Errorf("Drain returned %d entries, want 10", len(drained))
	}
	if tbl.Len() != 0 {
		t.Errorf("Len = %d after Drain, want 0", tbl.Len())
	}

	// Ids keep increasing after a drain
	if id := tbl.Put("x"); id != 11 {
		t.Errorf("handle after Drain = %d, want 11", id)
	}
}

func TestConcurrentAccess(t *testing.T) {
	const numGoroutines = 100
	const numOps = 100

	tbl := New()

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				data := struct {
					ID  int
					Seq int
				}{id, j}
				h := tbl.Put(&data)
				if _, ok := tbl.Get(h); !ok {
					t.Errorf("Get failed for handle %d", h)
				}
				tbl.Remove(h)
			}
		}(i)
	}

	wg.Wait()

	if tbl.Len() != 0 {
		t.Errorf("Len = %d after all removes, want 0", tbl.Len())
	}
}

func TestHandlesAreUnique(t *testing.T) {
	tbl := New()
	seen := make(map[uint64]bool)

	for i := 0; i < 1000; i++ {
		h := tbl.Put(i)
		if seen[h] {
			t.Errorf("Handle %d was returned twice", h)
		}
		seen[h] = true
	}
}

func TestIndependentTables(t *testing.T) {
	a := New()
	b := New()

	ha := a.Put("a")
	hb := b.Put("b")

	if ha != hb {
		t.Errorf("independent tables should allocate from independent counters: %d vs %d", ha, hb)
	}
	if _, ok := b.Get(ha + 1); ok {
		t.Error("handle from one table should not resolve in another")
	}
}
