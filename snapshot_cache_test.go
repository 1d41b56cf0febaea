package main

import (
	"sync"
	"testing"
	"time"

	"lg/stride-api/internal/engine"
)

func snapshotFor(day time.Time) engine.Metrics {
	return engine.Metrics{ComputedFor: engine.Day(day)}
}

func TestSnapshotCache_PutGet(t *testing.T) {
	c := newSnapshotCache()
	if _, ok := c.get(1); ok {
		t.Fatal("expected miss on empty cache")
	}

	gen := c.generation(1)
	if !c.put(1, gen, snapshotFor(testToday)) {
		t.Fatal("put with current generation was rejected")
	}
	m, ok := c.get(1)
	if !ok || !m.ComputedFor.Equal(testToday) {
		t.Errorf("get = (%v, %v), want snapshot for %v", m.ComputedFor, ok, testToday)
	}
	if _, ok := c.get(2); ok {
		t.Error("other users must not see user 1's snapshot")
	}
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	c := newSnapshotCache()
	c.put(1, c.generation(1), snapshotFor(testToday))
	c.put(2, c.generation(2), snapshotFor(testToday))

	c.invalidate(1)

	if _, ok := c.get(1); ok {
		t.Error("expected user 1 to be evicted")
	}
	if _, ok := c.get(2); !ok {
		t.Error("invalidate must only evict the given user")
	}
}

// TestSnapshotCache_StalePutRejected covers a compute that straddles a write:
// the snapshot built from pre-write data must not land in the cache.
func TestSnapshotCache_StalePutRejected(t *testing.T) {
	c := newSnapshotCache()
	gen := c.generation(1)

	c.invalidate(1) // a write lands while the compute is running

	if c.put(1, gen, snapshotFor(testToday)) {
		t.Fatal("stale put was accepted")
	}
	if _, ok := c.get(1); ok {
		t.Error("stale snapshot is visible")
	}

	if !c.put(1, c.generation(1), snapshotFor(testToday)) {
		t.Error("fresh put was rejected")
	}
}

func TestSnapshotCache_Concurrent(t *testing.T) {
	c := newSnapshotCache()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(uid int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.put(uid%5, c.generation(uid%5), snapshotFor(testToday))
				c.get(uid % 5)
				if j%10 == 0 {
					c.invalidate(uid % 5)
				}
			}
		}(i)
	}
	wg.Wait()
}
