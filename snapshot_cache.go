package main

import (
	"sync"

	"lg/stride-api/internal/engine"
)

// snapshotCache holds the latest Metrics per user. Snapshots are immutable
// values; writes to a user's data drop their entry so the next read recomputes.
//
// Each user has a generation counter bumped by invalidate. A compute that
// started before an invalidation must not overwrite the cache with a stale
// snapshot, so put only stores when the generation is unchanged.
type snapshotCache struct {
	mu    sync.RWMutex
	byUID map[int]engine.Metrics
	gen   map[int]uint64
}

func newSnapshotCache() *snapshotCache {
	return &snapshotCache{
		byUID: make(map[int]engine.Metrics),
		gen:   make(map[int]uint64),
	}
}

func (c *snapshotCache) get(userID int) (engine.Metrics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byUID[userID]
	return m, ok
}

// generation returns the token to pass to put after computing.
func (c *snapshotCache) generation(userID int) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen[userID]
}

// put stores m unless the user was invalidated since gen was read.
func (c *snapshotCache) put(userID int, gen uint64, m engine.Metrics) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[userID] != gen {
		return false
	}
	c.byUID[userID] = m
	return true
}

func (c *snapshotCache) invalidate(userID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byUID, userID)
	c.gen[userID]++
}
