// Package cache holds the optimistic progress counts a client displays while
// an authoritative mutation is in flight. A speculative delta is applied
// locally, then either committed when the mutation succeeds or reverted to
// the authoritative value when it fails or times out. The ledger stays the
// single source of truth; nothing here is ever read by the mutator or the
// rollover job.
package cache

import (
	"sync"
)

type entry struct {
	authoritative int
	pending       int
}

// ProgressCache is a write-through cache of per-entity counts with two-phase
// reconciliation. Safe for concurrent use.
type ProgressCache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewProgressCache() *ProgressCache {
	return &ProgressCache{
		entries: make(map[string]*entry),
	}
}

// Snapshot replaces the authoritative value for an entity, discarding any
// pending delta. Called after a fresh read from the ledger.
func (c *ProgressCache) Snapshot(entityID string, count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[entityID] = &entry{authoritative: count}
}

// Apply records a speculative delta on top of the authoritative value. The
// displayed count floors at zero, mirroring the ledger's clamp.
func (c *ProgressCache) Apply(entityID string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[entityID]
	if !ok {
		e = &entry{}
		c.entries[entityID] = e
	}
	e.pending += delta
}

// Commit folds the pending delta into the authoritative value after the
// backing mutation was confirmed.
func (c *ProgressCache) Commit(entityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[entityID]
	if !ok {
		return
	}
	e.authoritative = clamp(e.authoritative + e.pending)
	e.pending = 0
}

// Revert drops the pending delta, restoring the last authoritative value.
// Used when the mutation failed or its outcome is unknown; the caller should
// follow up with a fresh Snapshot.
func (c *ProgressCache) Revert(entityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[entityID]
	if !ok {
		return
	}
	e.pending = 0
}

// Count returns the displayed count: authoritative plus pending, floored at
// zero. The second return reports whether the entity is known at all.
func (c *ProgressCache) Count(entityID string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[entityID]
	if !ok {
		return 0, false
	}
	return clamp(e.authoritative + e.pending), true
}

// Forget removes an entity, e.g. after its subgoal was deleted.
func (c *ProgressCache) Forget(entityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, entityID)
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
