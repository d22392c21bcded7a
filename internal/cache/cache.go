// Package cache holds the in-memory, UI-bound entity collections that
// back the rendered board. Each mutation is one synchronous
// read-modify-write step under the collection's lock, which is the
// whole transaction boundary this client has.
package cache

import "sync"

// Entity is anything the collection can key by identifier.
type Entity interface {
	EntityID() string
}

// Collection is an ordered, identifier-keyed collection. Order is
// as-delivered on Replace (the gateway orders by recency), head
// insertion on Prepend, and preserved by every other operation.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	items []T
}

// New returns an empty collection.
func New[T Entity]() *Collection[T] {
	return &Collection[T]{}
}

// Replace swaps the full contents, keeping the given order.
func (c *Collection[T]) Replace(items []T) {
	copied := append([]T(nil), items...)
	c.mu.Lock()
	c.items = copied
	c.mu.Unlock()
}

// Prepend places the item at the head, the position an optimistic
// insert occupies until the next reload.
func (c *Collection[T]) Prepend(item T) {
	c.mu.Lock()
	c.items = append([]T{item}, c.items...)
	c.mu.Unlock()
}

// Apply mutates the entity with the given id in place and reports
// whether it was found.
func (c *Collection[T]) Apply(id string, mutate func(*T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].EntityID() == id {
			mutate(&c.items[i])
			return true
		}
	}
	return false
}

// Remove deletes the entities with the given ids, preserving the order
// of the rest, and returns how many were removed.
func (c *Collection[T]) Remove(ids ...string) int {
	lookup := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		lookup[id] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	removed := 0
	for _, item := range c.items {
		if _, drop := lookup[item.EntityID()]; drop {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
	return removed
}

// RemoveWhere deletes every entity matching the predicate and returns
// the removed identifiers in collection order.
func (c *Collection[T]) RemoveWhere(match func(T) bool) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	var removed []string
	for _, item := range c.items {
		if match(item) {
			removed = append(removed, item.EntityID())
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
	return removed
}

// Get returns the entity with the given id.
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Items returns a copy of the collection in order.
func (c *Collection[T]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

// Snapshot captures the pre-mutation state for an exact rollback.
func (c *Collection[T]) Snapshot() []T {
	return c.Items()
}

// Restore puts a snapshot back verbatim.
func (c *Collection[T]) Restore(snapshot []T) {
	c.Replace(snapshot)
}

// Len returns the number of entities.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Reset empties the collection. Used when a reload fails so the UI
// never silently shows stale data.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}
