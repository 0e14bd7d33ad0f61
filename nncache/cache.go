// Package nncache implements the bounded, associative evaluator cache from
// spec §4.3: a fixed-capacity map from 64-bit position-history fingerprint
// to a cached {value, priors} entry, LRU-evicted, safe for concurrent
// readers and writers, with capacity reconfigurable online. It is grounded
// on the teacher's endgame/negamax/transposition_table.go — an
// array-indexed table keyed by hash with capacity sized off available
// memory — generalized from that file's fixed 16-byte scalar entries to
// entries that also carry a variable-length policy slice.
package nncache

import (
	"container/list"
	"sync"

	"github.com/pbnjay/memory"
)

// MovePrior is one child move's prior probability, keyed by its dense
// nn-index (chess.Move.NNIndex).
type MovePrior struct {
	NNIndex uint16
	Prior   float32
}

// Entry is a cached evaluator output for one position-history fingerprint.
type Entry struct {
	Value float32
	Moves []MovePrior
}

// estimatedEntryBytes is used only for the memory-based autosize heuristic;
// it does not need to be exact, only in the right ballpark (see
// transposition_table.go's own use of pbnjay/memory for the same purpose).
const estimatedEntryBytes = 96

// AutoCapacity picks a cache capacity from a fraction of total system
// memory, mirroring the teacher's own "how much RAM do we actually have"
// defensiveness in transposition_table.go. The engine's nncache option does
// not call it: an nncache value of 0 gives capacity 0, which disables
// caching (see New).
func AutoCapacity(fractionOfTotal float64) int {
	total := memory.TotalMemory()
	if total == 0 {
		return 200000
	}
	budget := float64(total) * fractionOfTotal
	cap := int(budget / estimatedEntryBytes)
	if cap < 1000 {
		cap = 1000
	}
	return cap
}

type node struct {
	key   uint64
	entry Entry
}

// Cache is a fixed-capacity LRU cache from fingerprint to Entry. All
// exported methods are safe for concurrent use by multiple search workers
// (spec §4.3's concurrency requirement); a single mutex guards both the
// index map and the LRU list, matching the "internal fine-grained locking"
// language of spec §5's resource table (a lock this narrow and this
// short-held does not need finer granularity than one mutex per cache).
type Cache struct {
	mu       sync.Mutex
	capacity int
	index    map[uint64]*list.Element
	order    *list.List // front = most recently used
}

// New creates a cache with the given capacity. A capacity of 0 disables
// caching (every lookup misses, every insert is a no-op) rather than
// panicking, so a misconfigured option degrades gracefully.
func New(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		index:    make(map[uint64]*list.Element, capacity),
		order:    list.New(),
	}
}

// Contains reports whether key is cached, without affecting recency.
func (c *Cache) Contains(key uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.index[key]
	return ok
}

// Get returns the cached entry for key, if present, and marks it as
// recently used.
func (c *Cache) Get(key uint64) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return Entry{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*node).entry, true
}

// Insert adds or replaces the entry for key, evicting the least-recently
// used entry if the cache is at capacity.
func (c *Cache) Insert(key uint64, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capacity <= 0 {
		return
	}
	if el, ok := c.index[key]; ok {
		el.Value.(*node).entry = entry
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&node{key: key, entry: entry})
	c.index[key] = el
	for c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *Cache) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	c.order.Remove(oldest)
	delete(c.index, oldest.Value.(*node).key)
}

// SetCapacity reconfigures capacity online; a shrink evicts least-recently
// used entries until the new capacity is met (spec §4.3).
func (c *Cache) SetCapacity(capacity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = capacity
	for c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// Size returns the current number of cached entries.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the configured capacity.
func (c *Cache) Capacity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// Hashfull returns size/capacity in per-mille, the "hashfull" UCI info
// field (spec §6).
func (c *Cache) Hashfull() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.capacity == 0 {
		return 0
	}
	return c.order.Len() * 1000 / c.capacity
}

// Clear empties the cache, used on ucinewgame (spec §4.8).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = make(map[uint64]*list.Element, c.capacity)
	c.order = list.New()
}
