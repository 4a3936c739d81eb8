// Package cache keeps prepared statements keyed by their rendered SQL.
package cache

import (
	"database/sql"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultStmtCacheCapacity is the default maximum number of cached prepared statements.
const DefaultStmtCacheCapacity = 1000

// StmtCache stores prepared statements with LRU eviction. Evicted, replaced
// and purged statements are closed.
type StmtCache struct {
	capacity int
	lru      *lru.Cache[string, *sql.Stmt]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewStmtCache creates a cache with DefaultStmtCacheCapacity.
func NewStmtCache() *StmtCache {
	return NewStmtCacheWithCapacity(DefaultStmtCacheCapacity)
}

// NewStmtCacheWithCapacity creates a cache holding at most capacity
// statements. A non-positive capacity uses the default.
func NewStmtCacheWithCapacity(capacity int) *StmtCache {
	if capacity <= 0 {
		capacity = DefaultStmtCacheCapacity
	}
	sc := &StmtCache{capacity: capacity}
	// NewWithEvict only fails for a non-positive size.
	sc.lru, _ = lru.NewWithEvict[string, *sql.Stmt](capacity, sc.onEvict)
	return sc
}

func (sc *StmtCache) onEvict(_ string, stmt *sql.Stmt) {
	_ = stmt.Close()
	sc.evictions.Add(1)
}

// Get returns the statement prepared for key and marks it recently used.
func (sc *StmtCache) Get(key string) (*sql.Stmt, bool) {
	stmt, ok := sc.lru.Get(key)
	if !ok {
		sc.misses.Add(1)
		return nil, false
	}
	sc.hits.Add(1)
	return stmt, true
}

// Set stores stmt under key. A statement already cached under key is closed.
func (sc *StmtCache) Set(key string, stmt *sql.Stmt) {
	if old, ok := sc.lru.Peek(key); ok && old != stmt {
		sc.lru.Remove(key)
	}
	sc.lru.Add(key, stmt)
}

// Add stores stmt under key unless a statement is already cached there, and
// returns the cached statement. loaded is true when the existing statement
// was kept; the caller then owns stmt.
func (sc *StmtCache) Add(key string, stmt *sql.Stmt) (cached *sql.Stmt, loaded bool) {
	prev, ok, _ := sc.lru.PeekOrAdd(key, stmt)
	if ok {
		return prev, true
	}
	return stmt, false
}

// Discard removes key when it still maps to stmt. A statement closed by an
// eviction is dropped this way before it is prepared again.
func (sc *StmtCache) Discard(key string, stmt *sql.Stmt) {
	if cur, ok := sc.lru.Peek(key); ok && cur == stmt {
		sc.lru.Remove(key)
	}
}

// Len returns the number of cached statements.
func (sc *StmtCache) Len() int {
	return sc.lru.Len()
}

// Clear closes and removes every cached statement.
func (sc *StmtCache) Clear() {
	sc.lru.Purge()
}

// Stats holds cache performance metrics.
type Stats struct {
	Size      int     // Current number of cached statements.
	Capacity  int     // Maximum capacity.
	Hits      uint64  // Number of successful cache lookups.
	Misses    uint64  // Number of cache misses.
	Evictions uint64  // Number of closed statements, including replaced and purged ones.
	HitRate   float64 // Cache hit rate (hits / total requests).
}

// Stats returns cache statistics.
func (sc *StmtCache) Stats() Stats {
	hits := sc.hits.Load()
	misses := sc.misses.Load()

	hitRate := 0.0
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:      sc.lru.Len(),
		Capacity:  sc.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: sc.evictions.Load(),
		HitRate:   hitRate,
	}
}
