// Package session caches per-caller routing sessions. A session is keyed by
// the caller's scope plus the verbose flag, so a tenant session can never be
// handed to another tenant or to an elevated caller, and verbose and terse
// runs keep separate state.
package session

import (
	"container/list"
	"sync"
	"time"

	"districtlens/internal/access"
)

// DefaultCacheSize bounds the cache when no size is configured.
const DefaultCacheSize = 256

// Key identifies a session. Two requests share a session only when every
// field matches.
type Key struct {
	Kind     access.Kind
	TenantID string
	Verbose  bool
}

// KeyFor derives the cache key for a scope.
func KeyFor(scope access.Scope, verbose bool) Key {
	k := Key{Kind: scope.Kind(), Verbose: verbose}
	if id, ok := scope.TenantID(); ok {
		k.TenantID = id
	}
	return k
}

// Session carries per-caller state across requests.
type Session struct {
	mu        sync.Mutex
	scope     access.Scope
	verbose   bool
	createdAt time.Time
	lastUsed  time.Time
	requests  int
}

func newSession(scope access.Scope, verbose bool) *Session {
	now := time.Now()
	return &Session{scope: scope, verbose: verbose, createdAt: now, lastUsed: now}
}

// Scope returns the scope the session was created for.
func (s *Session) Scope() access.Scope { return s.scope }

// Verbose reports whether the session was created for verbose output.
func (s *Session) Verbose() bool { return s.verbose }

// Touch records a request against the session.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	s.requests++
}

// Requests returns how many requests the session has served.
func (s *Session) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Cache is a bounded LRU of sessions. Concurrent callers with the same key
// get the same session; the least recently used entry is evicted when the
// cache is full.
type Cache struct {
	mu      sync.Mutex
	size    int
	order   *list.List
	entries map[Key]*list.Element
}

type cacheEntry struct {
	key     Key
	session *Session
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		size:    size,
		order:   list.New(),
		entries: make(map[Key]*list.Element, size),
	}
}

// GetOrCreate returns the session for the scope, creating it on first use.
func (c *Cache) GetOrCreate(scope access.Scope, verbose bool) *Session {
	key := KeyFor(scope, verbose)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).session
	}

	if c.order.Len() >= c.size {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	sess := newSession(scope, verbose)
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, session: sess})
	return sess
}

// Len returns the number of cached sessions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Purge drops every cached session.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[Key]*list.Element, c.size)
}
