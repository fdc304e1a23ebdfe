package session

import (
	"fmt"
	"sync"
	"testing"

	"districtlens/internal/access"
)

func tenant(t *testing.T, id string) access.Scope {
	t.Helper()
	s, err := access.Tenant(id)
	if err != nil {
		t.Fatalf("Tenant(%q): %v", id, err)
	}
	return s
}

func TestCacheReturnsSameSessionForSameKey(t *testing.T) {
	cache := NewCache(8)
	scope := tenant(t, "d1")

	first := cache.GetOrCreate(scope, false)
	second := cache.GetOrCreate(scope, false)
	if first != second {
		t.Fatal("same scope and verbosity should share a session")
	}
	if cache.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", cache.Len())
	}
}

func TestCacheIsolatesTenants(t *testing.T) {
	cache := NewCache(8)

	d1 := cache.GetOrCreate(tenant(t, "d1"), false)
	d2 := cache.GetOrCreate(tenant(t, "d2"), false)
	elevated := cache.GetOrCreate(access.Elevated(), false)

	if d1 == d2 {
		t.Fatal("different tenants must not share a session")
	}
	if d1 == elevated || d2 == elevated {
		t.Fatal("tenant and elevated scopes must not share a session")
	}
	if id, _ := d1.Scope().TenantID(); id != "d1" {
		t.Fatalf("session scope = %q, want d1", id)
	}
}

func TestCacheSeparatesVerbosity(t *testing.T) {
	cache := NewCache(8)
	scope := tenant(t, "d1")

	terse := cache.GetOrCreate(scope, false)
	verbose := cache.GetOrCreate(scope, true)
	if terse == verbose {
		t.Fatal("verbose flag must be part of the session key")
	}
	if !verbose.Verbose() || terse.Verbose() {
		t.Fatal("sessions should remember their verbosity")
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewCache(2)

	a := cache.GetOrCreate(tenant(t, "a"), false)
	cache.GetOrCreate(tenant(t, "b"), false)

	// Touch a so b becomes the eviction candidate.
	if got := cache.GetOrCreate(tenant(t, "a"), false); got != a {
		t.Fatal("expected cached session for a")
	}

	cache.GetOrCreate(tenant(t, "c"), false)
	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}

	if got := cache.GetOrCreate(tenant(t, "a"), false); got != a {
		t.Fatal("a should have survived eviction")
	}
	// b was evicted, so this creates a fresh session and evicts c.
	fresh := cache.GetOrCreate(tenant(t, "b"), false)
	if fresh.Requests() != 0 {
		t.Fatal("expected a fresh session for b after eviction")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache := NewCache(16)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				scope, err := access.Tenant(fmt.Sprintf("d%d", i%4))
				if err != nil {
					t.Error(err)
					return
				}
				sess := cache.GetOrCreate(scope, j%2 == 0)
				sess.Touch()
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() > 16 {
		t.Fatalf("Len() = %d, want <= 16", cache.Len())
	}
}

func TestPurge(t *testing.T) {
	cache := NewCache(4)
	cache.GetOrCreate(tenant(t, "d1"), false)
	cache.GetOrCreate(access.Elevated(), true)
	cache.Purge()
	if cache.Len() != 0 {
		t.Fatalf("Len() after Purge = %d, want 0", cache.Len())
	}
}
