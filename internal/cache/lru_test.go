package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestLRUCache_GetSet(t *testing.T) {
	c := NewLRUCache[string](10, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Get() on empty cache should miss")
	}

	c.Set("a", "one")
	got, found := c.Get("a")
	if !found || got != "one" {
		t.Errorf("Get(a) = %q, %v, want one, true", got, found)
	}

	c.Set("a", "two")
	got, _ = c.Get("a")
	if got != "two" {
		t.Errorf("Get(a) after overwrite = %q, want two", got)
	}
}

func TestLRUCache_TTLExpiry(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("k", 42)
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Get() should miss after TTL expiry")
	}
	if c.Size() != 0 {
		t.Errorf("Size() after expired Get = %d, want 0", c.Size())
	}
}

func TestLRUCache_Eviction(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	for i := 0; i < 4; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}

	if c.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", c.Size())
	}
	if _, found := c.Get("k0"); found {
		t.Error("oldest entry should have been evicted")
	}
	if _, found := c.Get("k3"); !found {
		t.Error("newest entry should survive eviction")
	}
}

func TestLRUCache_RecentUseSurvivesEviction(t *testing.T) {
	c := NewLRUCache[int](3, time.Minute)

	c.Set("k0", 0)
	c.Set("k1", 1)
	c.Set("k2", 2)
	c.Get("k0") // promote
	c.Set("k3", 3)

	if _, found := c.Get("k0"); !found {
		t.Error("recently used entry should survive eviction")
	}
	if _, found := c.Get("k1"); found {
		t.Error("least recently used entry should have been evicted")
	}
}

func TestLRUCache_Delete(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("k", 1)
	c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("Get() after Delete should miss")
	}

	// Deleting a missing key is a no-op
	c.Delete("missing")
}

func TestLRUCache_CleanExpired(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(20 * time.Millisecond)
	c.Set("c", 3)

	removed := c.CleanExpired()
	if removed != 2 {
		t.Errorf("CleanExpired() = %d, want 2", removed)
	}
	if _, found := c.Get("c"); !found {
		t.Error("fresh entry should survive cleanup")
	}
}

func TestManager_Cleanup(t *testing.T) {
	c := NewLRUCache[int](10, time.Millisecond)
	m := NewManager()
	m.Register(c)

	c.Set("a", 1)
	m.StartCleanup(5 * time.Millisecond)
	time.Sleep(25 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("Size() after managed cleanup = %d, want 0", c.Size())
	}
}
