package cache

import (
	"testing"
	"time"
)

func TestTTLExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[string, int](time.Minute, 0)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %v, %v; want 1, true", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should have expired")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be dropped, len = %d", c.Len())
	}
}

func TestTTLMaxLen(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[int, string](time.Minute, 2)
	c.now = func() time.Time { return now }

	c.Set(1, "one")
	now = now.Add(2 * time.Minute)
	c.Set(2, "two")
	c.Set(3, "three") // prunes 1

	if _, ok := c.Get(1); ok {
		t.Fatalf("1 should have been pruned")
	}
	if v, ok := c.Get(2); !ok || v != "two" {
		t.Fatalf("2 should survive pruning")
	}

	c.Set(4, "four") // full of live entries, resets
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}

	c.Delete(4)
	if _, ok := c.Get(4); ok {
		t.Fatalf("4 should be deleted")
	}
}
