package cache

import (
	"testing"
	"time"
)

func TestGetBeforeAndAfterTTL(t *testing.T) {
	c := New(10, 50*time.Millisecond)

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v.(string) != "v" {
		t.Fatalf("expected hit with %q, got %v %v", "v", v, ok)
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after TTL expiry")
	}
	// Expired entry is removed on read.
	if c.Size() != 0 {
		t.Errorf("expected size 0 after expiry read, got %d", c.Size())
	}
}

func TestCapacityEvictsLRU(t *testing.T) {
	c := New(2, time.Hour)

	c.Set("k1", "v1")
	c.Set("k2", "v2")
	c.Set("k3", "v3")

	if _, ok := c.Get("k1"); ok {
		t.Error("expected k1 (least recently used) to be evicted")
	}
	if v, ok := c.Get("k2"); !ok || v.(string) != "v2" {
		t.Errorf("expected k2 present, got %v %v", v, ok)
	}
	if v, ok := c.Get("k3"); !ok || v.(string) != "v3" {
		t.Errorf("expected k3 present, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}
}

func TestReadRefreshesRecency(t *testing.T) {
	c := New(2, time.Hour)

	c.Set("k1", "v1")
	c.Set("k2", "v2")
	c.Get("k1") // k2 is now least recently used
	c.Set("k3", "v3")

	if _, ok := c.Get("k2"); ok {
		t.Error("expected k2 to be evicted after k1 was read")
	}
	if _, ok := c.Get("k1"); !ok {
		t.Error("expected k1 to survive")
	}
}

func TestSetExistingRefreshes(t *testing.T) {
	c := New(2, time.Hour)

	c.Set("k1", "v1")
	c.Set("k2", "v2")
	c.Set("k1", "v1b") // refresh value and recency
	c.Set("k3", "v3")

	if _, ok := c.Get("k2"); ok {
		t.Error("expected k2 to be evicted, not the refreshed k1")
	}
	if v, _ := c.Get("k1"); v != "v1b" {
		t.Errorf("expected refreshed value v1b, got %v", v)
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}
}

func TestClear(t *testing.T) {
	c := New(10, time.Hour)
	c.Set("k1", 1)
	c.Set("k2", 2)

	c.Clear()

	if c.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", c.Size())
	}
	if _, ok := c.Get("k1"); ok {
		t.Error("expected miss after clear")
	}
}

func TestStats(t *testing.T) {
	c := New(10, time.Hour)
	c.Set("k1", 1)
	c.Get("k1") // hit
	c.Get("k2") // miss

	s := c.Stats()
	if s.Entries != 1 || s.Hits != 1 || s.Misses != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
}

func TestKeyDeterminism(t *testing.T) {
	k1 := Key("quote", "AAPL", 5)
	k2 := Key("quote", "AAPL", 5)
	k3 := Key("quote", "MSFT", 5)
	k4 := Key("news", "AAPL", 5)

	if k1 != k2 {
		t.Error("same op and args should produce the same key")
	}
	if k1 == k3 {
		t.Error("different args should produce different keys")
	}
	if k1 == k4 {
		t.Error("different ops should produce different keys")
	}
}
