package cache_test

import (
	"testing"
	"time"

	"ytbrain/internal/cache"
)

func TestCacheGetSet(t *testing.T) {
	c := cache.New[string](time.Hour)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("empty cache returned a hit")
	}

	c.Set("k", "v1")
	if got, ok := c.Get("k"); !ok || got != "v1" {
		t.Fatalf("Get = %q/%v, want v1/true", got, ok)
	}

	c.Set("k", "v2")
	if got, _ := c.Get("k"); got != "v2" {
		t.Fatalf("overwrite not applied: %q", got)
	}

	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestCacheExpires(t *testing.T) {
	c := cache.New[int](20 * time.Millisecond)
	c.Set("k", 42)

	if got, ok := c.Get("k"); !ok || got != 42 {
		t.Fatalf("fresh entry missing: %d/%v", got, ok)
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry still served")
	}
}
