package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey_DeterministicAndDistinct(t *testing.T) {
	a := Key("registry", "depression", "DRUG")
	b := Key("registry", "depression", "DRUG")
	c := Key("registry", "depression", "BIOLOGICAL")

	if a != b {
		t.Error("Same parts must produce the same key")
	}
	if a == c {
		t.Error("Different parts must produce different keys")
	}
	if !strings.HasPrefix(a, "trialgate:v1:") {
		t.Errorf("Expected namespaced key, got %q", a)
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := Key("test", "a")
	if err := c.Set(key, []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := c.Get(key)
	if !found || string(got) != "value" {
		t.Errorf("Expected value, got %q found=%v", got, found)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("Expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := Key("test", "expiring")
	if err := c.Set(key, []byte("value"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if _, found := c.Get(key); found {
		t.Error("Expected entry to expire")
	}
}

func TestDiskCache_SurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()

	c1 := NewDiskCache(dir, time.Hour)
	key := Key("registry", "depression")
	if err := c1.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	c2 := NewDiskCache(dir, time.Hour)
	got, found := c2.Get(key)
	if !found || string(got) != "payload" {
		t.Errorf("Expected payload across instances, got %q found=%v", got, found)
	}
}

func TestDiskCache_ExpiredEntryRemoved(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	key := Key("test", "stale")
	if err := c.Set(key, []byte("old"), -time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, found := c.Get(key); found {
		t.Error("Expected expired entry to miss")
	}
	// The second get proves the file is gone, not just filtered.
	if _, found := c.Get(key); found {
		t.Error("Expected expired entry removed")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed only the disk layer.
	disk := NewDiskCache(dir, time.Hour)
	key := Key("registry", "seeded")
	if err := disk.Set(key, []byte("cold"), 0); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Hour)
	got, found := layered.Get(key)
	if !found || string(got) != "cold" {
		t.Fatalf("Expected disk hit through the layered cache, got %q found=%v", got, found)
	}

	// Remove the disk copy; the promoted memory copy must still serve.
	if err := disk.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := layered.Get(key); !found {
		t.Error("Expected promoted memory entry after disk delete")
	}
}

func TestLayeredCache_ClearEmptiesBothLayers(t *testing.T) {
	layered := NewLayeredCache(time.Minute, t.TempDir(), time.Hour)

	key := Key("test", "x")
	if err := layered.Set(key, []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := layered.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := layered.Get(key); found {
		t.Error("Expected miss after clear")
	}
}
