package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
)

func TestMemoryRegistryWindow(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	reg := NewMemoryRegistry(FeedRepeatWindow, clock)

	reg.MarkShown("a", start)

	clock.Set(start.Add(FeedRepeatWindow - time.Second))
	if !reg.IsRecentlyShown("a") {
		t.Fatalf("expected recently shown just inside the window")
	}

	clock.Set(start.Add(FeedRepeatWindow + time.Second))
	if reg.IsRecentlyShown("a") {
		t.Fatalf("expected not recently shown past the window")
	}
	if reg.IsRecentlyShown("never-seen") {
		t.Fatalf("unknown id should never be recently shown")
	}
}

func TestMemoryRegistryPrune(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	reg := NewMemoryRegistry(FeedRepeatWindow, clock)

	reg.MarkShown("old", start.Add(-48*time.Hour))
	reg.MarkShown("fresh", start.Add(-time.Hour))

	reg.Prune(start)
	if got := reg.size(); got != 1 {
		t.Fatalf("after prune size=%d, want 1", got)
	}
	if !reg.IsRecentlyShown("fresh") {
		t.Fatalf("fresh entry should survive prune")
	}
}

func TestPersistedRegistryRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	kv := newFakeKV()
	key := NotificationRegistryKey("user-1")

	reg := NewPersistedRegistry(kv, key, NotificationRepeatWindow, clock, logger.NewNop())
	reg.Load(context.Background())
	reg.MarkShown("verse-Psalms-23", start)
	reg.MarkShown("11111111-1111-1111-1111-111111111111", start)
	if err := reg.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A second instance (fresh process) must see the same history.
	reloaded := NewPersistedRegistry(kv, key, NotificationRepeatWindow, clock, logger.NewNop())
	reloaded.Load(context.Background())
	if !reloaded.IsRecentlyShown("verse-Psalms-23") {
		t.Fatalf("expected persisted entry to survive reload")
	}
}

func TestPersistedRegistrySavePrunes(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	kv := newFakeKV()
	key := NotificationRegistryKey("user-2")

	reg := NewPersistedRegistry(kv, key, NotificationRepeatWindow, clock, logger.NewNop())
	reg.MarkShown("stale", start.Add(-15*24*time.Hour))
	reg.MarkShown("recent", start.Add(-time.Hour))
	if err := reg.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, found, _ := kv.Get(context.Background(), key)
	if !found {
		t.Fatalf("expected stored blob")
	}
	var stored map[string]string
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("stored blob not valid JSON: %v", err)
	}
	if _, ok := stored["stale"]; ok {
		t.Fatalf("save must write the pruned map, stale entry still present")
	}
	if _, ok := stored["recent"]; !ok {
		t.Fatalf("recent entry missing from stored map")
	}
}

func TestPersistedRegistryFailOpen(t *testing.T) {
	start := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	clock := newFakeClock(start)
	kv := newFakeKV()
	key := NotificationRegistryKey("user-3")
	kv.data[key] = []byte("not json at all")

	reg := NewPersistedRegistry(kv, key, NotificationRepeatWindow, clock, logger.NewNop())
	reg.Load(context.Background())
	if reg.IsRecentlyShown("anything") {
		t.Fatalf("decode failure must fail open to an empty registry")
	}
}
