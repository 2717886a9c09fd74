package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/quietwaters-app/quietwaters-backend/internal/clients/redis"
	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/timeutil"
)

const (
	// FeedRepeatWindow bounds same-session feed repeats. Memory-only; lost
	// on restart, which is acceptable for this window.
	FeedRepeatWindow = 24 * time.Hour

	// NotificationRepeatWindow gates notification repeats across days and
	// must survive restarts, so it is persisted.
	NotificationRepeatWindow = 14 * 24 * time.Hour
)

// AntiRepeatRegistry is a time-windowed "recently shown" set keyed by
// content identifier. Feed content is keyed by UUID string; curated verses
// by "verse-{book}-{chapter}".
type AntiRepeatRegistry interface {
	IsRecentlyShown(id string) bool
	MarkShown(id string, at time.Time)
	Prune(now time.Time)
}

type MemoryRegistry struct {
	mu     sync.Mutex
	window time.Duration
	clock  timeutil.Clock
	seen   map[string]time.Time
}

func NewMemoryRegistry(window time.Duration, clock timeutil.Clock) *MemoryRegistry {
	return &MemoryRegistry{
		window: window,
		clock:  clock,
		seen:   make(map[string]time.Time),
	}
}

func (r *MemoryRegistry) IsRecentlyShown(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.seen[id]
	if !ok {
		return false
	}
	// Staleness is checked on read too, so a skipped prune never yields a
	// false positive.
	return r.clock.Now().Sub(at) < r.window
}

func (r *MemoryRegistry) MarkShown(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[id] = at
}

func (r *MemoryRegistry) Prune(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := now.Add(-r.window)
	for id, at := range r.seen {
		if at.Before(cutoff) || at.Equal(cutoff) {
			delete(r.seen, id)
		}
	}
}

func (r *MemoryRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// PersistedRegistry is a MemoryRegistry whose contents round-trip through
// the shared key-value store as one JSON blob (id -> RFC3339 timestamp),
// so a companion process can read the same history. Load before a
// membership batch, Save after marking; Save always writes the pruned map
// whole, which keeps storage bounded and makes concurrent last-writer-wins
// updates safe.
type PersistedRegistry struct {
	*MemoryRegistry
	kv  redisclient.KVStore
	key string
	log *logger.Logger
}

func NewPersistedRegistry(kv redisclient.KVStore, key string, window time.Duration, clock timeutil.Clock, log *logger.Logger) *PersistedRegistry {
	return &PersistedRegistry{
		MemoryRegistry: NewMemoryRegistry(window, clock),
		kv:             kv,
		key:            key,
		log:            log.With("service", "PersistedRegistry", "key", key),
	}
}

// Load replaces the in-memory state with the stored map. Read or decode
// failures are fail-open: the registry comes back empty and everything
// looks fresh. Losing anti-repeat history degrades quality, it does not
// break correctness.
func (r *PersistedRegistry) Load(ctx context.Context) {
	raw, found, err := r.kv.Get(ctx, r.key)
	if err != nil {
		r.log.Warn("registry read failed, treating as empty", "error", err)
	}
	fresh := make(map[string]time.Time)
	if found && err == nil {
		var stored map[string]string
		if decodeErr := json.Unmarshal(raw, &stored); decodeErr != nil {
			r.log.Warn("registry decode failed, treating as empty", "error", decodeErr)
		} else {
			for id, ts := range stored {
				at, parseErr := time.Parse(time.RFC3339, ts)
				if parseErr != nil {
					continue
				}
				fresh[id] = at
			}
		}
	}
	r.mu.Lock()
	r.seen = fresh
	r.mu.Unlock()
}

// Save prunes and writes the whole map back in one set, replacing whatever
// was stored before.
func (r *PersistedRegistry) Save(ctx context.Context) error {
	now := r.clock.Now()
	r.Prune(now)

	r.mu.Lock()
	stored := make(map[string]string, len(r.seen))
	for id, at := range r.seen {
		stored[id] = at.Format(time.RFC3339)
	}
	r.mu.Unlock()

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, raw); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// NotificationRegistryKey is the per-user storage key for the persisted
// registry. Versioned so the format can change without a migration.
func NotificationRegistryKey(userID string) string {
	return "notifshown:v1:" + userID
}
