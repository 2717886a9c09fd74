package services

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the injected randomness used for freshness jitter and selection
// shuffles. Production wiring uses a time-seeded source; tests pin outputs
// with a fixed one. It must never be seeded deterministically in production,
// or every user sees the same "random" feed order after restart.
type Rand interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewLockedRand() Rand {
	return &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}
