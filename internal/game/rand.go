package game

import (
	"math/rand"
	"sync"
	"time"
)

// Roller is the random source the engine draws from.
type Roller interface {
	Intn(n int) int
}

// LockedRand is a single seeded generator safe for concurrent use.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand seeds a generator; a zero seed falls back to the current time.
func NewRand(seed int64) *LockedRand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &LockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *LockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
