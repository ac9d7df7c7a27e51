package allotment

import (
	"math/rand"
	"sync"
	"time"
)

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource returns a goroutine-safe PRNG. Seed 0 seeds from the clock.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
