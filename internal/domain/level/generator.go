package level

import (
	"math/rand"
	"sync"
	"time"
)

// Generator draws obstacle sequences from a level. The random source is
// injected so runs can be replayed from a seed.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator wraps src. A nil src is seeded from the clock.
func NewGenerator(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(src)} //nolint:gosec // game randomness, not security sensitive
}

// NewSeededGenerator returns a generator seeded with seed, or from the
// clock when seed is 0.
func NewSeededGenerator(seed int64) *Generator {
	if seed == 0 {
		return NewGenerator(nil)
	}
	return NewGenerator(rand.NewSource(seed))
}

// Generate returns exactly l.Length obstacles, each drawn uniformly and
// independently from l.ObstacleTypes.
func (g *Generator) Generate(l Level) []string {
	if l.Length <= 0 || len(l.ObstacleTypes) == 0 {
		return []string{}
	}
	out := make([]string, l.Length)

	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range out {
		out[i] = l.ObstacleTypes[g.rng.Intn(len(l.ObstacleTypes))]
	}
	return out
}
