package responder

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Rand is the randomness source used for selection and delay jitter.
// Implementations must be safe for concurrent use when shared.
type Rand interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe PCG generator seeded from crypto entropy.
func NewRand() Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic("responder: failed to seed random source: " + err.Error())
	}
	return NewSeededRand(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]))
}

// NewSeededRand returns a deterministic goroutine-safe generator.
func NewSeededRand(seed1, seed2 uint64) Rand {
	return &lockedRand{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
