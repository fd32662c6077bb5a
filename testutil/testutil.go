package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/hupe1980/nilq/ring"
	"github.com/hupe1980/nilq/vector"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0,1).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Coef returns a nonzero integer in [-bound, bound].
func (r *RNG) Coef(bound int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		if c := r.rand.Int63n(2*bound+1) - bound; c != 0 {
			return c
		}
	}
}

// RandomSparse returns a vector over generators 1..n in which each generator
// appears with probability density, with coefficients in [-bound, bound].
func RandomSparse[T any](rng *RNG, rg ring.Ring[T], n int, density float64, bound int64) vector.Sparse[T] {
	var v vector.Sparse[T]
	for g := 1; g <= n; g++ {
		if rng.Float64() >= density {
			continue
		}
		c := rg.FromInt(rng.Coef(bound))
		if rg.IsZero(c) {
			continue
		}
		v = append(v, vector.Entry[T]{Gen: g, Coef: c})
	}
	return v
}

// LiePresentation returns the text of a Lie ring presentation on gens with
// count random relators, each a sum of left-normed brackets of length 2 or 3.
func (r *RNG) LiePresentation(gens []string, count int) string {
	rels := make([]string, count)
	for k := range rels {
		terms := make([]string, 1+r.Intn(2))
		for t := range terms {
			args := make([]string, 2+r.Intn(2))
			for a := range args {
				args[a] = gens[r.Intn(len(gens))]
			}
			terms[t] = fmt.Sprintf("%d*[%s]", r.Coef(3), strings.Join(args, ", "))
		}
		rels[k] = strings.Join(terms, " + ")
	}
	return fmt.Sprintf("< %s | %s >", strings.Join(gens, ", "), strings.Join(rels, ", "))
}
