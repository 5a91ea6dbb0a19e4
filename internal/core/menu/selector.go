package menu

import (
	"math/rand/v2"
	"time"

	"menu-planner/internal/core/recipe"
)

// Random is the subset of *rand.Rand the planner draws from.
type Random interface {
	IntN(n int) int
	Float64() float64
}

// NewRandom returns a PCG source. seed 0 seeds from the clock.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Select draws one recipe from pool, weighted towards easy dishes. Recipes
// whose id is in used are skipped unless that leaves nothing, in which case
// the whole pool is eligible again. The chosen id is added to used. Returns
// nil for an empty pool.
func Select(rng Random, pool []recipe.Recipe, used map[int64]bool) *recipe.Recipe {
	if len(pool) == 0 {
		return nil
	}

	candidates := make([]recipe.Recipe, 0, len(pool))
	for _, r := range pool {
		if !used[r.ID] {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		candidates = pool
	}

	total := 0
	for _, r := range candidates {
		total += r.Weight()
	}

	n := rng.IntN(total)
	for _, r := range candidates {
		n -= r.Weight()
		if n < 0 {
			if used != nil {
				used[r.ID] = true
			}
			chosen := r
			return &chosen
		}
	}
	return nil
}
