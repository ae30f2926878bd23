// Population dynamics — wealth-proportional reproduction and random culling.
package engine

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/talgya/mini-society/internal/agents"
)

// CullTarget returns how many offspring survive a cycle: floor(growth *
// previous size), never more than the pool holds.
func CullTarget(growth float64, previous, pool int) int {
	target := int(math.Floor(growth * float64(previous)))
	if target > pool {
		target = pool
	}
	if target < 0 {
		target = 0
	}
	return target
}

// Cull shuffles pool in place and keeps its first target agents.
func Cull(pool []*agents.Agent, target int, rng *rand.Rand) []*agents.Agent {
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if target > len(pool) {
		target = len(pool)
	}
	return pool[:target]
}

// reproduce replaces the population with a culled generation of offspring.
// Parents never survive into the next generation. An empty generation is
// extinction and halts the run.
func (s *Simulation) reproduce(step int) {
	previous := len(s.Population)

	var pool []*agents.Agent
	for _, a := range s.Population {
		pool = append(pool, s.Spawner.SpawnOffspring(a, s.Wealth)...)
	}
	born := len(pool)

	target := CullTarget(s.Config.GrowthRate, previous, born)
	s.Population = Cull(pool, target, s.rng)

	if !s.updateFractions() {
		s.halt(step)
		return
	}

	slog.Debug("reproduction cycle",
		"step", step,
		"parents", previous,
		"offspring", born,
		"survivors", len(s.Population),
		"max_wealth", s.Wealth.Max(),
	)
}

// updateFractions recomputes the role fractions of the current population.
// Reports false for an empty population, leaving the fractions untouched.
func (s *Simulation) updateFractions() bool {
	n := len(s.Population)
	if n == 0 {
		return false
	}
	police, criminal := agents.CountRoles(s.Population)
	s.PoliceFraction = float64(police) / float64(n)
	s.CriminalFraction = float64(criminal) / float64(n)
	return true
}
