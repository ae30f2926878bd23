// Agent spawning — creates the founding population and the offspring of
// each reproduction cycle.
package agents

import (
	"math"
	"math/rand"
)

// SpawnConfig holds the population-level constants used when creating agents.
type SpawnConfig struct {
	HonestyMean   float64 // Mean of the founding honesty distribution
	HonestySigma  float64 // Standard deviation of the founding honesty distribution
	InitialWealth float64 // Wealth of every newly created agent
	MaxChildren   int     // Offspring of an agent holding the wealth record
}

// Spawner creates agents for the simulation. It draws from the run's single
// random source and issues monotonically increasing IDs.
type Spawner struct {
	cfg    SpawnConfig
	rng    *rand.Rand
	nextID AgentID
}

// NewSpawner creates a spawner sharing the given random source.
func NewSpawner(rng *rand.Rand, cfg SpawnConfig) *Spawner {
	return &Spawner{
		cfg:    cfg,
		rng:    rng,
		nextID: 1,
	}
}

// Issued returns how many agents the spawner has created.
func (s *Spawner) Issued() uint64 {
	return uint64(s.nextID - 1)
}

// SpawnPopulation creates the founding generation. Each agent is criminal
// with probability criminalFraction and police with probability
// policeFraction, sampled independently; honesty is drawn from the
// configured normal distribution.
func (s *Spawner) SpawnPopulation(count int, criminalFraction, policeFraction float64) []*Agent {
	pop := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		criminal := s.rng.Float64() < criminalFraction
		police := s.rng.Float64() < policeFraction
		honesty := s.cfg.HonestyMean + s.rng.NormFloat64()*s.cfg.HonestySigma
		pop = append(pop, s.spawnOne(police, criminal, honesty))
	}
	return pop
}

// SpawnOffspring creates the children of parent for one reproduction cycle.
// Children copy the parent's roles and current honesty; their wealth resets
// to the initial constant. See OffspringCount for how many are produced.
func (s *Spawner) SpawnOffspring(parent *Agent, record *WealthRecord) []*Agent {
	n := OffspringCount(parent.Wealth, record.Max(), s.cfg.MaxChildren)
	if n == 0 {
		return nil
	}
	children := make([]*Agent, 0, n)
	for i := 0; i < n; i++ {
		child := s.spawnOne(parent.police, parent.criminal, parent.Honesty)
		child.ParentID = parent.ID
		children = append(children, child)
	}
	return children
}

// OffspringCount returns floor(wealth/max * maxChildren). An agent holding
// the record gets maxChildren; one with nothing gets none.
func OffspringCount(wealth, max float64, maxChildren int) int {
	if max <= 0 || wealth <= 0 {
		return 0
	}
	return int(math.Floor(wealth / max * float64(maxChildren)))
}

func (s *Spawner) spawnOne(police, criminal bool, honesty float64) *Agent {
	id := s.nextID
	s.nextID++
	return New(id, police, criminal, honesty, s.cfg.InitialWealth)
}
