// Simulation owns the population and the run-wide state, and wires the
// round and reproduction systems to the step engine.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/talgya/mini-society/internal/agents"
	"github.com/talgya/mini-society/internal/config"
	"github.com/talgya/mini-society/internal/trace"
)

// ExitExtinct is the process exit code used when the population dies out.
const ExitExtinct = 3

// ErrExtinct describes a run that ended because no offspring survived.
var ErrExtinct = errors.New("population extinct")

// Simulation holds the complete society state.
type Simulation struct {
	Config     config.Config
	Population []*agents.Agent
	Wealth     *agents.WealthRecord // Shared max_wealth, read by every reproduction
	Spawner    *agents.Spawner

	// Role fractions of the current generation.
	CriminalFraction float64
	PoliceFraction   float64

	// Statistics of the most recent step.
	Stats StepStats

	// Recorder receives one trace record per step.
	Recorder trace.Recorder

	// Exit terminates the process on extinction. Defaults to os.Exit; it is
	// not expected to return.
	Exit func(code int)

	Extinct bool

	rng      *rand.Rand
	protocol *Protocol
	eng      *Engine
	err      error

	totalInteractions int64
	totalOffers       int64
}

// NewSimulation validates cfg, seeds the run's single random source from
// cfg.Seed, and spawns the founding population.
func NewSimulation(cfg config.Config, rec trace.Recorder) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	wealth := agents.NewWealthRecord(cfg.MaxWealth)
	spawner := agents.NewSpawner(rng, agents.SpawnConfig{
		HonestyMean:   cfg.HonestyMean,
		HonestySigma:  cfg.HonestySigma,
		InitialWealth: cfg.InitialWealth,
		MaxChildren:   cfg.MaxChildren,
	})

	s := &Simulation{
		Config:           cfg,
		Population:       spawner.SpawnPopulation(cfg.PopSize, cfg.CriminalFraction, cfg.PoliceFraction),
		Wealth:           wealth,
		Spawner:          spawner,
		CriminalFraction: cfg.CriminalFraction,
		PoliceFraction:   cfg.PoliceFraction,
		Recorder:         rec,
		Exit:             os.Exit,
		rng:              rng,
		protocol: &Protocol{
			Payouts: Payouts{
				CriminalFine: cfg.CriminalFine,
				PoliceReward: cfg.PoliceReward,
				BribeFine:    cfg.BribeFine,
			},
			TransferShare: cfg.TransferShare,
			Wealth:        wealth,
		},
	}

	s.eng = NewEngine(cfg.Steps, cfg.ReproductionStep)
	s.eng.OnStep = s.TickStep
	s.eng.OnReproduce = s.reproduce
	return s, nil
}

// Run executes the configured number of steps. It returns early with an
// error if a recorder fails. Extinction does not return an error: it calls
// Exit.
func (s *Simulation) Run() error {
	police, criminal := agents.CountRoles(s.Population)
	slog.Info("simulation starting",
		"seed", s.Config.Seed,
		"population", len(s.Population),
		"police", police,
		"criminal", criminal,
		"steps", s.Config.Steps,
		"reproduction_step", s.Config.ReproductionStep,
	)

	s.eng.Run()
	if s.err != nil {
		return s.err
	}
	if s.Extinct {
		return nil
	}

	slog.Info("simulation finished",
		"steps", s.eng.Step,
		"population", len(s.Population),
		"interactions", humanize.Comma(s.totalInteractions),
		"bribe_offers", humanize.Comma(s.totalOffers),
		"max_wealth", humanize.Commaf(s.Wealth.Max()),
		"mean_honesty", fmt.Sprintf("%.4f", agents.MeanHonesty(s.Population)),
	)
	return nil
}

// CurrentStep returns the number of steps completed.
func (s *Simulation) CurrentStep() int {
	return s.eng.Step
}

// TickStep runs one population round and emits its trace record.
func (s *Simulation) TickStep(step int) {
	s.Stats = s.playRound()
	s.totalInteractions += int64(s.Stats.Interactions)
	s.totalOffers += int64(s.Stats.Offers)

	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.Record(s.record(step)); err != nil {
		s.err = fmt.Errorf("record step %d: %w", step, err)
		slog.Error("trace record failed", "step", step, "error", err)
		s.eng.Stop()
	}
}

func (s *Simulation) record(step int) trace.Record {
	police, criminal := agents.CountRoles(s.Population)
	return trace.Record{
		Time:           step,
		Population:     len(s.Population),
		Police:         police,
		Criminal:       criminal,
		Situations:     s.Stats.Situations,
		Offers:         s.Stats.Offers,
		OffersCriminal: s.Stats.OffersCriminal,
		OffersCivilian: s.Stats.OffersCivilian,
		OffersPolice:   s.Stats.OffersPolice,
		Accepted:       s.Stats.Accepted,
		Interactions:   s.Stats.Interactions,
		MaxWealth:      s.Wealth.Max(),
		MeanHonesty:    agents.MeanHonesty(s.Population),
	}
}

// halt ends the run on extinction. The engine is stopped first so that no
// further step runs even if Exit returns.
func (s *Simulation) halt(step int) {
	s.Extinct = true
	s.eng.Stop()
	slog.Error("simulation halted",
		"step", step,
		"error", ErrExtinct,
		"max_wealth", s.Wealth.Max(),
	)
	s.Exit(ExitExtinct)
}
