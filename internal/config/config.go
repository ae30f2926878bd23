// Package config holds the run parameters of a society simulation.
// Parameters come from a YAML file, command-line flags, or both.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned (wrapped) by Validate for any rejected parameter.
var ErrInvalid = errors.New("invalid config")

// Config is the complete set of parameters consumed by the engine.
// The engine assumes no defaults; callers supply every field.
type Config struct {
	// Population
	PopSize          int     `yaml:"pop_size"`
	CriminalFraction float64 `yaml:"criminal_fraction"`
	PoliceFraction   float64 `yaml:"police_fraction"`
	ReproductionStep int     `yaml:"reproduction_step"` // Steps between reproduction cycles
	GrowthRate       float64 `yaml:"growth_rate"`       // Target size multiplier per cycle

	// Payouts
	CriminalFine float64 `yaml:"criminal_fine"`
	PoliceReward float64 `yaml:"police_reward"`
	BribeFine    float64 `yaml:"bribe_fine"`

	// Agent constants
	HonestyMean   float64 `yaml:"honesty_mean"`
	HonestySigma  float64 `yaml:"honesty_sigma"`
	InitialWealth float64 `yaml:"initial_wealth"`
	MaxWealth     float64 `yaml:"max_wealth"` // Starting value of the shared wealth record
	MaxChildren   int     `yaml:"max_children"`
	TransferShare float64 `yaml:"transfer_share"` // Share of giver wealth at stake in a plain transfer

	// Run
	Steps int   `yaml:"steps"`
	Seed  int64 `yaml:"seed"` // 0 = draw from entropy source
}

// Default returns the parameters of the reference run.
func Default() Config {
	return Config{
		PopSize:          100,
		CriminalFraction: 0.1,
		PoliceFraction:   0.1,
		ReproductionStep: 1,
		GrowthRate:       1.1,

		CriminalFine: 5,
		PoliceReward: 4,
		BribeFine:    6,

		HonestyMean:   0.5,
		HonestySigma:  0.2,
		InitialWealth: 100,
		MaxWealth:     100,
		MaxChildren:   5,
		TransferShare: 0.3,

		Steps: 1000,
	}
}

// Load reads a YAML config file. Fields absent from the file keep the
// values of base, so a file may override only part of the defaults.
func Load(path string, base Config) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, err
	}
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects parameter sets the engine cannot run.
func (c Config) Validate() error {
	switch {
	case c.PopSize <= 0:
		return fmt.Errorf("%w: pop_size must be positive, got %d", ErrInvalid, c.PopSize)
	case c.CriminalFraction < 0 || c.CriminalFraction > 1:
		return fmt.Errorf("%w: criminal_fraction must be in [0,1], got %g", ErrInvalid, c.CriminalFraction)
	case c.PoliceFraction < 0 || c.PoliceFraction > 1:
		return fmt.Errorf("%w: police_fraction must be in [0,1], got %g", ErrInvalid, c.PoliceFraction)
	case c.ReproductionStep <= 0:
		return fmt.Errorf("%w: reproduction_step must be positive, got %d", ErrInvalid, c.ReproductionStep)
	case c.GrowthRate < 0:
		return fmt.Errorf("%w: growth_rate must not be negative, got %g", ErrInvalid, c.GrowthRate)
	case c.CriminalFine < 0 || c.PoliceReward < 0 || c.BribeFine < 0:
		return fmt.Errorf("%w: fines and rewards must not be negative", ErrInvalid)
	case c.HonestySigma < 0:
		return fmt.Errorf("%w: honesty_sigma must not be negative, got %g", ErrInvalid, c.HonestySigma)
	case c.InitialWealth < 0:
		return fmt.Errorf("%w: initial_wealth must not be negative, got %g", ErrInvalid, c.InitialWealth)
	case c.MaxWealth <= 0:
		return fmt.Errorf("%w: max_wealth must be positive, got %g", ErrInvalid, c.MaxWealth)
	case c.MaxChildren < 0:
		return fmt.Errorf("%w: max_children must not be negative, got %d", ErrInvalid, c.MaxChildren)
	case c.TransferShare < 0 || c.TransferShare > 1:
		return fmt.Errorf("%w: transfer_share must be in [0,1], got %g", ErrInvalid, c.TransferShare)
	case c.Steps < 0:
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalid, c.Steps)
	}
	return nil
}
