// Package engine provides the step-based simulation loop and the society
// model it drives: pairwise interactions, bribery, and reproduction.
package engine

import (
	"log/slog"
)

// Engine drives the simulation forward one step at a time.
type Engine struct {
	Step    int // Next step to run (starts at 0)
	Steps   int // Total steps in the run
	Period  int // Steps between reproduction cycles
	Running bool

	// Callbacks for each step layer — populated during setup.
	OnStep      func(step int) // Every step: population round + trace record
	OnReproduce func(step int) // Every Period steps, after OnStep
}

// NewEngine creates an engine running steps steps with reproduction every
// period steps.
func NewEngine(steps, period int) *Engine {
	return &Engine{
		Steps:  steps,
		Period: period,
	}
}

// Run advances the simulation until the configured step count is reached
// or Stop is called from a callback.
func (e *Engine) Run() {
	e.Running = true
	slog.Debug("simulation engine started", "step", e.Step, "steps", e.Steps)

	for e.Running && e.Step < e.Steps {
		e.step()
	}
	e.Running = false

	slog.Debug("simulation engine stopped", "step", e.Step)
}

// Stop halts the loop after the current callback returns. No further
// callbacks run.
func (e *Engine) Stop() {
	e.Running = false
}

// step runs a single step. Reproduction follows the step's round whenever
// the step number is a multiple of the period, step 0 included.
func (e *Engine) step() {
	step := e.Step
	e.Step++

	if e.OnStep != nil {
		e.OnStep(step)
	}
	if !e.Running {
		return
	}

	if e.Period > 0 && step%e.Period == 0 && e.OnReproduce != nil {
		e.OnReproduce(step)
	}
}
