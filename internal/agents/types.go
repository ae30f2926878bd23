// Package agents provides the agent data model: wealth, the honesty trait,
// and the police/criminal role flags.
package agents

// AgentID is a unique identifier for an agent within a run.
type AgentID uint64

// Source is the random stream agents draw their decisions from.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Agent is one member of the society.
type Agent struct {
	ID AgentID `json:"id"`

	// Economic
	Wealth float64 `json:"wealth"` // Never negative

	// Trait — probability threshold for acting honestly. Drifts after every
	// decision and is deliberately left unclamped.
	Honesty float64 `json:"honesty"`

	// Roles are fixed at creation and inherited verbatim by offspring.
	police   bool
	criminal bool

	ParentID AgentID `json:"parent_id,omitempty"` // 0 for the founding generation
}

// New creates an agent with the given roles, trait, and starting wealth.
func New(id AgentID, police, criminal bool, honesty, wealth float64) *Agent {
	return &Agent{
		ID:       id,
		Wealth:   wealth,
		Honesty:  honesty,
		police:   police,
		criminal: criminal,
	}
}

// IsPolice reports whether the agent holds the police role.
func (a *Agent) IsPolice() bool { return a.police }

// IsCriminal reports whether the agent is a criminal.
func (a *Agent) IsCriminal() bool { return a.criminal }

// UpdateWealth adds delta to the agent's wealth, flooring at zero, and
// raises the shared record if the agent sets a new maximum.
func (a *Agent) UpdateWealth(delta float64, record *WealthRecord) {
	a.Wealth += delta
	if a.Wealth < 0 {
		a.Wealth = 0
	}
	record.Observe(a.Wealth)
}

// CountRoles returns the number of police and criminals in a population.
func CountRoles(pop []*Agent) (police, criminal int) {
	for _, a := range pop {
		if a.police {
			police++
		}
		if a.criminal {
			criminal++
		}
	}
	return police, criminal
}

// MeanHonesty returns the average honesty trait, or 0 for an empty population.
func MeanHonesty(pop []*Agent) float64 {
	if len(pop) == 0 {
		return 0
	}
	total := 0.0
	for _, a := range pop {
		total += a.Honesty
	}
	return total / float64(len(pop))
}
