// Interaction protocol — plain transfers between civilians and bribery
// negotiations whenever police are involved.
package engine

import (
	"github.com/talgya/mini-society/internal/agents"
)

// EncounterKind tags what happens when two agents meet.
type EncounterKind uint8

const (
	EncounterTransfer EncounterKind = iota // Neither agent is police
	EncounterBribe                         // At least one agent is police
)

// Encounter is the resolved nature of a meeting. For a bribe encounter,
// Briber and Officer are set; for a transfer they are nil.
type Encounter struct {
	Kind    EncounterKind
	Briber  *agents.Agent
	Officer *agents.Agent
}

// AssignRoles decides who bribes whom. A lone police agent is the officer
// and the other party the briber. When both are police, coin is called once:
// true makes a the briber. coin is not called otherwise.
func AssignRoles(a, b *agents.Agent, coin func() bool) Encounter {
	switch {
	case !a.IsPolice() && !b.IsPolice():
		return Encounter{Kind: EncounterTransfer}
	case !a.IsPolice():
		return Encounter{Kind: EncounterBribe, Briber: a, Officer: b}
	case !b.IsPolice():
		return Encounter{Kind: EncounterBribe, Briber: b, Officer: a}
	}
	if coin() {
		return Encounter{Kind: EncounterBribe, Briber: a, Officer: b}
	}
	return Encounter{Kind: EncounterBribe, Briber: b, Officer: a}
}

// Payouts are the fixed amounts moved by a bribe encounter.
type Payouts struct {
	CriminalFine float64
	PoliceReward float64
	BribeFine    float64
}

// Settle returns the wealth deltas of briber and officer. A refused
// opportunity costs a criminal briber the criminal fine and nothing
// otherwise. Any offer costs the bribe fine and earns the officer the police
// reward whether or not it was accepted.
func (p Payouts) Settle(offered, briberCriminal bool) (briber, officer float64) {
	if offered {
		return -p.BribeFine, p.PoliceReward
	}
	if briberCriminal {
		return -p.CriminalFine, p.PoliceReward
	}
	return 0, 0
}

// Outcome reports what happened in one interaction.
type Outcome struct {
	Encounter Encounter
	Offered   bool
	Accepted  bool
}

// Protocol applies interactions to pairs of agents.
type Protocol struct {
	Payouts
	TransferShare float64 // Upper bound on the share of wealth a plain transfer moves
	Wealth        *agents.WealthRecord
}

// Interact resolves a meeting between a and b, applies its wealth changes,
// and reports the outcome.
func (p *Protocol) Interact(a, b *agents.Agent, rng agents.Source) Outcome {
	enc := AssignRoles(a, b, func() bool { return rng.Float64() < 0.5 })
	if enc.Kind == EncounterTransfer {
		p.transfer(a, b, rng)
		return Outcome{Encounter: enc}
	}

	out := Outcome{Encounter: enc}
	if enc.Briber.OfferBribe(rng) {
		out.Offered = true
		out.Accepted = enc.Officer.AcceptBribe(rng)
	}

	briberDelta, officerDelta := p.Settle(out.Offered, enc.Briber.IsCriminal())
	enc.Briber.UpdateWealth(briberDelta, p.Wealth)
	enc.Officer.UpdateWealth(officerDelta, p.Wealth)
	return out
}

// transfer moves a random share of one party's wealth to the other. The
// giver is picked uniformly.
func (p *Protocol) transfer(a, b *agents.Agent, rng agents.Source) {
	giver, receiver := a, b
	if rng.Float64() < 0.5 {
		giver, receiver = b, a
	}
	amount := rng.Float64() * giver.Wealth * p.TransferShare
	giver.UpdateWealth(-amount, p.Wealth)
	receiver.UpdateWealth(amount, p.Wealth)
}
