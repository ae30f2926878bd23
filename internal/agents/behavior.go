// Agent decisions in a bribery encounter.
// Offering and accepting a bribe are the same primitive seen from two roles.
package agents

// Decide draws against the honesty trait and reports whether the agent acts
// honestly. Afterwards the trait drifts by Honesty*U for a fresh U in [0,1):
// up after an honest outcome, down after a dishonest one.
func (a *Agent) Decide(rng Source) bool {
	honest := rng.Float64() < a.Honesty
	drift := a.Honesty * rng.Float64()
	if honest {
		a.Honesty += drift
	} else {
		a.Honesty -= drift
	}
	return honest
}

// OfferBribe reports whether the agent, acting as briber, offers a bribe.
// An offer is made on the dishonest branch.
func (a *Agent) OfferBribe(rng Source) bool {
	return !a.Decide(rng)
}

// AcceptBribe reports whether the agent, acting as officer, takes an offered
// bribe. Acceptance happens on the dishonest branch.
func (a *Agent) AcceptBribe(rng Source) bool {
	return !a.Decide(rng)
}
