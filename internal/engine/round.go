// Population round — every agent meets every other agent once per step.
package engine

// StepStats counts what happened during one step. Reset at the start of
// every round.
type StepStats struct {
	Interactions   int `json:"interactions"`
	Situations     int `json:"bribe_situations"`
	Offers         int `json:"bribe_offers"`
	OffersCriminal int `json:"bribe_offers_criminal"`
	OffersCivilian int `json:"bribe_offers_civilian"`
	OffersPolice   int `json:"bribe_offers_police"`
	Accepted       int `json:"bribe_accepted"`
}

// add tallies one interaction outcome.
func (st *StepStats) add(out Outcome) {
	st.Interactions++
	if out.Encounter.Kind != EncounterBribe {
		return
	}
	st.Situations++
	if !out.Offered {
		return
	}
	st.Offers++
	briber := out.Encounter.Briber
	if briber.IsCriminal() {
		st.OffersCriminal++
	} else {
		st.OffersCivilian++
	}
	if briber.IsPolice() {
		st.OffersPolice++
	}
	if out.Accepted {
		st.Accepted++
	}
}

// ForEachPair calls visit for every unordered pair i < j of n items, in
// lexicographic order. n*(n-1)/2 calls in total.
func ForEachPair(n int, visit func(i, j int)) {
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			visit(i, j)
		}
	}
}

// playRound runs the all-pairs tournament over the current population and
// returns the step's statistics.
func (s *Simulation) playRound() StepStats {
	var st StepStats
	pop := s.Population
	ForEachPair(len(pop), func(i, j int) {
		st.add(s.protocol.Interact(pop[i], pop[j], s.rng))
	})
	return st
}
