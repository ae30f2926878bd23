package agents

// WealthRecord is the highest wealth any agent has held during a run.
// One record is shared by the whole population: every UpdateWealth may raise
// it, and every agent's offspring count is measured against it. It never
// decreases.
type WealthRecord struct {
	max float64
}

// NewWealthRecord starts a record at the given floor.
func NewWealthRecord(initial float64) *WealthRecord {
	return &WealthRecord{max: initial}
}

// Max returns the current record.
func (r *WealthRecord) Max() float64 {
	return r.max
}

// Observe raises the record to w if w exceeds it.
func (r *WealthRecord) Observe(w float64) {
	if w > r.max {
		r.max = w
	}
}
