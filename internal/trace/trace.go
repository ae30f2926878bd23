// Package trace defines the per-step statistical record of a run and the
// recorders that emit it.
package trace

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Fields is the fixed column order of the text trace.
var Fields = []string{
	"time",
	"population_size",
	"police_count",
	"criminal_count",
	"bribe_situations",
	"bribe_offers",
	"bribe_accepted",
	"interactions",
}

// Record summarises one time step.
type Record struct {
	Time       int `json:"time" db:"time"`
	Population int `json:"population_size" db:"population"`
	Police     int `json:"police_count" db:"police"`
	Criminal   int `json:"criminal_count" db:"criminal"`

	Situations     int `json:"bribe_situations" db:"situations"`
	Offers         int `json:"bribe_offers" db:"offers"`
	OffersCriminal int `json:"bribe_offers_criminal" db:"offers_criminal"` // Offers made by criminal bribers
	OffersCivilian int `json:"bribe_offers_civilian" db:"offers_civilian"` // Offers made by non-criminal bribers
	OffersPolice   int `json:"bribe_offers_police" db:"offers_police"`     // Offers made by police bribers
	Accepted       int `json:"bribe_accepted" db:"accepted"`
	Interactions   int `json:"interactions" db:"interactions"`

	MaxWealth   float64 `json:"max_wealth" db:"max_wealth"`
	MeanHonesty float64 `json:"mean_honesty" db:"mean_honesty"`
}

// Recorder consumes one record per step.
type Recorder interface {
	Record(r Record) error
}

// Writer emits the pipe-delimited text trace. The header line is written
// before the first record. Every field of a record, the last one included,
// is followed by a pipe.
type Writer struct {
	w          io.Writer
	headerDone bool
}

// NewWriter returns a text recorder writing to w. Writes are not buffered,
// so every emitted line survives an abrupt exit.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Header returns the header line without its newline.
func Header() string {
	return strings.Join(Fields, "|")
}

// Format renders a record as a trace line without its newline.
func Format(r Record) string {
	return fmt.Sprintf("%d|%d|%d|%d|%d|%d|%d|%d|",
		r.Time, r.Population, r.Police, r.Criminal,
		r.Situations, r.Offers, r.Accepted, r.Interactions)
}

// Record writes the header on first use, then the record line.
func (tw *Writer) Record(r Record) error {
	if !tw.headerDone {
		if _, err := io.WriteString(tw.w, Header()+"\n"); err != nil {
			return fmt.Errorf("write trace header: %w", err)
		}
		tw.headerDone = true
	}
	if _, err := io.WriteString(tw.w, Format(r)+"\n"); err != nil {
		return fmt.Errorf("write trace record %d: %w", r.Time, err)
	}
	return nil
}

// Multi fans a record out to several recorders. Every recorder sees the
// record; their errors are joined.
type Multi []Recorder

// Record implements Recorder.
func (m Multi) Record(r Record) error {
	var errs []error
	for _, rec := range m {
		if err := rec.Record(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
