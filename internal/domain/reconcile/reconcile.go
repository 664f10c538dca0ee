// Package reconcile merges the roster parsed from the previous handover list
// with the roster fetched from the live inpatient source.
package reconcile

import (
	"fmt"

	"github.com/mfreeborn/patient-list-generator/internal/domain/patient"
)

// Result is the merged roster plus a classification of every identifier seen.
type Result struct {
	Roster *patient.Roster

	// Arrivals are on the fresh roster but were not on the existing list.
	Arrivals []patient.Identifier
	// Continuing are on both rosters.
	Continuing []patient.Identifier
	// Departures were on the existing list but are absent from the fresh
	// roster. They are dropped from the merged roster.
	Departures []patient.Identifier
}

// Reconcile builds the merged roster. The fresh roster is authoritative for
// presence and location; clinical notes are carried over from the existing
// roster for continuing patients and arrivals are flagged new.
//
// The patients of fresh are adopted by the result. existing is only read.
func Reconcile(existing, fresh *patient.Roster) (*Result, error) {
	res := &Result{Roster: patient.NewRoster(existing.HomeWard())}

	for _, p := range fresh.Patients() {
		if !existing.Contains(p.ID()) {
			p.IsNew = true
			res.Arrivals = append(res.Arrivals, p.ID())
		} else {
			prev, err := existing.Lookup(p.ID())
			if err != nil {
				return nil, err
			}
			if err := p.Merge(prev); err != nil {
				return nil, fmt.Errorf("reconcile %s: %w", p.ID(), err)
			}
			p.IsNew = false
			res.Continuing = append(res.Continuing, p.ID())
		}
		res.Roster.Insert(p)
	}

	for _, p := range existing.Patients() {
		if !fresh.Contains(p.ID()) {
			res.Departures = append(res.Departures, p.ID())
		}
	}

	res.Roster.Sort()
	return res, nil
}
