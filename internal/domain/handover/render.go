package handover

import (
	"fmt"
	"time"

	"github.com/mfreeborn/patient-list-generator/internal/domain/patient"
	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

// Render writes the roster to sink: a column header row, then for each ward a
// full-width ward header followed by that ward's patients. The roster is
// expected to be sorted already.
func Render(sink TableSink, roster *patient.Roster, asOf time.Time) error {
	row, err := sink.AddRow()
	if err != nil {
		return fmt.Errorf("add column header: %w", err)
	}
	for col, title := range ColumnTitles {
		if err := sink.SetCellText(row, col, title); err != nil {
			return err
		}
	}
	if err := sink.FlagRowForStyle(row, StyleColumnHeader); err != nil {
		return err
	}

	first := true
	var current ward.Ward
	for _, p := range roster.Patients() {
		var w ward.Ward
		if p.Location != nil {
			w = p.Location.Ward()
		}
		if first || w != current {
			if err := fullWidthRow(sink, w.String(), StyleWardHeader); err != nil {
				return fmt.Errorf("add ward header %s: %w", w, err)
			}
			current, first = w, false
		}

		if p.IsBirthday(asOf) {
			if err := fullWidthRow(sink, BirthdayBanner(p, asOf), StyleBirthday); err != nil {
				return fmt.Errorf("add birthday banner: %w", err)
			}
		}
		if err := patientRow(sink, p, asOf); err != nil {
			return fmt.Errorf("add patient %s: %w", p.ID(), err)
		}
	}
	return nil
}

// BirthdayBanner is the greeting shown above a patient on their birthday.
func BirthdayBanner(p *patient.Patient, asOf time.Time) string {
	age, _ := p.Age(asOf)
	return fmt.Sprintf("Happy birthday %s! %d today!", p.DisplayForename(), age)
}

func fullWidthRow(sink TableSink, text string, style RowStyle) error {
	row, err := sink.AddRow()
	if err != nil {
		return err
	}
	if err := sink.MergeCellsInRow(row, 0, NumColumns-1); err != nil {
		return err
	}
	if err := sink.SetCellText(row, 0, text); err != nil {
		return err
	}
	return sink.FlagRowForStyle(row, style)
}

func patientRow(sink TableSink, p *patient.Patient, asOf time.Time) error {
	row, err := sink.AddRow()
	if err != nil {
		return err
	}

	cells := [NumColumns]string{
		ColBed:     p.Bed(),
		ColDetails: p.Details(asOf),
		ColReason:  p.ReasonForAdmission,
	}
	// nothing is known yet about a new patient beyond why they came in
	if !p.IsNew {
		cells[ColJobs] = p.Jobs
		cells[ColEDD] = p.EDD
		cells[ColDS] = p.DS
		cells[ColTTA] = p.TTA
		cells[ColBloods] = p.Bloods
	}
	for col, text := range cells {
		if err := sink.SetCellText(row, col, text); err != nil {
			return err
		}
	}

	if p.IsNew {
		return sink.FlagRowForStyle(row, StyleNewPatient)
	}
	return nil
}
