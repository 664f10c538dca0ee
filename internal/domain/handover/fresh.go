package handover

import (
	"fmt"
	"strings"

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
	"github.com/mfreeborn/patient-list-generator/internal/domain/patient"
	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
	"github.com/mfreeborn/patient-list-generator/internal/platform/inpatients"
)

// FreshRoster is the roster built from a source fetch, plus any reasons for
// admission the source supplied alongside.
type FreshRoster struct {
	*patient.Roster
	Reasons map[patient.Identifier]string
}

// BuildRoster constructs patients from already filtered source rows. A row
// seen twice (a patient under two consultants) is kept once. Any row whose
// identifier, ward or bed cannot be read fails the build.
func BuildRoster(rows []inpatients.Row, d location.Dialect, home ward.Ward) (*FreshRoster, error) {
	fr := &FreshRoster{
		Roster:  patient.NewRoster(home),
		Reasons: make(map[patient.Identifier]string),
	}
	for _, r := range rows {
		id, err := patient.ParseIdentifier(r.Identifier())
		if err != nil {
			return nil, fmt.Errorf("source row %s %s: %w", r.Surname, r.Ward, err)
		}
		w, ok := ward.Parse(r.Ward)
		if !ok {
			return nil, fmt.Errorf("patient %s: unknown ward %q", id, r.Ward)
		}
		loc, err := location.Parse(d, w, r.Bay, r.Bed)
		if err != nil {
			return nil, fmt.Errorf("patient %s: %w", id, err)
		}

		fr.Insert(patient.FromRaw(id, patient.Demographics{
			Forename:    strings.TrimSpace(r.Forename),
			Surname:     strings.TrimSpace(r.Surname),
			DateOfBirth: r.DateOfBirth,
		}, loc))
		if reason := patient.CollapseWhitespace(r.ReasonForAdmission); reason != "" {
			fr.Reasons[id] = reason
		}
	}
	return fr, nil
}
