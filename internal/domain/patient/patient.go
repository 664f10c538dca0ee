// Package patient models the patients on a handover list: their identity,
// the clinical notes the team keeps against them, and the roster that
// collects them for one team.
package patient

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
)

// Demographics are the identifying details supplied by the upstream patient
// systems.
type Demographics struct {
	Forename    string    `json:"forename"`
	Surname     string    `json:"surname"`
	DateOfBirth time.Time `json:"date_of_birth"`
}

// ClinicalNotes are the free-text columns the team maintains on the list.
type ClinicalNotes struct {
	ReasonForAdmission string `json:"reason_for_admission"`
	Jobs               string `json:"jobs"`
	EDD                string `json:"edd"`
	DS                 string `json:"ds"`
	TTA                string `json:"tta"`
	Bloods             string `json:"bloods"`
}

// Patient is a single inpatient. Two patients are the same patient if and
// only if their identifiers are equal.
type Patient struct {
	id Identifier

	Demographics
	ClinicalNotes

	// Location is nil for patients parsed from an existing list.
	Location *location.Location
	IsNew    bool
}

// FromRaw builds a patient from a freshly fetched source record. Clinical
// notes start empty.
func FromRaw(id Identifier, demo Demographics, loc *location.Location) *Patient {
	return &Patient{id: id, Demographics: demo, Location: loc}
}

// FromExistingRow builds a patient from a row of a previously generated list.
// Such patients carry no location.
func FromExistingRow(id Identifier, notes ClinicalNotes) *Patient {
	return &Patient{id: id, ClinicalNotes: notes}
}

// ID returns the patient's identifier.
func (p *Patient) ID() Identifier { return p.id }

// Equal compares identifiers only.
func (p *Patient) Equal(other *Patient) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.id == other.id
}

// Merge copies other's clinical notes onto p. p keeps its own identifier,
// demographics and location. Nothing is copied unless both patients share an
// identifier.
func (p *Patient) Merge(other *Patient) error {
	if !p.Equal(other) {
		var donor Identifier
		if other != nil {
			donor = other.id
		}
		return &IdentityMismatchError{Target: p.id, Donor: donor}
	}
	p.ClinicalNotes = other.ClinicalNotes
	return nil
}

// Bed returns the canonical bed label, or "" when the location is unknown.
func (p *Patient) Bed() string {
	if p.Location == nil {
		return ""
	}
	return p.Location.Bed()
}

// ListName formats the name as "SURNAME, Forename".
func (p *Patient) ListName() string {
	surname := "UNKNOWN"
	if p.Surname != "" {
		surname = strings.ToUpper(p.Surname)
	}
	return surname + ", " + p.DisplayForename()
}

// DisplayForename returns the title-cased forename, or "Unknown".
func (p *Patient) DisplayForename() string {
	if p.Forename == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(p.Forename)
}

// Age returns the patient's age in whole years on asOf. ok is false when the
// date of birth is unknown.
func (p *Patient) Age(asOf time.Time) (years int, ok bool) {
	if p.DateOfBirth.IsZero() {
		return 0, false
	}
	dob := p.DateOfBirth
	years = asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		years--
	}
	return years, true
}

// IsBirthday reports whether asOf is the patient's birthday.
func (p *Patient) IsBirthday(asOf time.Time) bool {
	if p.DateOfBirth.IsZero() {
		return false
	}
	return p.DateOfBirth.Month() == asOf.Month() && p.DateOfBirth.Day() == asOf.Day()
}

// Details renders the patient details cell:
//
//	SMITH, John
//	01/01/1975 (45 Yrs)
//	123 456 7890
//
// The date of birth line is omitted when unknown. The identifier line is
// always present so the list can be parsed again on the next run.
func (p *Patient) Details(asOf time.Time) string {
	lines := []string{p.ListName()}
	if age, ok := p.Age(asOf); ok {
		lines = append(lines, fmt.Sprintf("%s (%d Yrs)", p.DateOfBirth.Format("02/01/2006"), age))
	}
	lines = append(lines, p.id.String())
	return strings.Join(lines, "\n")
}

func (p *Patient) String() string {
	if p.Location == nil {
		return fmt.Sprintf("Patient(name=%s, id=%s)", p.ListName(), p.id)
	}
	return fmt.Sprintf("Patient(name=%s, id=%s, location=%s)", p.ListName(), p.id, p.Location)
}

// CollapseWhitespace joins the fields of s with single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
