// Package inpatients fetches the patients currently on the wards from the
// hospital's upstream systems: the TrakCare inpatient view, an offline SQLite
// snapshot of that view, or the CareFlow API.
package inpatients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

var (
	// ErrMissingCredentials is returned before any request is made when a
	// source that needs credentials has none configured.
	ErrMissingCredentials = errors.New("inpatient source credentials are missing")
	// ErrUnauthorized means the upstream system rejected the credentials.
	ErrUnauthorized = errors.New("inpatient source rejected the credentials")
	// ErrSource wraps any other failure talking to an upstream system.
	ErrSource = errors.New("inpatient source unavailable")
)

// Row is one inpatient as reported by an upstream system. Bay and Bed are the
// raw strings in the source's own dialect.
type Row struct {
	NHSNumber          string    `json:"nhs_number"`
	RegNumber          string    `json:"reg_number,omitempty"`
	Forename           string    `json:"forename"`
	Surname            string    `json:"surname"`
	DateOfBirth        time.Time `json:"date_of_birth"`
	AdmissionDate      time.Time `json:"admission_date,omitempty"`
	Ward               string    `json:"ward"`
	Bay                string    `json:"bay"`
	Bed                string    `json:"bed"`
	Consultant         string    `json:"consultant,omitempty"`
	ReasonForAdmission string    `json:"reason_for_admission,omitempty"`
}

// Identifier returns the NHS number, falling back to the hospital
// registration number.
func (r Row) Identifier() string {
	if s := strings.TrimSpace(r.NHSNumber); s != "" {
		return s
	}
	return strings.TrimSpace(r.RegNumber)
}

// HasBedAssignment reports whether the patient has been given a bed. The
// discharge area has no individual beds so a bay alone is enough there.
func (r Row) HasBedAssignment() bool {
	if strings.TrimSpace(r.Bed) != "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Bay), "discharge area")
}

// Filter drops rows without a bed assignment and rows on wards outside the
// closed ward set, such as assessment units and ITU.
func Filter(rows []Row) []Row {
	out := rows[:0:0]
	for _, r := range rows {
		if !r.HasBedAssignment() || !ward.Allowed(r.Ward) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Source supplies the current inpatients under a set of consultants.
type Source interface {
	Fetch(ctx context.Context, consultants []string) ([]Row, error)
	// Dialect is the bay/bed naming scheme of the rows Fetch returns.
	Dialect() location.Dialect
}

// ReasonLookup returns the recorded reason for admission of each patient it
// knows, keyed by identifier.
type ReasonLookup interface {
	ReasonsForAdmission(ctx context.Context, identifiers []string) (map[string]string, error)
}
