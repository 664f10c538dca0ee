package inpatients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
)

// DefaultView is the TrakCare reporting view of current inpatients.
const DefaultView = "vw_current_inpatients"

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TrakCareSource reads the current inpatients view from the TrakCare
// reporting database. *pgxpool.Pool satisfies the querier it is built on.
type TrakCareSource struct {
	db     querier
	view   string
	logger zerolog.Logger
}

func NewTrakCareSource(db querier, view string, logger zerolog.Logger) *TrakCareSource {
	if view == "" {
		view = DefaultView
	}
	return &TrakCareSource{db: db, view: view, logger: logger}
}

func (s *TrakCareSource) Dialect() location.Dialect { return location.TrakCare }

func (s *TrakCareSource) table() string {
	return pgx.Identifier(strings.Split(s.view, ".")).Sanitize()
}

const inpatientCols = `COALESCE(nhs_number, ''), COALESCE(reg_number, ''),
	COALESCE(forename, ''), COALESCE(surname, ''), date_of_birth, admission_date,
	COALESCE(ward, ''), COALESCE(room, ''), COALESCE(bed, ''),
	COALESCE(reason_for_admission, ''), COALESCE(consultant, '')`

func (s *TrakCareSource) fetchSQL() string {
	return `SELECT ` + inpatientCols + ` FROM ` + s.table() + ` WHERE consultant = ANY($1)`
}

func (s *TrakCareSource) reasonsSQL() string {
	return `SELECT replace(COALESCE(nhs_number, ''), ' ', ''), COALESCE(reg_number, ''),
		COALESCE(reason_for_admission, '')
		FROM ` + s.table() + `
		WHERE replace(nhs_number, ' ', '') = ANY($1) OR reg_number = ANY($1)`
}

// Fetch returns every inpatient under the given consultants.
func (s *TrakCareSource) Fetch(ctx context.Context, consultants []string) ([]Row, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, s.fetchSQL(), consultants)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w: %w", s.view, ErrSource, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var (
			r        Row
			dob, adm *time.Time
		)
		if err := rows.Scan(&r.NHSNumber, &r.RegNumber, &r.Forename, &r.Surname, &dob, &adm,
			&r.Ward, &r.Bay, &r.Bed, &r.ReasonForAdmission, &r.Consultant); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.view, err)
		}
		if dob != nil {
			r.DateOfBirth = *dob
		}
		if adm != nil {
			r.AdmissionDate = *adm
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", s.view, ErrSource, err)
	}

	s.logger.Debug().
		Int("rows", len(out)).
		Int("consultants", len(consultants)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched trakcare inpatients")
	return out, nil
}

// ReasonsForAdmission looks up the recorded reason for admission by NHS
// number or registration number. Patients without a recorded reason are left
// out of the result.
func (s *TrakCareSource) ReasonsForAdmission(ctx context.Context, identifiers []string) (map[string]string, error) {
	if len(identifiers) == 0 {
		return map[string]string{}, nil
	}
	rows, err := s.db.Query(ctx, s.reasonsSQL(), identifiers)
	if err != nil {
		return nil, fmt.Errorf("query reasons: %w: %w", ErrSource, err)
	}
	defer rows.Close()

	wanted := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		wanted[id] = true
	}
	out := make(map[string]string)
	for rows.Next() {
		var nhs, reg, reason string
		if err := rows.Scan(&nhs, &reg, &reason); err != nil {
			return nil, fmt.Errorf("scan reasons: %w", err)
		}
		collectReason(out, wanted, nhs, reg, reason)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reasons: %w: %w", ErrSource, err)
	}
	return out, nil
}

func collectReason(out map[string]string, wanted map[string]bool, nhs, reg, reason string) {
	if reason == "" {
		return
	}
	switch {
	case wanted[nhs]:
		out[nhs] = reason
	case wanted[reg]:
		out[reg] = reason
	}
}
