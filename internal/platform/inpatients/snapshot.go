package inpatients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
)

const snapshotSchema = `CREATE TABLE IF NOT EXISTS inpatients (
	nhs_number TEXT,
	reg_number TEXT,
	forename TEXT,
	surname TEXT,
	date_of_birth TEXT,
	admission_date TEXT,
	ward TEXT,
	room TEXT,
	bed TEXT,
	reason_for_admission TEXT,
	consultant TEXT
)`

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// SnapshotSource serves inpatients from a SQLite copy of the TrakCare view,
// for use away from the hospital network.
type SnapshotSource struct {
	db     *sql.DB
	logger zerolog.Logger
}

// OpenSnapshot opens (creating if needed) the snapshot database at path.
func OpenSnapshot(path string, logger zerolog.Logger) (*SnapshotSource, error) {
	if path == "" {
		return nil, errors.New("snapshot path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(snapshotSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create inpatients table: %w", err)
	}
	return &SnapshotSource{db: db, logger: logger}, nil
}

func (s *SnapshotSource) Close() error { return s.db.Close() }

func (s *SnapshotSource) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SnapshotSource) Dialect() location.Dialect { return location.TrakCare }

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, v := range ss {
		args[i] = v
	}
	return args
}

// Fetch returns every inpatient under the given consultants.
func (s *SnapshotSource) Fetch(ctx context.Context, consultants []string) ([]Row, error) {
	if len(consultants) == 0 {
		return nil, nil
	}
	q := `SELECT ` + inpatientCols + ` FROM inpatients WHERE consultant IN (` + placeholders(len(consultants)) + `)`
	rows, err := s.db.QueryContext(ctx, q, stringArgs(consultants)...)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w: %w", ErrSource, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		var (
			r        Row
			dob, adm sql.NullString
		)
		if err := rows.Scan(&r.NHSNumber, &r.RegNumber, &r.Forename, &r.Surname, &dob, &adm,
			&r.Ward, &r.Bay, &r.Bed, &r.ReasonForAdmission, &r.Consultant); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if r.DateOfBirth, err = parseDate(dob); err != nil {
			return nil, fmt.Errorf("date_of_birth for %s: %w", r.Identifier(), err)
		}
		if r.AdmissionDate, err = parseDate(adm); err != nil {
			return nil, fmt.Errorf("admission_date for %s: %w", r.Identifier(), err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot: %w: %w", ErrSource, err)
	}
	s.logger.Debug().Int("rows", len(out)).Msg("fetched snapshot inpatients")
	return out, nil
}

// ReasonsForAdmission behaves like TrakCareSource.ReasonsForAdmission.
func (s *SnapshotSource) ReasonsForAdmission(ctx context.Context, identifiers []string) (map[string]string, error) {
	out := make(map[string]string)
	if len(identifiers) == 0 {
		return out, nil
	}
	ph := placeholders(len(identifiers))
	q := `SELECT replace(COALESCE(nhs_number, ''), ' ', ''), COALESCE(reg_number, ''),
		COALESCE(reason_for_admission, '')
		FROM inpatients
		WHERE replace(nhs_number, ' ', '') IN (` + ph + `) OR reg_number IN (` + ph + `)`
	args := append(stringArgs(identifiers), stringArgs(identifiers)...)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query reasons: %w: %w", ErrSource, err)
	}
	defer func() { _ = rows.Close() }()

	wanted := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		wanted[id] = true
	}
	for rows.Next() {
		var nhs, reg, reason string
		if err := rows.Scan(&nhs, &reg, &reason); err != nil {
			return nil, fmt.Errorf("scan reasons: %w", err)
		}
		collectReason(out, wanted, nhs, reg, reason)
	}
	return out, rows.Err()
}

// Replace overwrites the snapshot with rows in a single transaction.
func (s *SnapshotSource) Replace(ctx context.Context, rows []Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inpatients`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO inpatients (nhs_number, reg_number, forename, surname,
		date_of_birth, admission_date, ward, room, bed, reason_for_admission, consultant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.NHSNumber, r.RegNumber, r.Forename, r.Surname,
			formatDate(r.DateOfBirth), formatDate(r.AdmissionDate),
			r.Ward, r.Bay, r.Bed, r.ReasonForAdmission, r.Consultant); err != nil {
			return fmt.Errorf("insert %s: %w", r.Identifier(), err)
		}
	}
	return tx.Commit()
}

func parseDate(v sql.NullString) (time.Time, error) {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return time.Time{}, nil
	}
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, strings.TrimSpace(v.String)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format("2006-01-02")
}
