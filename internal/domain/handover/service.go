package handover

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mfreeborn/patient-list-generator/internal/domain/patient"
	"github.com/mfreeborn/patient-list-generator/internal/domain/reconcile"
	"github.com/mfreeborn/patient-list-generator/internal/domain/team"
	"github.com/mfreeborn/patient-list-generator/internal/platform/blobstore"
	"github.com/mfreeborn/patient-list-generator/internal/platform/inpatients"
)

// FileExt is the extension of generated lists.
const FileExt = ".xlsx"

// GenerateRequest asks for a team's list to be regenerated from the previous
// one. A nil Input starts from an empty list.
type GenerateRequest struct {
	Team  team.Team
	Input io.Reader
}

// Result describes a generated list.
type Result struct {
	Team        string               `json:"team"`
	GeneratedAt time.Time            `json:"generated_at"`
	FileName    string               `json:"file_name"`
	Path        string               `json:"path,omitempty"`
	ArchiveID   string               `json:"archive_id,omitempty"`
	Patients    int                  `json:"patients"`
	NewPatients int                  `json:"new_patients"`
	Arrivals    []patient.Identifier `json:"arrivals"`
	Continuing  []patient.Identifier `json:"continuing"`
	Departures  []patient.Identifier `json:"departures"`
	Content     []byte               `json:"-"`
}

// Service regenerates handover lists.
type Service struct {
	source  inpatients.Source
	open    DocumentOpener
	reasons inpatients.ReasonLookup
	archive blobstore.Store
	rootDir string
	logger  zerolog.Logger
	now     func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithReasonLookup fills in the reason for admission of new patients whose
// source row did not carry one.
func WithReasonLookup(r inpatients.ReasonLookup) Option {
	return func(s *Service) { s.reasons = r }
}

// WithArchive stores every generated list in the archive.
func WithArchive(store blobstore.Store) Option {
	return func(s *Service) { s.archive = store }
}

// WithListRootDir also writes every generated list under dir.
func WithListRootDir(dir string) Option {
	return func(s *Service) { s.rootDir = dir }
}

// WithClock overrides the generation time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(source inpatients.Source, open DocumentOpener, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{source: source, open: open, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate reads the previous list, fetches the team's current inpatients,
// reconciles the two and renders the updated list.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Result, error) {
	t := req.Team
	at := s.now()
	log := s.logger.With().Str("team", t.Name).Logger()

	doc, err := s.open(req.Input)
	if err != nil {
		return nil, fmt.Errorf("open previous list: %w", err)
	}
	defer doc.Close()

	rows, err := doc.Rows()
	if err != nil {
		return nil, fmt.Errorf("read previous list: %w", err)
	}
	existing, err := ParseExisting(rows, t.HomeWard)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("patients", existing.Len()).Msg("parsed previous list")

	fetched, err := s.source.Fetch(ctx, t.ConsultantNames())
	if err != nil {
		return nil, fmt.Errorf("fetch inpatients for %s: %w", t.Name, err)
	}
	fresh, err := BuildRoster(inpatients.Filter(fetched), s.source.Dialect(), t.HomeWard)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("rows", len(fetched)).Int("patients", fresh.Len()).Msg("fetched current inpatients")

	rec, err := reconcile.Reconcile(existing, fresh.Roster)
	if err != nil {
		return nil, err
	}
	s.enrichReasons(ctx, log, rec.Roster, fresh.Reasons)

	if err := doc.Reset(); err != nil {
		return nil, fmt.Errorf("reset list: %w", err)
	}
	if err := Render(doc, rec.Roster, at); err != nil {
		return nil, fmt.Errorf("render list: %w", err)
	}
	if err := doc.SetFooter(Footer(rec.Roster.Len(), rec.Roster.NewCount(), at)); err != nil {
		return nil, fmt.Errorf("set footer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write list: %w", err)
	}

	res := &Result{
		Team:        t.Name,
		GeneratedAt: at,
		FileName:    FileName(t.Name, at),
		Patients:    rec.Roster.Len(),
		NewPatients: rec.Roster.NewCount(),
		Arrivals:    rec.Arrivals,
		Continuing:  rec.Continuing,
		Departures:  rec.Departures,
		Content:     buf.Bytes(),
	}
	if err := s.store(ctx, res); err != nil {
		return nil, err
	}

	log.Info().
		Int("patients", res.Patients).
		Int("new", len(res.Arrivals)).
		Int("continuing", len(res.Continuing)).
		Int("departed", len(res.Departures)).
		Str("path", res.Path).
		Str("archive_id", res.ArchiveID).
		Msg("handover list generated")
	return res, nil
}

// enrichReasons gives new patients a reason for admission. Failures of the
// lookup are logged and otherwise ignored: the list is still usable without.
func (s *Service) enrichReasons(ctx context.Context, log zerolog.Logger, roster *patient.Roster, fromSource map[patient.Identifier]string) {
	var missing []string
	for _, p := range roster.Patients() {
		if !p.IsNew || p.ReasonForAdmission != "" {
			continue
		}
		if reason, ok := fromSource[p.ID()]; ok {
			p.ReasonForAdmission = reason
			continue
		}
		missing = append(missing, string(p.ID()))
	}
	if len(missing) == 0 || s.reasons == nil {
		return
	}

	reasons, err := s.reasons.ReasonsForAdmission(ctx, missing)
	if err != nil {
		log.Warn().Err(err).Int("patients", len(missing)).Msg("reason for admission lookup failed")
		return
	}
	for id, reason := range reasons {
		p, err := roster.Lookup(patient.Identifier(id))
		if err != nil {
			continue
		}
		p.ReasonForAdmission = patient.CollapseWhitespace(reason)
	}
}

func (s *Service) store(ctx context.Context, res *Result) error {
	if s.rootDir != "" {
		res.Path = OutputPath(s.rootDir, res.Team, res.GeneratedAt)
		if err := os.MkdirAll(filepath.Dir(res.Path), 0o750); err != nil {
			return fmt.Errorf("create list directory: %w", err)
		}
		if err := os.WriteFile(res.Path, res.Content, 0o640); err != nil {
			return fmt.Errorf("save list: %w", err)
		}
	}
	if s.archive != nil {
		meta, err := s.archive.Upload(ctx, blobstore.Metadata{
			FileName:    res.FileName,
			ContentType: blobstore.ContentTypeXLSX,
			Team:        res.Team,
			Patients:    res.Patients,
			NewPatients: res.NewPatients,
			GeneratedAt: res.GeneratedAt,
		}, bytes.NewReader(res.Content))
		if err != nil {
			return fmt.Errorf("archive list: %w", err)
		}
		res.ArchiveID = meta.ID
	}
	return nil
}

// Footer is the page footer of a generated list.
func Footer(patients, newPatients int, at time.Time) string {
	noun := "patients"
	if patients == 1 {
		noun = "patient"
	}
	return fmt.Sprintf("%d %s (%d new)\t\tGenerated at %s", patients, noun, newPatients, at.Format("15:04 02/01/2006"))
}

// FileName is the lower-cased name of a team's list for the given day,
// e.g. "05-03-2024_gastro.xlsx".
func FileName(teamName string, at time.Time) string {
	return strings.ToLower(at.Format("02-01-2006")+"_"+teamName) + FileExt
}

// OutputPath places a list at <root>/<team>/<yyyy>/<mm Month>/<file name>.
func OutputPath(root, teamName string, at time.Time) string {
	return filepath.Join(root, teamName, at.Format("2006"), at.Format("01 January"), FileName(teamName, at))
}
