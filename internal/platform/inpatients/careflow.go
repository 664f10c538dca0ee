package inpatients

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
)

const (
	DefaultCareFlowURL    = "https://connect.careflowapp.com"
	DefaultCareFlowAPIURL = "https://appapi.careflowapp.com"
	DefaultNetworkID      = 1123
	DefaultWorkers        = 4

	careflowClientID    = "DocComMobile"
	careflowRedirectURI = "http://careflowconnect.com"
	careflowPageSize    = 50
	careflowDOBLayout   = "02-Jan-2006"
)

// CareFlowConfig holds the endpoints and the user's credentials.
type CareFlowConfig struct {
	BaseURL   string
	APIURL    string
	Username  string
	Password  string
	NetworkID int
	Workers   int
	Timeout   time.Duration
}

// CareFlowSource fetches inpatients from the CareFlow API, one request per
// consultant, with a bounded number of requests in flight.
type CareFlowSource struct {
	cfg    CareFlowConfig
	auth   *resty.Client
	api    *resty.Client
	logger zerolog.Logger
}

func NewCareFlowSource(cfg CareFlowConfig, logger zerolog.Logger) *CareFlowSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCareFlowURL
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultCareFlowAPIURL
	}
	if cfg.NetworkID == 0 {
		cfg.NetworkID = DefaultNetworkID
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &CareFlowSource{
		cfg: cfg,
		auth: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout),
		api: resty.New().
			SetBaseURL(cfg.APIURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
		logger: logger,
	}
}

func (s *CareFlowSource) Dialect() location.Dialect { return location.CareFlow }

type careflowAuthRequest struct {
	ClientID     string `json:"client_id"`
	EmailAddress string `json:"emailAddress"`
	Password     string `json:"password"`
	RedirectURI  string `json:"redirect_uri"`
	ResponseType string `json:"response_type"`
}

type careflowPatient struct {
	GivenName   string `json:"PatientGivenName"`
	FamilyName  string `json:"PatientFamilyName"`
	DateOfBirth string `json:"PatientDateOfBirth"`
	NHSNumber   string `json:"PatientNHSNumber"`
	AreaName    string `json:"AreaName"`
	Bay         string `json:"Bay"`
	Bed         string `json:"Bed"`
}

type careflowSearchResponse struct {
	Data struct {
		Patients []careflowPatient `json:"Patients"`
	} `json:"Data"`
}

// Fetch logs in once and then queries every consultant's patients.
func (s *CareFlowSource) Fetch(ctx context.Context, consultants []string) ([]Row, error) {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return nil, ErrMissingCredentials
	}
	start := time.Now()

	token, err := s.login(ctx)
	if err != nil {
		return nil, err
	}

	results := make([][]Row, len(consultants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, consultant := range consultants {
		g.Go(func() error {
			rows, err := s.fetchConsultant(gctx, token, consultant)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Row
	for _, rows := range results {
		out = append(out, rows...)
	}
	s.logger.Debug().
		Int("rows", len(out)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched careflow inpatients")
	return out, nil
}

// login scrapes the CSRF token from the sign-in page, authenticates and
// returns the bearer token.
func (s *CareFlowSource) login(ctx context.Context) (string, error) {
	page, err := s.auth.R().SetContext(ctx).Get("/")
	if err != nil {
		return "", fmt.Errorf("careflow sign-in page: %w: %w", ErrSource, err)
	}
	if page.IsError() {
		return "", fmt.Errorf("careflow sign-in page: status %d: %w", page.StatusCode(), ErrSource)
	}
	csrf, err := csrfToken(page.String())
	if err != nil {
		return "", fmt.Errorf("careflow sign-in page: %w: %w", ErrSource, err)
	}

	resp, err := s.auth.R().
		SetContext(ctx).
		SetHeader("CSRF-Token", csrf).
		SetBody(careflowAuthRequest{
			ClientID:     careflowClientID,
			EmailAddress: s.cfg.Username,
			Password:     s.cfg.Password,
			RedirectURI:  careflowRedirectURI,
			ResponseType: "token",
		}).
		Post("/authenticate")
	if err != nil {
		return "", fmt.Errorf("careflow authenticate: %w: %w", ErrSource, err)
	}
	token := resp.Header().Get("access_token")
	if token == "" {
		s.logger.Warn().Int("status", resp.StatusCode()).Msg("careflow login rejected")
		return "", ErrUnauthorized
	}
	return token, nil
}

func (s *CareFlowSource) fetchConsultant(ctx context.Context, token, consultant string) ([]Row, error) {
	var body careflowSearchResponse
	resp, err := s.api.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"networkId": strconv.Itoa(s.cfg.NetworkID),
			"clinician": consultant,
			"skip":      "0",
			"take":      strconv.Itoa(careflowPageSize),
		}).
		SetResult(&body).
		Get("/patients/SearchForPatientsByPopulation")
	if err != nil {
		return nil, fmt.Errorf("careflow patients for %s: %w: %w", consultant, ErrSource, err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.IsError():
		return nil, fmt.Errorf("careflow patients for %s: status %d: %w", consultant, resp.StatusCode(), ErrSource)
	}

	rows := make([]Row, 0, len(body.Data.Patients))
	for _, p := range body.Data.Patients {
		r := Row{
			NHSNumber:  p.NHSNumber,
			Forename:   p.GivenName,
			Surname:    p.FamilyName,
			Ward:       p.AreaName,
			Bay:        p.Bay,
			Bed:        p.Bed,
			Consultant: consultant,
		}
		if p.DateOfBirth != "" {
			dob, err := time.Parse(careflowDOBLayout, p.DateOfBirth)
			if err != nil {
				s.logger.Warn().Str("nhs_number", p.NHSNumber).Str("dob", p.DateOfBirth).Msg("unreadable date of birth")
			} else {
				r.DateOfBirth = dob
			}
		}
		rows = append(rows, r)
	}
	s.logger.Debug().Str("consultant", consultant).Int("rows", len(rows)).Msg("careflow consultant fetched")
	return rows, nil
}

// csrfToken finds <meta name="csrf-token" content="..."> in an HTML page.
func csrfToken(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var token string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if token != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			var name, content string
			for _, a := range n.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "content":
					content = a.Val
				}
			}
			if name == "csrf-token" {
				token = content
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	if token == "" {
		return "", fmt.Errorf("no csrf-token meta tag")
	}
	return token, nil
}
