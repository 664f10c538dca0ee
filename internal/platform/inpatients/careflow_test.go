package inpatients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

type fakeCareFlow struct {
	token    string
	requests atomic.Int32
	patients map[string][]careflowPatient
}

func (f *fakeCareFlow) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><meta name="csrf-token" content="csrf-123"></head><body></body></html>`))
	})
	mux.HandleFunc("/authenticate", func(w http.ResponseWriter, r *http.Request) {
		var req careflowAuthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.Header.Get("CSRF-Token") != "csrf-123" || req.ClientID != careflowClientID || req.Password != "secret" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("access_token", f.token)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/patients/SearchForPatientsByPopulation", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+f.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("networkId") != "1123" || q.Get("take") != "50" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		var body careflowSearchResponse
		body.Data.Patients = f.patients[q.Get("clinician")]
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestCareFlow(t *testing.T, f *fakeCareFlow, password string) *CareFlowSource {
	srv := f.server(t)
	return NewCareFlowSource(CareFlowConfig{
		BaseURL:  srv.URL,
		APIURL:   srv.URL,
		Username: "doctor@nhs.net",
		Password: password,
		Workers:  2,
	}, zerolog.Nop())
}

func TestCareFlowSource_Fetch(t *testing.T) {
	f := &fakeCareFlow{
		token: "tok",
		patients: map[string][]careflowPatient{
			"Dr A": {{GivenName: "John", FamilyName: "Smith", DateOfBirth: "14-May-1956",
				NHSNumber: "1111111111", AreaName: "Glossop", Bay: "GLOBAY01", Bed: "BEDA"}},
			"Dr B": {{GivenName: "Ann", FamilyName: "Other", DateOfBirth: "not a date",
				NHSNumber: "2222222222", AreaName: "Fortescue", Bay: "FOR2GREEN", Bed: "BED2"}},
		},
	}
	s := newTestCareFlow(t, f, "secret")

	rows, err := s.Fetch(context.Background(), []string{"Dr A", "Dr B", "Dr C"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Fetch returned %d rows, want 2", len(rows))
	}
	if f.requests.Load() != 3 {
		t.Errorf("expected one request per consultant, got %d", f.requests.Load())
	}
	if rows[0].Consultant != "Dr A" || rows[0].DateOfBirth.Year() != 1956 || rows[0].Bay != "GLOBAY01" {
		t.Errorf("first row = %+v", rows[0])
	}
	if !rows[1].DateOfBirth.IsZero() {
		t.Errorf("unreadable dob should be left empty, got %v", rows[1].DateOfBirth)
	}
}

func TestCareFlowSource_MissingCredentials(t *testing.T) {
	s := NewCareFlowSource(CareFlowConfig{}, zerolog.Nop())
	if _, err := s.Fetch(context.Background(), []string{"Dr A"}); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestCareFlowSource_BadPassword(t *testing.T) {
	f := &fakeCareFlow{token: "tok"}
	s := newTestCareFlow(t, f, "wrong")
	if _, err := s.Fetch(context.Background(), []string{"Dr A"}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if f.requests.Load() != 0 {
		t.Error("no patient requests should be made after a failed login")
	}
}

func TestCSRFToken(t *testing.T) {
	if _, err := csrfToken(`<html><head></head></html>`); err == nil {
		t.Error("expected error when the meta tag is missing")
	}
	got, err := csrfToken(`<html><head><meta charset="utf-8"><meta content="abc" name="csrf-token"></head></html>`)
	if err != nil || got != "abc" {
		t.Errorf("csrfToken = %q, %v", got, err)
	}
}
