package reconcile

import (
	"testing"

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
	"github.com/mfreeborn/patient-list-generator/internal/domain/patient"
	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

func mustLocation(t *testing.T, w ward.Ward, bay, bed string) *location.Location {
	t.Helper()
	loc, err := location.New(w, bay, bed)
	if err != nil {
		t.Fatalf("location.New: %v", err)
	}
	return loc
}

func TestReconcile_Scenario(t *testing.T) {
	existing := patient.NewRoster(ward.Victoria)
	existing.Insert(patient.FromExistingRow("1111111111", patient.ClinicalNotes{Jobs: "CXR"}))

	bay3 := mustLocation(t, ward.Victoria, "Bay 03 VIC", "BedA")
	fresh := patient.NewRoster(ward.Victoria)
	fresh.Insert(patient.FromRaw("1111111111", patient.Demographics{Surname: "x"}, bay3))
	fresh.Insert(patient.FromRaw("2222222222", patient.Demographics{Surname: "y"}, mustLocation(t, ward.Victoria, "Bay 01 VIC", "BedA")))

	res, err := Reconcile(existing, fresh)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Roster.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", res.Roster.Len())
	}

	x, err := res.Roster.Lookup("1111111111")
	if err != nil {
		t.Fatalf("Lookup X: %v", err)
	}
	if x.Jobs != "CXR" || x.Bed() != "3A" || x.IsNew {
		t.Errorf("X = jobs %q bed %q new %v, want CXR 3A false", x.Jobs, x.Bed(), x.IsNew)
	}
	// the fresh location wins over whatever the existing row implied
	if !x.Location.Equal(bay3) {
		t.Errorf("X location = %v, want %v", x.Location, bay3)
	}

	y, err := res.Roster.Lookup("2222222222")
	if err != nil {
		t.Fatalf("Lookup Y: %v", err)
	}
	if y.ClinicalNotes != (patient.ClinicalNotes{}) || !y.IsNew {
		t.Errorf("Y = %+v new %v, want empty notes and new", y.ClinicalNotes, y.IsNew)
	}

	// sorted: 1A before 3A
	if got := res.Roster.Patients()[0].ID(); got != "2222222222" {
		t.Errorf("first patient = %s, want 2222222222", got)
	}
}

func TestReconcile_Classification(t *testing.T) {
	existing := patient.NewRoster(ward.Capener)
	existing.Insert(patient.FromExistingRow("1111111111", patient.ClinicalNotes{}))
	existing.Insert(patient.FromExistingRow("3333333333", patient.ClinicalNotes{Jobs: "TTO"}))

	fresh := patient.NewRoster(ward.Capener)
	fresh.Insert(patient.FromRaw("1111111111", patient.Demographics{}, mustLocation(t, ward.Capener, "Bay 01 CA", "BedA")))
	fresh.Insert(patient.FromRaw("2222222222", patient.Demographics{}, mustLocation(t, ward.Capener, "Bay 01 CA", "BedB")))

	res, err := Reconcile(existing, fresh)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	check := func(name string, got []patient.Identifier, want ...patient.Identifier) {
		t.Helper()
		if len(got) != len(want) {
			t.Errorf("%s = %v, want %v", name, got, want)
			return
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("%s = %v, want %v", name, got, want)
				return
			}
		}
	}
	check("Arrivals", res.Arrivals, "2222222222")
	check("Continuing", res.Continuing, "1111111111")
	check("Departures", res.Departures, "3333333333")

	if res.Roster.Contains("3333333333") {
		t.Error("departed patient must not appear on the merged roster")
	}
}

func TestReconcile_EmptyExistingMarksAllNew(t *testing.T) {
	existing := patient.NewRoster(ward.Staples)
	fresh := patient.NewRoster(ward.Staples)
	fresh.Insert(patient.FromRaw("1111111111", patient.Demographics{}, mustLocation(t, ward.Staples, "Bay 03 STA", "Bed E")))

	res, err := Reconcile(existing, fresh)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if res.Roster.NewCount() != 1 {
		t.Errorf("NewCount() = %d, want 1", res.Roster.NewCount())
	}
}
