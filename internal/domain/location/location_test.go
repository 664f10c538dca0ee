package location

import (
	"errors"
	"sort"
	"testing"

	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

func TestNormalize_TrakCare(t *testing.T) {
	tests := []struct {
		ward ward.Ward
		bay  string
		bed  string
		want string
	}{
		{ward.Alexandra, "Bay 3", "Bed F", "3F"},
		{ward.Alexandra, "Room 2", "Bed 1", "SR2"},
		{ward.CarolineThorpe, "Bay 02 CT", "Bed01", "B2 B1"},
		{ward.CarolineThorpe, "Room 04 CT", "Bed01", "SR4"},
		{ward.Capener, "Bay 03 CA", "BedD", "3D"},
		{ward.Capener, "Room 07 CA", "Bed01", "SR7"},
		{ward.Capener, "Lundy Bay on Capener Ward", "Bed1F", "LBOC F"},
		{ward.DaySurgeryUnit, "DSU Bay 03", "BEDF", "3F"},
		{ward.DaySurgeryUnit, "DSU Room 02", "BED01", "SR2"},
		{ward.Fortescue, "Yellow (FORT)", "Bed01", "Yell 1"},
		{ward.Fortescue, "Green (FORT)", "Bed02", "Green 2"},
		{ward.Fortescue, "Lilac (FORT)", "Bed03", "Lilac 3"},
		{ward.Fortescue, "Blue (FORT)", "Bed04", "Blue 4"},
		{ward.Fortescue, "Pink (FORT)", "Bed05", "Pink 5"},
		{ward.Fortescue, "Lilac Room (FORT)", "Bed01", "SR Lilac"},
		{ward.Fortescue, "Yellow Room (FORT)", "Bed01", "SR Yellow"},
		{ward.Glossop, "Bay 03 GL", "BedF", "3F"},
		{ward.Glossop, "Room 13 GL", "Bed01", "SR13"},
		{ward.KGV, "KGV Bay 05", "BedD", "5D"},
		{ward.KGV, "KGV Room 05", "Bed01", "SR5"},
		{ward.Lundy, "Bay 1 LU", "BedA", "1A"},
		{ward.Lundy, "Room 02 LU", "Bed01", "SR2"},
		{ward.Roborough, "Room 10 RO", "Bed10", "SR10"},
		{ward.Staples, "Bay 03 STA", "Bed E", "3E"},
		{ward.Staples, "Room 1 STA", "Bed 1", "SR1"},
		{ward.Tarka, "Bay 02 TA", "Bed2B", "2B"},
		{ward.Tarka, "Tarka Room 02", "Bed01", "SR2"},
		{ward.Victoria, "Bay 01 VIC", "BedA", "1A"},
		{ward.Victoria, "Room 11 VIC", "Bed01", "SR11"},
		{ward.Victoria, "Discharge Area VIC", "", "DA"},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.ward, tt.bay, tt.bed)
		if err != nil {
			t.Errorf("Normalize(%s, %q, %q) unexpected error: %v", tt.ward, tt.bay, tt.bed, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%s, %q, %q) = %q, want %q", tt.ward, tt.bay, tt.bed, got, tt.want)
		}
	}
}

func TestNormalize_CareFlow(t *testing.T) {
	tests := []struct {
		ward ward.Ward
		bay  string
		bed  string
		want string
	}{
		{ward.Glossop, "GLOBAY01", "BedF", "1F"},
		{ward.Glossop, "GLOSR13", "Bed01", "SR13"},
		{ward.Victoria, "VICRM09", "Bed01", "SR9"},
		{ward.Fortescue, "FOR2GREEN", "Bed03", "Green 3"},
		{ward.Fortescue, "FOR1BLUEBAY", "Bed2", "Blue 2"},
		{ward.Fortescue, "FOR3YELLOW", "Bed4", "Yell 4"},
		{ward.Fortescue, "FORYELLOWRM", "Bed01", "SR Yellow"},
		{ward.Lundy, "CAPBAY01", "Bed1C", "1C"},
	}
	for _, tt := range tests {
		_, got, err := CareFlow.Resolve(tt.ward, tt.bay, tt.bed)
		if err != nil {
			t.Errorf("CareFlow.Resolve(%s, %q, %q) unexpected error: %v", tt.ward, tt.bay, tt.bed, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CareFlow.Resolve(%s, %q, %q) = %q, want %q", tt.ward, tt.bay, tt.bed, got, tt.want)
		}
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	a, errA := Normalize(ward.Victoria, "Room 09 VIC", "Bed01")
	b, errB := Normalize(ward.Victoria, "Room 09 VIC", "Bed01")
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if a != b {
		t.Errorf("expected identical labels, got %q and %q", a, b)
	}
}

func TestNormalize_FormatErrors(t *testing.T) {
	tests := []struct {
		name string
		ward ward.Ward
		bay  string
		bed  string
	}{
		{"no bay number", ward.Glossop, "Bay GL", "BedF"},
		{"no side room number", ward.Victoria, "Room VIC", "Bed01"},
		{"empty bed", ward.Glossop, "Bay 03 GL", ""},
		{"fortescue bed without number", ward.Fortescue, "Blue (FORT)", "BedA"},
		{"empty bay", ward.Tarka, "", "Bed1"},
	}
	for _, tt := range tests {
		_, err := Normalize(tt.ward, tt.bay, tt.bed)
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("%s: expected *FormatError, got %v", tt.name, err)
		}
	}
}

func TestParse_LundyBayOnCapener(t *testing.T) {
	loc, err := Parse(CareFlow, ward.Lundy, "CAPBAY01", "Bed1C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Ward() != ward.Capener {
		t.Errorf("expected ward Capener, got %s", loc.Ward())
	}

	loc, err = New(ward.Lundy, "Lundy Bay on Capener Ward", "Bed1F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Ward() != ward.Capener {
		t.Errorf("expected ward Capener, got %s", loc.Ward())
	}
	if loc.Bed() != "LBOC F" {
		t.Errorf("expected LBOC F, got %s", loc.Bed())
	}
	// raw values survive the correction
	if loc.Bay() != "Lundy Bay on Capener Ward" || loc.RawBed() != "Bed1F" {
		t.Errorf("raw bay/bed = %q/%q", loc.Bay(), loc.RawBed())
	}

	loc, err = New(ward.Lundy, "Bay 1 LU", "BedA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Ward() != ward.Lundy {
		t.Errorf("expected ward to stay Lundy, got %s", loc.Ward())
	}
}

func TestLocation_Equal(t *testing.T) {
	a := mustNew(t, ward.Victoria, "Bay 03 VIC", "BedA")
	b := mustNew(t, ward.Victoria, "Bay 03 VIC", "BedA")
	c := mustNew(t, ward.Capener, "Bay 03 CA", "BedA")
	if !a.Equal(b) {
		t.Errorf("%v and %v should be equal", a, b)
	}
	if a.Equal(c) {
		t.Errorf("%v and %v should differ", a, c)
	}
	var none *Location
	if a.Equal(none) || !none.Equal(nil) {
		t.Error("nil handling is wrong")
	}
}

func TestLocation_IsSideRoom(t *testing.T) {
	tests := []struct {
		ward ward.Ward
		bay  string
		bed  string
		want bool
	}{
		{ward.Fortescue, "Yellow Room (FORT)", "Bed01", true},
		{ward.Fortescue, "Green (FORT)", "Bed03", false},
		{ward.Glossop, "Bay 01 GL", "BedF", false},
		{ward.Glossop, "Room 13 GL", "Bed01", true},
	}
	for _, tt := range tests {
		loc, err := New(tt.ward, tt.bay, tt.bed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if loc.IsSideRoom() != tt.want {
			t.Errorf("%s %q IsSideRoom() = %v, want %v", tt.ward, tt.bay, loc.IsSideRoom(), tt.want)
		}
	}
}

func sortedBeds(t *testing.T, locs []*Location) []string {
	t.Helper()
	sort.SliceStable(locs, func(i, j int) bool { return locs[i].SortKey() < locs[j].SortKey() })
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Bed()
	}
	return out
}

func mustNew(t *testing.T, w ward.Ward, bay, bed string) *Location {
	t.Helper()
	loc, err := New(w, bay, bed)
	if err != nil {
		t.Fatalf("New(%s, %q, %q): %v", w, bay, bed, err)
	}
	return loc
}

func TestSortKey_SideRoomsNumeric(t *testing.T) {
	locs := []*Location{
		mustNew(t, ward.Victoria, "Room 09 VIC", "Bed01"),
		mustNew(t, ward.Victoria, "Room 10 VIC", "Bed01"),
		mustNew(t, ward.Victoria, "Room 02 VIC", "Bed01"),
	}
	got := sortedBeds(t, locs)
	want := []string{"SR2", "SR9", "SR10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSortKey_NonFortescue(t *testing.T) {
	locs := []*Location{
		mustNew(t, ward.Victoria, "Bay 04 VIC", "BedD"),
		mustNew(t, ward.Victoria, "Bay 03 VIC", "BedC"),
		mustNew(t, ward.Victoria, "Bay 02 VIC", "BedE"),
		mustNew(t, ward.Victoria, "Discharge Area VIC", ""),
		mustNew(t, ward.Victoria, "Room 07 VIC", "Bed01"),
		mustNew(t, ward.Victoria, "Bay 01 VIC", "BedA"),
		mustNew(t, ward.Victoria, "Room 10 VIC", "Bed01"),
		mustNew(t, ward.Victoria, "Bay 01 VIC", "BedB"),
		mustNew(t, ward.Victoria, "Room 09 VIC", "Bed01"),
		mustNew(t, ward.Victoria, "Bay 04 VIC", "BedF"),
	}
	got := sortedBeds(t, locs)
	want := []string{"1A", "1B", "2E", "3C", "4D", "4F", "SR7", "SR9", "SR10", "DA"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSortKey_Fortescue(t *testing.T) {
	locs := []*Location{
		mustNew(t, ward.Fortescue, "Pink (FORT)", "bed05"),
		mustNew(t, ward.Fortescue, "Yellow Room (FORT)", "bed01"),
		mustNew(t, ward.Fortescue, "Discharge Area FORT", ""),
		mustNew(t, ward.Fortescue, "Blue (FORT)", "bed01"),
		mustNew(t, ward.Fortescue, "Lilac Room (FORT)", "bed01"),
		mustNew(t, ward.Fortescue, "Yellow (FORT)", "bed02"),
		mustNew(t, ward.Fortescue, "Green (FORT)", "bed03"),
		mustNew(t, ward.Fortescue, "Blue Room (FORT)", "bed01"),
	}
	got := sortedBeds(t, locs)
	want := []string{"Blue 1", "Green 3", "Pink 5", "Yell 2", "SR Blue", "SR Lilac", "SR Yellow", "DA"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSortKey_DischargeAreaLast(t *testing.T) {
	for _, w := range ward.All() {
		da := SortKey(w, DischargeArea)
		for _, label := range []string{"1A", "SR10", "SR Pink", "LBOC F", "Yell 6", "B4 B2"} {
			if SortKey(w, label) >= da {
				t.Errorf("ward %s: %q sorts at or after the discharge area", w, label)
			}
		}
	}
}
