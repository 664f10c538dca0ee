// Package location converts the bay and bed strings reported by the upstream
// patient systems into the short bed labels printed on a handover list, and
// derives the key used to order beds within a ward.
package location

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

// DischargeArea is the label given to every discharge lounge/area bed.
const DischargeArea = "DA"

// FormatError reports a bay/bed pair that no parsing rule recognises.
type FormatError struct {
	Ward   ward.Ward
	Bay    string
	Bed    string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognised bed format (ward=%s bay=%q bed=%q): %s", e.Ward, e.Bay, e.Bed, e.Reason)
}

// Location is a patient's position on a ward. The bed label is computed once
// at construction and cannot be changed afterwards.
type Location struct {
	ward   ward.Ward
	bay    string
	rawBed string
	bed    string
}

// New parses a TrakCare bay/bed pair.
func New(w ward.Ward, bay, bed string) (*Location, error) {
	return Parse(TrakCare, w, bay, bed)
}

// Parse builds a Location from a bay/bed pair in the given dialect. The
// location's ward may differ from w when the bay belongs to another ward
// (see CorrectWard).
func Parse(d Dialect, w ward.Ward, bay, bed string) (*Location, error) {
	effective, label, err := d.Resolve(w, bay, bed)
	if err != nil {
		return nil, err
	}
	return &Location{ward: effective, bay: bay, rawBed: bed, bed: label}, nil
}

func (l *Location) Ward() ward.Ward { return l.ward }
func (l *Location) Bay() string     { return l.bay }
func (l *Location) RawBed() string  { return l.rawBed }

// Bed returns the canonical bed label, e.g. "3A", "SR10", "Blue 4".
func (l *Location) Bed() string { return l.bed }

// IsSideRoom reports whether the bed is a single-occupancy room.
func (l *Location) IsSideRoom() bool { return strings.HasPrefix(l.bed, "SR") }

// SortKey returns the string used to order beds within a ward. It is never
// displayed.
//
// Numbered side rooms are zero padded so that SR9 precedes SR10. Fortescue's
// colour-named side rooms go after every bay bed, and the discharge area is
// always last.
func (l *Location) SortKey() string {
	return SortKey(l.ward, l.bed)
}

// SortKey derives the ordering key for a bed label on the given ward.
func SortKey(w ward.Ward, label string) string {
	switch {
	case label == DischargeArea:
		return "ZZ" + DischargeArea
	case strings.HasPrefix(label, "SR") && w == ward.Fortescue:
		return "Z" + label
	case strings.HasPrefix(label, "SR"):
		n, err := strconv.Atoi(strings.TrimPrefix(label, "SR"))
		if err != nil {
			return label
		}
		return fmt.Sprintf("SR%02d", n)
	}
	return label
}

func (l *Location) String() string {
	return fmt.Sprintf("%s %s", l.ward, l.bed)
}

// Equal reports whether two locations name the same bed on the same ward.
func (l *Location) Equal(other *Location) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.ward == other.ward && l.bed == other.bed
}
