// Package ward defines the closed set of hospital wards a handover list can
// contain patients from.
package ward

import "strings"

// Ward is one of a fixed set of inpatient wards. The zero value is not a
// valid ward.
type Ward int

const (
	Alexandra Ward = iota + 1
	Capener
	CarolineThorpe
	DaySurgeryUnit
	Fortescue
	Glossop
	KGV
	Lundy
	Roborough
	Staples
	Tarka
	Victoria
)

// Display names as reported by the upstream patient systems.
var names = map[Ward]string{
	Alexandra:      "Alexandra",
	Capener:        "Capener",
	CarolineThorpe: "Caroline Thorpe",
	DaySurgeryUnit: "Day Surgery Unit NDDH",
	Fortescue:      "Fortescue",
	Glossop:        "Glossop",
	KGV:            "King George Vth (Surgical Assessment Unit)",
	Lundy:          "Lundy",
	Roborough:      "Roborough",
	Staples:        "Staples",
	Tarka:          "Tarka",
	Victoria:       "Victoria",
}

var byName = func() map[string]Ward {
	m := make(map[string]Ward, len(names))
	for w, n := range names {
		m[n] = w
	}
	return m
}()

// String returns the ward's display name.
func (w Ward) String() string {
	if n, ok := names[w]; ok {
		return n
	}
	return "Unknown"
}

// Valid reports whether w is a member of the ward set.
func (w Ward) Valid() bool {
	_, ok := names[w]
	return ok
}

// Parse returns the ward with the given display name. Matching is exact
// apart from surrounding whitespace.
func Parse(name string) (Ward, bool) {
	w, ok := byName[strings.TrimSpace(name)]
	return w, ok
}

// Allowed is the membership predicate applied to source rows before they
// reach the roster. Rows on any area outside the ward set (assessment units,
// ITU, test wards) are excluded by it.
func Allowed(name string) bool {
	_, ok := Parse(name)
	return ok
}

// All returns every ward in declaration order.
func All() []Ward {
	out := make([]Ward, 0, len(names))
	for w := Alexandra; w <= Victoria; w++ {
		out = append(out, w)
	}
	return out
}
