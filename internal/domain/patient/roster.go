package patient

import (
	"fmt"
	"sort"

	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

// Roster is an ordered collection of patients keyed by identifier. It holds
// at most one patient per identifier.
type Roster struct {
	home     ward.Ward
	patients []*Patient
	index    map[Identifier]int
}

// NewRoster returns an empty roster for a team based on the home ward.
func NewRoster(home ward.Ward) *Roster {
	return &Roster{home: home, index: make(map[Identifier]int)}
}

// HomeWard returns the ward that sorts first.
func (r *Roster) HomeWard() ward.Ward { return r.home }

// Insert adds p, replacing any patient with the same identifier in place.
func (r *Roster) Insert(p *Patient) {
	if i, ok := r.index[p.id]; ok {
		r.patients[i] = p
		return
	}
	r.index[p.id] = len(r.patients)
	r.patients = append(r.patients, p)
}

// Contains reports whether a patient with id is present.
func (r *Roster) Contains(id Identifier) bool {
	_, ok := r.index[id]
	return ok
}

// Lookup returns the patient with id. The error wraps ErrNotFound.
func (r *Roster) Lookup(id Identifier) (*Patient, error) {
	i, ok := r.index[id]
	if !ok {
		return nil, fmt.Errorf("lookup %s: %w", id, ErrNotFound)
	}
	return r.patients[i], nil
}

// Len returns the number of patients.
func (r *Roster) Len() int { return len(r.patients) }

// Patients returns the patients in roster order. The slice is a copy.
func (r *Roster) Patients() []*Patient {
	out := make([]*Patient, len(r.patients))
	copy(out, r.patients)
	return out
}

// NewCount returns how many patients are flagged as new.
func (r *Roster) NewCount() int {
	n := 0
	for _, p := range r.patients {
		if p.IsNew {
			n++
		}
	}
	return n
}

// Sort orders the roster by ward then bed. The home ward comes first, other
// wards follow alphabetically by display name, and patients without a known
// location go last. Ties keep their existing order.
func (r *Roster) Sort() {
	sort.SliceStable(r.patients, func(i, j int) bool {
		return r.less(r.patients[i], r.patients[j])
	})
	for i, p := range r.patients {
		r.index[p.id] = i
	}
}

func (r *Roster) less(a, b *Patient) bool {
	if a.Location == nil || b.Location == nil {
		return a.Location != nil && b.Location == nil
	}
	wa, wb := a.Location.Ward(), b.Location.Ward()
	if wa != wb {
		if wa == r.home {
			return true
		}
		if wb == r.home {
			return false
		}
		return wa.String() < wb.String()
	}
	return a.Location.SortKey() < b.Location.SortKey()
}
