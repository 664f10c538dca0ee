// Package team holds the registry of medical teams a handover list can be
// generated for.
package team

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

// Consultant is a consultant's name exactly as the upstream systems record it.
type Consultant string

const (
	AlisonMoody        Consultant = "Dr Alison Moody"
	GeorginaHands      Consultant = "Dr Georgina Hands"
	JareerRaza         Consultant = "Dr Jareer Raza"
	ChristopherGibbs   Consultant = "Dr Christopher Gibbs"
	DushenTharmaratnam Consultant = "Dr Dushen Tharmaratnam"
	RahulPotluri       Consultant = "Dr Rahul Potluri"
	SujoyRoy           Consultant = "Dr Sujoy Roy"
	ByronTheron        Consultant = "Dr Byron Theron"
	AndrewDavis        Consultant = "Dr Andrew Davis"
	AlexMoran          Consultant = "Dr Alex Moran"
	GiasUddin          Consultant = "Dr Gias Uddin"
	VivekArya          Consultant = "Dr Vivek Arya"
	MazharArbab        Consultant = "Dr Mazhar Arbab"
	RiazLatif          Consultant = "Dr Riaz Latif"
	AdetokunbohMark    Consultant = "Dr Adetokunboh Mark"
)

// Team is a group of consultants whose patients share one handover list.
type Team struct {
	Name        string       `json:"name"`
	Consultants []Consultant `json:"consultants"`
	HomeWard    ward.Ward    `json:"-"`
}

func (t Team) String() string { return t.Name }

// ConsultantNames returns the consultants as plain strings, for use as query
// parameters.
func (t Team) ConsultantNames() []string {
	out := make([]string, len(t.Consultants))
	for i, c := range t.Consultants {
		out[i] = string(c)
	}
	return out
}

var registry = []Team{
	{Name: "Arbab", Consultants: []Consultant{MazharArbab}, HomeWard: ward.Fortescue},
	{Name: "Arya", Consultants: []Consultant{VivekArya}, HomeWard: ward.Alexandra},
	{
		Name:        "Cardiology",
		Consultants: []Consultant{ChristopherGibbs, DushenTharmaratnam, RahulPotluri, SujoyRoy},
		HomeWard:    ward.Victoria,
	},
	{
		Name:        "Gastro",
		Consultants: []Consultant{ByronTheron, AndrewDavis, GiasUddin, AlexMoran},
		HomeWard:    ward.Capener,
	},
	{Name: "Mark", Consultants: []Consultant{AdetokunbohMark}, HomeWard: ward.Fortescue},
	{
		Name:        "Respiratory",
		Consultants: []Consultant{AlisonMoody, GeorginaHands, JareerRaza},
		HomeWard:    ward.Capener,
	},
	{Name: "Stroke", Consultants: []Consultant{RiazLatif}, HomeWard: ward.Staples},
}

// Lookup returns the team with the given name, case-insensitively.
func Lookup(name string) (Team, error) {
	for _, t := range registry {
		if strings.EqualFold(t.Name, strings.TrimSpace(name)) {
			return t, nil
		}
	}
	return Team{}, fmt.Errorf("unknown team %q", name)
}

// All returns every registered team sorted by name.
func All() []Team {
	out := make([]Team, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
