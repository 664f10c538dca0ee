package location

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mfreeborn/patient-list-generator/internal/domain/ward"
)

// Dialect identifies the naming convention a source system uses for bays and
// beds.
type Dialect int

const (
	// TrakCare reports descriptive bays such as "Bay 03 CA", "Room 07 CA" or
	// "Yellow (FORT)" with beds like "BedD" or "Bed01".
	TrakCare Dialect = iota
	// CareFlow reports compact codes such as "GLOBAY01", "GLOSR13",
	// "FOR2GREEN" or "FORYELLOWRM".
	CareFlow
)

func (d Dialect) String() string {
	switch d {
	case TrakCare:
		return "trakcare"
	case CareFlow:
		return "careflow"
	}
	return "unknown"
}

var (
	numberPattern       = regexp.MustCompile(`\d{1,2}`)
	trailingNumber      = regexp.MustCompile(`(\d{1,2})$`)
	fortescueBayPattern = regexp.MustCompile(`FOR\d(\D{4,6})(BAY)?$`)
)

const lundyOnCapener = "lundy bay on capener ward"

// Normalize returns the canonical bed label for a TrakCare bay/bed pair.
func Normalize(w ward.Ward, bay, bed string) (string, error) {
	_, label, err := TrakCare.Resolve(w, bay, bed)
	return label, err
}

// Resolve returns the effective ward and the canonical bed label for a bay/bed
// pair reported against ward w. It is a pure function of its inputs.
func (d Dialect) Resolve(w ward.Ward, bay, bed string) (ward.Ward, string, error) {
	effective := CorrectWard(w, bay)
	var (
		label string
		err   error
	)
	switch d {
	case CareFlow:
		label, err = careflowLabel(effective, bay, bed)
	default:
		label, err = trakcareLabel(effective, bay, bed)
	}
	if err != nil {
		return w, "", err
	}
	return effective, label, nil
}

// CorrectWard moves the Lundy bay that physically sits on Capener onto
// Capener. Upstream systems report those patients under Lundy.
func CorrectWard(w ward.Ward, bay string) ward.Ward {
	if w != ward.Lundy {
		return w
	}
	b := strings.ToLower(strings.TrimSpace(bay))
	if b == lundyOnCapener || strings.HasPrefix(b, "cap") {
		return ward.Capener
	}
	return w
}

func trakcareLabel(w ward.Ward, bay, bed string) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(bay))
	fail := func(reason string) error {
		return &FormatError{Ward: w, Bay: bay, Bed: bed, Reason: reason}
	}

	switch {
	case strings.Contains(lower, "room"):
		if w == ward.Fortescue {
			colour := firstWord(lower)
			if colour == "" {
				return "", fail("no side room colour")
			}
			return "SR " + title(colour), nil
		}
		n, ok := firstNumber(lower)
		if !ok {
			return "", fail("no side room number")
		}
		return fmt.Sprintf("SR%d", n), nil

	case lower == lundyOnCapener:
		c, ok := lastChar(bed)
		if !ok {
			return "", fail("no bed")
		}
		return "LBOC " + c, nil

	case strings.Contains(lower, "discharge area"):
		return DischargeArea, nil

	case w == ward.Fortescue:
		colour := firstWord(lower)
		if colour == "" {
			return "", fail("no bay colour")
		}
		n, ok := firstNumber(bed)
		if !ok {
			return "", fail("no bed number")
		}
		return fmt.Sprintf("%s %d", bayColour(colour), n), nil

	case w == ward.CarolineThorpe:
		n, ok := firstNumber(lower)
		if !ok {
			return "", fail("no bay number")
		}
		c, ok := lastChar(bed)
		if !ok {
			return "", fail("no bed")
		}
		return fmt.Sprintf("B%d B%s", n, c), nil
	}

	n, ok := firstNumber(lower)
	if !ok {
		return "", fail("no bay number")
	}
	c, ok := lastChar(bed)
	if !ok {
		return "", fail("no bed")
	}
	return fmt.Sprintf("%d%s", n, c), nil
}

func careflowLabel(w ward.Ward, bay, bed string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(bay))
	fail := func(reason string) error {
		return &FormatError{Ward: w, Bay: bay, Bed: bed, Reason: reason}
	}

	if w == ward.Fortescue {
		if strings.HasSuffix(upper, "RM") {
			if len(upper) <= len("FOR")+len("RM") {
				return "", fail("no side room colour")
			}
			return "SR " + title(strings.ToLower(upper[3:len(upper)-2])), nil
		}
		m := fortescueBayPattern.FindStringSubmatch(upper)
		if m == nil {
			return "", fail("no bay colour")
		}
		c, ok := lastChar(bed)
		if !ok {
			return "", fail("no bed")
		}
		n, err := strconv.Atoi(c)
		if err != nil {
			return "", fail("no bed number")
		}
		return fmt.Sprintf("%s %d", bayColour(strings.ToLower(m[1])), n), nil
	}

	m := trailingNumber.FindStringSubmatch(upper)
	if m == nil {
		return "", fail("no bay number")
	}
	n, _ := strconv.Atoi(m[1])
	if strings.Contains(upper, "SR") || strings.Contains(upper, "RM") {
		return fmt.Sprintf("SR%d", n), nil
	}
	c, ok := lastChar(bed)
	if !ok {
		return "", fail("no bed")
	}
	return fmt.Sprintf("%d%s", n, c), nil
}

// bayColour title-cases a Fortescue bay colour. Yellow is printed as "Yell"
// to keep the bed column narrow.
func bayColour(colour string) string {
	if colour == "yellow" {
		colour = "yell"
	}
	return title(colour)
}

func title(s string) string {
	return cases.Title(language.English).String(s)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func firstNumber(s string) (int, bool) {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

func lastChar(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	r := []rune(s)
	return string(r[len(r)-1]), true
}
