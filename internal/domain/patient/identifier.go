package patient

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

const (
	// NHSNumberLength is the digit count of a national NHS number.
	NHSNumberLength = 10
	// LocalNumberLength is the digit count of a hospital registration number,
	// used when a patient has no NHS number recorded.
	LocalNumberLength = 7

	localPrefix = "RN"
)

// Identifier is a patient's normalised, space-free identifier: either a
// 10-digit NHS number or a 7-digit hospital registration number. It is the
// only key used to decide whether two records describe the same patient.
type Identifier string

var (
	// A 3-3-4 digit group, possibly split by any whitespace including
	// non-breaking spaces and newlines, that is not glued onto a neighbouring
	// digit run such as a date of birth or an age.
	nhsNumberPattern   = regexp.MustCompile(`(?m)(?:^|\D)(\d{3}[\s\p{Zs}]*\d{3}[\s\p{Zs}]*\d{4})(?:\D|$)`)
	localNumberPattern = regexp.MustCompile(`(?m)(?:^|\s)RN[ \t]*:?[ \t]*(\d{7})(?:\D|$)`)
)

// ParseIdentifier normalises s by removing all whitespace and validates that
// what remains is an NHS number or a hospital registration number.
func ParseIdentifier(s string) (Identifier, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	digits = strings.TrimPrefix(digits, localPrefix)
	digits = strings.TrimPrefix(digits, ":")

	if digits == "" {
		return "", fmt.Errorf("empty patient identifier")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("patient identifier %q contains non-digit characters", s)
		}
	}
	if len(digits) != NHSNumberLength && len(digits) != LocalNumberLength {
		return "", fmt.Errorf("patient identifier %q has %d digits, want %d or %d",
			s, len(digits), NHSNumberLength, LocalNumberLength)
	}
	return Identifier(digits), nil
}

// ExtractIdentifier finds the patient identifier inside a free-text details
// block such as
//
//	SMITH, John
//	01/01/1975 (45 Yrs)
//	123 456 7890
//
// An NHS number is preferred; a hospital registration number is only
// recognised when labelled "RN".
func ExtractIdentifier(details string) (Identifier, error) {
	if m := nhsNumberPattern.FindStringSubmatch(details); m != nil {
		return ParseIdentifier(m[1])
	}
	if m := localNumberPattern.FindStringSubmatch(details); m != nil {
		return ParseIdentifier(m[1])
	}
	return "", &ParseError{Text: details}
}

// IsNHSNumber reports whether the identifier is a national NHS number.
func (id Identifier) IsNHSNumber() bool { return len(id) == NHSNumberLength }

// String returns the display form: "123 456 7890" for NHS numbers and
// "RN 1234567" for registration numbers.
func (id Identifier) String() string {
	s := string(id)
	if len(s) == NHSNumberLength {
		return s[:3] + " " + s[3:6] + " " + s[6:]
	}
	if len(s) == LocalNumberLength {
		return localPrefix + " " + s
	}
	return s
}
