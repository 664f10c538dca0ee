package patient

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned (wrapped) by Roster.Lookup when no patient with the
// requested identifier is present.
var ErrNotFound = errors.New("patient not found")

// ParseError reports a details block from which no patient identifier could
// be extracted.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no NHS number found in patient details %q", e.Text)
}

// IdentityMismatchError reports an attempt to merge two different patients.
type IdentityMismatchError struct {
	Target Identifier
	Donor  Identifier
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("cannot merge patient %s into patient %s", e.Donor, e.Target)
}
