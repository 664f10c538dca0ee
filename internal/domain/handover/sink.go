// Package handover builds a team's handover list: it reads the previous list,
// fetches who is currently on the wards, reconciles the two and renders the
// result into a table document.
package handover

import (
	"io"
)

// Column positions of the handover table.
const (
	ColBed = iota
	ColDetails
	ColReason
	ColJobs
	ColEDD
	ColDS
	ColTTA
	ColBloods

	NumColumns
)

// ColumnTitles are the header cells, in column order.
var ColumnTitles = [NumColumns]string{"Bed", "Patient Details", "Issues", "Jobs", "EDD", "DS", "TTA", "Blds"}

// RowStyle selects the visual treatment of a table row.
type RowStyle int

const (
	StyleColumnHeader RowStyle = iota + 1
	StyleWardHeader
	StyleNewPatient
	StyleBirthday
)

func (s RowStyle) String() string {
	switch s {
	case StyleColumnHeader:
		return "column-header"
	case StyleWardHeader:
		return "ward-header"
	case StyleNewPatient:
		return "new-patient"
	case StyleBirthday:
		return "birthday"
	}
	return "unknown"
}

// TableSink is the narrow set of table operations the renderer needs. Rows
// are addressed by the index returned from AddRow and columns are zero based.
type TableSink interface {
	AddRow() (int, error)
	MergeCellsInRow(row, first, last int) error
	SetCellText(row, col int, text string) error
	FlagRowForStyle(row int, style RowStyle) error
}

// Document is a handover list document: the previous list on the way in and
// the generated list on the way out.
type Document interface {
	TableSink

	// Rows returns the text of every table row. A merged cell reports its
	// text in every column it spans.
	Rows() ([][]string, error)
	// Reset removes every table row.
	Reset() error
	SetFooter(text string) error
	WriteTo(w io.Writer) (int64, error)
	Close() error
}

// DocumentOpener opens a document from its serialised form.
type DocumentOpener func(r io.Reader) (Document, error)
