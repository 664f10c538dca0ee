package handover

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/mfreeborn/patient-list-generator/internal/domain/location"
	"github.com/mfreeborn/patient-list-generator/internal/platform/inpatients"
)

// fakeDoc records every sink call. It serialises to JSON so a generated
// document can be opened again as the next day's input.
type fakeDoc struct {
	cells  [][]string
	merged map[int]bool
	styles map[int]RowStyle
	footer string
	closed bool
}

func newFakeDoc() *fakeDoc {
	return &fakeDoc{merged: map[int]bool{}, styles: map[int]RowStyle{}}
}

func openFakeDoc(r io.Reader) (Document, error) {
	d := newFakeDoc()
	if r == nil {
		return d, nil
	}
	if err := json.NewDecoder(r).Decode(&d.cells); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *fakeDoc) AddRow() (int, error) {
	d.cells = append(d.cells, make([]string, NumColumns))
	return len(d.cells) - 1, nil
}

func (d *fakeDoc) MergeCellsInRow(row, first, last int) error {
	if first != 0 || last != NumColumns-1 {
		return errors.New("only full width merges are expected")
	}
	d.merged[row] = true
	return nil
}

func (d *fakeDoc) SetCellText(row, col int, text string) error {
	d.cells[row][col] = text
	return nil
}

func (d *fakeDoc) FlagRowForStyle(row int, style RowStyle) error {
	d.styles[row] = style
	return nil
}

func (d *fakeDoc) Rows() ([][]string, error) {
	out := make([][]string, len(d.cells))
	for i, row := range d.cells {
		out[i] = append([]string(nil), row...)
		if d.merged[i] {
			for col := range out[i] {
				out[i][col] = row[0]
			}
		}
	}
	return out, nil
}

func (d *fakeDoc) Reset() error {
	d.cells = nil
	d.merged = map[int]bool{}
	d.styles = map[int]RowStyle{}
	return nil
}

func (d *fakeDoc) SetFooter(text string) error {
	d.footer = text
	return nil
}

func (d *fakeDoc) WriteTo(w io.Writer) (int64, error) {
	rows, _ := d.Rows()
	b, err := json.Marshal(rows)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

// fakeSource serves canned rows.
type fakeSource struct {
	rows    []inpatients.Row
	dialect location.Dialect
	err     error
	asked   []string
}

func (s *fakeSource) Fetch(_ context.Context, consultants []string) ([]inpatients.Row, error) {
	s.asked = consultants
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *fakeSource) Dialect() location.Dialect { return s.dialect }

type fakeReasons struct {
	reasons map[string]string
	err     error
	asked   []string
}

func (f *fakeReasons) ReasonsForAdmission(_ context.Context, ids []string) (map[string]string, error) {
	f.asked = ids
	return f.reasons, f.err
}
