// Package workbook stores handover lists as Excel workbooks. A Document is
// both the source of the previous list's rows and the sink the new list is
// rendered into.
package workbook

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mfreeborn/patient-list-generator/internal/domain/handover"
)

// DefaultSheet is the worksheet holding the handover table.
const DefaultSheet = "Handover"

const printTitles = "_xlnm.Print_Titles"

var columnWidths = [handover.NumColumns]float64{8, 28, 30, 30, 8, 5, 5, 8}

type styleSet struct {
	base, header, ward, newPatient, birthday int
}

// Document is an open handover workbook.
type Document struct {
	f      *excelize.File
	sheet  string
	rows   int
	styles styleSet
}

var _ handover.Document = (*Document)(nil)

// Opener returns a handover.DocumentOpener for workbooks whose table lives
// on the named sheet.
func Opener(sheet string) handover.DocumentOpener {
	return func(r io.Reader) (handover.Document, error) {
		d, err := Open(r, sheet)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// Open reads a workbook from r, or starts a new one when r is nil. If the
// named sheet is missing the active sheet is used.
func Open(r io.Reader, sheet string) (*Document, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	if r == nil {
		return newDocument(sheet)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	d := &Document{f: f, sheet: sheet}
	rows, err := f.GetRows(sheet)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	d.rows = len(rows)
	if err := d.initStyles(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return d, nil
}

func newDocument(sheet string) (*Document, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	d := &Document{f: f, sheet: sheet}
	if err := d.initStyles(); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := d.layout(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return d, nil
}

// layout sets column widths and an A4 landscape page on a new workbook.
func (d *Document) layout() error {
	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := d.f.SetColWidth(d.sheet, col, col, w); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	orientation, size := "landscape", 9
	if err := d.f.SetPageLayout(d.sheet, &excelize.PageLayoutOptions{
		Orientation: &orientation,
		Size:        &size,
	}); err != nil {
		return fmt.Errorf("set page layout: %w", err)
	}
	return nil
}

func (d *Document) initStyles() error {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	align := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	font := func(bold, italic bool, underline string) *excelize.Font {
		return &excelize.Font{Family: "Calibri", Size: 8, Bold: bold, Italic: italic, Underline: underline}
	}

	defs := []struct {
		id    *int
		style *excelize.Style
	}{
		{&d.styles.base, &excelize.Style{Font: font(false, false, ""), Border: border, Alignment: align}},
		{&d.styles.header, &excelize.Style{Font: font(true, false, "single"), Border: border, Alignment: align}},
		{&d.styles.ward, &excelize.Style{
			Font:      font(true, false, ""),
			Border:    border,
			Alignment: align,
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"EEEEEE"}, Pattern: 1},
		}},
		{&d.styles.newPatient, &excelize.Style{Font: font(true, false, ""), Border: border, Alignment: align}},
		{&d.styles.birthday, &excelize.Style{Font: font(false, true, ""), Border: border, Alignment: align}},
	}
	for _, def := range defs {
		id, err := d.f.NewStyle(def.style)
		if err != nil {
			return fmt.Errorf("create style: %w", err)
		}
		*def.id = id
	}
	return nil
}

func cellName(row, col int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}

// Sheet returns the name of the worksheet in use.
func (d *Document) Sheet() string { return d.sheet }

func (d *Document) AddRow() (int, error) {
	row := d.rows
	if err := d.styleRow(row, d.styles.base); err != nil {
		return 0, err
	}
	d.rows++
	return row, nil
}

func (d *Document) styleRow(row, style int) error {
	if err := d.f.SetCellStyle(d.sheet, cellName(row, 0), cellName(row, handover.NumColumns-1), style); err != nil {
		return fmt.Errorf("style row %d: %w", row+1, err)
	}
	return nil
}

func (d *Document) MergeCellsInRow(row, first, last int) error {
	if err := d.f.MergeCell(d.sheet, cellName(row, first), cellName(row, last)); err != nil {
		return fmt.Errorf("merge row %d: %w", row+1, err)
	}
	return nil
}

func (d *Document) SetCellText(row, col int, text string) error {
	if err := d.f.SetCellStr(d.sheet, cellName(row, col), text); err != nil {
		return fmt.Errorf("set %s: %w", cellName(row, col), err)
	}
	return nil
}

func (d *Document) FlagRowForStyle(row int, style handover.RowStyle) error {
	switch style {
	case handover.StyleColumnHeader:
		if err := d.styleRow(row, d.styles.header); err != nil {
			return err
		}
		return d.repeatRow(row)
	case handover.StyleWardHeader:
		return d.styleRow(row, d.styles.ward)
	case handover.StyleNewPatient:
		return d.styleRow(row, d.styles.newPatient)
	case handover.StyleBirthday:
		return d.styleRow(row, d.styles.birthday)
	}
	return fmt.Errorf("unknown row style %d", style)
}

// repeatRow prints row at the top of every page.
func (d *Document) repeatRow(row int) error {
	_ = d.f.DeleteDefinedName(&excelize.DefinedName{Name: printTitles, Scope: d.sheet})
	ref := fmt.Sprintf("'%s'!$%d:$%d", strings.ReplaceAll(d.sheet, "'", "''"), row+1, row+1)
	if err := d.f.SetDefinedName(&excelize.DefinedName{Name: printTitles, RefersTo: ref, Scope: d.sheet}); err != nil {
		return fmt.Errorf("set print titles: %w", err)
	}
	return nil
}

// Rows returns the text of every row, NumColumns cells wide. A merged range
// reports its value in every cell it covers.
func (d *Document) Rows() ([][]string, error) {
	raw, err := d.f.GetRows(d.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	out := make([][]string, len(raw))
	for i, r := range raw {
		out[i] = make([]string, handover.NumColumns)
		copy(out[i], r)
	}

	merges, err := d.f.GetMergeCells(d.sheet)
	if err != nil {
		return nil, fmt.Errorf("read merged cells: %w", err)
	}
	for _, m := range merges {
		c1, r1, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			continue
		}
		c2, r2, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			continue
		}
		for r := r1 - 1; r < r2 && r < len(out); r++ {
			for c := c1 - 1; c < c2 && c < handover.NumColumns; c++ {
				out[r][c] = m.GetCellValue()
			}
		}
	}
	return out, nil
}

// Reset removes every row of the table, keeping the sheet's page setup and
// column widths.
func (d *Document) Reset() error {
	merges, err := d.f.GetMergeCells(d.sheet)
	if err != nil {
		return fmt.Errorf("read merged cells: %w", err)
	}
	for _, m := range merges {
		if err := d.f.UnmergeCell(d.sheet, m.GetStartAxis(), m.GetEndAxis()); err != nil {
			return fmt.Errorf("unmerge %s: %w", m.GetStartAxis(), err)
		}
	}
	rows, err := d.f.GetRows(d.sheet)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	n := len(rows)
	if d.rows > n {
		n = d.rows
	}
	for r := n; r >= 1; r-- {
		if err := d.f.RemoveRow(d.sheet, r); err != nil {
			return fmt.Errorf("remove row %d: %w", r, err)
		}
	}
	d.rows = 0
	return nil
}

// SetFooter puts text in the page footer. A double tab splits it into a
// left and a right section.
func (d *Document) SetFooter(text string) error {
	left, right, _ := strings.Cut(text, "\t\t")
	footer := "&L" + escapeFooter(strings.TrimSpace(left))
	if right != "" {
		footer += "&R" + escapeFooter(strings.TrimSpace(right))
	}
	if err := d.f.SetHeaderFooter(d.sheet, &excelize.HeaderFooterOptions{OddFooter: footer}); err != nil {
		return fmt.Errorf("set footer: %w", err)
	}
	return nil
}

func escapeFooter(s string) string {
	return strings.ReplaceAll(s, "&", "&&")
}

func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.f.WriteTo(w)
}

func (d *Document) Close() error {
	return d.f.Close()
}
