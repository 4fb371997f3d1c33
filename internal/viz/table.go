package viz

import (
	"slices"
	"strconv"
)

// CellState tags a dynamic-programming table cell.
type CellState string

const (
	CellStateEmpty       CellState = "empty"
	CellStateComputing   CellState = "computing"
	CellStateComputed    CellState = "computed"
	CellStateOptimal     CellState = "optimal"
	CellStateHighlighted CellState = "highlighted"
)

// TableCell is one entry of a DP table. Display overrides Value when set.
type TableCell struct {
	Value   int       `json:"value"`
	Display string    `json:"display,omitempty"`
	State   CellState `json:"state"`
}

// Text returns the cell's rendered content.
func (c TableCell) Text() string {
	if c.Display != "" {
		return c.Display
	}
	if c.State == CellStateEmpty {
		return ""
	}
	return strconv.Itoa(c.Value)
}

// Table is a DP table with optional row and column headers.
type Table struct {
	Title       string        `json:"title"`
	RowHeaders  []string      `json:"rowHeaders,omitempty"`
	ColHeaders  []string      `json:"colHeaders,omitempty"`
	Cells       [][]TableCell `json:"cells"`
	Formula     string        `json:"formula,omitempty"`
	Result      string        `json:"result,omitempty"`
	OptimalPath []Point       `json:"optimalPath,omitempty"`
}

// NewTable creates a rows×cols table of empty cells.
func NewTable(title string, rows, cols int) Table {
	t := Table{Title: title, Cells: make([][]TableCell, rows)}
	for r := range t.Cells {
		t.Cells[r] = make([]TableCell, cols)
		for c := range t.Cells[r] {
			t.Cells[r][c] = TableCell{State: CellStateEmpty}
		}
	}
	return t
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	out := t
	out.RowHeaders = slices.Clone(t.RowHeaders)
	out.ColHeaders = slices.Clone(t.ColHeaders)
	out.OptimalPath = slices.Clone(t.OptimalPath)
	out.Cells = make([][]TableCell, len(t.Cells))
	for r, row := range t.Cells {
		out.Cells[r] = slices.Clone(row)
	}
	return out
}

// Rows returns the number of rows.
func (t Table) Rows() int { return len(t.Cells) }

// Cols returns the number of columns.
func (t Table) Cols() int {
	if len(t.Cells) == 0 {
		return 0
	}
	return len(t.Cells[0])
}

// Set stores v at (r, c) and tags it.
func (t *Table) Set(r, c, v int, state CellState) {
	t.Cells[r][c].Value = v
	t.Cells[r][c].State = state
}

// Mark tags the cell at (r, c).
func (t *Table) Mark(r, c int, state CellState) {
	t.Cells[r][c].State = state
}

// Relax demotes every computing or highlighted cell to computed.
func (t *Table) Relax() {
	for r := range t.Cells {
		for c := range t.Cells[r] {
			switch t.Cells[r][c].State {
			case CellStateComputing, CellStateHighlighted:
				t.Cells[r][c].State = CellStateComputed
			}
		}
	}
}

// MarkOptimal tags the cells on path as optimal and records the path.
func (t *Table) MarkOptimal(path []Point) {
	t.OptimalPath = slices.Clone(path)
	for _, p := range path {
		t.Cells[p.Row][p.Col].State = CellStateOptimal
	}
}

// Count returns the number of cells tagged state.
func (t Table) Count(state CellState) int {
	n := 0
	for _, row := range t.Cells {
		for _, cell := range row {
			if cell.State == state {
				n++
			}
		}
	}
	return n
}
