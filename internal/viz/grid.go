package viz

import (
	"fmt"
	"math/rand/v2"

	"github.com/katalvlaran/lvlath/gridgraph"
)

// CellType tags a pathfinding grid cell.
type CellType string

const (
	CellEmpty   CellType = "empty"
	CellWall    CellType = "wall"
	CellStart   CellType = "start"
	CellEnd     CellType = "end"
	CellVisited CellType = "visited"
	CellPath    CellType = "path"
	CellCurrent CellType = "current"
)

// Point is a grid coordinate.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NoPoint marks an absent parent.
var NoPoint = Point{Row: -1, Col: -1}

// Valid reports whether p is not NoPoint.
func (p Point) Valid() bool { return p != NoPoint }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Manhattan returns the L1 distance between p and q.
func (p Point) Manhattan(q Point) int {
	return abs(p.Row-q.Row) + abs(p.Col-q.Col)
}

// Cell is one grid square with the scores the search algorithms annotate.
type Cell struct {
	Type     CellType `json:"type"`
	Distance int      `json:"distance"`
	G        int      `json:"g"`
	H        int      `json:"h"`
	F        int      `json:"f"`
	Parent   Point    `json:"parent"`
}

// Unreached is the distance of a cell no search has reached.
const Unreached = -1

func emptyCell() Cell {
	return Cell{Type: CellEmpty, Distance: Unreached, G: Unreached, Parent: NoPoint}
}

// Grid is a rectangular pathfinding board.
type Grid struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Cells [][]Cell `json:"cells"`
	Start Point    `json:"start"`
	End   Point    `json:"end"`
}

// NewGrid creates an empty grid with start and end placed. Out-of-range
// endpoints are clamped into the grid.
func NewGrid(rows, cols int, start, end Point) Grid {
	g := Grid{Rows: rows, Cols: cols, Cells: make([][]Cell, rows)}
	for r := range g.Cells {
		g.Cells[r] = make([]Cell, cols)
		for c := range g.Cells[r] {
			g.Cells[r][c] = emptyCell()
		}
	}
	if rows == 0 || cols == 0 {
		g.Start, g.End = NoPoint, NoPoint
		return g
	}
	g.Start = g.clamp(start)
	g.End = g.clamp(end)
	g.Cells[g.Start.Row][g.Start.Col].Type = CellStart
	g.Cells[g.End.Row][g.End.Col].Type = CellEnd
	return g
}

func (g Grid) clamp(p Point) Point {
	return Point{Row: min(max(p.Row, 0), g.Rows-1), Col: min(max(p.Col, 0), g.Cols-1)}
}

// Clone returns a deep copy.
func (g Grid) Clone() Grid {
	out := g
	out.Cells = make([][]Cell, len(g.Cells))
	for r, row := range g.Cells {
		out.Cells[r] = append([]Cell(nil), row...)
	}
	return out
}

// InBounds reports whether p lies on the grid.
func (g Grid) InBounds(p Point) bool {
	return p.Row >= 0 && p.Row < g.Rows && p.Col >= 0 && p.Col < g.Cols
}

// At returns a pointer to the cell at p.
func (g *Grid) At(p Point) *Cell { return &g.Cells[p.Row][p.Col] }

// Paint sets the cell type at p unless p is the start or end cell.
func (g *Grid) Paint(p Point, t CellType) {
	if p == g.Start || p == g.End {
		return
	}
	g.Cells[p.Row][p.Col].Type = t
}

// SetWall toggles a wall at p. Start and end cells are never walls.
func (g *Grid) SetWall(p Point, wall bool) {
	if !g.InBounds(p) {
		return
	}
	if wall {
		g.Paint(p, CellWall)
	} else if g.At(p).Type == CellWall {
		g.Paint(p, CellEmpty)
	}
}

// GenerateMaze clears the grid and walls each cell with the given density.
func (g *Grid) GenerateMaze(rng *rand.Rand, density float64) {
	for r := range g.Cells {
		for c := range g.Cells[r] {
			p := Point{Row: r, Col: c}
			cell := emptyCell()
			switch {
			case p == g.Start:
				cell.Type = CellStart
			case p == g.End:
				cell.Type = CellEnd
			case rng.Float64() < density:
				cell.Type = CellWall
			}
			g.Cells[r][c] = cell
		}
	}
}

// ClearPath removes every search annotation but keeps walls.
func (g *Grid) ClearPath() {
	for r := range g.Cells {
		for c := range g.Cells[r] {
			t := g.Cells[r][c].Type
			g.Cells[r][c] = emptyCell()
			switch t {
			case CellWall, CellStart, CellEnd:
				g.Cells[r][c].Type = t
			}
		}
	}
}

// Count returns the number of cells of type t.
func (g Grid) Count(t CellType) int {
	n := 0
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.Type == t {
				n++
			}
		}
	}
	return n
}

// Topology returns the 4-connected lattice of the grid. Open cells carry
// value 1 and walls 0.
func (g Grid) Topology() (*gridgraph.GridGraph, error) {
	values := make([][]int, g.Rows)
	for r, row := range g.Cells {
		values[r] = make([]int, g.Cols)
		for c, cell := range row {
			if cell.Type != CellWall {
				values[r][c] = 1
			}
		}
	}
	return gridgraph.NewGridGraph(values, gridgraph.DefaultGridOptions())
}

// Neighbors returns the open cells adjacent to p in the lattice's
// N, E, S, W order.
func Neighbors(lattice *gridgraph.GridGraph, p Point) []Point {
	out := make([]Point, 0, 4)
	for _, off := range lattice.NeighborOffsets() {
		x, y := p.Col+off[0], p.Row+off[1]
		if !lattice.InBounds(x, y) || lattice.CellValues[y][x] < lattice.LandThreshold {
			continue
		}
		out = append(out, Point{Row: y, Col: x})
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
