package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/manav03panchal/stepwise/internal/viz"
)

// Render draws a visualization state into roughly width×height cells.
func Render(state any, width, height int) string {
	switch s := state.(type) {
	case viz.Bars:
		return RenderBars(s, width, height)
	case viz.Grid:
		return RenderGrid(s, width)
	case viz.Graph:
		return RenderGraph(s, width, height)
	case viz.Table:
		return RenderTable(s)
	default:
		return StyleMuted.Render(fmt.Sprintf("no view for %T", state))
	}
}

// RenderBars draws one column per element, scaled to height rows.
func RenderBars(b viz.Bars, width, height int) string {
	if b.Len() == 0 {
		return StyleMuted.Render("empty array")
	}
	height = max(height, 3)
	colWidth := 1
	if b.Len()*2 <= width {
		colWidth = 2
	}
	top := max(b.Max(), 1)

	levels := make([]int, b.Len())
	for i, bar := range b.Items {
		levels[i] = max(1, int(math.Ceil(float64(bar.Value)*float64(height)/float64(top))))
	}

	var sb strings.Builder
	for row := range height {
		level := height - row
		for i, bar := range b.Items {
			cell := " "
			if levels[i] >= level {
				cell = barStyles[bar.Status].Render("█")
			}
			sb.WriteString(cell)
			if colWidth == 2 {
				sb.WriteByte(' ')
			}
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

var cellGlyphs = map[viz.CellType]string{
	viz.CellEmpty:   "·",
	viz.CellWall:    "█",
	viz.CellStart:   "S",
	viz.CellEnd:     "E",
	viz.CellVisited: "▒",
	viz.CellPath:    "●",
	viz.CellCurrent: "◆",
}

// RenderGrid draws one glyph per cell, doubled horizontally when the
// grid fits.
func RenderGrid(g viz.Grid, width int) string {
	wide := g.Cols*2 <= width
	var sb strings.Builder
	for r, row := range g.Cells {
		for _, cell := range row {
			glyph := cellGlyphs[cell.Type]
			if wide {
				if cell.Type == viz.CellWall {
					glyph += glyph
				} else {
					glyph += " "
				}
			}
			sb.WriteString(cellStyles[cell.Type].Render(glyph))
		}
		if r < len(g.Cells)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// RenderGraph lays the nodes out on a character canvas, draws the edges
// between them and lists the search results underneath.
func RenderGraph(g viz.Graph, width, height int) string {
	if len(g.Nodes) == 0 {
		return StyleMuted.Render("empty graph")
	}
	c := newCanvas(max(width, 20), max(height-2, 8))

	minX, maxX := g.Nodes[0].X, g.Nodes[0].X
	minY, maxY := g.Nodes[0].Y, g.Nodes[0].Y
	for _, n := range g.Nodes[1:] {
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	scale := func(v, lo, hi float64, span int) int {
		if hi == lo {
			return span / 2
		}
		return int(math.Round((v - lo) / (hi - lo) * float64(span)))
	}
	pos := make(map[string][2]int, len(g.Nodes))
	for _, n := range g.Nodes {
		pos[n.ID] = [2]int{
			scale(n.X, minX, maxX, c.w-3) + 1,
			scale(n.Y, minY, maxY, c.h-1),
		}
	}

	for _, e := range g.Edges {
		a, b := pos[e.Source], pos[e.Target]
		st := edgeStyles[e.State]
		c.line(a[0], a[1], b[0], b[1], '·', st)
		mx, my := (a[0]+b[0])/2, (a[1]+b[1])/2
		c.text(mx, my, strconv.Itoa(e.Weight), st)
	}
	for _, n := range g.Nodes {
		p := pos[n.ID]
		c.text(p[0]-1, p[1], "("+n.Label+")", nodeStyles[n.State])
	}

	var sb strings.Builder
	sb.WriteString(c.String())
	if len(g.VisitedOrder) > 0 {
		sb.WriteString("\n")
		sb.WriteString(StyleMuted.Render("visited: ") + strings.Join(g.VisitedOrder, " "))
	}
	if len(g.PathNodes) > 0 {
		sb.WriteString("\n")
		sb.WriteString(StyleMuted.Render("path:    ") + StyleSuccess.Render(strings.Join(g.PathNodes, " → ")))
	}
	return sb.String()
}

// RenderTable draws a DP table with its headers, formula and result.
func RenderTable(t viz.Table) string {
	rows := make([][]string, len(t.Cells))
	for r, cells := range t.Cells {
		row := make([]string, 0, len(cells)+1)
		if r < len(t.RowHeaders) {
			row = append(row, t.RowHeaders[r])
		} else {
			row = append(row, "")
		}
		for _, cell := range cells {
			row = append(row, cell.Text())
		}
		rows[r] = row
	}
	headers := append([]string{""}, t.ColHeaders...)

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(fg(ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return StyleTitle.Padding(0, 1)
			case col == 0:
				return StyleHelpKey.Padding(0, 1)
			case row < len(t.Cells) && col-1 < len(t.Cells[row]):
				return tableCellStyles[t.Cells[row][col-1].State].Padding(0, 1)
			default:
				return lipgloss.NewStyle().Padding(0, 1)
			}
		})

	parts := []string{StyleTitle.Render(t.Title), tbl.Render()}
	if t.Formula != "" {
		parts = append(parts, StyleWarning.Render(t.Formula))
	}
	if t.Result != "" {
		parts = append(parts, StyleMuted.Render("result: ")+StyleSuccess.Bold(true).Render(t.Result))
	}
	return strings.Join(parts, "\n")
}

// canvas is a fixed grid of runes, each with an optional style.
type canvas struct {
	w, h   int
	runes  [][]rune
	styles [][]int
	pal    []lipgloss.Style
	ids    map[string]int
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, runes: make([][]rune, h), styles: make([][]int, h)}
	for y := range h {
		c.runes[y] = []rune(strings.Repeat(" ", w))
		c.styles[y] = make([]int, w)
	}
	// Style 0 is unstyled.
	c.pal = []lipgloss.Style{lipgloss.NewStyle()}
	c.ids = make(map[string]int)
	return c
}

// styleID interns st, keyed by how it renders.
func (c *canvas) styleID(st lipgloss.Style) int {
	key := st.Render("x")
	if id, ok := c.ids[key]; ok {
		return id
	}
	c.pal = append(c.pal, st)
	c.ids[key] = len(c.pal) - 1
	return len(c.pal) - 1
}

func (c *canvas) set(x, y int, r rune, st lipgloss.Style) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.runes[y][x] = r
	c.styles[y][x] = c.styleID(st)
}

func (c *canvas) text(x, y int, s string, st lipgloss.Style) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, st)
	}
}

// line draws a Bresenham line between two points, excluding both ends.
func (c *canvas) line(x0, y0, x1, y1 int, r rune, st lipgloss.Style) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	x, y := x0, y0
	for {
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
		if x == x1 && y == y1 {
			return
		}
		c.set(x, y, r, st)
	}
}

func (c *canvas) String() string {
	var sb strings.Builder
	for y := range c.h {
		line := strings.TrimRight(c.row(y), " ")
		sb.WriteString(line)
		if y < c.h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// row renders one canvas row, grouping runs that share a style.
func (c *canvas) row(y int) string {
	var sb strings.Builder
	start := 0
	for x := 1; x <= c.w; x++ {
		if x < c.w && c.styles[y][x] == c.styles[y][start] {
			continue
		}
		run := string(c.runes[y][start:x])
		if id := c.styles[y][start]; id != 0 {
			run = c.pal[id].Render(run)
		}
		sb.WriteString(run)
		start = x
	}
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
