package output

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/procedures"
	"github.com/manav03panchal/stepwise/internal/viz"
)

// Styles for CLI output.
var (
	// Colors
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#10B981") // Green
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorWarning   = lipgloss.Color("#F59E0B") // Yellow
	colorError     = lipgloss.Color("#EF4444") // Red

	// Styles
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSecondary)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)

	styleProcedure = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleFamily = lipgloss.NewStyle().
			Foreground(colorSecondary)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) style(st lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return st.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.style(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.style(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.style(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.style(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.style(styleMuted, text))
}

// ProcedureName formats a procedure id.
func (c *CLIFormatter) ProcedureName(id string) string {
	return c.style(styleProcedure, id)
}

// PrintProcedures prints the catalogue grouped by family.
func (c *CLIFormatter) PrintProcedures(specs []*procedures.Spec) {
	if len(specs) == 0 {
		c.Muted("No procedures.")
		return
	}
	var family procedures.Family
	for _, s := range specs {
		if s.Family != family {
			if family != "" {
				c.Println()
			}
			family = s.Family
			c.Println(c.style(styleFamily, strings.ToUpper(string(family))))
		}
		c.Printf("  %s %-26s %s\n", c.ProcedureName(fmt.Sprintf("%-16s", s.ID)), s.Name, c.style(styleMuted, s.Complexity))
	}
}

// PrintProcedure prints one procedure with its pseudocode.
func (c *CLIFormatter) PrintProcedure(s *procedures.Spec) {
	c.Title(s.Name)
	c.Printf("  ID:         %s\n", c.ProcedureName(s.ID))
	c.Printf("  Family:     %s\n", s.Family)
	c.Printf("  Complexity: %s\n", s.Complexity)
	c.Printf("  Counters:   %s\n", strings.Join(s.Counters, ", "))
	if s.Description != "" {
		c.Printf("  %s\n", s.Description)
	}
	c.Println()
	for i, line := range s.Source {
		c.Printf("%s %s\n", c.style(styleMuted, fmt.Sprintf("%2d", i+1)), line)
	}
}

// PrintRun prints the outcome of a finished run.
func (c *CLIFormatter) PrintRun(spec *procedures.Spec, f engine.Frame) {
	r := f.LastRun
	switch r.Outcome {
	case engine.Completed:
		c.Success(fmt.Sprintf("%s completed in %d steps", spec.Name, r.Steps))
	case engine.Cancelled:
		c.Warning(fmt.Sprintf("%s cancelled after %d steps", spec.Name, r.Steps))
	default:
		c.Error(fmt.Sprintf("%s failed after %d steps: %s", spec.Name, r.Steps, r.Err))
	}
	c.Printf("  Duration: %s\n", c.style(styleBold, FormatDuration(r.Duration())))
	c.Printf("  Speed:    %s\n", FormatSpeed(f.Flags.Speed))
	for _, name := range CounterNames(spec.Counters, f.Counters) {
		c.Printf("  %-9s %d\n", name+":", f.Counters[name])
	}
	if summary := Summarize(f.State); summary != "" {
		c.Printf("  Result:   %s\n", summary)
	}
}

// PrintStep prints one traced step as a single line.
func (c *CLIFormatter) PrintStep(spec *procedures.Spec, step int, snap engine.Frame) {
	text := spec.SourceLine(snap.Line)
	if text == "" {
		text = "-"
	}
	counters := make([]string, 0, len(snap.Counters))
	for _, name := range CounterNames(spec.Counters, snap.Counters) {
		counters = append(counters, name+"="+strconv.Itoa(snap.Counters[name]))
	}
	c.Printf("%s %-40s %s\n",
		c.style(styleMuted, fmt.Sprintf("%4d", step)),
		strings.TrimSpace(text),
		c.style(styleMuted, strings.Join(counters, " ")))
}

// CounterNames lists declared counters first and any others after them
// in name order.
func CounterNames(declared []string, counters engine.Counters) []string {
	names := slices.Clone(declared)
	for _, name := range slices.Sorted(maps.Keys(counters)) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

// Summarize describes a final visualization state in one line.
func Summarize(state any) string {
	switch s := state.(type) {
	case viz.Bars:
		values := s.Values()
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, " ")
	case viz.Graph:
		if len(s.PathNodes) > 0 {
			return strings.Join(nodeLabels(s, s.PathNodes), " → ")
		}
		return "visited " + strings.Join(nodeLabels(s, s.VisitedOrder), " ")
	case viz.Grid:
		path := s.Count(viz.CellPath)
		if path == 0 {
			return fmt.Sprintf("no path, %d cells visited", s.Count(viz.CellVisited))
		}
		return fmt.Sprintf("path of %d cells, %d visited", path, s.Count(viz.CellVisited))
	case viz.Table:
		return s.Result
	default:
		return ""
	}
}

func nodeLabels(g viz.Graph, ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id
		if n := g.Node(id); n != nil && n.Label != "" {
			out[i] = n.Label
		}
	}
	return out
}

// TableRow is one row for PrintTable.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple aligned table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(col))
			}
		}
	}

	var headerLine strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&headerLine, "%-*s  ", widths[i], h)
	}
	c.Println(c.style(styleBold, strings.TrimRight(headerLine.String(), " ")))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				line.WriteString(col + strings.Repeat(" ", widths[i]-lipgloss.Width(col)+2))
			}
		}
		c.Println(strings.TrimRight(line.String(), " "))
	}
}

// RaceSummary describes a decided race. The margin is the gap between the
// two completion timestamps.
func RaceSummary(r engine.RaceResult, left, right *procedures.Spec) string {
	margin := r.Left.FinishedAt.Sub(r.Right.FinishedAt).Abs()
	both := r.Left.Outcome == engine.Completed && r.Right.Outcome == engine.Completed
	switch r.Winner {
	case engine.WinnerLeft, engine.WinnerRight:
		name := left.Name
		if r.Winner == engine.WinnerRight {
			name = right.Name
		}
		if !both {
			return fmt.Sprintf("🏆 %s wins, the other side did not finish", name)
		}
		return fmt.Sprintf("🏆 %s wins by %s", name, FormatDuration(margin))
	case engine.WinnerTie:
		return "Tie"
	default:
		return "No winner"
	}
}

// PrintRace prints both sides of a finished race as a table followed by
// the verdict.
func (c *CLIFormatter) PrintRace(left, right *procedures.Spec, lf, rf engine.Frame, r engine.RaceResult) {
	counters := CounterNames(left.Counters, lf.Counters)
	headers := append([]string{"Procedure", "Outcome", "Steps", "Duration"}, counters...)
	row := func(spec *procedures.Spec, f engine.Frame) TableRow {
		cols := []string{
			c.ProcedureName(spec.ID),
			f.LastRun.Outcome.String(),
			strconv.Itoa(f.LastRun.Steps),
			FormatDuration(f.LastRun.Duration()),
		}
		for _, name := range counters {
			cols = append(cols, strconv.Itoa(f.Counters[name]))
		}
		return TableRow{Columns: cols}
	}
	c.PrintTable(headers, []TableRow{row(left, lf), row(right, rf)})
	c.Println()

	summary := RaceSummary(r, left, right)
	if r.Winner == engine.WinnerNone {
		c.Warning(summary)
		return
	}
	c.Println(c.style(styleBold, summary))
}
