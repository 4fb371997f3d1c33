// Package tui provides the terminal player and race views for Stepwise.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/stepwise/internal/viz"
)

// Color palette for the player.
var (
	ColorPrimary   = lipgloss.Color("#7C3AED") // Purple
	ColorSecondary = lipgloss.Color("#10B981") // Green
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorWarning   = lipgloss.Color("#F59E0B") // Yellow
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorSuccess   = lipgloss.Color("#10B981") // Green
	ColorActive    = lipgloss.Color("#3B82F6") // Blue
	ColorBorder    = lipgloss.Color("#4B5563") // Dark gray
	ColorWall      = lipgloss.Color("#1F2937") // Near black
	ColorHighlight = lipgloss.Color("#EC4899") // Pink
)

// Base styles for the TUI.
var (
	// StyleTitle is used for section titles.
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// StyleSubtitle is used for subtitles and secondary information.
	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// StyleMuted is used for muted text.
	StyleMuted = StyleSubtitle

	// StyleValue is used for counter values and speeds.
	StyleValue = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorActive)

	StyleRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSuccess)

	StylePaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWarning)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// StyleCurrentLine highlights the pseudocode line being executed.
	StyleCurrentLine = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(ColorPrimary)

	// StyleHelp is used for help text at the bottom.
	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorMuted).
			MarginTop(1)

	// StyleHelpKey is used for keyboard shortcut keys.
	StyleHelpKey = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary)

	// StyleHelpDesc is used for keyboard shortcut descriptions.
	StyleHelpDesc = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

// Box styles for the panels.
var (
	StyleStageBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	StyleActiveStageBox = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorActive).
				Padding(0, 1)

	StyleWinnerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSuccess).
			Padding(0, 1)

	StylePanelBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var barStyles = map[viz.BarStatus]lipgloss.Style{
	viz.BarUnsorted:  fg(ColorActive),
	viz.BarComparing: fg(ColorWarning),
	viz.BarSwapping:  fg(ColorError),
	viz.BarSorted:    fg(ColorSuccess),
}

var cellStyles = map[viz.CellType]lipgloss.Style{
	viz.CellEmpty:   fg(ColorBorder),
	viz.CellWall:    fg(ColorWall),
	viz.CellStart:   fg(ColorSuccess),
	viz.CellEnd:     fg(ColorError),
	viz.CellVisited: fg(ColorActive),
	viz.CellPath:    fg(ColorWarning),
	viz.CellCurrent: fg(ColorHighlight),
}

var nodeStyles = map[viz.NodeState]lipgloss.Style{
	viz.NodeUnvisited: fg(ColorMuted).Bold(true),
	viz.NodeVisiting:  fg(ColorWarning).Bold(true),
	viz.NodeVisited:   fg(ColorActive).Bold(true),
	viz.NodePath:      fg(ColorSuccess).Bold(true),
	viz.NodeStart:     fg(ColorSuccess).Bold(true).Underline(true),
	viz.NodeEnd:       fg(ColorError).Bold(true).Underline(true),
}

var edgeStyles = map[viz.EdgeState]lipgloss.Style{
	viz.EdgeUnvisited: fg(ColorBorder),
	viz.EdgeVisiting:  fg(ColorWarning),
	viz.EdgeVisited:   fg(ColorActive),
	viz.EdgePath:      fg(ColorSuccess),
}

var tableCellStyles = map[viz.CellState]lipgloss.Style{
	viz.CellStateEmpty:       fg(ColorMuted),
	viz.CellStateComputing:   fg(ColorWarning).Bold(true),
	viz.CellStateComputed:    fg(ColorActive),
	viz.CellStateOptimal:     fg(ColorSuccess).Bold(true),
	viz.CellStateHighlighted: fg(ColorHighlight),
}

// ProgressBar creates a progress bar string.
func ProgressBar(percentage float64, width int) string {
	percentage = min(max(percentage, 0), 100)
	filled := int(float64(width) * percentage / 100)
	empty := width - filled

	filledStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	emptyStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	return filledStyle.Render(strings.Repeat("█", filled)) + // Full block
		emptyStyle.Render(strings.Repeat("░", empty)) // Light shade
}

// Binding is one key shown in the help bar.
type Binding struct {
	Key  string
	Desc string
}

// HelpBar renders the help bar at the bottom.
func HelpBar(keys []Binding) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = StyleHelpKey.Render(k.Key) + " " + StyleHelpDesc.Render(k.Desc)
	}
	return StyleHelp.Render(strings.Join(parts, "  •  "))
}
