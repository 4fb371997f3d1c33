package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/output"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

// Phase names where a frame sits in the run lifecycle.
func Phase(f engine.Frame) string {
	switch {
	case f.Flags.Running && f.Flags.Paused:
		return "paused"
	case f.Flags.Running:
		return "running"
	case f.LastRun.RunID == "" || f.HistoryLen == 0:
		return "ready"
	case f.LastRun.FinishedAt.IsZero():
		return "stopping"
	default:
		return f.LastRun.Outcome.String()
	}
}

// StatusComponent shows the run phase, speed and history position.
type StatusComponent struct {
	Spec  *procedures.Spec
	Frame engine.Frame
	Width int
}

// NewStatusComponent creates a new status component.
func NewStatusComponent(spec *procedures.Spec, f engine.Frame, width int) *StatusComponent {
	return &StatusComponent{Spec: spec, Frame: f, Width: width}
}

// View renders the status component.
func (sc *StatusComponent) View() string {
	var content strings.Builder
	f := sc.Frame

	phase := Phase(f)
	switch phase {
	case "running":
		content.WriteString(StyleRunning.Render("▶ RUNNING"))
	case "paused":
		content.WriteString(StylePaused.Render("❚❚ PAUSED"))
	case "completed":
		content.WriteString(StyleSuccess.Render("✓ COMPLETED"))
	case "failed":
		content.WriteString(StyleError.Render("✗ FAILED"))
	default:
		content.WriteString(StyleMuted.Render("■ " + strings.ToUpper(phase)))
	}
	content.WriteString("   ")
	content.WriteString(StyleMuted.Render("speed "))
	content.WriteString(StyleValue.Render(output.FormatSpeed(f.Flags.Speed)))
	if d := f.LastRun.Duration(); d > 0 {
		content.WriteString("   ")
		content.WriteString(StyleMuted.Render("took "))
		content.WriteString(StyleValue.Render(output.FormatDuration(d)))
	}
	content.WriteString("\n")

	step, pct := 0, 0.0
	if f.HistoryLen > 0 {
		step = f.Cursor + 1
		pct = float64(step) / float64(f.HistoryLen) * 100
	}
	barWidth := max(sc.Width-28, 10)
	content.WriteString(ProgressBar(pct, barWidth))
	content.WriteString(StyleMuted.Render(fmt.Sprintf("  step %d/%d", step, f.HistoryLen)))

	if f.LastRun.Err != "" {
		content.WriteString("\n")
		content.WriteString(StyleError.Render(f.LastRun.Err))
	}

	box := StylePanelBox
	if f.Flags.Running && !f.Flags.Paused {
		box = StyleActiveStageBox
	}
	return box.Width(max(sc.Width-2, 20)).Render(content.String())
}

// CountersComponent lists a frame's counters, declared ones first.
type CountersComponent struct {
	Declared []string
	Counters engine.Counters
}

// View renders the counters.
func (cc *CountersComponent) View() string {
	names := slices.Clone(cc.Declared)
	for _, name := range slices.Sorted(maps.Keys(cc.Counters)) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s %s",
			StyleMuted.Render(fmt.Sprintf("%-14s", name)),
			StyleValue.Render(fmt.Sprint(cc.Counters[name]))))
	}
	return StylePanelBox.Render(StyleTitle.Render("Counters") + "\n" + strings.Join(lines, "\n"))
}

// SourceComponent shows the procedure's pseudocode with the current line
// highlighted.
type SourceComponent struct {
	Source []string
	Line   int
}

// View renders the pseudocode.
func (sc *SourceComponent) View() string {
	if len(sc.Source) == 0 {
		return ""
	}
	lines := make([]string, len(sc.Source))
	for i, text := range sc.Source {
		num := fmt.Sprintf("%2d ", i+1)
		if i+1 == sc.Line {
			lines[i] = StyleCurrentLine.Render(num + text)
		} else {
			lines[i] = StyleMuted.Render(num) + text
		}
	}
	return StylePanelBox.Render(StyleTitle.Render("Pseudocode") + "\n" + strings.Join(lines, "\n"))
}
