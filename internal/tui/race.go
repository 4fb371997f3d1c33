package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/output"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

// RaceKeys are the bindings shown in the race view's help bar.
var RaceKeys = []Binding{
	{"space", "start/pause"},
	{"+/-", "speed"},
	{"s", "stop"},
	{"r", "rerun"},
	{"q", "quit"},
}

// RaceConfig holds configuration for the race view.
type RaceConfig struct {
	Left      procedures.Instance
	Right     procedures.Instance
	Config    *config.RuntimeConfig
	AutoStart bool
}

// RaceModel shows two instances running side by side.
type RaceModel struct {
	left, right procedures.Instance
	race        *engine.Race
	frames      [2]engine.Frame

	speeds          config.SpeedConfig
	speedStep       float64
	refreshInterval time.Duration
	autoStart       bool

	width  int
	height int
}

// NewRaceModel creates a new race model.
func NewRaceModel(cfg RaceConfig) *RaceModel {
	rc := cfg.Config
	if rc == nil {
		rc = config.Global
	}
	m := &RaceModel{
		left:            cfg.Left,
		right:           cfg.Right,
		race:            engine.NewRace(cfg.Left, cfg.Right),
		speeds:          rc.Speeds,
		speedStep:       max(rc.TUI.SpeedStep, 1.1),
		refreshInterval: rc.TUI.RefreshInterval,
		autoStart:       cfg.AutoStart,
	}
	if m.refreshInterval <= 0 {
		m.refreshInterval = 33 * time.Millisecond
	}
	m.refresh()
	return m
}

// Race returns the underlying race.
func (m *RaceModel) Race() *engine.Race { return m.race }

func (m *RaceModel) refresh() {
	m.frames = [2]engine.Frame{m.left.Frame(), m.right.Frame()}
}

// Init initializes the model.
func (m *RaceModel) Init() tea.Cmd {
	if m.autoStart {
		m.race.Start()
	}
	return m.tickCmd()
}

// Update handles messages and updates the model.
func (m *RaceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *RaceModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.race.Stop()
		return m, tea.Quit

	case " ", "p":
		l, r := m.left.Frame().Flags, m.right.Frame().Flags
		switch {
		case !l.Running && !r.Running:
			if m.race.Finished() {
				m.rerun()
			}
			m.race.Start()
		case (l.Running && !l.Paused) || (r.Running && !r.Paused):
			m.race.Pause()
		default:
			m.race.Resume()
		}

	case "+", "=":
		if d := m.frames[0].Flags.Speed; d > 0 {
			m.race.SetSpeed(m.speeds.Clamp(time.Duration(float64(d) / m.speedStep)))
		}

	case "-", "_":
		d := time.Duration(float64(m.frames[0].Flags.Speed) * m.speedStep)
		if d == 0 {
			d = m.speeds.Min
		}
		m.race.SetSpeed(m.speeds.Clamp(d))

	case "s":
		m.race.Stop()

	case "r":
		m.rerun()
	}

	m.refresh()
	return m, nil
}

// rerun restores both inputs so the next start races them again.
func (m *RaceModel) rerun() {
	m.left.Restart()
	m.right.Restart()
}

func (m *RaceModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View renders the race.
func (m *RaceModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		StyleTitle.Render("Race"), "  ",
		StyleSubtitle.Render(fmt.Sprintf("%s vs %s · %s",
			m.left.Spec().Name, m.right.Spec().Name, output.FormatSpeed(m.frames[0].Flags.Speed))),
	)

	winner := engine.WinnerNone
	if m.race.Finished() && m.frames[0].HistoryLen > 0 && m.frames[1].HistoryLen > 0 {
		winner = m.race.Result().Winner
	}

	half := max((m.width-4)/2, 24)
	lanes := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderLane(m.left, m.frames[0], half, winner == engine.WinnerLeft || winner == engine.WinnerTie),
		" ",
		m.renderLane(m.right, m.frames[1], half, winner == engine.WinnerRight || winner == engine.WinnerTie),
	)

	sections := []string{header, lanes}
	if winner != engine.WinnerNone {
		sections = append(sections, StyleSuccess.Bold(true).Render(output.RaceSummary(m.race.Result(), m.left.Spec(), m.right.Spec())))
	}
	sections = append(sections, HelpBar(RaceKeys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *RaceModel) renderLane(in procedures.Instance, f engine.Frame, width int, won bool) string {
	spec := in.Spec()
	title := StyleTitle.Render(spec.Name)
	phase := Phase(f)
	status := StyleMuted.Render(fmt.Sprintf("%s · step %d", phase, f.Cursor+1))
	if d := f.LastRun.Duration(); d > 0 {
		status += StyleMuted.Render(" · " + output.FormatDuration(d))
	}

	counters := ""
	for _, name := range output.CounterNames(spec.Counters, f.Counters) {
		counters += fmt.Sprintf("%s %s  ", StyleMuted.Render(name), StyleValue.Render(fmt.Sprint(f.Counters[name])))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		status,
		Render(f.State, width-4, max(m.height-14, 8)),
		counters,
	)

	box := StyleStageBox
	switch {
	case won:
		box = StyleWinnerBox
	case f.Flags.Running && !f.Flags.Paused:
		box = StyleActiveStageBox
	}
	return box.Width(width).Render(body)
}

// RunRace starts the race TUI.
func RunRace(cfg RaceConfig) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	m := NewRaceModel(cfg)
	defer m.race.Stop()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
