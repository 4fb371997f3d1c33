package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/manav03panchal/stepwise/internal/config"
	"github.com/manav03panchal/stepwise/internal/engine"
	"github.com/manav03panchal/stepwise/internal/errors"
	"github.com/manav03panchal/stepwise/internal/procedures"
)

// tickMsg is sent when the redraw timer ticks.
type tickMsg time.Time

// PlayerKeys are the bindings shown in the player's help bar.
var PlayerKeys = []Binding{
	{"space", "play/pause"},
	{"←/→", "step"},
	{"+/-", "speed"},
	{"s", "stop"},
	{"r", "restart"},
	{"n", "new input"},
	{"q", "quit"},
}

// PlayerConfig holds configuration for the player.
type PlayerConfig struct {
	Instance  procedures.Instance
	Config    *config.RuntimeConfig
	AutoStart bool
}

// PlayerModel is the bubbletea model that drives one procedure instance.
type PlayerModel struct {
	in    procedures.Instance
	spec  *procedures.Spec
	frame engine.Frame

	speeds          config.SpeedConfig
	speedStep       float64
	refreshInterval time.Duration
	autoStart       bool

	// UI state
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time
}

// NewPlayerModel creates a new player model.
func NewPlayerModel(cfg PlayerConfig) *PlayerModel {
	rc := cfg.Config
	if rc == nil {
		rc = config.Global
	}
	step := rc.TUI.SpeedStep
	if step <= 1 {
		step = 1.5
	}
	refresh := rc.TUI.RefreshInterval
	if refresh <= 0 {
		refresh = 33 * time.Millisecond
	}
	return &PlayerModel{
		in:              cfg.Instance,
		spec:            cfg.Instance.Spec(),
		frame:           cfg.Instance.Frame(),
		speeds:          rc.Speeds,
		speedStep:       step,
		refreshInterval: refresh,
		autoStart:       cfg.AutoStart,
	}
}

// Frame returns the frame the model last rendered.
func (m *PlayerModel) Frame() engine.Frame { return m.frame }

// Init initializes the model.
func (m *PlayerModel) Init() tea.Cmd {
	if m.autoStart {
		m.in.Start()
	}
	return m.tickCmd()
}

// Update handles messages and updates the model.
func (m *PlayerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.messageExp.IsZero() && time.Now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		m.frame = m.in.Frame()
		return m, m.tickCmd()
	}

	return m, nil
}

// handleKeyPress handles keyboard input.
func (m *PlayerModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.in.Stop()
		return m, tea.Quit

	case " ", "p":
		m.toggle()

	case "left", "h":
		m.in.StepBack()

	case "right", "l":
		m.in.StepForward()

	case "home", "g":
		m.in.Seek(0)

	case "end", "G":
		m.in.Seek(m.in.Frame().HistoryLen - 1)

	case "+", "=":
		if m.frame.Flags.Speed > 0 {
			m.setSpeed(time.Duration(float64(m.frame.Flags.Speed) / m.speedStep))
		}

	case "-", "_":
		m.setSpeed(time.Duration(float64(m.frame.Flags.Speed) * m.speedStep))

	case "s":
		if m.in.Stop() {
			m.setMessage("Stopped", 2*time.Second)
		}

	case "r":
		m.in.Restart()
		m.err = nil

	case "n":
		p := m.in.Params()
		delete(p, "seed")
		if err := m.in.Reset(p); err != nil {
			m.err = err
		} else {
			m.err = nil
			m.setMessage("New input", 2*time.Second)
		}
	}

	m.frame = m.in.Frame()
	return m, nil
}

// toggle starts, pauses or resumes depending on the run state. A finished
// run sitting on its last step replays from the original input.
func (m *PlayerModel) toggle() {
	f := m.in.Frame()
	switch {
	case f.Flags.Running && f.Flags.Paused:
		m.in.Resume()
	case f.Flags.Running:
		m.in.Pause()
	default:
		if f.LastRun.Outcome == engine.Completed && f.HistoryLen > 0 && !f.CanStepForward {
			m.in.Restart()
		}
		m.in.Start()
	}
}

// setSpeed applies d within the configured range. Slowing down from
// instant starts at the minimum delay.
func (m *PlayerModel) setSpeed(d time.Duration) {
	if d == 0 {
		d = m.speeds.Min
	}
	m.in.SetSpeed(m.speeds.Clamp(d))
}

// setMessage sets a temporary message.
func (m *PlayerModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = time.Now().Add(duration)
}

// tickCmd returns a command that sends a tick message.
func (m *PlayerModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View renders the player.
func (m *PlayerModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", errors.FormatByCategory(m.err))))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	sections = append(sections, NewStatusComponent(m.spec, m.frame, m.width).View())

	side := lipgloss.JoinVertical(lipgloss.Left,
		(&CountersComponent{Declared: m.spec.Counters, Counters: m.frame.Counters}).View(),
		(&SourceComponent{Source: m.spec.Source, Line: m.frame.Line}).View(),
	)
	stageWidth := max(m.width-lipgloss.Width(side)-6, 20)
	stageHeight := max(m.height-16, 8)
	stage := StyleStageBox.Render(Render(m.frame.State, stageWidth, stageHeight))
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, stage, " ", side))

	sections = append(sections, HelpBar(PlayerKeys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *PlayerModel) renderHeader() string {
	title := StyleTitle.Render(m.spec.Name)
	info := StyleSubtitle.Render(fmt.Sprintf("%s · %s", m.spec.Family, m.spec.Complexity))
	params := ""
	if p := m.in.Params(); len(p) > 0 {
		params = StyleMuted.Render(fmt.Sprint(map[string]any(p)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", info, "  ", params)
}

// requireTerminal fails when stdin or stdout is not interactive.
func requireTerminal() error {
	for _, f := range []*os.File{os.Stdin, os.Stdout} {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return errors.NewSystemError("the player needs an interactive terminal", errors.ErrNotATerminal)
		}
	}
	return nil
}

// RunPlayer starts the player TUI.
func RunPlayer(cfg PlayerConfig) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	defer cfg.Instance.Stop()
	p := tea.NewProgram(NewPlayerModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
