package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-mazewalk/internal/game"
	"github.com/amalg/go-mazewalk/internal/maze"
	"github.com/amalg/go-mazewalk/internal/motion"
)

const (
	// Terminals report presses, not releases: a key counts as held while its
	// auto-repeat keeps arriving within this window, which outlasts the
	// usual OS initial repeat delay of 500-660 ms.
	holdWindow = 700 * time.Millisecond
	// controlRate is how often held keys are sent to the engine.
	controlRate = time.Second / 30
	// turnUnits is the look delta one Q/E press produces.
	turnUnits = 50.0
	// mouseUnits converts one terminal cell of pointer travel into look units.
	mouseUnits = 12.0
)

// Source is where the TUI gets frames from and sends control to: a local
// engine or a network client.
type Source interface {
	Grid() maze.Grid
	States() <-chan game.Snapshot
	SendControl(game.Control) error
	Pilot() bool
}

// stateUpdateMsg carries a new snapshot from the source.
type stateUpdateMsg game.Snapshot

// controlTickMsg fires at controlRate to flush held keys.
type controlTickMsg time.Time

// errMsg carries an error.
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// Model is the Bubbletea model for the walking view.
type Model struct {
	src      Source
	grid     maze.Grid
	pilot    bool
	state    *game.Snapshot
	held     map[string]time.Time // direction -> last press
	lookDX   float64
	lookDY   float64
	mouseX   int
	mouseY   int
	hasMouse bool
	now      func() time.Time
	err      error
	quitting bool
}

// NewModel creates a new TUI model over the given source.
func NewModel(src Source) Model {
	return Model{
		src:   src,
		grid:  src.Grid(),
		pilot: src.Pilot(),
		held:  make(map[string]time.Time),
		now:   time.Now,
	}
}

// Init starts listening for snapshots and, for the pilot, the control clock.
func (m Model) Init() tea.Cmd {
	if !m.pilot {
		return waitForState(m.src)
	}
	return tea.Batch(waitForState(m.src), controlTick())
}

// Update handles key presses, pointer motion, control ticks and snapshots.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case controlTickMsg:
		if err := m.flushControl(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		return m, controlTick()

	case stateUpdateMsg:
		snap := game.Snapshot(msg)
		m.state = &snap
		return m, waitForState(m.src)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the maze and HUD side by side.
func (m Model) View() string {
	if m.quitting {
		return "Bye.\n"
	}

	if m.err != nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Render("Error: "+m.err.Error()) + "\n"
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		RenderMaze(m.grid, m.state),
		"  ",
		RenderHUD(m.grid, m.state, m.pilot),
	) + "\n"
}

// Keys returns the movement keys currently considered held.
func (m Model) Keys() motion.Keys {
	now := m.now()
	held := func(dir string) bool {
		t, ok := m.held[dir]
		return ok && now.Sub(t) < holdWindow
	}
	return motion.Keys{
		Forward: held("forward"),
		Back:    held("back"),
		Left:    held("left"),
		Right:   held("right"),
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "w":
		m.held["forward"] = m.now()
	case "down", "s":
		m.held["back"] = m.now()
	case "left", "a":
		m.held["left"] = m.now()
	case "right", "d":
		m.held["right"] = m.now()
	case "q":
		m.lookDX -= turnUnits
	case "e":
		m.lookDX += turnUnits
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if msg.Action != tea.MouseActionMotion {
		return m
	}
	if m.hasMouse {
		m.lookDX += float64(msg.X-m.mouseX) * mouseUnits
		m.lookDY += float64(msg.Y-m.mouseY) * mouseUnits
	}
	m.mouseX, m.mouseY, m.hasMouse = msg.X, msg.Y, true
	return m
}

// flushControl sends held keys and pending look to the source.
// Spectators send nothing.
func (m *Model) flushControl() error {
	if !m.pilot {
		return nil
	}
	ctl := game.Control{Keys: m.Keys(), LookDX: m.lookDX, LookDY: m.lookDY}
	m.lookDX, m.lookDY = 0, 0
	if err := m.src.SendControl(ctl); err != nil {
		return fmt.Errorf("send control: %w", err)
	}
	return nil
}

func controlTick() tea.Cmd {
	return tea.Tick(controlRate, func(t time.Time) tea.Msg {
		return controlTickMsg(t)
	})
}

// waitForState returns a Cmd that waits for the next snapshot from the source.
func waitForState(src Source) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-src.States()
		if !ok {
			return errMsg{err: fmt.Errorf("session closed")}
		}
		return stateUpdateMsg(snap)
	}
}
