package ui

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/go-mazewalk/internal/config"
	"github.com/amalg/go-mazewalk/internal/game"
	"github.com/amalg/go-mazewalk/internal/maze"
	"github.com/amalg/go-mazewalk/internal/motion"
)

type fakeSource struct {
	pilot  bool
	sent   []game.Control
	err    error
	states chan game.Snapshot
}

func newFakeSource(pilot bool) *fakeSource {
	return &fakeSource{pilot: pilot, states: make(chan game.Snapshot, 1)}
}

func (f *fakeSource) Grid() maze.Grid { return maze.DefaultGrid() }
func (f *fakeSource) States() <-chan game.Snapshot { return f.states }
func (f *fakeSource) Pilot() bool { return f.pilot }
func (f *fakeSource) SendControl(c game.Control) error {
	f.sent = append(f.sent, c)
	return f.err
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestHeading(t *testing.T) {
	tests := []struct {
		yaw  float64
		want string
	}{
		{0, "↑"},
		{math.Pi / 2, "←"},
		{-math.Pi / 2, "→"},
		{math.Pi, "↓"},
		{-math.Pi / 4, "↗"},
		{2 * math.Pi, "↑"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Heading(tt.yaw), "yaw %.2f", tt.yaw)
	}
}

func TestRenderMazeShowsMover(t *testing.T) {
	snap := &game.Snapshot{Position: mgl64.Vec3{0.5, 1, 0.5}}
	out := RenderMaze(maze.DefaultGrid(), snap)

	assert.Contains(t, out, "↑")
	assert.Len(t, strings.Split(out, "\n"), 10)
	assert.Equal(t, "Waiting for maze...", RenderMaze(nil, nil))
}

func TestRenderHUD(t *testing.T) {
	grid := maze.DefaultGrid()
	assert.Contains(t, RenderHUD(grid, nil, false), "spectating")

	hud := RenderHUD(grid, &game.Snapshot{Position: mgl64.Vec3{-2, 1, 0}, Collided: true}, true)
	assert.Contains(t, hud, "piloting")
	assert.Contains(t, hud, "BLOCKED")
	assert.Contains(t, hud, "outside the maze")
}

func TestModelHoldsKeysWithinWindow(t *testing.T) {
	now := time.Unix(100, 0)
	m := NewModel(newFakeSource(true))
	m.now = func() time.Time { return now }

	m = press(m, "up")
	m = press(m, "d")
	assert.Equal(t, motion.Keys{Forward: true, Right: true}, m.Keys())

	now = now.Add(holdWindow + time.Millisecond)
	assert.Equal(t, motion.Keys{}, m.Keys())
}

func TestModelFlushSendsControlOnce(t *testing.T) {
	src := newFakeSource(true)
	m := NewModel(src)
	m = press(m, "w")
	m = press(m, "q")

	next, cmd := m.Update(controlTickMsg(time.Now()))
	m = next.(Model)
	require.NotNil(t, cmd)
	require.Len(t, src.sent, 1)
	assert.True(t, src.sent[0].Keys.Forward)
	assert.Equal(t, -turnUnits, src.sent[0].LookDX)

	// Look deltas are consumed by the flush; held keys are not.
	m.Update(controlTickMsg(time.Now()))
	require.Len(t, src.sent, 2)
	assert.Zero(t, src.sent[1].LookDX)
	assert.True(t, src.sent[1].Keys.Forward)
}

func TestModelSpectatorSendsNothing(t *testing.T) {
	src := newFakeSource(false)
	m := press(NewModel(src), "w")
	m.Update(controlTickMsg(time.Now()))
	assert.Empty(t, src.sent)
}

func TestModelSendErrorQuits(t *testing.T) {
	src := newFakeSource(true)
	src.err = errors.New("broken pipe")

	next, _ := NewModel(src).Update(controlTickMsg(time.Now()))
	m := next.(Model)
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "broken pipe")
}

func TestModelMouseLook(t *testing.T) {
	m := NewModel(newFakeSource(true))
	move := func(x, y int) {
		next, _ := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion})
		m = next.(Model)
	}

	move(10, 10)
	assert.Zero(t, m.lookDX)
	move(12, 9)
	assert.Equal(t, 2*mouseUnits, m.lookDX)
	assert.Equal(t, -mouseUnits, m.lookDY)
}

func TestModelStateAndQuit(t *testing.T) {
	m := NewModel(newFakeSource(true))
	next, _ := m.Update(stateUpdateMsg(game.Snapshot{Frame: 3}))
	m = next.(Model)
	require.NotNil(t, m.state)
	assert.Equal(t, uint64(3), m.state.Frame)

	m = press(m, "esc")
	assert.True(t, m.quitting)
	assert.Equal(t, "Bye.\n", m.View())
}

func TestLocalSourceDrivesEngine(t *testing.T) {
	engine, err := game.NewEngine(config.Default(), nil)
	require.NoError(t, err)
	src := NewLocalSource(engine)
	assert.True(t, src.Pilot())

	require.NoError(t, src.SendControl(game.Control{Keys: motion.Keys{Back: true}}))
	for i := 0; i < 10; i++ {
		engine.Step(0.01)
	}

	var last game.Snapshot
	for len(src.States()) > 0 {
		last = <-src.States()
	}
	assert.Equal(t, uint64(10), last.Frame)
	assert.Greater(t, last.Position.Z(), 0.0)
}

func TestModelHoldBridgesInitialRepeatDelay(t *testing.T) {
	now := time.Unix(100, 0)
	m := NewModel(newFakeSource(true))
	m.now = func() time.Time { return now }

	m = press(m, "w")
	// First auto-repeat arrives after the OS delay; the key must not drop out before it.
	now = now.Add(660 * time.Millisecond)
	assert.True(t, m.Keys().Forward)

	m = press(m, "w")
	now = now.Add(33 * time.Millisecond)
	assert.True(t, m.Keys().Forward)
}
