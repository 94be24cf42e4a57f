package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/go-mazewalk/internal/game"
	"github.com/amalg/go-mazewalk/internal/maze"
)

// Color palette
var (
	wallStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#3a3a3a")).
			Foreground(lipgloss.Color("#555555"))

	floorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#1a1a2e"))

	moverStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1a1a2e")).
			Foreground(lipgloss.Color("#00ff88")).
			Bold(true)

	blockedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#ff6600")).
			Foreground(lipgloss.Color("#ffcc00")).
			Bold(true)

	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

// arrows are clockwise from screen-up (-Z).
var arrows = []string{"↑", "↗", "→", "↘", "↓", "↙", "←", "↖"}

// Heading returns the arrow for a yaw in radians. Yaw 0 faces up the map
// (-Z) and positive yaw turns left.
func Heading(yaw float64) string {
	// Screen angle measured clockwise from up.
	theta := -yaw
	idx := int(math.Round(theta/(math.Pi/4))) % len(arrows)
	if idx < 0 {
		idx += len(arrows)
	}
	return arrows[idx]
}

// RenderMaze draws the floor plan top-down with the mover on it.
// Each cell is 2 characters wide for a square-ish appearance.
func RenderMaze(grid maze.Grid, snap *game.Snapshot) string {
	if len(grid) == 0 {
		return "Waiting for maze..."
	}

	mx, mz := -1, -1
	if snap != nil {
		mx, mz = cellOf(snap.Position.X()), cellOf(snap.Position.Z())
	}

	var rows []string
	for z, row := range grid {
		var cells []string
		for x, c := range row {
			if x == mx && z == mz {
				style := moverStyle
				if snap.Collided {
					style = blockedStyle
				}
				cells = append(cells, style.Render(Heading(snap.Orientation.Yaw)+" "))
				continue
			}
			if c == maze.Wall {
				cells = append(cells, wallStyle.Render("██"))
			} else {
				cells = append(cells, floorStyle.Render("  "))
			}
		}
		rows = append(rows, strings.Join(cells, ""))
	}

	return strings.Join(rows, "\n")
}

// RenderHUD renders the side panel with the mover's resolved state.
func RenderHUD(grid maze.Grid, snap *game.Snapshot, pilot bool) string {
	var parts []string

	parts = append(parts, titleStyle.Render("MAZEWALK"))
	parts = append(parts, "")

	role := "spectating"
	if pilot {
		role = "piloting"
	}
	parts = append(parts, dimStyle.Render("Role: ")+role)

	if snap == nil {
		parts = append(parts, "Waiting for first frame...")
		return hudBorderStyle.Render(strings.Join(parts, "\n"))
	}

	pos := snap.Position
	parts = append(parts,
		fmt.Sprintf("%s%.2f, %.2f, %.2f", dimStyle.Render("Pos:  "), pos.X(), pos.Y(), pos.Z()),
		fmt.Sprintf("%s%s %.0f°", dimStyle.Render("Head: "), Heading(snap.Orientation.Yaw), degrees(snap.Orientation.Yaw)),
		fmt.Sprintf("%s%.0f°", dimStyle.Render("Look: "), degrees(snap.Orientation.Pitch)),
		fmt.Sprintf("%s%d", dimStyle.Render("Frame:"), snap.Frame),
	)

	status := moverStyle.Render("clear")
	if snap.Collided {
		status = blockedStyle.Render("BLOCKED")
	}
	parts = append(parts, dimStyle.Render("Path: ")+status)

	if cellOf(pos.X()) < 0 || cellOf(pos.Z()) < 0 || cellOf(pos.X()) >= grid.Width() || cellOf(pos.Z()) >= grid.Height() {
		parts = append(parts, dimStyle.Render("(outside the maze)"))
	}

	parts = append(parts, "")
	parts = append(parts, helpStyle.Render("WASD/Arrows: Move | Q/E or mouse: Turn | Esc: Quit"))

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}

func cellOf(v float64) int {
	return int(math.Floor(v))
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
