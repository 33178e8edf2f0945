package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// modalBodyWidth returns the usable content width inside a modal for the given
// terminal width.
func modalBodyWidth(termWidth int) int {
	w := termWidth - 12
	if w > 64 {
		w = 64
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderModalBox renders a titled modal surface sized to the terminal width.
// Borders are avoided on the inner components: some terminals show background
// artifacts when nesting bordered components inside a colored modal.
func renderModalBox(termWidth int, title, content string) string {
	bodyW := modalBodyWidth(termWidth)

	header := lipgloss.NewStyle().
		Bold(true).
		Background(colorControlBg).
		Foreground(colorSurfaceFg).
		Width(bodyW).
		Padding(0, 1).
		Render(title)

	body := lipgloss.NewStyle().
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Width(bodyW).
		Padding(1, 1).
		Render(content)

	box := lipgloss.JoinVertical(lipgloss.Left, header, body)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Render(box)
}

// placeCentered positions content in the middle of the terminal.
func placeCentered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

// clampLine forces a single line to at most width columns (ANSI-aware),
// appending an ellipsis when it had to cut.
func clampLine(line string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(line) <= width {
		return line
	}
	if width == 1 {
		return xansi.Cut(line, 0, 1)
	}
	return xansi.Cut(line, 0, width-1) + "…"
}

// padLine pads a line with spaces to exactly width columns (ANSI-aware).
func padLine(line string, width int) string {
	line = clampLine(line, width)
	if w := xansi.StringWidth(line); w < width {
		line += strings.Repeat(" ", width-w)
	}
	return line
}
