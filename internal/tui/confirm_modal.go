package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusCancel confirmModalFocus = iota
	confirmFocusConfirm
)

// renderConfirmModal renders the delete confirmation. The confirm button is
// the destructive one, so it is drawn in the danger color in both states;
// focus starts on Cancel and is shown by the filled button.
func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus) string {
	cancelIdle := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	cancelFocused := cancelIdle.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirmIdle := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorDanger).
		Background(colorControlBg)
	confirmFocused := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSelectedFg).
		Background(colorDanger).
		Bold(true)

	confirm := confirmIdle.Render(confirmLabel)
	cancel := cancelIdle.Render(cancelLabel)
	switch focus {
	case confirmFocusConfirm:
		confirm = confirmFocused.Render(confirmLabel)
	case confirmFocusCancel:
		cancel = cancelFocused.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, cancel, sep, confirm)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   y: confirm   esc/n: cancel")

	content := strings.Join([]string{
		body,
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}
