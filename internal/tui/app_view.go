package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if m.width == 0 {
		return ""
	}

	switch m.modal {
	case modalEdit:
		return placeCentered(m.width, m.height, m.renderEditModal())
	case modalConfirmDelete:
		body := "Are you sure you want to delete this todo?"
		if it, ok := m.mirror.Find(m.deleteTargetID); ok {
			body = fmt.Sprintf("Delete %q?", clampLine(firstLine(it.Content), modalBodyWidth(m.width)-10))
		}
		return placeCentered(m.width, m.height,
			renderConfirmModal(m.width, "Delete todo", body, "Delete", "Cancel", m.confirmFocus))
	}

	if m.view == viewDetail {
		return m.renderDetail()
	}
	return m.renderList()
}

func (m appModel) renderList() string {
	header := styleHeader().Render(m.headerTitle())
	status := m.renderStatusLine()
	help := styleMuted().Render("n: new   e: edit   x: done   d: delete   enter: detail   /: filter   S: sign out   q: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		" "+header,
		"",
		m.itemsList.View(),
		"",
		" "+status,
		" "+help,
	)
}

func (m appModel) headerTitle() string {
	if m.user != "" {
		return m.user + "'s todos"
	}
	return "todos"
}

func (m appModel) renderStatusLine() string {
	parts := []string{}
	if m.committing {
		parts = append(parts, m.spin.View()+" saving…")
	}
	if m.statusText != "" {
		if m.statusError {
			parts = append(parts, styleError().Render(m.statusText))
		} else {
			parts = append(parts, m.statusText)
		}
	}
	if m.subErr != nil {
		parts = append(parts, styleError().Render("offline"))
	} else if !m.liveSeen {
		parts = append(parts, styleMuted().Render("connecting…"))
	}
	return strings.Join(parts, "   ")
}

func (m appModel) renderEditModal() string {
	title := "New Todo"
	if m.sess.ItemID() != "" {
		title = "Edit Todo"
	}

	label := func(s string, focused bool) string {
		if focused {
			return lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Render(s)
		}
		return styleMuted().Render(s)
	}

	var b strings.Builder
	b.WriteString(label("Content", m.editFocus == editFocusContent))
	b.WriteString("\n")
	b.WriteString(m.textarea.View())
	b.WriteString("\n\n")
	b.WriteString(label("Photo", m.editFocus == editFocusFile))
	b.WriteString("\n")
	b.WriteString(m.fileInput.View())
	b.WriteString("\n\n")
	if m.committing {
		b.WriteString(m.spin.View() + " saving…")
	} else {
		b.WriteString(styleMuted().Render("tab: focus   ctrl+s: save   esc: cancel"))
	}

	return renderModalBox(m.width, title, b.String())
}

func (m appModel) renderDetail() string {
	it, ok := m.mirror.Find(m.detailItemID)
	if !ok {
		return placeCentered(m.width, m.height, styleMuted().Render("item no longer exists"))
	}

	w := m.width - 4
	if w > 80 {
		w = 80
	}

	var b strings.Builder
	b.WriteString(styleHeader().Render(m.headerTitle()))
	b.WriteString("\n\n")
	b.WriteString(renderMarkdown(it.Content, w))
	b.WriteString("\n\n")
	if it.Done {
		b.WriteString(styleMuted().Render("status: done"))
	} else {
		b.WriteString(styleMuted().Render("status: open"))
	}
	b.WriteString("\n")
	if it.HasAttachment() {
		if url, ok := m.urls[it.ID]; ok {
			b.WriteString(styleMuted().Render("photo: ") + url)
		} else {
			b.WriteString(styleMuted().Render("photo: (unavailable)"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleMuted().Render("e: edit   esc: back"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
