package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"todosync/internal/model"
)

// todoListItem adapts a model.Item for the bubbles list.
type todoListItem struct {
	item model.Item
}

func (t todoListItem) Title() string {
	var b strings.Builder
	if t.item.Done {
		b.WriteString("[x] ")
	} else {
		b.WriteString("[ ] ")
	}
	b.WriteString(firstLine(t.item.Content))
	if t.item.HasAttachment() {
		b.WriteString("  📷")
	}
	return b.String()
}

func (t todoListItem) Description() string { return "" }

// FilterValue lets "/" filtering match on content.
func (t todoListItem) FilterValue() string { return t.item.Content }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func toListItems(snap model.Snapshot) []list.Item {
	out := make([]list.Item, 0, len(snap))
	for _, it := range snap {
		out = append(out, todoListItem{item: it})
	}
	return out
}
