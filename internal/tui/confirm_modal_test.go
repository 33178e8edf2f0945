package tui

import (
	"strings"
	"testing"
)

func TestRenderConfirmModal_ShowsBodyAndBothButtons(t *testing.T) {
	out := renderConfirmModal(80, "Delete todo", `Delete "water plants"?`, "Delete", "Cancel", confirmFocusCancel)

	for _, want := range []string{"Delete todo", `Delete "water plants"?`, "Delete", "Cancel"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered modal missing %q:\n%s", want, out)
		}
	}
}

func TestRenderConfirmModal_RendersForBothFocusStates(t *testing.T) {
	onCancel := renderConfirmModal(80, "Delete todo", "sure?", "Delete", "Cancel", confirmFocusCancel)
	onConfirm := renderConfirmModal(80, "Delete todo", "sure?", "Delete", "Cancel", confirmFocusConfirm)

	if onCancel == "" || onConfirm == "" {
		t.Fatalf("empty render")
	}
}
