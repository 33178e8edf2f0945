package session

import (
	"testing"

	"todosync/internal/model"
)

func TestSession_OpenCreateClearsStaging(t *testing.T) {
	var s Session
	if !s.OpenCreate() {
		t.Fatalf("OpenCreate from Closed should succeed")
	}
	if s.Mode() != Creating {
		t.Fatalf("mode = %v, want Creating", s.Mode())
	}
	if s.Content() != "" || s.FilePath() != "" || s.ItemID() != "" {
		t.Fatalf("staging not cleared: %+v", s)
	}
}

func TestSession_OpenEditStagesCurrentContent(t *testing.T) {
	var s Session
	it := model.Item{ID: "item-7", Content: "Buy milk", AttachmentRef: "photos/1-m.png"}
	if !s.OpenEdit(it) {
		t.Fatalf("OpenEdit from Closed should succeed")
	}
	if s.Mode() != Editing {
		t.Fatalf("mode = %v, want Editing", s.Mode())
	}
	if s.ItemID() != "item-7" {
		t.Fatalf("itemID = %q", s.ItemID())
	}
	if s.Content() != "Buy milk" {
		t.Fatalf("staged content = %q, want item's current content", s.Content())
	}
	if s.FilePath() != "" {
		t.Fatalf("staged file should start cleared")
	}
}

func TestSession_NoDirectTransitionBetweenModes(t *testing.T) {
	var s Session
	s.OpenCreate()
	if s.OpenEdit(model.Item{ID: "x"}) {
		t.Fatalf("Creating -> Editing must be refused")
	}
	if s.Mode() != Creating {
		t.Fatalf("refused open changed state: %v", s.Mode())
	}

	s.Cancel()
	s.OpenEdit(model.Item{ID: "x"})
	if s.OpenCreate() {
		t.Fatalf("Editing -> Creating must be refused")
	}
}

func TestSession_CancelReturnsToClosed(t *testing.T) {
	var s Session
	s.OpenCreate()
	s.SetContent("draft")
	s.SetFile("/tmp/photo.png")
	s.Cancel()

	if s.Mode() != Closed {
		t.Fatalf("mode = %v, want Closed", s.Mode())
	}
	if s.Content() != "" || s.FilePath() != "" {
		t.Fatalf("cancel must discard staging")
	}
	// Closed -> Editing works again after the round trip.
	if !s.OpenEdit(model.Item{ID: "y"}) {
		t.Fatalf("OpenEdit after Cancel should succeed")
	}
}

func TestSession_BlankDetectsWhitespaceOnly(t *testing.T) {
	var s Session
	s.OpenCreate()

	for _, content := range []string{"", "   ", "\t\n  \n"} {
		s.SetContent(content)
		if !s.Blank() {
			t.Fatalf("content %q should be blank", content)
		}
	}
	s.SetContent("  x  ")
	if s.Blank() {
		t.Fatalf("non-empty content reported blank")
	}
}
