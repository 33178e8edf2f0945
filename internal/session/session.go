// Package session holds the client-side editing state: a single edit session
// staged behind the shared modal, and the gateway that turns a staged session
// into at most one upload plus one create/update request.
package session

import (
	"strings"

	"todosync/internal/model"
)

// Mode is the edit session's state. There is no direct transition between
// Creating and Editing; the session returns to Closed in between, which is
// what a single shared modal gives you structurally.
type Mode int

const (
	Closed Mode = iota
	Creating
	Editing
)

func (m Mode) String() string {
	switch m {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	default:
		return "closed"
	}
}

// Session stages a create or edit before commit. It exists purely in the UI
// layer: staged content and file have no remote effect until Commit.
// At most one session is open at a time; opening is refused while another
// mode is active.
type Session struct {
	mode     Mode
	itemID   string
	content  string
	filePath string
}

// OpenCreate transitions Closed -> Creating with cleared staging. Returns
// false (and changes nothing) when the session is already open.
func (s *Session) OpenCreate() bool {
	if s.mode != Closed {
		return false
	}
	s.mode = Creating
	s.itemID = ""
	s.content = ""
	s.filePath = ""
	return true
}

// OpenEdit transitions Closed -> Editing(item.ID), staging the item's current
// content and clearing any staged file. Returns false when already open.
func (s *Session) OpenEdit(item model.Item) bool {
	if s.mode != Closed {
		return false
	}
	s.mode = Editing
	s.itemID = item.ID
	s.content = item.Content
	s.filePath = ""
	return true
}

// Cancel resets the session to Closed, discarding staged state. Also used to
// close the session after a successful commit.
func (s *Session) Cancel() {
	s.mode = Closed
	s.itemID = ""
	s.content = ""
	s.filePath = ""
}

// SetContent replaces the staged text. A pure local edit; no remote effect.
func (s *Session) SetContent(content string) { s.content = content }

// SetFile stages a file to upload on commit. Empty clears the staged file.
func (s *Session) SetFile(path string) { s.filePath = strings.TrimSpace(path) }

func (s *Session) Mode() Mode       { return s.mode }
func (s *Session) ItemID() string   { return s.itemID }
func (s *Session) Content() string  { return s.content }
func (s *Session) FilePath() string { return s.filePath }

// Blank reports whether the staged content is empty or whitespace-only.
// Commit on a blank session issues no request, in either mode.
func (s *Session) Blank() bool {
	return strings.TrimSpace(s.content) == ""
}
