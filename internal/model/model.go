package model

import "strings"

// Item is a single to-do entry. The backend owns the record; clients only ever
// hold read-only copies delivered through snapshots, and mutate via explicit
// create/update/delete requests.
type Item struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Done    bool   `json:"done"`
	// AttachmentRef is the opaque storage key of an uploaded photo, or empty
	// when the item has no attachment. It is never a URL; rendering resolves
	// it to a time-limited address separately.
	AttachmentRef string `json:"attachmentRef,omitempty"`
}

// HasAttachment reports whether the item references a stored object.
func (it Item) HasAttachment() bool {
	return strings.TrimSpace(it.AttachmentRef) != ""
}

// Snapshot is the complete collection state at a point in time, in the order
// the backend delivered it. Each snapshot wholly supersedes the previous one;
// consumers replace, never merge.
type Snapshot []Item

// Find returns the item with the given id, if present.
func (s Snapshot) Find(id string) (Item, bool) {
	for _, it := range s {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// IDs returns the item ids in snapshot order.
func (s Snapshot) IDs() []string {
	out := make([]string, 0, len(s))
	for _, it := range s {
		out = append(out, it.ID)
	}
	return out
}
