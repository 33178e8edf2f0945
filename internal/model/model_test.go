package model

import (
	"encoding/json"
	"testing"
)

func TestItem_HasAttachment(t *testing.T) {
	if (Item{}).HasAttachment() {
		t.Fatalf("empty ref counted as attachment")
	}
	if !(Item{AttachmentRef: "photos/1-a.png"}).HasAttachment() {
		t.Fatalf("ref not detected")
	}
}

func TestItem_JSONOmitsEmptyAttachmentRef(t *testing.T) {
	b, err := json.Marshal(Item{ID: "a", Content: "x"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["attachmentRef"]; ok {
		t.Fatalf("attachmentRef should be omitted when empty: %s", b)
	}
}

func TestSnapshot_Find(t *testing.T) {
	snap := Snapshot{{ID: "a"}, {ID: "b", Content: "two"}}

	it, ok := snap.Find("b")
	if !ok || it.Content != "two" {
		t.Fatalf("Find(b) = %+v, %v", it, ok)
	}
	if _, ok := snap.Find("z"); ok {
		t.Fatalf("Find on absent id must report missing")
	}
}

func TestSnapshot_IDsPreserveOrder(t *testing.T) {
	snap := Snapshot{{ID: "c"}, {ID: "a"}, {ID: "b"}}
	ids := snap.IDs()
	want := []string{"c", "a", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}
