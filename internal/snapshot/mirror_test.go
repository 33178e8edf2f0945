package snapshot

import (
	"reflect"
	"testing"

	"todosync/internal/model"
)

func TestReduce_ReturnsNextSnapshotUnchanged(t *testing.T) {
	old := model.Snapshot{{ID: "a", Content: "stale"}}
	next := model.Snapshot{{ID: "b", Content: "fresh"}}

	got := Reduce(old, next)
	if !reflect.DeepEqual(got, next) {
		t.Fatalf("Reduce = %+v, want %+v", got, next)
	}
}

func TestMirror_ReplaceIsTotalOverwrite(t *testing.T) {
	m := NewMirror()

	s1 := model.Snapshot{
		{ID: "a", Content: "Buy milk"},
		{ID: "b", Content: "Write report", AttachmentRef: "photos/1-x.png"},
	}
	s2 := model.Snapshot{
		{ID: "c", Content: "Vacation photo"},
	}

	m.Replace(s1)
	if got := m.Items(); !reflect.DeepEqual(got, s1) {
		t.Fatalf("after S1: got %+v, want %+v", got, s1)
	}

	m.Replace(s2)
	got := m.Items()
	if !reflect.DeepEqual(got, s2) {
		t.Fatalf("after S2: got %+v, want %+v", got, s2)
	}
	// No residual items from S1.
	if _, ok := got.Find("a"); ok {
		t.Fatalf("item from superseded snapshot survived the replace")
	}
	if _, ok := m.Find("b"); ok {
		t.Fatalf("Find returned an item from a superseded snapshot")
	}
}

func TestMirror_ReplaceWithEmptySnapshotClearsAll(t *testing.T) {
	m := NewMirror()
	m.Replace(model.Snapshot{{ID: "a"}, {ID: "b"}})
	m.Replace(model.Snapshot{})

	if m.Len() != 0 {
		t.Fatalf("expected empty mirror, got %d items", m.Len())
	}
}

func TestMirror_ItemsReturnsCopy(t *testing.T) {
	m := NewMirror()
	m.Replace(model.Snapshot{{ID: "a", Content: "original"}})

	got := m.Items()
	got[0].Content = "mutated"

	if it, _ := m.Find("a"); it.Content != "original" {
		t.Fatalf("mutating the returned slice leaked into the mirror")
	}
}

func TestMirror_PreservesDeliveryOrder(t *testing.T) {
	m := NewMirror()
	snap := model.Snapshot{{ID: "z"}, {ID: "a"}, {ID: "m"}}
	m.Replace(snap)

	got := m.Items().IDs()
	want := []string{"z", "a", "m"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v (no sorting is imposed)", got, want)
	}
}
