package snapshot

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"todosync/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(context.Background(), filepath.Join(t.TempDir(), "cache.sqlite"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SaveLoadRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	snap := model.Snapshot{
		{ID: "a", Content: "Buy milk", Done: true},
		{ID: "b", Content: "Write report", AttachmentRef: "photos/2-r.png"},
	}
	if err := c.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("load = %+v, want %+v", got, snap)
	}
}

func TestCache_SaveWhollyReplacesPrevious(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	if err := c.Save(ctx, model.Snapshot{{ID: "a"}, {ID: "b"}}); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if err := c.Save(ctx, model.Snapshot{{ID: "c"}}); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	got, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("expected only the latest snapshot, got %+v", got)
	}
}

func TestCache_LoadEmptyIsNotAnError(t *testing.T) {
	c := openTestCache(t)
	got, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}
}
