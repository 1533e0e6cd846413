package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T, maxItems int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), maxItems)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestInsertAndGet(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 50)
	ctx := context.Background()

	id, err := store.Insert(ctx, "convert", "E = mc^2", `{"latex":"E = mc^2"}`)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	item, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if item.Tab != "convert" {
		t.Errorf("Tab = %q, want %q", item.Tab, "convert")
	}
	if item.Title != "E = mc^2" {
		t.Errorf("Title = %q, want %q", item.Title, "E = mc^2")
	}
	if item.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 50)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Insert(ctx, "convert", fmt.Sprintf("item %d", i), "{}"); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	items, err := store.List(ctx, "convert")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("List() returned %d items, want 3", len(items))
	}
	if items[0].Title != "item 2" || items[2].Title != "item 0" {
		t.Errorf("List() order = [%q, %q, %q], want newest first",
			items[0].Title, items[1].Title, items[2].Title)
	}
}

func TestInsertTrimsPerTab(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 5)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		if _, err := store.Insert(ctx, "convert", fmt.Sprintf("item %d", i), "{}"); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	// Another tab must not count against the cap.
	if _, err := store.Insert(ctx, "clipboard", "other tab", "{}"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	items, err := store.List(ctx, "convert")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 5 {
		t.Errorf("List() returned %d items after trim, want 5", len(items))
	}
	if items[0].Title != "item 7" {
		t.Errorf("newest item = %q, want %q", items[0].Title, "item 7")
	}
	if items[len(items)-1].Title != "item 3" {
		t.Errorf("oldest kept item = %q, want %q", items[len(items)-1].Title, "item 3")
	}

	other, err := store.List(ctx, "clipboard")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(other) != 1 {
		t.Errorf("clipboard tab has %d items, want 1", len(other))
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 50)

	_, err := store.Get(context.Background(), 12345)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	store := openTestStore(t, 50)
	ctx := context.Background()

	id, err := store.Insert(ctx, "convert", "to delete", "{}")
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}
