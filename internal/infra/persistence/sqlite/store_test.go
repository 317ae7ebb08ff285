package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"itemcore/pkg/domain"
)

func fixtureItem(id, slug, name string) domain.Item {
	return domain.Item{
		ID:        id,
		Slug:      slug,
		Name:      name,
		Status:    domain.StatusActive,
		Priority:  domain.PriorityMedium,
		Tags:      []string{"persisted"},
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("path %s", store.Path())
	}
	if err := store.PutItem(ctx, fixtureItem("id-1", "slug-1", "Durable")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.PutItem(ctx, fixtureItem("id-2", "slug-2", "Doomed")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.DeleteItem(ctx, "id-2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, ok, err := reopened.GetItem(ctx, "id-1")
	if err != nil || !ok || got.Name != "Durable" || len(got.Tags) != 1 {
		t.Fatalf("hydrated item: %v %v %+v", err, ok, got)
	}
	bySlug, ok, _ := reopened.GetItemBySlug(ctx, "slug-1")
	if !ok || bySlug.ID != "id-1" {
		t.Fatalf("slug index not rebuilt")
	}
	if _, ok, _ := reopened.GetItem(ctx, "id-2"); ok {
		t.Fatalf("deleted item resurrected")
	}

	revs, err := reopened.ItemHistory(ctx, "id-2")
	if err != nil || len(revs) != 2 || !revs[1].Deleted {
		t.Fatalf("history not hydrated: %v %+v", err, revs)
	}
}

func TestStoreDefaultsPath(t *testing.T) {
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() != "itemcore.db" {
		t.Fatalf("default path %s", store.Path())
	}
	if store.DB() == nil {
		t.Fatalf("db handle missing")
	}
}

func TestStoreQueryAfterReopenIsOrdered(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "items.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	older := fixtureItem("id-b", "slug-b", "B")
	older.CreatedAt = base
	newer := fixtureItem("id-a", "slug-a", "A")
	newer.CreatedAt = base.Add(time.Hour)
	_ = store.PutItem(ctx, newer)
	_ = store.PutItem(ctx, older)
	_ = store.Close()

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	items, err := reopened.QueryItems(ctx, domain.ItemQuery{})
	if err != nil || len(items) != 2 {
		t.Fatalf("query: %v %d", err, len(items))
	}
	if items[0].ID != "id-b" || items[1].ID != "id-a" {
		t.Fatalf("ordering %s %s", items[0].ID, items[1].ID)
	}
}
