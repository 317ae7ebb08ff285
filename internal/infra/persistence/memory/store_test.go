package memory

import (
	"context"
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
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	item := fixtureItem("id-1", "slug-1", "First")

	if err := store.PutItem(ctx, item); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.GetItem(ctx, "id-1")
	if err != nil || !ok || got.Name != "First" {
		t.Fatalf("get: %v %v %+v", err, ok, got)
	}
	bySlug, ok, err := store.GetItemBySlug(ctx, "slug-1")
	if err != nil || !ok || bySlug.ID != "id-1" {
		t.Fatalf("get by slug: %v %v %+v", err, ok, bySlug)
	}

	// mutate the returned copy; the store must not observe it
	got.Name = "mutated"
	again, _, _ := store.GetItem(ctx, "id-1")
	if again.Name != "First" {
		t.Fatalf("store aliased caller memory")
	}

	existed, err := store.DeleteItem(ctx, "id-1")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", err, existed)
	}
	if _, ok, _ := store.GetItem(ctx, "id-1"); ok {
		t.Fatalf("item survived delete")
	}
	if _, ok, _ := store.GetItemBySlug(ctx, "slug-1"); ok {
		t.Fatalf("slug survived delete")
	}
	existed, err = store.DeleteItem(ctx, "id-1")
	if err != nil || existed {
		t.Fatalf("second delete: %v %v", err, existed)
	}
}

func TestStoreSlugRepoint(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	item := fixtureItem("id-1", "old-slug", "Renamable")
	if err := store.PutItem(ctx, item); err != nil {
		t.Fatalf("put: %v", err)
	}
	item.Slug = "new-slug"
	if err := store.PutItem(ctx, item); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok, _ := store.GetItemBySlug(ctx, "old-slug"); ok {
		t.Fatalf("old slug still resolves")
	}
	got, ok, _ := store.GetItemBySlug(ctx, "new-slug")
	if !ok || got.ID != "id-1" {
		t.Fatalf("new slug not indexed: %v %+v", ok, got)
	}
}

func TestStoreQueryOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := []domain.Item{
		{ID: "b", Slug: "b", Name: "B", CreatedAt: base.Add(time.Hour)},
		{ID: "c", Slug: "c", Name: "C", CreatedAt: base},
		{ID: "a", Slug: "a", Name: "A", CreatedAt: base},
	}
	for _, it := range seed {
		if err := store.PutItem(ctx, it); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	items, err := store.QueryItems(ctx, domain.ItemQuery{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	var order string
	for _, it := range items {
		order += it.ID
	}
	if order != "acb" {
		t.Fatalf("ordering %q, want acb", order)
	}
}

func TestStoreAsOfViews(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	clock := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return clock })

	item := fixtureItem("id-1", "slug-1", "v1")
	if err := store.PutItem(ctx, item); err != nil {
		t.Fatalf("put v1: %v", err)
	}
	clock = clock.Add(time.Hour)
	item.Name = "v2"
	if err := store.PutItem(ctx, item); err != nil {
		t.Fatalf("put v2: %v", err)
	}
	clock = clock.Add(time.Hour)
	if _, err := store.DeleteItem(ctx, "id-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	at := func(ts time.Time) []domain.Item {
		t.Helper()
		items, err := store.QueryItems(ctx, domain.ItemQuery{AsOf: &ts})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		return items
	}

	if items := at(time.Date(2025, 3, 1, 9, 59, 0, 0, time.UTC)); len(items) != 0 {
		t.Fatalf("pre-creation view %+v", items)
	}
	if items := at(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)); len(items) != 1 || items[0].Name != "v1" {
		t.Fatalf("v1 view %+v", items)
	}
	if items := at(time.Date(2025, 3, 1, 11, 30, 0, 0, time.UTC)); len(items) != 1 || items[0].Name != "v2" {
		t.Fatalf("v2 view %+v", items)
	}
	if items := at(time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)); len(items) != 0 {
		t.Fatalf("post-delete view %+v", items)
	}
	// exact boundary: a revision recorded at ts is visible at ts
	if items := at(time.Date(2025, 3, 1, 11, 0, 0, 0, time.UTC)); len(items) != 1 || items[0].Name != "v2" {
		t.Fatalf("boundary view %+v", items)
	}
}

func TestStoreHistory(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	item := fixtureItem("id-1", "slug-1", "v1")
	_ = store.PutItem(ctx, item)
	item.Name = "v2"
	_ = store.PutItem(ctx, item)
	_, _ = store.DeleteItem(ctx, "id-1")

	revs, err := store.ItemHistory(ctx, "id-1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("expected 3 revisions, got %d", len(revs))
	}
	if revs[0].Item.Name != "v1" || revs[1].Item.Name != "v2" || !revs[2].Deleted {
		t.Fatalf("unexpected history %+v", revs)
	}

	empty, err := store.ItemHistory(ctx, "unknown")
	if err != nil || len(empty) != 0 {
		t.Fatalf("unknown history: %v %+v", err, empty)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.PutItem(ctx, fixtureItem("id-1", "slug-1", "One"))
	_ = store.PutItem(ctx, fixtureItem("id-2", "slug-2", "Two"))
	_, _ = store.DeleteItem(ctx, "id-2")

	snapshot := store.ExportState()
	restored := NewStore()
	restored.ImportState(snapshot)

	got, ok, _ := restored.GetItem(ctx, "id-1")
	if !ok || got.Name != "One" {
		t.Fatalf("restored item: %v %+v", ok, got)
	}
	if _, ok, _ := restored.GetItem(ctx, "id-2"); ok {
		t.Fatalf("deleted item resurrected")
	}
	bySlug, ok, _ := restored.GetItemBySlug(ctx, "slug-1")
	if !ok || bySlug.ID != "id-1" {
		t.Fatalf("slug index not rebuilt")
	}
	revs, _ := restored.ItemHistory(ctx, "id-2")
	if len(revs) != 2 || !revs[1].Deleted {
		t.Fatalf("history not restored: %+v", revs)
	}
}
