package domain

import (
	"testing"
	"time"
)

func fixtureItem() Item {
	return Item{
		ID:          "8e9d2f7c1a4b4e0a9f3c5d6e7f801234",
		Slug:        "fix-bug-8e9d2f7c",
		Name:        "Fix Bug",
		Description: "desc",
		Status:      StatusActive,
		Priority:    PriorityMedium,
		Tags:        []string{"feature", "urgent"},
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		AssignedTo:  "Alice",
	}
}

func TestMergeItemLeavesAbsentFieldsUntouched(t *testing.T) {
	existing := fixtureItem()
	merged := MergeItem(existing, ItemPatch{Description: "new"})

	if merged.Description != "new" {
		t.Fatalf("expected description replaced, got %q", merged.Description)
	}
	if merged.AssignedTo != "Alice" {
		t.Fatalf("assigned_to mutated: %q", merged.AssignedTo)
	}
	if len(merged.Tags) != 2 || merged.Tags[0] != "feature" {
		t.Fatalf("tags mutated: %v", merged.Tags)
	}
	if merged.Name != existing.Name || merged.Status != existing.Status {
		t.Fatalf("untouched fields changed: %+v", merged)
	}
}

func TestMergeItemPreservesIdentityFields(t *testing.T) {
	existing := fixtureItem()
	merged := MergeItem(existing, ItemPatch{
		Name:        "Renamed",
		Status:      StatusCompleted,
		Tags:        []string{"done"},
		DueDate:     "2025-04-01",
		AssignedTo:  "Bob",
		Description: "other",
		Priority:    PriorityHigh,
	})

	if merged.ID != existing.ID || merged.Slug != existing.Slug {
		t.Fatalf("identity fields changed: id=%q slug=%q", merged.ID, merged.Slug)
	}
	if !merged.CreatedAt.Equal(existing.CreatedAt) {
		t.Fatalf("created_at changed: %v", merged.CreatedAt)
	}
	if merged.Name != "Renamed" || merged.Priority != PriorityHigh {
		t.Fatalf("patch fields not applied: %+v", merged)
	}
	if len(merged.Tags) != 1 || merged.Tags[0] != "done" {
		t.Fatalf("tags not replaced: %v", merged.Tags)
	}
}

func TestMergeItemNilTagsMeansUnchanged(t *testing.T) {
	existing := fixtureItem()
	merged := MergeItem(existing, ItemPatch{Name: "x"})
	if len(merged.Tags) != 2 {
		t.Fatalf("nil patch tags should keep existing tags, got %v", merged.Tags)
	}

	cleared := MergeItem(existing, ItemPatch{Tags: []string{}})
	if cleared.Tags == nil || len(cleared.Tags) != 0 {
		t.Fatalf("empty non-nil patch tags should clear tags, got %v", cleared.Tags)
	}
}

func TestMergeItemDoesNotAliasExistingTags(t *testing.T) {
	existing := fixtureItem()
	merged := MergeItem(existing, ItemPatch{})
	merged.Tags[0] = "mutated"
	if existing.Tags[0] != "feature" {
		t.Fatalf("merge aliased existing tags: %v", existing.Tags)
	}
}

func TestPatchIsZero(t *testing.T) {
	if !(ItemPatch{}).IsZero() {
		t.Fatal("empty patch should be zero")
	}
	if (ItemPatch{Tags: []string{}}).IsZero() {
		t.Fatal("non-nil tags is a change")
	}
	if (ItemPatch{DueDate: "2025-01-01"}).IsZero() {
		t.Fatal("due date is a change")
	}
}

func TestEnumMembership(t *testing.T) {
	for _, s := range []Status{StatusActive, StatusPending, StatusCompleted, StatusArchived} {
		if !s.Known() {
			t.Fatalf("status %q should be known", s)
		}
	}
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		if !p.Known() {
			t.Fatalf("priority %q should be known", p)
		}
	}
	if Status("bogus").Known() || Priority("bogus").Known() {
		t.Fatal("out-of-enum values must not report known")
	}
}

// Documented limitation: out-of-enum statuses are carried verbatim through a
// merge rather than rejected. Enum validation on write is intentionally absent.
func TestMergeItemAcceptsOpaqueEnumValues(t *testing.T) {
	merged := MergeItem(fixtureItem(), ItemPatch{Status: "someday", Priority: "asap"})
	if merged.Status != "someday" || merged.Priority != "asap" {
		t.Fatalf("permissive enum handling regressed: %+v", merged)
	}
}

func TestCloneItemIndependence(t *testing.T) {
	orig := fixtureItem()
	cp := CloneItem(orig)
	cp.Tags[1] = "changed"
	if orig.Tags[1] != "urgent" {
		t.Fatalf("clone shares tag storage: %v", orig.Tags)
	}
}
