package domain

import (
	"testing"
	"time"
)

func TestItemQueryZeroValueMatchesAll(t *testing.T) {
	var q ItemQuery
	if !q.Match(fixtureItem()) {
		t.Fatal("zero query must match every item")
	}
	if q.Temporal() {
		t.Fatal("zero query must not be temporal")
	}
}

func TestItemQueryConjunction(t *testing.T) {
	q := ItemQuery{Status: "active", Tag: "feature"}

	both := fixtureItem()
	if !q.Match(both) {
		t.Fatalf("item satisfying both predicates excluded: %+v", both)
	}

	onlyStatus := fixtureItem()
	onlyStatus.Tags = []string{"chore"}
	if q.Match(onlyStatus) {
		t.Fatal("item matching only status must be excluded")
	}

	onlyTag := fixtureItem()
	onlyTag.Status = StatusArchived
	if q.Match(onlyTag) {
		t.Fatal("item matching only tag must be excluded")
	}
}

func TestItemQuerySearchIsExactSubstring(t *testing.T) {
	item := fixtureItem()

	if !(ItemQuery{Search: "Fix"}).Match(item) {
		t.Fatal("substring of name should match")
	}
	if !(ItemQuery{Search: "esc"}).Match(item) {
		t.Fatal("substring of description should match")
	}
	// No case folding: the search string is matched as provided.
	if (ItemQuery{Search: "fix"}).Match(item) {
		t.Fatal("search must be case-sensitive")
	}
	if (ItemQuery{Search: "absent"}).Match(item) {
		t.Fatal("non-substring must not match")
	}
}

func TestItemQueryFieldPredicates(t *testing.T) {
	item := fixtureItem()
	if !(ItemQuery{AssignedTo: "Alice"}).Match(item) {
		t.Fatal("assignee equality should match")
	}
	if (ItemQuery{AssignedTo: "Bob"}).Match(item) {
		t.Fatal("assignee mismatch should exclude")
	}
	if !(ItemQuery{Priority: "medium"}).Match(item) {
		t.Fatal("priority equality should match")
	}
	if (ItemQuery{Tag: "missing"}).Match(item) {
		t.Fatal("absent tag should exclude")
	}
}

func TestSortItemsByCreatedAtThenID(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "c", CreatedAt: base},
		{ID: "a", CreatedAt: base},
	}
	SortItems(items)
	got := items[0].ID + items[1].ID + items[2].ID
	if got != "acb" {
		t.Fatalf("unexpected order %q", got)
	}
}
