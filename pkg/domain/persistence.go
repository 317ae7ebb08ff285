package domain

import (
	"context"
	"time"
)

// Revision is one historical version of an item as recorded by a temporal
// store. Deleted marks a tombstone: the item ceased to exist at RecordedAt.
type Revision struct {
	Item       Item      `json:"item"`
	RecordedAt time.Time `json:"recorded_at"`
	Deleted    bool      `json:"deleted,omitempty"`
}

// ItemStore is the document-store capability the lifecycle engine consumes.
// Implementations own all persisted state; the engine keeps no cache and
// performs no retries around these calls.
//
// PutItem and DeleteItem are each a single atomic transaction against one
// item. QueryItems with a temporal descriptor must return exactly what a
// caller would have seen querying at that historical instant; without it the
// latest acknowledged state applies. Query results are ordered by CreatedAt
// ascending with ID as tiebreaker.
type ItemStore interface {
	// GetItem returns the current item by primary id. The boolean is false
	// when no record exists.
	GetItem(ctx context.Context, id string) (Item, bool, error)
	// GetItemBySlug returns the current item by its secondary slug key.
	GetItemBySlug(ctx context.Context, slug string) (Item, bool, error)
	// QueryItems returns all current (or as-of) items matching the query.
	QueryItems(ctx context.Context, q ItemQuery) ([]Item, error)
	// PutItem writes the full item record, creating or replacing it.
	PutItem(ctx context.Context, item Item) error
	// DeleteItem removes the item, reporting whether it existed.
	DeleteItem(ctx context.Context, id string) (bool, error)
	// ItemHistory returns the item's revisions oldest-first, tombstones
	// included.
	ItemHistory(ctx context.Context, id string) ([]Revision, error)
}
