// Package memory implements the in-memory item store: a current view indexed
// by id and slug plus an append-only revision log per item that answers
// as-of (point-in-time) queries. The sqlite and postgres adapters wrap it for
// durability.
package memory

import (
	"context"
	"sync"
	"time"

	"itemcore/pkg/domain"
)

var _ domain.ItemStore = (*Store)(nil)

// Store is a versioned in-memory item store safe for concurrent use. Every
// acknowledged write appends a revision; deletes append a tombstone. Values
// are cloned on the way in and out so callers never alias internal state.
type Store struct {
	mu      sync.RWMutex
	items   map[string]domain.Item
	slugs   map[string]string
	history map[string][]domain.Revision
	nowFn   func() time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		items:   make(map[string]domain.Item),
		slugs:   make(map[string]string),
		history: make(map[string][]domain.Revision),
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the clock used to stamp revisions. Passing nil restores
// the wall clock. Tests use it to pin transaction times for as-of assertions.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now == nil {
		s.nowFn = func() time.Time { return time.Now().UTC() }
		return
	}
	s.nowFn = now
}

// GetItem returns the current item by id.
func (s *Store) GetItem(_ context.Context, id string) (domain.Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, false, nil
	}
	return domain.CloneItem(item), true, nil
}

// GetItemBySlug returns the current item by its slug.
func (s *Store) GetItemBySlug(_ context.Context, slug string) (domain.Item, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.slugs[slug]
	if !ok {
		return domain.Item{}, false, nil
	}
	item, ok := s.items[id]
	if !ok {
		return domain.Item{}, false, nil
	}
	return domain.CloneItem(item), true, nil
}

// QueryItems evaluates the query predicate against the current state, or,
// when the query is temporal, against the reconstructed view at the as-of
// instant. Results are ordered by created_at then id.
func (s *Store) QueryItems(_ context.Context, q domain.ItemQuery) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Item
	if q.Temporal() {
		for id := range s.history {
			item, ok := s.viewAt(id, *q.AsOf)
			if ok && q.Match(item) {
				out = append(out, domain.CloneItem(item))
			}
		}
	} else {
		for _, item := range s.items {
			if q.Match(item) {
				out = append(out, domain.CloneItem(item))
			}
		}
	}
	domain.SortItems(out)
	return out, nil
}

// viewAt reconstructs the item as it stood at instant ts: the latest revision
// recorded at or before ts wins, and a tombstone there means the item did not
// exist. Callers hold at least the read lock.
func (s *Store) viewAt(id string, ts time.Time) (domain.Item, bool) {
	revs := s.history[id]
	for i := len(revs) - 1; i >= 0; i-- {
		if revs[i].RecordedAt.After(ts) {
			continue
		}
		if revs[i].Deleted {
			return domain.Item{}, false
		}
		return revs[i].Item, true
	}
	return domain.Item{}, false
}

// PutItem writes the full record as one atomic transaction and appends a
// revision. A changed slug re-points the secondary index; uniqueness of slugs
// is not enforced here.
func (s *Store) PutItem(_ context.Context, item domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := domain.CloneItem(item)
	if prev, ok := s.items[item.ID]; ok && prev.Slug != item.Slug {
		delete(s.slugs, prev.Slug)
	}
	s.items[item.ID] = stored
	if item.Slug != "" {
		s.slugs[item.Slug] = item.ID
	}
	s.history[item.ID] = append(s.history[item.ID], domain.Revision{
		Item:       domain.CloneItem(stored),
		RecordedAt: s.nowFn().UTC(),
	})
	return nil
}

// DeleteItem removes the record atomically and appends a tombstone revision
// so as-of reads before the deletion still see the item.
func (s *Store) DeleteItem(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.items[id]
	if !ok {
		return false, nil
	}
	delete(s.items, id)
	delete(s.slugs, prev.Slug)
	s.history[id] = append(s.history[id], domain.Revision{
		Item:       domain.CloneItem(prev),
		RecordedAt: s.nowFn().UTC(),
		Deleted:    true,
	})
	return true, nil
}

// ItemHistory returns the item's revisions oldest-first.
func (s *Store) ItemHistory(_ context.Context, id string) ([]domain.Revision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	revs := s.history[id]
	out := make([]domain.Revision, 0, len(revs))
	for _, rev := range revs {
		cp := rev
		cp.Item = domain.CloneItem(rev.Item)
		out = append(out, cp)
	}
	return out, nil
}

// Snapshot is the serialized form of the full store state, used by the
// durable wrappers to persist and hydrate.
type Snapshot struct {
	Items     []domain.Item                `json:"items"`
	Revisions map[string][]domain.Revision `json:"revisions"`
}

// ExportState captures a deep copy of the current state and history.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := Snapshot{
		Items:     make([]domain.Item, 0, len(s.items)),
		Revisions: make(map[string][]domain.Revision, len(s.history)),
	}
	for _, item := range s.items {
		snapshot.Items = append(snapshot.Items, domain.CloneItem(item))
	}
	domain.SortItems(snapshot.Items)
	for id, revs := range s.history {
		cp := make([]domain.Revision, 0, len(revs))
		for _, rev := range revs {
			r := rev
			r.Item = domain.CloneItem(rev.Item)
			cp = append(cp, r)
		}
		snapshot.Revisions[id] = cp
	}
	return snapshot
}

// ImportState replaces the store contents with the snapshot, rebuilding the
// slug index from the imported items.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]domain.Item, len(snapshot.Items))
	s.slugs = make(map[string]string, len(snapshot.Items))
	s.history = make(map[string][]domain.Revision, len(snapshot.Revisions))
	for _, item := range snapshot.Items {
		s.items[item.ID] = domain.CloneItem(item)
		if item.Slug != "" {
			s.slugs[item.Slug] = item.ID
		}
	}
	for id, revs := range snapshot.Revisions {
		cp := make([]domain.Revision, 0, len(revs))
		for _, rev := range revs {
			r := rev
			r.Item = domain.CloneItem(rev.Item)
			cp = append(cp, r)
		}
		s.history[id] = cp
	}
}
