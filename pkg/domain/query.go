package domain

import (
	"sort"
	"strings"
	"time"
)

// ItemQuery is the composed query descriptor handed to a store adapter. Each
// non-empty predicate field contributes one condition; all contributed
// conditions are combined with logical AND, and the zero value matches every
// item. AsOf, when set, asks the adapter to evaluate the predicate against the
// snapshot of the store at that instant instead of the latest state.
type ItemQuery struct {
	Search     string     `json:"search,omitempty"`
	Status     string     `json:"status,omitempty"`
	Priority   string     `json:"priority,omitempty"`
	AssignedTo string     `json:"assigned_to,omitempty"`
	Tag        string     `json:"tag,omitempty"`
	AsOf       *time.Time `json:"as_of,omitempty"`
}

// Temporal reports whether the query carries a point-in-time constraint.
func (q ItemQuery) Temporal() bool { return q.AsOf != nil }

// Match evaluates the conjunction of the present predicates against an item.
// Search is an exact substring test against name or description, with no case
// normalization.
func (q ItemQuery) Match(item Item) bool {
	if q.Search != "" && !strings.Contains(item.Name, q.Search) && !strings.Contains(item.Description, q.Search) {
		return false
	}
	if q.Status != "" && string(item.Status) != q.Status {
		return false
	}
	if q.Priority != "" && string(item.Priority) != q.Priority {
		return false
	}
	if q.AssignedTo != "" && item.AssignedTo != q.AssignedTo {
		return false
	}
	if q.Tag != "" && !item.HasTag(q.Tag) {
		return false
	}
	return true
}

// SortItems orders items by creation time ascending with ID as the tiebreaker.
// Store adapters apply it to query results so listings are deterministic.
func SortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
