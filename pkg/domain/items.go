// Package domain defines the item records, query descriptors, error taxonomy,
// and persistence contract shared by the lifecycle engine and its storage
// adapters.
package domain

import "time"

// Status enumerates the canonical item workflow states.
type Status string

// Canonical item statuses. Writes are not validated against this set; the
// engine stores whatever the client supplied and Known reports membership for
// display layers.
const (
	StatusActive    Status = "active"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// DefaultStatus is applied when a create request omits the status field.
const DefaultStatus = StatusActive

// Known reports whether the status is one of the canonical values.
func (s Status) Known() bool {
	switch s {
	case StatusActive, StatusPending, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Priority enumerates the canonical item priorities.
type Priority string

// Canonical item priorities, subject to the same permissive write policy as Status.
const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is applied when a create request omits the priority field.
const DefaultPriority = PriorityMedium

// Known reports whether the priority is one of the canonical values.
func (p Priority) Known() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Item is the tracked record. ID and Slug are assigned at creation and never
// change afterwards; CreatedAt is set once. Tags are matched as a set but
// preserved in input order for display.
type Item struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	DueDate     string    `json:"due_date,omitempty"`
	AssignedTo  string    `json:"assigned_to,omitempty"`
}

// HasTag reports whether the item carries the given tag.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// CloneItem returns a deep copy of the item.
func CloneItem(i Item) Item {
	cp := i
	if i.Tags != nil {
		cp.Tags = append([]string(nil), i.Tags...)
	}
	return cp
}

// ItemPatch carries a partial update. String fields whose value is empty are
// treated as "leave unchanged"; a nil Tags slice leaves tags unchanged while a
// non-nil slice replaces them wholesale.
type ItemPatch struct {
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	DueDate     string   `json:"due_date,omitempty"`
	AssignedTo  string   `json:"assigned_to,omitempty"`
}

// IsZero reports whether the patch carries no changes at all.
func (p ItemPatch) IsZero() bool {
	return p.Name == "" && p.Description == "" && p.Status == "" && p.Priority == "" &&
		p.Tags == nil && p.DueDate == "" && p.AssignedTo == ""
}

// MergeItem applies a right-biased merge of patch onto existing: each provided
// non-empty patch field overwrites the corresponding field, everything else is
// kept. ID, Slug, and CreatedAt always come from the existing record.
func MergeItem(existing Item, patch ItemPatch) Item {
	merged := CloneItem(existing)
	if patch.Name != "" {
		merged.Name = patch.Name
	}
	if patch.Description != "" {
		merged.Description = patch.Description
	}
	if patch.Status != "" {
		merged.Status = patch.Status
	}
	if patch.Priority != "" {
		merged.Priority = patch.Priority
	}
	if patch.Tags != nil {
		merged.Tags = append([]string(nil), patch.Tags...)
	}
	if patch.DueDate != "" {
		merged.DueDate = patch.DueDate
	}
	if patch.AssignedTo != "" {
		merged.AssignedTo = patch.AssignedTo
	}
	merged.ID = existing.ID
	merged.Slug = existing.Slug
	merged.CreatedAt = existing.CreatedAt
	return merged
}
