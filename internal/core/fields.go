package core

import (
	"net/url"
	"strings"

	"itemcore/pkg/domain"
)

// Fields is the shape-agnostic request payload handed to the engine by the
// transport layer: a mapping from field name to one or more string values.
// JSON bodies and URL-encoded forms both flatten into it, so the engine never
// parses HTTP bodies itself.
type Fields map[string][]string

// FieldsFromValues converts decoded query or form values.
func FieldsFromValues(v url.Values) Fields { return Fields(v) }

// Get returns the first value for key, trimmed. Absent keys yield "".
func (f Fields) Get(key string) string {
	vs, ok := f[key]
	if !ok || len(vs) == 0 {
		return ""
	}
	return strings.TrimSpace(vs[0])
}

// Has reports whether the key was present in the request at all, regardless
// of value.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// List returns all values for key, splitting each on commas and dropping
// empties. Used for tag fields, where both repeated keys and comma-joined
// values are accepted.
func (f Fields) List(key string) []string {
	vs, ok := f[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// CreateInput is the typed create request.
type CreateInput struct {
	Name        string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	Tags        []string
	DueDate     string
	AssignedTo  string
}

// ReplaceInput is the typed full-replace request. Name and Description are
// both mandatory; the remaining fields replace the stored values only when
// provided non-empty.
type ReplaceInput struct {
	Name        string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	Tags        []string
	DueDate     string
	AssignedTo  string
}

// ParseCreateInput extracts a create request from raw fields. Validation of
// required fields happens in the engine, not here.
func ParseCreateInput(f Fields) CreateInput {
	return CreateInput{
		Name:        f.Get("name"),
		Description: f.Get("description"),
		Status:      domain.Status(f.Get("status")),
		Priority:    domain.Priority(f.Get("priority")),
		Tags:        f.List("tags"),
		DueDate:     f.Get("due_date"),
		AssignedTo:  f.Get("assigned_to"),
	}
}

// ParseReplaceInput extracts a full-replace request from raw fields.
func ParseReplaceInput(f Fields) ReplaceInput {
	return ReplaceInput{
		Name:        f.Get("name"),
		Description: f.Get("description"),
		Status:      domain.Status(f.Get("status")),
		Priority:    domain.Priority(f.Get("priority")),
		Tags:        f.List("tags"),
		DueDate:     f.Get("due_date"),
		AssignedTo:  f.Get("assigned_to"),
	}
}

// ParsePatch extracts a partial update. Absent and empty-string fields carry
// the same "no change" signal, matching form submissions where untouched
// inputs post empty values. Tags stay nil (unchanged) unless the key was
// present in the request.
func ParsePatch(f Fields) domain.ItemPatch {
	patch := domain.ItemPatch{
		Name:        f.Get("name"),
		Description: f.Get("description"),
		Status:      domain.Status(f.Get("status")),
		Priority:    domain.Priority(f.Get("priority")),
		DueDate:     f.Get("due_date"),
		AssignedTo:  f.Get("assigned_to"),
	}
	if f.Has("tags") {
		tags := f.List("tags")
		if tags == nil {
			tags = []string{}
		}
		patch.Tags = tags
	}
	return patch
}

// ParseFilters extracts list filters from raw fields (typically the query
// string).
func ParseFilters(f Fields) Filters {
	return Filters{
		Search:     f.Get("search"),
		Status:     f.Get("status"),
		Priority:   f.Get("priority"),
		AssignedTo: f.Get("assigned_to"),
		Tag:        f.Get("tag"),
		AsOf:       f.Get("as_of"),
	}
}
