package core

import (
	"strings"
	"time"

	"itemcore/pkg/domain"
)

// Filters holds raw, request-shaped list parameters. Empty fields contribute
// no predicate.
type Filters struct {
	Search     string `json:"search,omitempty"`
	Status     string `json:"status,omitempty"`
	Priority   string `json:"priority,omitempty"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Tag        string `json:"tag,omitempty"`
	AsOf       string `json:"as_of,omitempty"`
}

// IsZero reports whether no filter field is set.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// BuildQuery composes the query descriptor: each non-empty filter contributes
// one predicate, combined with AND; zero filters match all. The as-of string
// is parsed leniently and silently dropped when malformed.
func BuildQuery(f Filters) domain.ItemQuery {
	return domain.ItemQuery{
		Search:     f.Search,
		Status:     f.Status,
		Priority:   f.Priority,
		AssignedTo: f.AssignedTo,
		Tag:        f.Tag,
		AsOf:       ParseAsOf(f.AsOf),
	}
}

// asOfLayouts is ordered most to least specific.
var asOfLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseAsOf parses an ISO-8601-like timestamp. A seconds-less form such as
// "2025-03-01T10:30" is normalized by appending ":00Z" before parsing.
// Malformed input yields nil -- no temporal constraint -- rather than an
// error; the failure is absorbed by policy.
func ParseAsOf(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	candidate := raw
	if len(raw) == len("2006-01-02T15:04") && raw[10] == 'T' && !strings.ContainsAny(raw, "Zz+") {
		candidate = raw + ":00Z"
	}
	for _, layout := range asOfLayouts {
		if ts, err := time.Parse(layout, candidate); err == nil {
			utc := ts.UTC()
			return &utc
		}
	}
	return nil
}
