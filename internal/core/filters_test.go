package core

import (
	"testing"
	"time"
)

func TestParseAsOfLayouts(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-03-01T10:30:00Z", time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2025-03-01T10:30:00.5Z", time.Date(2025, 3, 1, 10, 30, 0, 500000000, time.UTC)},
		{"2025-03-01T10:30:00+02:00", time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)},
		{"2025-03-01T10:30:00", time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2025-03-01T10:30", time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2025-03-01", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got := ParseAsOf(tc.raw)
		if got == nil {
			t.Fatalf("ParseAsOf(%q) = nil", tc.raw)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ParseAsOf(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestParseAsOfAbsorbsMalformed(t *testing.T) {
	for _, raw := range []string{"", "  ", "yesterday", "2025-13-40", "10:30:00", "2025-03-01T99:99"} {
		if got := ParseAsOf(raw); got != nil {
			t.Fatalf("ParseAsOf(%q) = %s, want nil", raw, got)
		}
	}
}

func TestBuildQuery(t *testing.T) {
	f := Filters{Search: "doc", Status: "active", Priority: "high", AssignedTo: "casey", Tag: "infra", AsOf: "2025-03-01T10:30:00Z"}
	q := BuildQuery(f)
	if q.Search != "doc" || q.Status != "active" || q.Priority != "high" || q.AssignedTo != "casey" || q.Tag != "infra" {
		t.Fatalf("unexpected query %+v", q)
	}
	if q.AsOf == nil || !q.AsOf.Equal(time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected as-of %v", q.AsOf)
	}
	if !q.Temporal() {
		t.Fatalf("query with as-of must be temporal")
	}

	empty := BuildQuery(Filters{})
	if empty.AsOf != nil || empty.Temporal() {
		t.Fatalf("empty filters must not be temporal")
	}
	if !(Filters{}).IsZero() || f.IsZero() {
		t.Fatalf("IsZero misreported")
	}
}

func TestBuildQueryDropsMalformedAsOf(t *testing.T) {
	q := BuildQuery(Filters{Status: "active", AsOf: "garbage"})
	if q.AsOf != nil {
		t.Fatalf("malformed as-of must be dropped, got %v", q.AsOf)
	}
	if q.Status != "active" {
		t.Fatalf("other filters must survive")
	}
}
