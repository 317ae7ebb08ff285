// Package core implements the item lifecycle engine: slug assignment, filter
// composition, request parsing, and the CRUD/patch state machine over a
// domain.ItemStore.
package core

import (
	"strings"

	"github.com/google/uuid"
)

const slugSuffixLength = 8

// GenerateSlug derives a URL-safe secondary identifier from a human-readable
// name: lowercase, runs of characters outside [a-z0-9] collapsed to a single
// hyphen, leading and trailing hyphens stripped, then a hyphen and an
// 8-character random suffix. A symbol-only or empty name still yields a valid
// slug (the suffix alone). Collision-resistant but not checked for uniqueness
// against the store.
func GenerateSlug(name string) string {
	base := slugify(name)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:slugSuffixLength]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
