package httpapi

import (
	"fmt"
	"strings"
)

// Route names used with URLFor.
const (
	RouteItems          = "items"
	RouteItem           = "item"
	RouteItemHistory    = "item_history"
	RouteExports        = "exports"
	RouteExport         = "export"
	RouteExportArtifact = "export_artifact"
	RouteHealth         = "health"
)

// RouteTable maps route names to URL patterns. The table is built once at
// handler construction and never mutated afterwards; URL generation is a pure
// function of the table and its arguments.
type RouteTable struct {
	patterns map[string]string
}

// NewRouteTable returns the canonical route table.
func NewRouteTable() RouteTable {
	return RouteTable{patterns: map[string]string{
		RouteItems:          "/api/v1/items",
		RouteItem:           "/api/v1/items/{key}",
		RouteItemHistory:    "/api/v1/items/{key}/history",
		RouteExports:        "/api/v1/exports",
		RouteExport:         "/api/v1/exports/{id}",
		RouteExportArtifact: "/api/v1/exports/{id}/artifacts/{name}",
		RouteHealth:         "/healthz",
	}}
}

// URLFor renders the named route with its positional parameters substituted
// for the pattern placeholders, in order.
func (t RouteTable) URLFor(name string, params ...string) (string, error) {
	pattern, ok := t.patterns[name]
	if !ok {
		return "", fmt.Errorf("unknown route %s", name)
	}
	segments := strings.Split(pattern, "/")
	idx := 0
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		if idx >= len(params) {
			return "", fmt.Errorf("route %s requires %d parameters", name, idx+1)
		}
		segments[i] = params[idx]
		idx++
	}
	if idx != len(params) {
		return "", fmt.Errorf("route %s takes %d parameters, got %d", name, idx, len(params))
	}
	return strings.Join(segments, "/"), nil
}
