// Package httpapi exposes the item lifecycle engine over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"itemcore/internal/adapters/export"
	"itemcore/internal/blob"
	"itemcore/internal/core"
	"itemcore/pkg/domain"
)

// ExportAPI is the export surface the handler consumes. *export.Worker
// satisfies it.
type ExportAPI interface {
	export.Scheduler
	OpenArtifact(ctx context.Context, id string, format export.Format) (blob.Info, io.ReadCloser, error)
}

// Handler serves the item API. Exports may be nil, in which case the export
// routes answer 404.
type Handler struct {
	service *core.Service
	exports ExportAPI
	routes  RouteTable
	logger  core.Logger
}

// NewHandler constructs the API handler.
func NewHandler(service *core.Service, exports ExportAPI, logger core.Logger) *Handler {
	if logger == nil {
		logger = core.NoopLogger()
	}
	return &Handler{service: service, exports: exports, routes: NewRouteTable(), logger: logger}
}

// Routes returns the handler's route table.
func (h *Handler) Routes() RouteTable { return h.routes }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/healthz":
		h.handleHealth(w, r)
	case path == "/api/v1/items":
		h.handleItems(w, r)
	case strings.HasPrefix(path, "/api/v1/items/"):
		h.handleItem(w, r, strings.TrimPrefix(path, "/api/v1/items/"))
	case path == "/api/v1/exports":
		h.handleExports(w, r)
	case strings.HasPrefix(path, "/api/v1/exports/"):
		h.handleExport(w, r, strings.TrimPrefix(path, "/api/v1/exports/"))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := h.service.Ping(r.Context()); err != nil {
		h.logger.Warnw("health probe failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) handleItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		fields, err := decodeFields(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := h.service.CreateItem(r.Context(), core.ParseCreateInput(fields))
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		if loc, err := h.routes.URLFor(RouteItem, item.ID); err == nil {
			w.Header().Set("Location", loc)
		}
		writeJSON(w, http.StatusCreated, item)
	case http.MethodGet:
		filters := core.ParseFilters(core.FieldsFromValues(r.URL.Query()))
		items, err := h.service.ListItems(r.Context(), filters)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		if items == nil {
			items = []domain.Item{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request, remainder string) {
	segments := strings.Split(remainder, "/")
	key := segments[0]
	if key == "" {
		http.NotFound(w, r)
		return
	}

	if len(segments) == 2 && segments[1] == "history" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		revisions, err := h.service.ItemHistory(r.Context(), key)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"revisions": revisions, "count": len(revisions)})
		return
	}
	if len(segments) != 1 {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		item, err := h.service.ResolveItem(r.Context(), key)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPut:
		fields, err := decodeFields(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := h.service.ReplaceItem(r.Context(), key, core.ParseReplaceInput(fields))
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPatch:
		fields, err := decodeFields(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item, err := h.service.PatchItem(r.Context(), key, core.ParsePatch(fields))
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		if err := h.service.DeleteItem(r.Context(), key); err != nil {
			h.writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPost:
		fields, err := decodeFields(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		input := export.Input{
			Filters:     core.ParseFilters(fields),
			RequestedBy: fields.Get("requested_by"),
		}
		for _, f := range fields.List("formats") {
			input.Formats = append(input.Formats, export.Format(f))
		}
		if f := fields.Get("format"); f != "" {
			input.Formats = append(input.Formats, export.Format(f))
		}
		record, err := h.exports.EnqueueExport(r.Context(), input)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if loc, err := h.routes.URLFor(RouteExport, record.ID); err == nil {
			w.Header().Set("Location", loc)
		}
		writeJSON(w, http.StatusAccepted, record)
	case http.MethodGet:
		records := h.exports.ListExports()
		writeJSON(w, http.StatusOK, map[string]any{"exports": records, "count": len(records)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, remainder string) {
	if h.exports == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	segments := strings.Split(remainder, "/")
	id := segments[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(segments) == 1 {
		record, ok := h.exports.GetExport(id)
		if !ok {
			writeError(w, http.StatusNotFound, "export not found")
			return
		}
		writeJSON(w, http.StatusOK, record)
		return
	}

	if len(segments) == 3 && segments[1] == "artifacts" {
		h.streamArtifact(w, r, id, segments[2])
		return
	}
	http.NotFound(w, r)
}

// streamArtifact serves a rendered artifact. The name is either the stored
// file name (items.json) or the bare format (json).
func (h *Handler) streamArtifact(w http.ResponseWriter, r *http.Request, id, name string) {
	format := export.Format(name)
	if i := strings.LastIndex(name, "."); i >= 0 {
		format = export.Format(name[i+1:])
	}
	info, rc, err := h.exports.OpenArtifact(r.Context(), id, format)
	if err != nil {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	defer func() { _ = rc.Close() }()
	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warnw("artifact stream interrupted", "export_id", id, "error", err)
	}
}

// statusByKind is the full error translation table; kinds missing from it
// fall back to 500.
var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation: http.StatusBadRequest,
	domain.KindNotFound:   http.StatusNotFound,
	domain.KindStore:      http.StatusInternalServerError,
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if kind, ok := domain.KindOf(err); ok {
		if code, mapped := statusByKind[kind]; mapped {
			status = code
		}
	}
	if status == http.StatusInternalServerError {
		h.logger.Errorw("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

// decodeFields flattens a request body into Fields. JSON objects and
// URL-encoded forms are equivalent on the wire.
func decodeFields(r *http.Request) (core.Fields, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return core.Fields{}, nil
			}
			return nil, err
		}
		fields := make(core.Fields, len(raw))
		for key, value := range raw {
			switch v := value.(type) {
			case string:
				fields[key] = []string{v}
			case []any:
				vs := make([]string, 0, len(v))
				for _, item := range v {
					vs = append(vs, stringify(item))
				}
				fields[key] = vs
			case nil:
				fields[key] = []string{""}
			default:
				fields[key] = []string{stringify(v)}
			}
		}
		return fields, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return core.FieldsFromValues(r.PostForm), nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, _ := json.Marshal(val)
		return string(b)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
