// Package export runs asynchronous item list exports and stores the rendered
// artifacts in a blob store.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"itemcore/internal/blob"
	"itemcore/internal/core"
	"itemcore/pkg/domain"
)

// Format identifies an artifact rendering.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Status describes the lifecycle stage of an export request.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Artifact captures one stored export rendering.
type Artifact struct {
	Key         string    `json:"key"`
	Format      Format    `json:"format"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record tracks an export request and its resulting artifacts.
type Record struct {
	ID          string       `json:"id"`
	Formats     []Format     `json:"formats"`
	Filters     core.Filters `json:"filters"`
	Status      Status       `json:"status"`
	Error       string       `json:"error,omitempty"`
	Artifacts   []Artifact   `json:"artifacts,omitempty"`
	RequestedBy string       `json:"requested_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func (r Record) copy() Record {
	out := r
	out.Formats = append([]Format(nil), r.Formats...)
	out.Artifacts = append([]Artifact(nil), r.Artifacts...)
	if r.CompletedAt != nil {
		ts := *r.CompletedAt
		out.CompletedAt = &ts
	}
	return out
}

// Input represents an enqueue request.
type Input struct {
	Formats     []Format
	Filters     core.Filters
	RequestedBy string
}

// Lister supplies the items to export. *core.Service satisfies it.
type Lister interface {
	ListItems(ctx context.Context, f core.Filters) ([]domain.Item, error)
}

// Scheduler queues export requests and exposes their status.
type Scheduler interface {
	EnqueueExport(ctx context.Context, input Input) (Record, error)
	GetExport(id string) (Record, bool)
	ListExports() []Record
}

// Worker executes exports asynchronously off a bounded queue.
type Worker struct {
	lister Lister
	store  blob.Store
	audit  core.AuditRecorder

	queue chan task
	mu    sync.RWMutex
	jobs  map[string]*Record

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ Scheduler = (*Worker)(nil)

type task struct {
	id      string
	filters core.Filters
}

// NewWorker constructs an export worker. audit may be nil.
func NewWorker(lister Lister, store blob.Store, audit core.AuditRecorder) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		lister: lister,
		store:  store,
		audit:  audit,
		queue:  make(chan task, 32),
		jobs:   make(map[string]*Record),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins processing export requests.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop signals the worker to halt and waits for in-flight work to drain.
func (w *Worker) Stop(ctx context.Context) error {
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case t := <-w.queue:
			w.process(t)
		}
	}
}

// EnqueueExport schedules an export job and returns the queued record.
func (w *Worker) EnqueueExport(ctx context.Context, input Input) (Record, error) {
	if w.lister == nil {
		return Record{}, fmt.Errorf("export lister not configured")
	}
	formats := input.Formats
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV}
	}
	uniq := make([]Format, 0, len(formats))
	seen := make(map[Format]struct{})
	for _, f := range formats {
		f = Format(strings.ToLower(strings.TrimSpace(string(f))))
		if _, dup := seen[f]; dup {
			continue
		}
		if f != FormatJSON && f != FormatCSV {
			return Record{}, fmt.Errorf("unsupported export format %s", f)
		}
		uniq = append(uniq, f)
		seen[f] = struct{}{}
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	record := Record{
		ID:          id,
		Formats:     uniq,
		Filters:     input.Filters,
		Status:      StatusQueued,
		RequestedBy: input.RequestedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	w.mu.Lock()
	w.jobs[id] = &record
	queued := record.copy()
	w.mu.Unlock()

	w.recordAudit(ctx, id, StatusQueued, "")

	select {
	case w.queue <- task{id: id, filters: input.Filters}:
	default:
		w.fail(id, "export queue full")
		return Record{}, fmt.Errorf("export queue full")
	}

	return queued, nil
}

// GetExport returns a snapshot of the export record.
func (w *Worker) GetExport(id string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return Record{}, false
	}
	return record.copy(), true
}

// ListExports returns snapshots of all records, newest first.
func (w *Worker) ListExports() []Record {
	w.mu.RLock()
	out := make([]Record, 0, len(w.jobs))
	for _, record := range w.jobs {
		out = append(out, record.copy())
	}
	w.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// OpenArtifact streams a stored artifact by export id and format.
func (w *Worker) OpenArtifact(ctx context.Context, id string, format Format) (blob.Info, io.ReadCloser, error) {
	record, ok := w.GetExport(id)
	if !ok {
		return blob.Info{}, nil, fmt.Errorf("export %s not found", id)
	}
	key := artifactKey(record.ID, format)
	for _, a := range record.Artifacts {
		if a.Format == format {
			key = a.Key
		}
	}
	return w.store.Get(ctx, key)
}

func (w *Worker) process(t task) {
	w.mu.RLock()
	record, ok := w.jobs[t.id]
	var formats []Format
	if ok {
		formats = append(formats, record.Formats...)
	}
	w.mu.RUnlock()
	if !ok {
		return
	}

	w.updateStatus(t.id, StatusRunning, "")

	items, err := w.lister.ListItems(w.ctx, t.filters)
	if err != nil {
		w.fail(t.id, fmt.Sprintf("list items failed: %v", err))
		return
	}

	artifacts := make([]Artifact, 0, len(formats))
	for _, format := range formats {
		payload, contentType, err := render(format, items)
		if err != nil {
			w.fail(t.id, err.Error())
			return
		}
		key := artifactKey(t.id, format)
		info, err := w.store.Put(w.ctx, key, bytes.NewReader(payload), blob.PutOptions{ContentType: contentType})
		if err != nil {
			w.fail(t.id, fmt.Sprintf("store artifact failed: %v", err))
			return
		}
		artifact := Artifact{
			Key:         key,
			Format:      format,
			ContentType: contentType,
			SizeBytes:   info.Size,
			CreatedAt:   info.LastModified,
		}
		if url, err := w.store.PresignURL(w.ctx, key, blob.SignedURLOptions{}); err == nil {
			artifact.URL = url
		} else if !errors.Is(err, blob.ErrUnsupported) {
			w.fail(t.id, fmt.Sprintf("presign artifact failed: %v", err))
			return
		}
		artifacts = append(artifacts, artifact)
	}

	w.complete(t.id, artifacts)
}

func artifactKey(id string, format Format) string {
	return fmt.Sprintf("exports/%s/items.%s", id, format)
}

func render(format Format, items []domain.Item) ([]byte, string, error) {
	switch format {
	case FormatJSON:
		payload, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return payload, "application/json", nil
	case FormatCSV:
		payload, err := renderCSV(items)
		if err != nil {
			return nil, "", err
		}
		return payload, "text/csv", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format %s", format)
	}
}

var csvHeader = []string{"id", "slug", "name", "description", "status", "priority", "tags", "created_at", "due_date", "assigned_to"}

func renderCSV(items []domain.Item) ([]byte, error) {
	var buf bytes.Buffer
	wr := csv.NewWriter(&buf)
	if err := wr.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, it := range items {
		row := []string{
			it.ID,
			it.Slug,
			it.Name,
			it.Description,
			string(it.Status),
			string(it.Priority),
			strings.Join(it.Tags, ";"),
			it.CreatedAt.Format(time.RFC3339Nano),
			it.DueDate,
			it.AssignedTo,
		}
		if err := wr.Write(row); err != nil {
			return nil, err
		}
	}
	wr.Flush()
	if err := wr.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *Worker) updateStatus(id string, status Status, message string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = status
		record.Error = message
		record.UpdatedAt = now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, id, status, message)
}

func (w *Worker) complete(id string, artifacts []Artifact) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusSucceeded
		record.Error = ""
		record.Artifacts = artifacts
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, id, StatusSucceeded, "")
}

func (w *Worker) fail(id, reason string) {
	now := time.Now().UTC()
	w.mu.Lock()
	if record, ok := w.jobs[id]; ok {
		record.Status = StatusFailed
		record.Error = reason
		record.UpdatedAt = now
		record.CompletedAt = &now
	}
	w.mu.Unlock()
	w.recordAudit(w.ctx, id, StatusFailed, reason)
}

func (w *Worker) recordAudit(ctx context.Context, id string, status Status, message string) {
	if w.audit == nil {
		return
	}
	w.audit.Record(ctx, core.AuditEntry{
		ID:         uuid.NewString(),
		Operation:  "export." + string(status),
		ItemID:     id,
		Success:    status != StatusFailed,
		Error:      message,
		OccurredAt: time.Now().UTC(),
	})
}
