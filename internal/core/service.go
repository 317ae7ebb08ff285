package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"itemcore/pkg/domain"
)

// Service is the resource lifecycle engine. It validates input, consults the
// store adapter, applies create/replace/merge/delete semantics, and yields a
// typed result or a classified error. It holds no state between calls and is
// safe for concurrent use; the store adapter is the sole owner of persisted
// state. No operation is retried and no timeout is imposed here -- the caller
// and the adapter own cancellation.
type Service struct {
	store   domain.ItemStore
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	nowFn   func() time.Time
}

// ServiceOption customizes a Service at construction.
type ServiceOption func(*Service)

// WithLogger installs a structured logger. *zap.SugaredLogger satisfies it.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder installs a metrics sink for operation observations.
func WithMetricsRecorder(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer installs a tracer producing one span per operation.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAuditRecorder installs an audit sink; every operation records an entry.
func WithAuditRecorder(a AuditRecorder) ServiceOption {
	return func(s *Service) {
		if a != nil {
			s.audit = a
		}
	}
}

// WithClock overrides the wall clock used for created_at and audit
// timestamps. Tests use it for deterministic time.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// NewService constructs an engine over the supplied store adapter. All
// observability hooks default to no-ops.
func NewService(store domain.ItemStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		audit:   noopAudit{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store adapter.
func (s *Service) Store() domain.ItemStore { return s.store }

// begin opens a span and returns a finish callback that records the metrics
// observation, the audit entry, and a log line for the operation outcome.
func (s *Service) begin(ctx context.Context, op string) (context.Context, func(itemID string, err error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	return ctx, func(itemID string, err error) {
		duration := time.Since(start)
		span.End(err)
		s.metrics.Observe(ctx, op, err == nil, duration)
		entry := AuditEntry{
			ID:         uuid.NewString(),
			Operation:  op,
			ItemID:     itemID,
			Success:    err == nil,
			Duration:   duration,
			OccurredAt: s.nowFn().UTC(),
		}
		if err != nil {
			entry.Error = err.Error()
		}
		s.audit.Record(ctx, entry)
		if err != nil {
			s.logger.Warnw("item operation failed",
				"operation", op, "item_id", itemID, "error", err,
				"duration_ms", float64(duration)/float64(time.Millisecond))
			return
		}
		s.logger.Debugw("item operation completed",
			"operation", op, "item_id", itemID,
			"duration_ms", float64(duration)/float64(time.Millisecond))
	}
}

// CreateItem assigns id, slug, and created_at, defaults status and priority,
// and persists the new record. Name is required; an empty description is
// accepted. No duplicate-name or slug-uniqueness check is performed.
func (s *Service) CreateItem(ctx context.Context, in CreateInput) (item domain.Item, err error) {
	ctx, finish := s.begin(ctx, "create_item")
	defer func() { finish(item.ID, err) }()

	if in.Name == "" {
		return domain.Item{}, domain.ValidationError{Field: "name", Reason: "required"}
	}
	status := in.Status
	if status == "" {
		status = domain.DefaultStatus
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.DefaultPriority
	}
	item = domain.Item{
		ID:          uuid.NewString(),
		Slug:        GenerateSlug(in.Name),
		Name:        in.Name,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		Tags:        append([]string(nil), in.Tags...),
		CreatedAt:   s.nowFn().UTC(),
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
	}
	if perr := s.store.PutItem(ctx, item); perr != nil {
		item = domain.Item{}
		return domain.Item{}, domain.StoreError{Op: "put", Err: perr}
	}
	return item, nil
}

// GetItemByID fetches by primary id. A malformed id and a missing record are
// the same not-found outcome.
func (s *Service) GetItemByID(ctx context.Context, id string) (item domain.Item, err error) {
	ctx, finish := s.begin(ctx, "get_item")
	defer func() { finish(id, err) }()

	if _, perr := uuid.Parse(id); perr != nil {
		return domain.Item{}, domain.NotFoundError{Key: id}
	}
	item, ok, gerr := s.store.GetItem(ctx, id)
	if gerr != nil {
		return domain.Item{}, domain.StoreError{Op: "get", Err: gerr}
	}
	if !ok {
		return domain.Item{}, domain.NotFoundError{Key: id}
	}
	return item, nil
}

// GetItemBySlug fetches by the secondary slug key.
func (s *Service) GetItemBySlug(ctx context.Context, slug string) (item domain.Item, err error) {
	ctx, finish := s.begin(ctx, "get_item_by_slug")
	defer func() { finish(slug, err) }()

	item, ok, gerr := s.store.GetItemBySlug(ctx, slug)
	if gerr != nil {
		return domain.Item{}, domain.StoreError{Op: "get", Err: gerr}
	}
	if !ok {
		return domain.Item{}, domain.NotFoundError{Key: slug}
	}
	return item, nil
}

// ResolveItem fetches by id when key parses as a uuid, otherwise by slug.
func (s *Service) ResolveItem(ctx context.Context, key string) (item domain.Item, err error) {
	ctx, finish := s.begin(ctx, "resolve_item")
	defer func() { finish(key, err) }()
	return s.lookup(ctx, key)
}

// ListItems composes the query descriptor from the raw filters and asks the
// store for matching items. A malformed as-of filter contributes no temporal
// constraint.
func (s *Service) ListItems(ctx context.Context, f Filters) (items []domain.Item, err error) {
	ctx, finish := s.begin(ctx, "list_items")
	defer func() { finish("", err) }()

	items, qerr := s.store.QueryItems(ctx, BuildQuery(f))
	if qerr != nil {
		return nil, domain.StoreError{Op: "query", Err: qerr}
	}
	return items, nil
}

// ReplaceItem applies full-replace semantics: name and description are both
// required and rejected before the store is consulted; other provided
// non-empty fields replace the stored values; id, slug, and created_at are
// preserved.
func (s *Service) ReplaceItem(ctx context.Context, key string, in ReplaceInput) (item domain.Item, err error) {
	ctx, finish := s.begin(ctx, "replace_item")
	defer func() { finish(key, err) }()

	if in.Name == "" {
		return domain.Item{}, domain.ValidationError{Field: "name", Reason: "required"}
	}
	if in.Description == "" {
		return domain.Item{}, domain.ValidationError{Field: "description", Reason: "required"}
	}
	existing, lerr := s.lookup(ctx, key)
	if lerr != nil {
		return domain.Item{}, lerr
	}
	item = domain.MergeItem(existing, domain.ItemPatch{
		Name:        in.Name,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Tags:        in.Tags,
		DueDate:     in.DueDate,
		AssignedTo:  in.AssignedTo,
	})
	if perr := s.store.PutItem(ctx, item); perr != nil {
		item = domain.Item{}
		return domain.Item{}, domain.StoreError{Op: "put", Err: perr}
	}
	return item, nil
}

// PatchItem merges the provided non-empty fields onto the existing record.
// Concurrent patches race: the later put wins entirely, including fields the
// loser never touched. No optimistic check is applied.
func (s *Service) PatchItem(ctx context.Context, key string, patch domain.ItemPatch) (item domain.Item, err error) {
	ctx, finish := s.begin(ctx, "patch_item")
	defer func() { finish(key, err) }()

	existing, lerr := s.lookup(ctx, key)
	if lerr != nil {
		return domain.Item{}, lerr
	}
	item = domain.MergeItem(existing, patch)
	if perr := s.store.PutItem(ctx, item); perr != nil {
		item = domain.Item{}
		return domain.Item{}, domain.StoreError{Op: "put", Err: perr}
	}
	return item, nil
}

// DeleteItem removes the record. Retrying after success reports not-found,
// which is terminal for the caller.
func (s *Service) DeleteItem(ctx context.Context, key string) (err error) {
	ctx, finish := s.begin(ctx, "delete_item")
	defer func() { finish(key, err) }()

	existing, lerr := s.lookup(ctx, key)
	if lerr != nil {
		return lerr
	}
	existed, derr := s.store.DeleteItem(ctx, existing.ID)
	if derr != nil {
		return domain.StoreError{Op: "delete", Err: derr}
	}
	if !existed {
		return domain.NotFoundError{Key: key}
	}
	return nil
}

// ItemHistory returns the record's revisions oldest-first. Deleted items keep
// their history reachable by id; an id with no revisions at all is not found.
func (s *Service) ItemHistory(ctx context.Context, key string) (revs []domain.Revision, err error) {
	ctx, finish := s.begin(ctx, "item_history")
	defer func() { finish(key, err) }()

	id := key
	if _, perr := uuid.Parse(key); perr != nil {
		item, ok, gerr := s.store.GetItemBySlug(ctx, key)
		if gerr != nil {
			return nil, domain.StoreError{Op: "get", Err: gerr}
		}
		if !ok {
			return nil, domain.NotFoundError{Key: key}
		}
		id = item.ID
	}
	revs, herr := s.store.ItemHistory(ctx, id)
	if herr != nil {
		return nil, domain.StoreError{Op: "history", Err: herr}
	}
	if len(revs) == 0 {
		return nil, domain.NotFoundError{Key: key}
	}
	return revs, nil
}

// probeID is a syntactically valid uuid no record can carry in practice; a
// point read against it exercises the store without scanning.
const probeID = "00000000-0000-0000-0000-000000000000"

// Ping verifies the store adapter answers reads.
func (s *Service) Ping(ctx context.Context) error {
	if _, _, err := s.store.GetItem(ctx, probeID); err != nil {
		return domain.StoreError{Op: "get", Err: err}
	}
	return nil
}

func (s *Service) lookup(ctx context.Context, key string) (domain.Item, error) {
	if _, err := uuid.Parse(key); err == nil {
		item, ok, gerr := s.store.GetItem(ctx, key)
		if gerr != nil {
			return domain.Item{}, domain.StoreError{Op: "get", Err: gerr}
		}
		if !ok {
			return domain.Item{}, domain.NotFoundError{Key: key}
		}
		return item, nil
	}
	item, ok, gerr := s.store.GetItemBySlug(ctx, key)
	if gerr != nil {
		return domain.Item{}, domain.StoreError{Op: "get", Err: gerr}
	}
	if !ok {
		return domain.Item{}, domain.NotFoundError{Key: key}
	}
	return item, nil
}
