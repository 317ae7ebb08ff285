package core

import (
	"context"
	"sync"
	"time"
)

// Logger is the minimal structured logging surface the engine needs. It is
// satisfied directly by *zap.SugaredLogger.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debugw(string, ...any) {}
func (noopLogger) Infow(string, ...any)  {}
func (noopLogger) Warnw(string, ...any)  {}
func (noopLogger) Errorw(string, ...any) {}

// NoopLogger returns a Logger that discards everything.
func NoopLogger() Logger { return noopLogger{} }

// MetricsRecorder receives one observation per completed service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// MultiMetricsRecorder fans out observations to every recorder.
func MultiMetricsRecorder(recorders ...MetricsRecorder) MetricsRecorder {
	return multiMetrics(recorders)
}

type multiMetrics []MetricsRecorder

func (m multiMetrics) Observe(ctx context.Context, op string, success bool, d time.Duration) {
	for _, r := range m {
		if r != nil {
			r.Observe(ctx, op, success, d)
		}
	}
}

// TraceSpan terminates a span started by a Tracer.
type TraceSpan interface {
	End(err error)
}

// Tracer opens a span around each service operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

type noopTracer struct{}

type noopSpan struct{}

func (noopSpan) End(error) {}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

// AuditEntry records one completed service operation for the audit trail.
type AuditEntry struct {
	ID         string        `json:"id"`
	Operation  string        `json:"operation"`
	ItemID     string        `json:"item_id,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// AuditRecorder receives audit entries. Implementations must be safe for
// concurrent use.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, AuditEntry) {}

// MemoryAuditLog retains the most recent audit entries in a bounded ring.
type MemoryAuditLog struct {
	mu      sync.Mutex
	limit   int
	entries []AuditEntry
}

// NewMemoryAuditLog constructs a ring holding up to limit entries; a
// non-positive limit falls back to 256.
func NewMemoryAuditLog(limit int) *MemoryAuditLog {
	if limit <= 0 {
		limit = 256
	}
	return &MemoryAuditLog{limit: limit}
}

// Record appends an entry, evicting the oldest beyond the limit.
func (l *MemoryAuditLog) Record(_ context.Context, entry AuditEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}
	l.mu.Unlock()
}

// Entries returns a defensive copy of the retained entries, oldest first.
func (l *MemoryAuditLog) Entries() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
