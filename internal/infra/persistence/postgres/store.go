// Package postgres provides a Postgres-backed item store that mirrors the
// in-memory semantics, snapshotting state as JSONB after each mutation.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"itemcore/internal/infra/persistence/memory"
	"itemcore/pkg/domain"
)

var _ domain.ItemStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/itemcore?sslmode=disable"

	bucketItems     = "items"
	bucketRevisions = "revisions"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store wraps the memory store with a Postgres snapshot of its state.
type Store struct {
	*memory.Store
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), ensures the snapshot table exists, and hydrates the
// in-memory store from any existing snapshot.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureStateTable(ctx, db); err != nil {
		return nil, err
	}
	snapshot, err := loadSnapshot(ctx, db)
	if err != nil {
		return nil, err
	}
	mem := memory.NewStore()
	mem.ImportState(snapshot)
	return &Store{Store: mem, db: db}, nil
}

func ensureStateTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure state table: %w", err)
	}
	return nil
}

func loadSnapshot(ctx context.Context, db *sql.DB) (memory.Snapshot, error) {
	rows, err := db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot memory.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return memory.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		switch bucket {
		case bucketItems:
			if err := json.Unmarshal(payload, &snapshot.Items); err != nil {
				return memory.Snapshot{}, fmt.Errorf("decode items: %w", err)
			}
		case bucketRevisions:
			if err := json.Unmarshal(payload, &snapshot.Revisions); err != nil {
				return memory.Snapshot{}, fmt.Errorf("decode revisions: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return memory.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	return snapshot, nil
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	payloads := map[string]any{
		bucketItems:     snapshot.Items,
		bucketRevisions: snapshot.Revisions,
	}
	for _, bucket := range []string{bucketItems, bucketRevisions} {
		data, err := json.Marshal(payloads[bucket])
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`, bucket, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// PutItem applies the write in memory, then snapshots state to Postgres.
func (s *Store) PutItem(ctx context.Context, item domain.Item) error {
	if err := s.Store.PutItem(ctx, item); err != nil {
		return err
	}
	return s.persist(ctx)
}

// DeleteItem applies the delete in memory, then snapshots state to Postgres.
func (s *Store) DeleteItem(ctx context.Context, id string) (bool, error) {
	existed, err := s.Store.DeleteItem(ctx, id)
	if err != nil || !existed {
		return existed, err
	}
	if err := s.persist(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
