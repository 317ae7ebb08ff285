// Package sqlite persists the in-memory item store to a single SQLite table
// as JSON blobs, snapshotting the full state after every successful mutation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"itemcore/internal/infra/persistence/memory"
	"itemcore/pkg/domain"
)

var _ domain.ItemStore = (*Store)(nil)

const (
	bucketItems     = "items"
	bucketRevisions = "revisions"
)

// Store wraps the memory store with a SQLite snapshot of its state.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database at path, ensures the state table
// exists, and hydrates the in-memory store from any existing snapshot.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "itemcore.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshot memory.Snapshot
	loaded := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		switch bucket {
		case bucketItems:
			if err := json.Unmarshal(payload, &snapshot.Items); err != nil {
				return fmt.Errorf("decode items: %w", err)
			}
			loaded = true
		case bucketRevisions:
			if err := json.Unmarshal(payload, &snapshot.Revisions); err != nil {
				return fmt.Errorf("decode revisions: %w", err)
			}
			loaded = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
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
			retErr = err
			return retErr
		}
		if _, err := tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	return nil
}

// PutItem applies the write in memory, then snapshots state to SQLite.
func (s *Store) PutItem(ctx context.Context, item domain.Item) error {
	if err := s.Store.PutItem(ctx, item); err != nil {
		return err
	}
	return s.persist()
}

// DeleteItem applies the delete in memory, then snapshots state to SQLite.
func (s *Store) DeleteItem(ctx context.Context, id string) (bool, error) {
	existed, err := s.Store.DeleteItem(ctx, id)
	if err != nil || !existed {
		return existed, err
	}
	if err := s.persist(); err != nil {
		return true, err
	}
	return true, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
