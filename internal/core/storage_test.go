package core

import (
	"path/filepath"
	"testing"

	"itemcore/internal/infra/persistence/memory"
	"itemcore/internal/infra/persistence/sqlite"
)

func TestOpenItemStoreMemory(t *testing.T) {
	t.Setenv("ITEMCORE_STORAGE_DRIVER", "memory")
	store, err := OpenItemStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenItemStoreDefaultsToSQLite(t *testing.T) {
	t.Setenv("ITEMCORE_STORAGE_DRIVER", "")
	t.Setenv("ITEMCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "items.db"))
	store, err := OpenItemStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestOpenItemStoreUnknownDriver(t *testing.T) {
	t.Setenv("ITEMCORE_STORAGE_DRIVER", "oracle")
	if _, err := OpenItemStore(); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
