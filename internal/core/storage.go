package core

import (
	"fmt"
	"os"

	"itemcore/internal/infra/persistence/memory"
	"itemcore/internal/infra/persistence/postgres"
	"itemcore/internal/infra/persistence/sqlite"
	"itemcore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenItemStore selects a backend using environment variables. Defaults to
// sqlite when unset.
//
//	ITEMCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	ITEMCORE_SQLITE_PATH: path to sqlite file (default ./itemcore.db)
//	ITEMCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenItemStore() (domain.ItemStore, error) {
	driver := os.Getenv("ITEMCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("ITEMCORE_SQLITE_PATH")
		return sqlite.NewStore(path)
	case StoragePostgres:
		dsn := os.Getenv("ITEMCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
