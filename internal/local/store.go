package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mesh-intelligence/biblio/pkg/types"
)

// BlobKey is the fixed name under which the snapshot is persisted.
const BlobKey = "biblio"

// File names inside the data directory.
const (
	SnapshotFileName = BlobKey + ".json"
	DatabaseFileName = BlobKey + ".db"
)

// BlobStore persists the serialized snapshot.
type BlobStore interface {
	// Load returns the stored blob, or nil when nothing has been stored yet.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored blob.
	Save(ctx context.Context, data []byte) error
	Close() error
}

// OpenStore opens the blob store selected by cfg.Store inside cfg.DataDir,
// creating the directory when needed.
func OpenStore(cfg types.Config) (BlobStore, error) {
	if cfg.Store == types.StoreMemory {
		return NewMemoryStore(), nil
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	switch cfg.Store {
	case types.StoreFile:
		return NewFileStore(filepath.Join(dataDir, SnapshotFileName)), nil
	case types.StoreSQLite:
		return OpenSQLiteStore(filepath.Join(dataDir, DatabaseFileName))
	default:
		return nil, types.ErrStoreUnknown
	}
}
