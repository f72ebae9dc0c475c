package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"MarketCourier/internal/fileutil"
	"MarketCourier/internal/model"
)

// Store persists the single most recent snapshot.
type Store interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap *model.Snapshot) error
	// Load returns the stored snapshot, or nil when none exists.
	Load(ctx context.Context) (*model.Snapshot, error)
}

// FileStore keeps the snapshot in a JSON file. Writes go through a temp file
// and rename so readers never observe a partial document.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(_ context.Context, snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fileutil.WriteAtomic(s.path, data)
}

func (s *FileStore) Load(_ context.Context) (*model.Snapshot, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return &snap, nil
}
