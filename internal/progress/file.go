package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

type fileState struct {
	Version int               `json:"version"`
	Records map[string]Record `json:"records"`
}

// FileStore persists records as a single JSON document. Writes go
// through a temp file and rename so a crash mid-write cannot leave a
// torn document behind.
type FileStore struct {
	mu     sync.Mutex
	path   string
	state  fileState
	logger *zap.Logger
}

// NewFileStore opens or creates the JSON store at path. A missing file
// starts empty; an unreadable or corrupt document is logged and
// treated as empty rather than blocking the session.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore{
		path:   path,
		logger: logger,
		state:  fileState{Version: 1, Records: make(map[string]Record)},
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		logger.Warn("progress file is unreadable, starting fresh",
			zap.String("path", path), zap.Error(err))
		return s, nil
	}
	var loaded fileState
	if err := json.Unmarshal(data, &loaded); err != nil || loaded.Records == nil {
		logger.Warn("progress file is corrupt, starting fresh",
			zap.String("path", path), zap.Error(err))
		return s, nil
	}
	s.state = loaded
	return s, nil
}

func (s *FileStore) Load(ctx context.Context, adventureID string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.state.Records[adventureID]
	return rec, ok, nil
}

func (s *FileStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Records[rec.AdventureID] = rec
	return s.flush()
}

func (s *FileStore) Reset(ctx context.Context, adventureID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Records[adventureID]; !ok {
		return nil
	}
	delete(s.state.Records, adventureID)
	return s.flush()
}

func (s *FileStore) Close() error {
	return nil
}

// flush writes the whole document atomically. Callers hold s.mu.
func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write progress file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace progress file: %w", err)
	}
	return nil
}
