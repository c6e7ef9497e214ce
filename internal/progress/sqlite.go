package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records in a single-file SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			logger.Debug("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS progress (
		adventure_id  TEXT PRIMARY KEY,
		mission_index INTEGER NOT NULL,
		task_index    INTEGER NOT NULL,
		session_id    TEXT NOT NULL DEFAULT '',
		updated_at    TEXT NOT NULL
	)`)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, adventureID string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec Record
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT adventure_id, mission_index, task_index, session_id, updated_at
		 FROM progress WHERE adventure_id = ?`, adventureID).
		Scan(&rec.AdventureID, &rec.MissionIndex, &rec.TaskIndex, &rec.SessionID, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("failed to load progress: %w", err)
	}
	if t, perr := time.Parse(time.RFC3339Nano, updated); perr == nil {
		rec.UpdatedAt = t
	}
	return rec, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (adventure_id, mission_index, task_index, session_id, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(adventure_id) DO UPDATE SET
		   mission_index = excluded.mission_index,
		   task_index = excluded.task_index,
		   session_id = excluded.session_id,
		   updated_at = excluded.updated_at`,
		rec.AdventureID, rec.MissionIndex, rec.TaskIndex, rec.SessionID,
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context, adventureID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM progress WHERE adventure_id = ?", adventureID); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
