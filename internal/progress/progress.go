// Package progress persists the mission cursor between sessions. A
// Record is the complete saved state for one adventure; backends only
// store and retrieve it, they never interpret the indices. Validation
// of a loaded cursor against the current mission plan is the caller's
// job, so stale or hand-edited data can never wedge a session.
package progress

import (
	"context"
	"time"
)

// Record is the persisted cursor for one adventure.
type Record struct {
	AdventureID  string    `json:"adventure_id"`
	MissionIndex int       `json:"mission_index"`
	TaskIndex    int       `json:"task_index"`
	SessionID    string    `json:"session_id"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store persists one Record per adventure.
type Store interface {
	// Load returns the stored record for an adventure. The boolean is
	// false when nothing has been saved yet.
	Load(ctx context.Context, adventureID string) (Record, bool, error)

	// Save stores rec, replacing any previous record for the same
	// adventure.
	Save(ctx context.Context, rec Record) error

	// Reset deletes the record for an adventure. Resetting an unknown
	// adventure is not an error.
	Reset(ctx context.Context, adventureID string) error

	Close() error
}
