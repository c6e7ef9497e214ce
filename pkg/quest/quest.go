// Package quest is the public entry point for embedding shell adventures
// in a host program. It re-exports the session, content, and progress
// types so callers never import the internal packages directly.
package quest

import (
	"shellquest/internal/content"
	"shellquest/internal/mission"
	"shellquest/internal/progress"
	"shellquest/internal/session"
	"shellquest/internal/shell"
)

// Session drives one player through an adventure.
type Session = session.Session

// Config carries the pieces a Session is built from.
type Config = session.Config

// Step is the outcome of executing one command line segment.
type Step = session.Step

// Result and Effect describe what a single command produced.
type Result = shell.Result
type Effect = shell.Effect

const (
	EffectChangedDir    = shell.EffectChangedDir
	EffectClearScreen   = shell.EffectClearScreen
	EffectSessionClosed = shell.EffectSessionClosed
)

// Outcome reports how a command moved mission progress.
type Outcome = mission.Outcome

const (
	NoChange         = mission.NoChange
	TaskCompleted    = mission.TaskCompleted
	MissionCompleted = mission.MissionCompleted
	AllCompleted     = mission.AllCompleted
)

// Mission and Task expose the compiled plan entries for host UIs.
type Mission = mission.Mission
type Task = mission.Task

// Adventure is a parsed and validated adventure definition.
type Adventure = content.Adventure

// Store persists progress between sessions. Record is one saved cursor.
type Store = progress.Store
type Record = progress.Record

var (
	New              = session.New
	LoadAdventure    = content.Load
	ParseAdventure   = content.Parse
	DefaultAdventure = content.Default
	NewMemoryStore   = progress.NewMemoryStore
	NewFileStore     = progress.NewFileStore
	NewSQLiteStore   = progress.NewSQLiteStore
)
