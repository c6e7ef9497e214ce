// Package session wires one playthrough together: the virtual
// filesystem and network built from an adventure document, the command
// dispatcher, the mission engine, and the progress store. A Session is
// single-owner and turn-based; the host calls Turn with each submitted
// line and renders the returned steps.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shellquest/internal/cmdline"
	"shellquest/internal/content"
	"shellquest/internal/mission"
	"shellquest/internal/netsim"
	"shellquest/internal/progress"
	"shellquest/internal/shell"
	"shellquest/internal/vpath"
)

// Config assembles a session.
type Config struct {
	Adventure *content.Adventure

	// Store persists the mission cursor. Nil keeps progress in memory
	// for the lifetime of the session only.
	Store progress.Store

	// Logger receives progress and persistence events. Nil disables
	// logging.
	Logger *zap.Logger
}

// Step is the outcome of one command within a turn.
type Step struct {
	Input   string
	Result  shell.Result
	Outcome mission.Outcome
}

// Session owns one playthrough.
type Session struct {
	id         string
	adv        *content.Adventure
	env        *shell.Env
	dispatcher *shell.Dispatcher
	engine     *mission.Engine
	store      progress.Store
	logger     *zap.Logger
	history    []string
}

// New builds a session from cfg and restores any saved progress for
// the adventure. A stored cursor that does not fit the current mission
// plan is discarded with a warning rather than failing the session.
func New(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Adventure == nil {
		return nil, fmt.Errorf("session needs an adventure")
	}
	if err := cfg.Adventure.Validate(); err != nil {
		return nil, fmt.Errorf("invalid adventure: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := cfg.Store
	if store == nil {
		store = progress.NewMemoryStore()
	}

	fs, err := cfg.Adventure.BuildFS()
	if err != nil {
		return nil, fmt.Errorf("failed to build filesystem: %w", err)
	}
	plan, err := cfg.Adventure.Plan()
	if err != nil {
		return nil, fmt.Errorf("failed to compile missions: %w", err)
	}
	engine, err := mission.NewEngine(plan)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:  uuid.NewString(),
		adv: cfg.Adventure,
		env: &shell.Env{
			FS:   fs,
			Net:  netsim.New(cfg.Adventure.Hostname(), cfg.Adventure.PinnedHosts()...),
			CWD:  cfg.Adventure.HomePath(),
			Home: cfg.Adventure.HomePath(),
			User: cfg.Adventure.Username(),
			Host: cfg.Adventure.Hostname(),
		},
		dispatcher: shell.NewDispatcher(),
		engine:     engine,
		store:      store,
		logger:     logger,
	}

	rec, ok, err := store.Load(ctx, cfg.Adventure.ID)
	switch {
	case err != nil:
		logger.Warn("failed to load saved progress", zap.Error(err))
	case ok:
		if s.engine.Restore(rec.MissionIndex, rec.TaskIndex) {
			logger.Info("restored progress",
				zap.Int("mission", rec.MissionIndex),
				zap.Int("task", rec.TaskIndex))
		} else {
			logger.Warn("stored progress does not fit this adventure, starting over",
				zap.Int("mission", rec.MissionIndex),
				zap.Int("task", rec.TaskIndex))
		}
	}
	return s, nil
}

// Turn executes one submitted line. Commands separated by semicolons
// produce one Step each, in order; a directory change made by an
// earlier command is visible to the later ones. Turn never returns an
// error: syntax problems become a Step with exit code 2.
func (s *Session) Turn(ctx context.Context, line string) []Step {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	s.history = append(s.history, trimmed)

	segments, err := cmdline.Split(line)
	if err != nil {
		return []Step{{
			Input: trimmed,
			Result: shell.Result{
				Stderr:   []string{fmt.Sprintf("shellquest: syntax error: %s", err)},
				ExitCode: 2,
			},
			Outcome: mission.NoChange,
		}}
	}

	var steps []Step
	for _, tokens := range segments {
		s.env.History = s.history
		res := s.dispatcher.Execute(s.env, tokens)
		outcome := s.observe(ctx, mission.Event{
			Command:  trimmed,
			Name:     tokens[0],
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			ExitCode: res.ExitCode,
			CWD:      s.env.CWD,
			FS:       s.env.FS,
		})
		steps = append(steps, Step{
			Input:   strings.Join(tokens, " "),
			Result:  res,
			Outcome: outcome,
		})
	}
	return steps
}

// observe feeds one event to the engine and persists any advance.
// Persistence failures are logged, never surfaced: losing a save must
// not interrupt play.
func (s *Session) observe(ctx context.Context, ev mission.Event) mission.Outcome {
	outcome := s.engine.Observe(ev)
	if outcome == mission.NoChange {
		return outcome
	}
	m, t := s.engine.Cursor()
	s.logger.Info("progress advanced",
		zap.Stringer("outcome", outcome),
		zap.Int("mission", m),
		zap.Int("task", t))
	if err := s.store.Save(ctx, progress.Record{
		AdventureID:  s.adv.ID,
		MissionIndex: m,
		TaskIndex:    t,
		SessionID:    s.id,
		UpdatedAt:    time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("failed to save progress", zap.Error(err))
	}
	return outcome
}

// ReadFile returns a file's content for the host's editor pane.
func (s *Session) ReadFile(path string) (string, error) {
	return s.env.FS.ReadFile(s.resolve(path))
}

// SaveFile writes editor content into the filesystem and feeds the
// engine a synthetic save event, so editing a file can complete a
// task the same way a command can.
func (s *Session) SaveFile(ctx context.Context, path, body string) (mission.Outcome, error) {
	resolved := s.resolve(path)
	if err := s.env.FS.WriteFile(resolved, body); err != nil {
		return mission.NoChange, err
	}
	return s.observe(ctx, mission.Event{
		Command:  "save " + resolved,
		Name:     "save",
		ExitCode: 0,
		CWD:      s.env.CWD,
		FS:       s.env.FS,
	}), nil
}

// ResetProgress clears the saved cursor and restarts the missions.
func (s *Session) ResetProgress(ctx context.Context) error {
	if err := s.store.Reset(ctx, s.adv.ID); err != nil {
		return err
	}
	s.engine.Restore(0, 0)
	return nil
}

func (s *Session) resolve(path string) string {
	return vpath.Resolve(s.env.CWD, path)
}

// ID is the unique identifier of this session instance.
func (s *Session) ID() string {
	return s.id
}

// Prompt renders the classic user@host:dir$ prompt with the home
// directory abbreviated to ~.
func (s *Session) Prompt() string {
	dir := s.env.CWD
	if dir == s.env.Home {
		dir = "~"
	} else if strings.HasPrefix(dir, s.env.Home+"/") {
		dir = "~" + strings.TrimPrefix(dir, s.env.Home)
	}
	return fmt.Sprintf("%s@%s:%s$ ", s.env.User, s.env.Host, dir)
}

// WorkingDirectory is the current absolute working directory.
func (s *Session) WorkingDirectory() string {
	return s.env.CWD
}

// History returns the submitted lines so far.
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// Cursor reports the mission and task indices.
func (s *Session) Cursor() (missionIdx, taskIdx int) {
	return s.engine.Cursor()
}

// Done reports whether every mission is complete.
func (s *Session) Done() bool {
	return s.engine.Done()
}

// CurrentMission returns the mission under the cursor.
func (s *Session) CurrentMission() (mission.Mission, bool) {
	return s.engine.CurrentMission()
}

// CurrentTask returns the task under the cursor.
func (s *Session) CurrentTask() (mission.Task, bool) {
	return s.engine.CurrentTask()
}

// MissionCount reports how many missions the adventure holds.
func (s *Session) MissionCount() int {
	return s.engine.MissionCount()
}
