// Package mission tracks a player's progress through an adventure's
// ordered missions and tasks. The engine never executes commands and
// never touches the filesystem on its own; it observes completed turns
// as Events and advances a cursor. At most one task completes per
// observed event, even when later tasks would also match it.
package mission

import "fmt"

// Outcome classifies what one observed event changed.
type Outcome int

const (
	// NoChange means the current task's check did not pass.
	NoChange Outcome = iota
	// TaskCompleted means the current task passed and the cursor moved
	// to the next task in the same mission.
	TaskCompleted
	// MissionCompleted means the passing task was its mission's last.
	MissionCompleted
	// AllCompleted means the passing task finished the final mission.
	AllCompleted
)

func (o Outcome) String() string {
	switch o {
	case NoChange:
		return "no change"
	case TaskCompleted:
		return "task completed"
	case MissionCompleted:
		return "mission completed"
	case AllCompleted:
		return "all missions completed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// FSView is the read-only filesystem surface task checks may inspect.
type FSView interface {
	Exists(path string) bool
	IsDir(path string) bool
	ReadFile(path string) (string, error)
}

// Event is one completed command turn as seen by the engine.
type Event struct {
	// Command is the full submitted line, trimmed.
	Command string
	// Name is the resolved command name, empty for an empty line.
	Name     string
	Stdout   []string
	Stderr   []string
	ExitCode int
	// CWD is the working directory after the command ran.
	CWD string
	// FS allows checks to inspect filesystem state.
	FS FSView
}

// Predicate decides whether an event satisfies a task.
type Predicate func(Event) bool

// Task is one step the player must perform.
type Task struct {
	ID     string
	Prompt string
	Check  Predicate
}

// Mission is an ordered set of tasks with a briefing.
type Mission struct {
	ID       string
	Title    string
	Briefing []string
	Tasks    []Task
}

// Plan is the full mission sequence of one adventure.
type Plan struct {
	AdventureID string
	Missions    []Mission
}

// Engine walks a plan one task at a time. A cursor of
// (len(missions), 0) means everything is complete.
type Engine struct {
	plan    Plan
	mission int
	task    int
}

// NewEngine validates plan and starts the cursor at the first task.
func NewEngine(plan Plan) (*Engine, error) {
	for i, m := range plan.Missions {
		if len(m.Tasks) == 0 {
			return nil, fmt.Errorf("mission %d (%s) has no tasks", i, m.ID)
		}
		for j, t := range m.Tasks {
			if t.Check == nil {
				return nil, fmt.Errorf("task %d of mission %s has no check", j, m.ID)
			}
		}
	}
	return &Engine{plan: plan}, nil
}

// Observe evaluates ev against the current task only. The cursor moves
// forward at most one position.
func (e *Engine) Observe(ev Event) Outcome {
	if e.Done() {
		return NoChange
	}
	m := e.plan.Missions[e.mission]
	if !m.Tasks[e.task].Check(ev) {
		return NoChange
	}
	e.task++
	if e.task < len(m.Tasks) {
		return TaskCompleted
	}
	e.task = 0
	e.mission++
	if e.mission < len(e.plan.Missions) {
		return MissionCompleted
	}
	return AllCompleted
}

// Cursor reports the zero-based mission and task indices.
func (e *Engine) Cursor() (mission, task int) {
	return e.mission, e.task
}

// Done reports whether every mission is complete.
func (e *Engine) Done() bool {
	return e.mission >= len(e.plan.Missions)
}

// Restore moves the cursor to a previously saved position. Positions
// that do not exist in the plan reset the cursor to the start and
// report false.
func (e *Engine) Restore(mission, task int) bool {
	if mission == len(e.plan.Missions) && task == 0 {
		e.mission, e.task = mission, 0
		return true
	}
	if mission < 0 || mission >= len(e.plan.Missions) {
		e.mission, e.task = 0, 0
		return false
	}
	if task < 0 || task >= len(e.plan.Missions[mission].Tasks) {
		e.mission, e.task = 0, 0
		return false
	}
	e.mission, e.task = mission, task
	return true
}

// CurrentMission returns the mission under the cursor.
func (e *Engine) CurrentMission() (Mission, bool) {
	if e.Done() {
		return Mission{}, false
	}
	return e.plan.Missions[e.mission], true
}

// CurrentTask returns the task under the cursor.
func (e *Engine) CurrentTask() (Task, bool) {
	if e.Done() {
		return Task{}, false
	}
	return e.plan.Missions[e.mission].Tasks[e.task], true
}

// MissionCount reports how many missions the plan holds.
func (e *Engine) MissionCount() int {
	return len(e.plan.Missions)
}
