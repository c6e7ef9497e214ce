package mission

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func commandIs(want string) Predicate {
	return func(ev Event) bool { return ev.Command == want }
}

func always(Event) bool { return true }

func testPlan() Plan {
	return Plan{
		AdventureID: "intro",
		Missions: []Mission{
			{
				ID:    "m1",
				Title: "first",
				Tasks: []Task{
					{ID: "t1", Prompt: "run alpha", Check: commandIs("alpha")},
					{ID: "t2", Prompt: "run beta", Check: commandIs("beta")},
				},
			},
			{
				ID:    "m2",
				Title: "second",
				Tasks: []Task{
					{ID: "t3", Prompt: "run gamma", Check: commandIs("gamma")},
				},
			},
		},
	}
}

func TestObserveSequence(t *testing.T) {
	e, err := NewEngine(testPlan())
	if err != nil {
		t.Fatal(err)
	}

	if got := e.Observe(Event{Command: "beta"}); got != NoChange {
		t.Fatalf("wrong command advanced the cursor: %v", got)
	}
	if got := e.Observe(Event{Command: "alpha"}); got != TaskCompleted {
		t.Fatalf("first task outcome = %v", got)
	}
	if m, tk := e.Cursor(); m != 0 || tk != 1 {
		t.Fatalf("cursor = (%d,%d), want (0,1)", m, tk)
	}
	if got := e.Observe(Event{Command: "beta"}); got != MissionCompleted {
		t.Fatalf("mission-final task outcome = %v", got)
	}
	if got := e.Observe(Event{Command: "gamma"}); got != AllCompleted {
		t.Fatalf("final task outcome = %v", got)
	}
	if !e.Done() {
		t.Fatal("engine should be done")
	}
	if m, tk := e.Cursor(); m != 2 || tk != 0 {
		t.Fatalf("done cursor = (%d,%d), want (2,0)", m, tk)
	}
	if got := e.Observe(Event{Command: "alpha"}); got != NoChange {
		t.Fatalf("observations after completion must be inert, got %v", got)
	}
}

func TestOneTaskPerEvent(t *testing.T) {
	plan := Plan{
		AdventureID: "greedy",
		Missions: []Mission{{
			ID: "m",
			Tasks: []Task{
				{ID: "a", Check: always},
				{ID: "b", Check: always},
				{ID: "c", Check: always},
			},
		}},
	}
	e, err := NewEngine(plan)
	if err != nil {
		t.Fatal(err)
	}

	// Every task matches every event, but each event may complete only
	// the one under the cursor.
	if got := e.Observe(Event{Command: "x"}); got != TaskCompleted {
		t.Fatalf("outcome = %v", got)
	}
	if m, tk := e.Cursor(); m != 0 || tk != 1 {
		t.Fatalf("cursor = (%d,%d), want (0,1)", m, tk)
	}
	e.Observe(Event{Command: "x"})
	if got := e.Observe(Event{Command: "x"}); got != AllCompleted {
		t.Fatalf("outcome = %v", got)
	}
}

func TestRestore(t *testing.T) {
	e, _ := NewEngine(testPlan())

	if !e.Restore(1, 0) {
		t.Fatal("valid position rejected")
	}
	if m, tk := e.Cursor(); m != 1 || tk != 0 {
		t.Fatalf("cursor = (%d,%d)", m, tk)
	}

	if !e.Restore(2, 0) {
		t.Fatal("completed position rejected")
	}
	if !e.Done() {
		t.Fatal("restored-complete engine should be done")
	}

	for _, pos := range [][2]int{{5, 0}, {-1, 0}, {0, 7}, {0, -2}, {2, 1}} {
		if e.Restore(pos[0], pos[1]) {
			t.Errorf("Restore(%d,%d) accepted an invalid position", pos[0], pos[1])
		}
		if m, tk := e.Cursor(); m != 0 || tk != 0 {
			t.Errorf("invalid restore must reset to the start, got (%d,%d)", m, tk)
		}
	}
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(Plan{Missions: []Mission{{ID: "empty"}}})
	if err == nil {
		t.Error("mission without tasks should be rejected")
	}
	_, err = NewEngine(Plan{Missions: []Mission{{
		ID:    "nilcheck",
		Tasks: []Task{{ID: "t"}},
	}}})
	if err == nil {
		t.Error("task without a check should be rejected")
	}
}

func TestCurrentAccessors(t *testing.T) {
	e, _ := NewEngine(testPlan())

	m, ok := e.CurrentMission()
	if !ok || m.ID != "m1" {
		t.Fatalf("current mission = %+v, %v", m, ok)
	}
	tk, ok := e.CurrentTask()
	if !ok || tk.ID != "t1" {
		t.Fatalf("current task = %+v, %v", tk, ok)
	}

	e.Restore(2, 0)
	if _, ok := e.CurrentMission(); ok {
		t.Error("done engine should have no current mission")
	}
	if _, ok := e.CurrentTask(); ok {
		t.Error("done engine should have no current task")
	}
}

func TestEmptyPlanIsImmediatelyDone(t *testing.T) {
	e, err := NewEngine(Plan{AdventureID: "void"})
	if err != nil {
		t.Fatal(err)
	}
	if !e.Done() {
		t.Error("plan with no missions should start done")
	}
	if got := e.Observe(Event{Command: "ls"}); got != NoChange {
		t.Errorf("outcome = %v", got)
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		NoChange:         "no change",
		TaskCompleted:    "task completed",
		MissionCompleted: "mission completed",
		AllCompleted:     "all missions completed",
		Outcome(9):       "outcome(9)",
	}
	for o, want := range cases {
		if o.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(o), o.String(), want)
		}
	}
}
