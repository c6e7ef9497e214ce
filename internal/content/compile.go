package content

import (
	"fmt"
	"regexp"
	"strings"

	"shellquest/internal/mission"
	"shellquest/internal/netsim"
	"shellquest/internal/vfs"
	"shellquest/internal/vpath"
)

// BuildFS materializes the declared filesystem. The player's home
// directory always exists even when the document never mentions it.
// Entries apply in declaration order.
func (a *Adventure) BuildFS() (*vfs.FS, error) {
	fs := vfs.New()
	if err := fs.CreateDirectory(a.HomePath(), true); err != nil {
		return nil, err
	}
	for _, f := range a.Filesystem {
		path := vpath.Normalize(f.Path)
		if f.Content == nil {
			if err := fs.CreateDirectory(path, true); err != nil {
				return nil, fmt.Errorf("filesystem %s: %w", f.Path, err)
			}
			continue
		}
		if dir := vpath.Dir(path); dir != vpath.Root {
			if err := fs.CreateDirectory(dir, true); err != nil {
				return nil, fmt.Errorf("filesystem %s: %w", f.Path, err)
			}
		}
		if err := fs.WriteFile(path, *f.Content); err != nil {
			return nil, fmt.Errorf("filesystem %s: %w", f.Path, err)
		}
	}
	return fs, nil
}

// Plan compiles the mission sequence into executable form.
func (a *Adventure) Plan() (mission.Plan, error) {
	plan := mission.Plan{AdventureID: a.ID}
	for _, m := range a.Missions {
		cm := mission.Mission{
			ID:       m.ID,
			Title:    m.Title,
			Briefing: briefingLines(m.Briefing),
		}
		for _, t := range m.Tasks {
			check, err := compileCheck(t.Check)
			if err != nil {
				return mission.Plan{}, fmt.Errorf("mission %s task %s: %w", m.ID, t.ID, err)
			}
			cm.Tasks = append(cm.Tasks, mission.Task{ID: t.ID, Prompt: t.Prompt, Check: check})
		}
		plan.Missions = append(plan.Missions, cm)
	}
	return plan, nil
}

// PinnedHosts maps the host entries for the network simulator.
func (a *Adventure) PinnedHosts() []netsim.Host {
	hosts := make([]netsim.Host, 0, len(a.Hosts))
	for _, h := range a.Hosts {
		hosts = append(hosts, netsim.Host{
			Name:    h.Name,
			Address: h.Address,
			Body:    h.Body,
			Banner:  h.Banner,
		})
	}
	return hosts
}

func briefingLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// compileCheck turns a CheckSpec into one predicate; set conditions
// must all hold for the same event.
func compileCheck(spec CheckSpec) (mission.Predicate, error) {
	var conds []mission.Predicate

	if spec.Command != "" {
		want := spec.Command
		conds = append(conds, func(ev mission.Event) bool {
			return ev.Name == want
		})
	}
	if spec.RawContains != "" {
		want := spec.RawContains
		conds = append(conds, func(ev mission.Event) bool {
			return strings.Contains(ev.Command, want)
		})
	}
	if spec.ExitCode != nil {
		want := *spec.ExitCode
		conds = append(conds, func(ev mission.Event) bool {
			return ev.ExitCode == want
		})
	}
	if spec.StdoutContains != "" {
		want := spec.StdoutContains
		conds = append(conds, func(ev mission.Event) bool {
			return strings.Contains(strings.Join(ev.Stdout, "\n"), want)
		})
	}
	if spec.StderrContains != "" {
		want := spec.StderrContains
		conds = append(conds, func(ev mission.Event) bool {
			return strings.Contains(strings.Join(ev.Stderr, "\n"), want)
		})
	}
	if spec.StdoutMatches != "" {
		re, err := regexp.Compile(spec.StdoutMatches)
		if err != nil {
			return nil, fmt.Errorf("stdout_matches: %w", err)
		}
		conds = append(conds, func(ev mission.Event) bool {
			return re.MatchString(strings.Join(ev.Stdout, "\n"))
		})
	}
	if spec.CWD != "" {
		want := vpath.Normalize(spec.CWD)
		conds = append(conds, func(ev mission.Event) bool {
			return ev.CWD == want
		})
	}
	if spec.PathExists != "" {
		p := vpath.Normalize(spec.PathExists)
		conds = append(conds, func(ev mission.Event) bool {
			return ev.FS != nil && ev.FS.Exists(p)
		})
	}
	if spec.PathAbsent != "" {
		p := vpath.Normalize(spec.PathAbsent)
		conds = append(conds, func(ev mission.Event) bool {
			return ev.FS != nil && !ev.FS.Exists(p)
		})
	}
	if spec.FileContains != nil {
		p := vpath.Normalize(spec.FileContains.Path)
		sub := spec.FileContains.Substring
		conds = append(conds, func(ev mission.Event) bool {
			if ev.FS == nil {
				return false
			}
			content, err := ev.FS.ReadFile(p)
			return err == nil && strings.Contains(content, sub)
		})
	}

	if len(conds) == 0 {
		return nil, fmt.Errorf("check has no conditions")
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return func(ev mission.Event) bool {
		for _, c := range conds {
			if !c(ev) {
				return false
			}
		}
		return true
	}, nil
}
