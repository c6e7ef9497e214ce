// Package content defines the adventure file format: the YAML document
// that declares a scenario's filesystem, its simulated hosts, and the
// mission sequence with per-task completion checks. Loading is strict,
// unknown keys are rejected so a typo in a check name cannot silently
// produce an impossible task.
package content

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"regexp"

	"go.uber.org/multierr"
	"golang.org/x/net/idna"
	"gopkg.in/yaml.v3"

	"shellquest/internal/vpath"
)

// Adventure is one complete scenario document.
type Adventure struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`

	// User and Host name the simulated identity; both have defaults.
	User string `yaml:"user"`
	Host string `yaml:"host"`

	Filesystem []FileEntry    `yaml:"filesystem"`
	Hosts      []HostEntry    `yaml:"hosts"`
	Missions   []MissionEntry `yaml:"missions"`
}

// FileEntry seeds one path in the virtual filesystem. An entry without
// content declares a directory.
type FileEntry struct {
	Path    string  `yaml:"path"`
	Content *string `yaml:"content"`
}

// HostEntry pins one simulated host.
type HostEntry struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Body    string `yaml:"body"`
	Banner  string `yaml:"banner"`
}

// MissionEntry is one mission with its ordered tasks.
type MissionEntry struct {
	ID       string      `yaml:"id"`
	Title    string      `yaml:"title"`
	Briefing string      `yaml:"briefing"`
	Tasks    []TaskEntry `yaml:"tasks"`
}

// TaskEntry is one step the player must perform.
type TaskEntry struct {
	ID     string    `yaml:"id"`
	Prompt string    `yaml:"prompt"`
	Check  CheckSpec `yaml:"check"`
}

// CheckSpec declares when a task counts as done. Every condition that
// is set must hold for the same observed turn.
type CheckSpec struct {
	// Command matches the executed command's name exactly.
	Command string `yaml:"command"`

	// RawContains matches a substring of the submitted line.
	RawContains string `yaml:"raw_contains"`

	// ExitCode matches the command's exit code exactly.
	ExitCode *int `yaml:"exit_code"`

	StdoutContains string `yaml:"stdout_contains"`
	StderrContains string `yaml:"stderr_contains"`

	// StdoutMatches is a regular expression applied to the joined
	// stdout lines.
	StdoutMatches string `yaml:"stdout_matches"`

	// CWD matches the working directory after the command ran.
	CWD string `yaml:"cwd"`

	// PathExists and PathAbsent inspect filesystem state, so tasks can
	// be satisfied by effects rather than by output.
	PathExists string `yaml:"path_exists"`
	PathAbsent string `yaml:"path_absent"`

	// FileContains requires the named file to hold a substring.
	FileContains *FileContainsSpec `yaml:"file_contains"`
}

// FileContainsSpec names a file and the substring it must contain.
type FileContainsSpec struct {
	Path      string `yaml:"path"`
	Substring string `yaml:"substring"`
}

func (c CheckSpec) empty() bool {
	return c.Command == "" &&
		c.RawContains == "" &&
		c.ExitCode == nil &&
		c.StdoutContains == "" &&
		c.StderrContains == "" &&
		c.StdoutMatches == "" &&
		c.CWD == "" &&
		c.PathExists == "" &&
		c.PathAbsent == "" &&
		c.FileContains == nil
}

// Load reads and parses an adventure file.
func Load(path string) (*Adventure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read adventure: %w", err)
	}
	return Parse(data)
}

// Parse decodes one adventure document. Unknown keys are errors.
func Parse(data []byte) (*Adventure, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var adv Adventure
	if err := dec.Decode(&adv); err != nil {
		return nil, fmt.Errorf("failed to parse adventure: %w", err)
	}
	return &adv, nil
}

// Username is the simulated user, defaulting to student.
func (a *Adventure) Username() string {
	if a.User == "" {
		return "student"
	}
	return a.User
}

// Hostname is the simulated machine name, defaulting to quest-box.
func (a *Adventure) Hostname() string {
	if a.Host == "" {
		return "quest-box"
	}
	return a.Host
}

// HomePath is the player's home directory.
func (a *Adventure) HomePath() string {
	return "/home/" + a.Username()
}

// Validate reports every problem in the document at once.
func (a *Adventure) Validate() error {
	var errs error

	if a.ID == "" {
		errs = multierr.Append(errs, fmt.Errorf("adventure id is required"))
	}
	if len(a.Missions) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("adventure needs at least one mission"))
	}

	seenPaths := make(map[string]string)
	for i, f := range a.Filesystem {
		if !vpath.IsAbs(f.Path) {
			errs = multierr.Append(errs, fmt.Errorf("filesystem[%d]: path %q must be absolute", i, f.Path))
			continue
		}
		norm := vpath.Normalize(f.Path)
		if prev, dup := seenPaths[norm]; dup {
			errs = multierr.Append(errs, fmt.Errorf("filesystem[%d]: path %q duplicates %q", i, f.Path, prev))
		}
		seenPaths[norm] = f.Path
	}

	for i, h := range a.Hosts {
		if h.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("hosts[%d]: name is required", i))
			continue
		}
		if _, err := idna.Lookup.ToASCII(h.Name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("hosts[%d]: invalid name %q: %w", i, h.Name, err))
		}
		if h.Address != "" {
			ip := net.ParseIP(h.Address)
			if ip == nil || ip.To4() == nil {
				errs = multierr.Append(errs, fmt.Errorf("hosts[%d]: address %q is not an IPv4 address", i, h.Address))
			}
		}
	}

	seenMissions := make(map[string]bool)
	seenTasks := make(map[string]bool)
	for i, m := range a.Missions {
		if m.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("missions[%d]: id is required", i))
		} else if seenMissions[m.ID] {
			errs = multierr.Append(errs, fmt.Errorf("missions[%d]: duplicate id %q", i, m.ID))
		}
		seenMissions[m.ID] = true

		if len(m.Tasks) == 0 {
			errs = multierr.Append(errs, fmt.Errorf("mission %s: needs at least one task", m.ID))
		}
		for j, task := range m.Tasks {
			where := fmt.Sprintf("mission %s task[%d]", m.ID, j)
			if task.ID == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: id is required", where))
			} else if seenTasks[task.ID] {
				errs = multierr.Append(errs, fmt.Errorf("%s: duplicate id %q", where, task.ID))
			}
			seenTasks[task.ID] = true

			if task.Prompt == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s: prompt is required", where))
			}
			errs = multierr.Append(errs, validateCheck(where, task.Check))
		}
	}
	return errs
}

func validateCheck(where string, c CheckSpec) error {
	var errs error
	if c.empty() {
		return fmt.Errorf("%s: check has no conditions", where)
	}
	if c.StdoutMatches != "" {
		if _, err := regexp.Compile(c.StdoutMatches); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: stdout_matches: %w", where, err))
		}
	}
	for name, p := range map[string]string{
		"cwd":         c.CWD,
		"path_exists": c.PathExists,
		"path_absent": c.PathAbsent,
	} {
		if p != "" && !vpath.IsAbs(p) {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s %q must be absolute", where, name, p))
		}
	}
	if c.FileContains != nil {
		if !vpath.IsAbs(c.FileContains.Path) {
			errs = multierr.Append(errs, fmt.Errorf("%s: file_contains path %q must be absolute", where, c.FileContains.Path))
		}
		if c.FileContains.Substring == "" {
			errs = multierr.Append(errs, fmt.Errorf("%s: file_contains substring is required", where))
		}
	}
	return errs
}
