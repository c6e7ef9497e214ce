// Package shell implements the command dispatcher and the built-in
// command set. The dispatcher maps a command name to a handler through
// a closed registry table, so "unknown command" is a total case; every
// handler consumes parsed arguments plus the session environment and
// returns a structured Result. Handlers are pure given their inputs
// except for the explicit mutation they are documented to perform
// (cd moves the working directory, filesystem commands edit the tree,
// transfers write downloads).
package shell

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"shellquest/internal/cmdline"
	"shellquest/internal/netsim"
	"shellquest/internal/vfs"
	"shellquest/internal/vpath"
)

// Env is the mutable session state a command executes against. One Env
// is owned by exactly one session; nothing here is safe for concurrent
// use and nothing needs to be, the session model is turn-based.
type Env struct {
	FS   *vfs.FS
	Net  *netsim.Simulator
	CWD  string
	Home string
	User string
	Host string

	// History is the submitted-line history, refreshed by the session
	// before each dispatch so the history builtin sees current state.
	History []string
}

// resolve expands a leading ~ and resolves arg against the working
// directory.
func (env *Env) resolve(arg string) string {
	if arg == "~" || strings.HasPrefix(arg, "~/") {
		arg = env.Home + strings.TrimPrefix(arg, "~")
	}
	return vpath.Resolve(env.CWD, arg)
}

// EffectKind names the structured side effects a Result can carry.
type EffectKind string

const (
	EffectChangedDir    EffectKind = "cwd"
	EffectClearScreen   EffectKind = "clear"
	EffectSessionClosed EffectKind = "exit"
)

// Effect marks a side effect the host UI can react to without parsing
// output text.
type Effect struct {
	Kind EffectKind
	Path string // EffectChangedDir: the new working directory
	Code int    // EffectSessionClosed: requested exit status
}

// Result is the observable outcome of one executed command. It is
// immutable once produced and is consumed by both the host UI and the
// mission engine.
type Result struct {
	Stdout   []string
	Stderr   []string
	ExitCode int
	Effect   *Effect
}

// builtin is one entry in the dispatcher's command table.
type builtin struct {
	Name    string
	Usage   string
	Summary string
	Spec    cmdline.Spec
	Run     func(env *Env, cmd cmdline.Command) Result
}

// Dispatcher holds the closed set of built-in commands.
type Dispatcher struct {
	table map[string]*builtin
	names []string
}

// NewDispatcher builds the full builtin table.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{table: make(map[string]*builtin)}
	d.register(fsCommands()...)
	d.register(textCommands()...)
	d.register(netCommands()...)
	d.register(miscCommands(d)...)

	d.names = make([]string, 0, len(d.table))
	for name := range d.table {
		d.names = append(d.names, name)
	}
	sort.Strings(d.names)
	return d
}

func (d *Dispatcher) register(cmds ...*builtin) {
	for _, b := range cmds {
		if _, exists := d.table[b.Name]; exists {
			panic(fmt.Sprintf("duplicate builtin %q", b.Name))
		}
		d.table[b.Name] = b
	}
}

// Names returns all builtin names, sorted.
func (d *Dispatcher) Names() []string {
	return append([]string(nil), d.names...)
}

// Execute runs one tokenized command against env. An unknown name
// yields exit code 127; a flag-classification failure yields exit
// code 2 with the command's usage line.
func (d *Dispatcher) Execute(env *Env, tokens []string) Result {
	if len(tokens) == 0 {
		return Result{}
	}
	b, ok := d.table[tokens[0]]
	if !ok {
		return Result{
			Stderr:   []string{fmt.Sprintf("shellquest: %s: command not found", tokens[0])},
			ExitCode: 127,
		}
	}
	cmd, err := cmdline.Parse(tokens, b.Spec)
	if err != nil {
		return Result{
			Stderr:   []string{fmt.Sprintf("%s: %s", b.Name, err), "usage: " + b.Usage},
			ExitCode: 2,
		}
	}
	return b.Run(env, cmd)
}

// messageFor reduces an operation error to its classic one-line
// message, stripping any wrapped path.
func messageFor(err error) string {
	for _, sentinel := range []error{
		vfs.ErrNoSuchEntry,
		vfs.ErrNotADirectory,
		vfs.ErrIsADirectory,
		vfs.ErrDirectoryNotEmpty,
		vfs.ErrAlreadyExists,
		vfs.ErrInvalidArgument,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

func resultLines(lines []string) Result {
	return Result{Stdout: lines}
}

// pathError reports a failed operation on one operand:
// "<cmd>: <operand>: <message>", exit 1.
func pathError(name, operand string, err error) Result {
	return Result{
		Stderr:   []string{fmt.Sprintf("%s: %s: %s", name, operand, messageFor(err))},
		ExitCode: 1,
	}
}

// cmdError reports a failure whose wrapped error already names the
// subject: "<cmd>: <error>", exit 1.
func cmdError(name string, err error) Result {
	return Result{
		Stderr:   []string{fmt.Sprintf("%s: %s", name, err)},
		ExitCode: 1,
	}
}

func usage(text string) Result {
	return Result{Stderr: []string{"usage: " + text}, ExitCode: 2}
}

// splitLines breaks file content into display lines. A trailing
// newline does not produce a final empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// displayPath rewrites an absolute walk path p under root so it reads
// relative to the operand the user typed.
func displayPath(operand, root, p string) string {
	if p == root {
		return operand
	}
	rel := strings.TrimPrefix(p, root+"/")
	if root == vpath.Root {
		rel = strings.TrimPrefix(p, "/")
	}
	return strings.TrimSuffix(operand, "/") + "/" + rel
}
