package shell

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"shellquest/internal/cmdline"
	"shellquest/internal/vfs"
)

func textCommands() []*builtin {
	return []*builtin{
		{
			Name:    "head",
			Usage:   "head [-n COUNT] FILE",
			Summary: "print the first lines of a file",
			Spec:    cmdline.Spec{Named: []string{"n"}, Numeric: true},
			Run:     cmdHead,
		},
		{
			Name:    "tail",
			Usage:   "tail [-n COUNT] FILE",
			Summary: "print the last lines of a file",
			Spec:    cmdline.Spec{Named: []string{"n"}, Numeric: true},
			Run:     cmdTail,
		},
		{
			Name:    "grep",
			Usage:   "grep [-inrv] PATTERN [FILE...]",
			Summary: "search file contents for a pattern",
			Spec:    cmdline.Spec{},
			Run:     cmdGrep,
		},
		{
			Name:    "find",
			Usage:   "find [PATH] [-name PATTERN] [-type f|d]",
			Summary: "walk a directory tree",
			Spec:    cmdline.Spec{Named: []string{"name", "type"}},
			Run:     cmdFind,
		},
		{
			Name:    "more",
			Usage:   "more FILE",
			Summary: "page through a file",
			Spec:    cmdline.Spec{},
			Run:     cmdPager,
		},
		{
			Name:    "less",
			Usage:   "less FILE",
			Summary: "page through a file",
			Spec:    cmdline.Spec{},
			Run:     cmdPager,
		},
		{
			Name:    "echo",
			Usage:   "echo [TEXT...]",
			Summary: "print arguments",
			Spec:    cmdline.Spec{},
			Run:     cmdEcho,
		},
	}
}

func cmdHead(env *Env, cmd cmdline.Command) Result {
	return headTail(env, cmd, false)
}

func cmdTail(env *Env, cmd cmdline.Command) Result {
	return headTail(env, cmd, true)
}

func headTail(env *Env, cmd cmdline.Command, fromEnd bool) Result {
	n, err := cmd.Int("n", 10)
	if err != nil {
		return Result{
			Stderr:   []string{fmt.Sprintf("%s: %s", cmd.Name, err)},
			ExitCode: 2,
		}
	}
	if n < 0 {
		n = 0
	}
	if len(cmd.Args) != 1 {
		return usage(cmd.Name + " [-n COUNT] FILE")
	}
	content, err := env.FS.ReadFile(env.resolve(cmd.Args[0]))
	if err != nil {
		return pathError(cmd.Name, cmd.Args[0], err)
	}
	lines := splitLines(content)
	if n >= len(lines) {
		return resultLines(lines)
	}
	if fromEnd {
		return resultLines(lines[len(lines)-n:])
	}
	return resultLines(lines[:n])
}

func cmdGrep(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) == 0 {
		return usage("grep [-inrv] PATTERN [FILE...]")
	}
	pattern := cmd.Args[0]
	files := cmd.Args[1:]
	recursive := cmd.Bool("r")
	invert := cmd.Bool("v")
	number := cmd.Bool("n")

	expr := pattern
	if cmd.Bool("i") {
		expr = "(?i)" + pattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Result{
			Stderr:   []string{fmt.Sprintf("grep: %s: invalid pattern", pattern)},
			ExitCode: 2,
		}
	}

	if len(files) == 0 {
		if !recursive {
			return usage("grep [-inrv] PATTERN [FILE...]")
		}
		files = []string{"."}
	}

	multi := recursive || len(files) > 1
	matched := false
	failed := false
	var out, errs []string

	scan := func(content, display string) {
		for i, line := range splitLines(content) {
			hit := re.MatchString(line)
			if invert {
				hit = !hit
			}
			if !hit {
				continue
			}
			matched = true
			prefix := ""
			if multi {
				prefix = display + ":"
			}
			if number {
				prefix += fmt.Sprintf("%d:", i+1)
			}
			out = append(out, prefix+line)
		}
	}

	for _, f := range files {
		resolved := env.resolve(f)
		if recursive && env.FS.IsDir(resolved) {
			env.FS.Walk(resolved, func(p string, e vfs.Entry) error {
				if e.IsDir {
					return nil
				}
				content, err := env.FS.ReadFile(p)
				if err != nil {
					return nil
				}
				scan(content, displayPath(f, resolved, p))
				return nil
			})
			continue
		}
		content, err := env.FS.ReadFile(resolved)
		if err != nil {
			errs = append(errs, fmt.Sprintf("grep: %s: %s", f, messageFor(err)))
			failed = true
			continue
		}
		scan(content, f)
	}

	exit := 1
	switch {
	case failed:
		exit = 2
	case matched:
		exit = 0
	}
	return Result{Stdout: out, Stderr: errs, ExitCode: exit}
}

func cmdFind(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) > 1 {
		return usage("find [PATH] [-name PATTERN] [-type f|d]")
	}
	start := "."
	if len(cmd.Args) == 1 {
		start = cmd.Args[0]
	}
	namePat, hasName := cmd.Option("name")
	if hasName {
		if _, err := path.Match(namePat, "probe"); err != nil {
			return Result{
				Stderr:   []string{fmt.Sprintf("find: %s: invalid pattern", namePat)},
				ExitCode: 2,
			}
		}
	}
	typ, hasType := cmd.Option("type")
	if hasType && typ != "f" && typ != "d" {
		return Result{
			Stderr:   []string{fmt.Sprintf("find: unknown type %q", typ)},
			ExitCode: 2,
		}
	}

	resolved := env.resolve(start)
	var out []string
	err := env.FS.Walk(resolved, func(p string, e vfs.Entry) error {
		if hasType && (typ == "f") == e.IsDir {
			return nil
		}
		if hasName {
			if ok, _ := path.Match(namePat, e.Name); !ok {
				return nil
			}
		}
		out = append(out, displayPath(start, resolved, p))
		return nil
	})
	if err != nil {
		return pathError("find", start, err)
	}
	return resultLines(out)
}

func cmdPager(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 1 {
		return usage(cmd.Name + " FILE")
	}
	content, err := env.FS.ReadFile(env.resolve(cmd.Args[0]))
	if err != nil {
		return pathError(cmd.Name, cmd.Args[0], err)
	}
	return resultLines(splitLines(content))
}

func cmdEcho(env *Env, cmd cmdline.Command) Result {
	return resultLines([]string{strings.Join(cmd.Args, " ")})
}
