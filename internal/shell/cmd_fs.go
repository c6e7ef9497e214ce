package shell

import (
	"errors"
	"fmt"

	"shellquest/internal/cmdline"
	"shellquest/internal/vfs"
	"shellquest/internal/vpath"
)

func fsCommands() []*builtin {
	return []*builtin{
		{
			Name:    "ls",
			Usage:   "ls [-al] [PATH...]",
			Summary: "list directory contents",
			Spec:    cmdline.Spec{},
			Run:     cmdLs,
		},
		{
			Name:    "cd",
			Usage:   "cd [PATH]",
			Summary: "change the working directory",
			Spec:    cmdline.Spec{},
			Run:     cmdCd,
		},
		{
			Name:    "pwd",
			Usage:   "pwd",
			Summary: "print the working directory",
			Spec:    cmdline.Spec{},
			Run:     cmdPwd,
		},
		{
			Name:    "cat",
			Usage:   "cat FILE...",
			Summary: "print file contents",
			Spec:    cmdline.Spec{},
			Run:     cmdCat,
		},
		{
			Name:    "mkdir",
			Usage:   "mkdir [-p] DIRECTORY...",
			Summary: "create directories",
			Spec:    cmdline.Spec{},
			Run:     cmdMkdir,
		},
		{
			Name:    "rmdir",
			Usage:   "rmdir DIRECTORY...",
			Summary: "remove empty directories",
			Spec:    cmdline.Spec{},
			Run:     cmdRmdir,
		},
		{
			Name:    "rm",
			Usage:   "rm [-rf] FILE...",
			Summary: "remove files or directories",
			Spec:    cmdline.Spec{},
			Run:     cmdRm,
		},
		{
			Name:    "cp",
			Usage:   "cp [-r] SOURCE DEST",
			Summary: "copy a file or directory",
			Spec:    cmdline.Spec{},
			Run:     cmdCp,
		},
		{
			Name:    "mv",
			Usage:   "mv SOURCE DEST",
			Summary: "move or rename a file or directory",
			Spec:    cmdline.Spec{},
			Run:     cmdMv,
		},
		{
			Name:    "touch",
			Usage:   "touch FILE...",
			Summary: "create empty files or update timestamps",
			Spec:    cmdline.Spec{},
			Run:     cmdTouch,
		},
	}
}

// longLine renders one `ls -l` row. Permissions and link counts are
// synthetic; the filesystem has no ownership model.
func longLine(e vfs.Entry, user, name string) string {
	perms := "-rw-r--r--"
	if e.IsDir {
		perms = "drwxr-xr-x"
	}
	return fmt.Sprintf("%s %2d %s %s %6d %s %s",
		perms, 1, user, user, e.Size, e.ModTime.Format("Jan _2 15:04"), name)
}

func cmdLs(env *Env, cmd cmdline.Command) Result {
	long := cmd.Bool("l")
	all := cmd.Bool("a")
	targets := cmd.Args
	if len(targets) == 0 {
		targets = []string{"."}
	}

	var out, errs []string
	exit := 0
	for i, target := range targets {
		resolved := env.resolve(target)
		entry, err := env.FS.Stat(resolved)
		if err != nil {
			errs = append(errs, fmt.Sprintf("ls: %s: %s", target, messageFor(err)))
			exit = 1
			continue
		}
		if !entry.IsDir {
			if long {
				out = append(out, longLine(entry, env.User, target))
			} else {
				out = append(out, target)
			}
			continue
		}
		if len(targets) > 1 {
			if i > 0 {
				out = append(out, "")
			}
			out = append(out, target+":")
		}

		names, err := env.FS.List(resolved)
		if err != nil {
			errs = append(errs, fmt.Sprintf("ls: %s: %s", target, messageFor(err)))
			exit = 1
			continue
		}

		type row struct {
			name string
			path string
		}
		var rows []row
		if all {
			rows = append(rows,
				row{".", resolved},
				row{"..", vpath.Dir(resolved)},
			)
		}
		for _, name := range names {
			if !all && len(name) > 0 && name[0] == '.' {
				continue
			}
			rows = append(rows, row{name, vpath.Join(resolved, name)})
		}

		for _, r := range rows {
			if !long {
				out = append(out, r.name)
				continue
			}
			child, err := env.FS.Stat(r.path)
			if err != nil {
				continue
			}
			out = append(out, longLine(child, env.User, r.name))
		}
	}
	return Result{Stdout: out, Stderr: errs, ExitCode: exit}
}

func cmdCd(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) > 1 {
		return Result{Stderr: []string{"cd: too many arguments"}, ExitCode: 2}
	}
	target := env.Home
	operand := "~"
	if len(cmd.Args) == 1 {
		target = cmd.Args[0]
		operand = target
	}
	resolved := env.resolve(target)
	entry, err := env.FS.Stat(resolved)
	if err != nil {
		return pathError("cd", operand, err)
	}
	if !entry.IsDir {
		return pathError("cd", operand, vfs.ErrNotADirectory)
	}
	env.CWD = resolved
	return Result{Effect: &Effect{Kind: EffectChangedDir, Path: resolved}}
}

func cmdPwd(env *Env, cmd cmdline.Command) Result {
	return resultLines([]string{env.CWD})
}

func cmdCat(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) == 0 {
		return usage("cat FILE...")
	}
	var out, errs []string
	exit := 0
	for _, arg := range cmd.Args {
		content, err := env.FS.ReadFile(env.resolve(arg))
		if err != nil {
			errs = append(errs, fmt.Sprintf("cat: %s: %s", arg, messageFor(err)))
			exit = 1
			continue
		}
		out = append(out, splitLines(content)...)
	}
	return Result{Stdout: out, Stderr: errs, ExitCode: exit}
}

func cmdMkdir(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) == 0 {
		return usage("mkdir [-p] DIRECTORY...")
	}
	parents := cmd.Bool("p")
	var errs []string
	exit := 0
	for _, arg := range cmd.Args {
		if err := env.FS.CreateDirectory(env.resolve(arg), parents); err != nil {
			errs = append(errs, fmt.Sprintf("mkdir: %s: %s", arg, messageFor(err)))
			exit = 1
		}
	}
	return Result{Stderr: errs, ExitCode: exit}
}

func cmdRmdir(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) == 0 {
		return usage("rmdir DIRECTORY...")
	}
	var errs []string
	exit := 0
	for _, arg := range cmd.Args {
		resolved := env.resolve(arg)
		entry, err := env.FS.Stat(resolved)
		if err == nil && !entry.IsDir {
			err = vfs.ErrNotADirectory
		}
		if err == nil {
			err = env.FS.Remove(resolved, false, false)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("rmdir: %s: %s", arg, messageFor(err)))
			exit = 1
		}
	}
	return Result{Stderr: errs, ExitCode: exit}
}

func cmdRm(env *Env, cmd cmdline.Command) Result {
	recursive := cmd.Bool("r", "R")
	force := cmd.Bool("f")
	if len(cmd.Args) == 0 {
		if force {
			return Result{}
		}
		return usage("rm [-rf] FILE...")
	}
	var errs []string
	exit := 0
	for _, arg := range cmd.Args {
		resolved := env.resolve(arg)
		entry, err := env.FS.Stat(resolved)
		if err != nil {
			if force && errors.Is(err, vfs.ErrNoSuchEntry) {
				continue
			}
			errs = append(errs, fmt.Sprintf("rm: %s: %s", arg, messageFor(err)))
			exit = 1
			continue
		}
		if entry.IsDir && !recursive {
			errs = append(errs, fmt.Sprintf("rm: %s: %s", arg, vfs.ErrIsADirectory))
			exit = 1
			continue
		}
		if err := env.FS.Remove(resolved, recursive, force); err != nil {
			errs = append(errs, fmt.Sprintf("rm: %s: %s", arg, messageFor(err)))
			exit = 1
		}
	}
	return Result{Stderr: errs, ExitCode: exit}
}

func cmdCp(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 2 {
		return usage("cp [-r] SOURCE DEST")
	}
	recursive := cmd.Bool("r", "R")
	if err := env.FS.Copy(env.resolve(cmd.Args[0]), env.resolve(cmd.Args[1]), recursive); err != nil {
		return cmdError("cp", err)
	}
	return Result{}
}

func cmdMv(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 2 {
		return usage("mv SOURCE DEST")
	}
	if err := env.FS.Move(env.resolve(cmd.Args[0]), env.resolve(cmd.Args[1])); err != nil {
		return cmdError("mv", err)
	}
	return Result{}
}

func cmdTouch(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) == 0 {
		return usage("touch FILE...")
	}
	var errs []string
	exit := 0
	for _, arg := range cmd.Args {
		if err := env.FS.Touch(env.resolve(arg)); err != nil {
			errs = append(errs, fmt.Sprintf("touch: %s: %s", arg, messageFor(err)))
			exit = 1
		}
	}
	return Result{Stderr: errs, ExitCode: exit}
}
