package shell

import (
	"fmt"
	"strconv"

	"shellquest/internal/cmdline"
)

func miscCommands(d *Dispatcher) []*builtin {
	return []*builtin{
		{
			Name:    "help",
			Usage:   "help [COMMAND]",
			Summary: "list available commands",
			Spec:    cmdline.Spec{},
			Run: func(env *Env, cmd cmdline.Command) Result {
				return cmdHelp(d, cmd)
			},
		},
		{
			Name:    "history",
			Usage:   "history",
			Summary: "print the command history",
			Spec:    cmdline.Spec{},
			Run:     cmdHistory,
		},
		{
			Name:    "whoami",
			Usage:   "whoami",
			Summary: "print the current user",
			Spec:    cmdline.Spec{},
			Run:     cmdWhoami,
		},
		{
			Name:    "hostname",
			Usage:   "hostname",
			Summary: "print the host name",
			Spec:    cmdline.Spec{},
			Run:     cmdHostname,
		},
		{
			Name:    "clear",
			Usage:   "clear",
			Summary: "clear the terminal",
			Spec:    cmdline.Spec{},
			Run:     cmdClear,
		},
		{
			Name:    "exit",
			Usage:   "exit [CODE]",
			Summary: "end the session",
			Spec:    cmdline.Spec{},
			Run:     cmdExit,
		},
	}
}

func cmdHelp(d *Dispatcher, cmd cmdline.Command) Result {
	if len(cmd.Args) > 1 {
		return usage("help [COMMAND]")
	}
	if len(cmd.Args) == 1 {
		b, ok := d.table[cmd.Args[0]]
		if !ok {
			return Result{
				Stderr:   []string{fmt.Sprintf("help: no such command: %s", cmd.Args[0])},
				ExitCode: 1,
			}
		}
		return resultLines([]string{"usage: " + b.Usage, b.Summary})
	}
	out := make([]string, 0, len(d.names))
	for _, name := range d.names {
		out = append(out, fmt.Sprintf("%-10s %s", name, d.table[name].Summary))
	}
	return resultLines(out)
}

func cmdHistory(env *Env, cmd cmdline.Command) Result {
	out := make([]string, 0, len(env.History))
	for i, line := range env.History {
		out = append(out, fmt.Sprintf("%5d  %s", i+1, line))
	}
	return resultLines(out)
}

func cmdWhoami(env *Env, cmd cmdline.Command) Result {
	return resultLines([]string{env.User})
}

func cmdHostname(env *Env, cmd cmdline.Command) Result {
	return resultLines([]string{env.Host})
}

func cmdClear(env *Env, cmd cmdline.Command) Result {
	return Result{Effect: &Effect{Kind: EffectClearScreen}}
}

func cmdExit(env *Env, cmd cmdline.Command) Result {
	code := 0
	if len(cmd.Args) > 0 {
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			return Result{
				Stderr:   []string{fmt.Sprintf("exit: %s: numeric argument required", cmd.Args[0])},
				ExitCode: 2,
			}
		}
		code = n
	}
	return Result{
		ExitCode: code,
		Effect:   &Effect{Kind: EffectSessionClosed, Code: code},
	}
}
