package shell

import (
	"fmt"

	"shellquest/internal/cmdline"
)

func netCommands() []*builtin {
	return []*builtin{
		{
			Name:    "ping",
			Usage:   "ping [-c COUNT] HOST",
			Summary: "send simulated echo requests",
			Spec:    cmdline.Spec{Named: []string{"c"}},
			Run:     cmdPing,
		},
		{
			Name:    "dig",
			Usage:   "dig HOST",
			Summary: "look up a host record",
			Spec:    cmdline.Spec{},
			Run:     cmdDig,
		},
		{
			Name:    "nslookup",
			Usage:   "nslookup HOST",
			Summary: "query the simulated resolver",
			Spec:    cmdline.Spec{},
			Run:     cmdNslookup,
		},
		{
			Name:    "ifconfig",
			Usage:   "ifconfig",
			Summary: "show network interfaces",
			Spec:    cmdline.Spec{},
			Run:     cmdIfconfig,
		},
		{
			Name:    "netstat",
			Usage:   "netstat",
			Summary: "show simulated connections",
			Spec:    cmdline.Spec{},
			Run:     cmdNetstat,
		},
		{
			Name:    "ip",
			Usage:   "ip addr",
			Summary: "show interface addresses",
			Spec:    cmdline.Spec{},
			Run:     cmdIP,
		},
		{
			Name:    "curl",
			Usage:   "curl URL",
			Summary: "fetch a page and print its body",
			Spec:    cmdline.Spec{},
			Run:     cmdCurl,
		},
		{
			Name:    "wget",
			Usage:   "wget URL",
			Summary: "download a page into the working directory",
			Spec:    cmdline.Spec{},
			Run:     cmdWget,
		},
		{
			Name:    "ssh",
			Usage:   "ssh [USER@]HOST",
			Summary: "open a simulated remote session",
			Spec:    cmdline.Spec{},
			Run:     cmdSSH,
		},
		{
			Name:    "scp",
			Usage:   "scp SOURCE DEST",
			Summary: "copy files to or from a remote host",
			Spec:    cmdline.Spec{},
			Run:     cmdSCP,
		},
	}
}

func cmdPing(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 1 {
		return usage("ping [-c COUNT] HOST")
	}
	count, err := cmd.Int("c", 4)
	if err != nil {
		return Result{
			Stderr:   []string{fmt.Sprintf("ping: %s", err)},
			ExitCode: 2,
		}
	}
	if count < 1 {
		count = 1
	}
	lines, err := env.Net.Ping(cmd.Args[0], count)
	if err != nil {
		return cmdError("ping", err)
	}
	return resultLines(lines)
}

func cmdDig(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 1 {
		return usage("dig HOST")
	}
	return resultLines(env.Net.Dig(cmd.Args[0]))
}

func cmdNslookup(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 1 {
		return usage("nslookup HOST")
	}
	lines, err := env.Net.Nslookup(cmd.Args[0])
	if err != nil {
		return Result{Stdout: lines, ExitCode: 1}
	}
	return resultLines(lines)
}

func cmdIfconfig(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 0 {
		return usage("ifconfig")
	}
	return resultLines(env.Net.Ifconfig())
}

func cmdNetstat(env *Env, cmd cmdline.Command) Result {
	return resultLines(env.Net.Netstat())
}

func cmdIP(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 1 {
		return usage("ip addr")
	}
	switch cmd.Args[0] {
	case "a", "addr", "address":
		return resultLines(env.Net.IPAddr())
	default:
		return Result{
			Stderr:   []string{fmt.Sprintf("ip: unknown object %q", cmd.Args[0])},
			ExitCode: 2,
		}
	}
}

func cmdCurl(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 1 {
		return usage("curl URL")
	}
	page, err := env.Net.Fetch(cmd.Args[0])
	if err != nil {
		return cmdError("curl", err)
	}
	return resultLines(splitLines(page.Body))
}

func cmdWget(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 1 {
		return usage("wget URL")
	}
	lines, err := env.Net.Download(env.FS, env.CWD, cmd.Args[0])
	if err != nil {
		return cmdError("wget", err)
	}
	return resultLines(lines)
}

func cmdSSH(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) == 0 {
		return usage("ssh [USER@]HOST")
	}
	lines, err := env.Net.SSH(cmd.Args[0])
	if err != nil {
		return cmdError("ssh", err)
	}
	return resultLines(lines)
}

func cmdSCP(env *Env, cmd cmdline.Command) Result {
	if len(cmd.Args) != 2 {
		return usage("scp SOURCE DEST")
	}
	lines, err := env.Net.SCP(env.FS, env.CWD, cmd.Args[0], cmd.Args[1])
	if err != nil {
		return cmdError("scp", err)
	}
	return resultLines(lines)
}
