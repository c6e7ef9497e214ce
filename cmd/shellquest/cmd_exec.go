package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shellquest/internal/mission"
	"shellquest/internal/progress"
	"shellquest/internal/session"
	"shellquest/internal/shell"
)

var execCommands []string

// execCmd runs a scripted session
var execCmd = &cobra.Command{
	Use:   "exec [script]",
	Short: "Run commands against a fresh session without a terminal",
	Long: `Feeds commands to a new session and prints the transcript. Commands
come from repeated -c flags, from a script file argument, or from
standard input. Blank lines and lines starting with # are skipped.

Progress is kept in memory unless --store is set explicitly, so exec
runs never disturb saved play progress. The command fails when the
last executed command exits nonzero.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringArrayVarP(&execCommands, "command", "c", nil, "Command line to run (repeatable)")
}

func runExec(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	lines, err := execInput(args)
	if err != nil {
		return err
	}

	adv, err := loadAdventure()
	if err != nil {
		return err
	}

	var store progress.Store
	if cmd.Flags().Changed("store") || cmd.Flags().Changed("data") {
		store, err = openStore()
		if err != nil {
			return err
		}
	} else {
		store = progress.NewMemoryStore()
	}
	defer store.Close()

	sess, err := session.New(ctx, session.Config{Adventure: adv, Store: store, Logger: logger})
	if err != nil {
		return err
	}

	logger.Info("running script",
		zap.String("adventure", adv.ID),
		zap.Int("lines", len(lines)))

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	lastExit := 0

script:
	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fmt.Fprintf(out, "%s%s\n", sess.Prompt(), raw)
		for _, step := range sess.Turn(ctx, raw) {
			for _, l := range step.Result.Stdout {
				fmt.Fprintln(out, l)
			}
			for _, l := range step.Result.Stderr {
				fmt.Fprintln(errOut, l)
			}
			lastExit = step.Result.ExitCode

			if step.Outcome != mission.NoChange {
				fmt.Fprintf(out, "-- %s\n", step.Outcome)
			}
			if eff := step.Result.Effect; eff != nil && eff.Kind == shell.EffectSessionClosed {
				lastExit = eff.Code
				break script
			}
		}
	}

	if lastExit != 0 {
		return fmt.Errorf("exit status %d", lastExit)
	}
	return nil
}

// execInput collects command lines from -c flags, a script file, or
// standard input, in that order of precedence.
func execInput(args []string) ([]string, error) {
	if len(execCommands) > 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("cannot combine -c with a script file")
		}
		return execCommands, nil
	}

	var r io.Reader = os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return lines, nil
}
