package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"shellquest/internal/content"
	"shellquest/internal/mission"
	"shellquest/internal/progress"
	"shellquest/internal/session"
	"shellquest/internal/shell"
	"shellquest/internal/watch"
)

var watchAdventure bool

// playCmd runs the interactive shell
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start an interactive adventure session",
	Long: `Starts the adventure in an interactive shell. Progress is saved after
every completed task, so quitting and coming back resumes where you
left off. Type "help" inside the session to list the available
commands, and "exit" to log out.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&watchAdventure, "watch", false, "Rebuild the session when the adventure file changes on disk")
}

func runPlay(cmd *cobra.Command, args []string) error {
	if watchAdventure && adventurePath == "" {
		return fmt.Errorf("--watch needs --adventure pointing at a file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	adv, err := loadAdventure()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := session.New(ctx, session.Config{Adventure: adv, Store: store, Logger: logger})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var changes <-chan struct{}
	g, ctx := errgroup.WithContext(ctx)
	defer func() {
		cancel()
		_ = g.Wait()
	}()
	if watchAdventure {
		w, err := watch.New(adventurePath, logger)
		if err != nil {
			return err
		}
		defer w.Close()
		changes = w.Changes()
		g.Go(func() error { return w.Run(ctx) })
	}

	printWelcome(out, adv, sess)

	// Reading stdin in a goroutine lets the loop react to signals and
	// adventure reloads while the player is idle at the prompt.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		readErr <- sc.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(out, sess.Prompt())

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil

		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			fmt.Fprintln(out)
			sess = reloadSession(ctx, sess, store, out, errOut)

		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(out, "logout")
				return <-readErr
			}
			for _, step := range sess.Turn(ctx, line) {
				if closed := printStep(out, errOut, sess, step); closed {
					return nil
				}
			}
		}
	}
}

// printStep renders one executed command and reports whether the player
// logged out.
func printStep(out, errOut io.Writer, sess *session.Session, step session.Step) bool {
	for _, line := range step.Result.Stdout {
		fmt.Fprintln(out, line)
	}
	for _, line := range step.Result.Stderr {
		fmt.Fprintln(errOut, line)
	}

	if eff := step.Result.Effect; eff != nil {
		switch eff.Kind {
		case shell.EffectClearScreen:
			fmt.Fprint(out, "\x1b[2J\x1b[H")
		case shell.EffectSessionClosed:
			fmt.Fprintln(out, "logout")
			return true
		}
	}

	announce(out, sess, step.Outcome)
	return false
}

func announce(out io.Writer, sess *session.Session, outcome mission.Outcome) {
	switch outcome {
	case mission.TaskCompleted:
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Task complete.")
		printTask(out, sess)
	case mission.MissionCompleted:
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Mission complete.")
		fmt.Fprintln(out)
		printMission(out, sess)
	case mission.AllCompleted:
		fmt.Fprintln(out)
		fmt.Fprintln(out, "All missions complete. Nice work.")
	}
}

func printWelcome(out io.Writer, adv *content.Adventure, sess *session.Session) {
	fmt.Fprintf(out, "Connected to %s as %s.\n", adv.Hostname(), adv.Username())
	if adv.Title != "" {
		fmt.Fprintf(out, "Adventure: %s\n", adv.Title)
	}
	fmt.Fprintln(out)
	if sess.Done() {
		fmt.Fprintln(out, "All missions already complete. Poke around, or start over with \"shellquest progress reset\".")
		return
	}
	printMission(out, sess)
}

func printMission(out io.Writer, sess *session.Session) {
	m, ok := sess.CurrentMission()
	if !ok {
		return
	}
	fmt.Fprintf(out, "== %s ==\n", m.Title)
	for _, line := range m.Briefing {
		fmt.Fprintln(out, line)
	}
	printTask(out, sess)
}

func printTask(out io.Writer, sess *session.Session) {
	task, ok := sess.CurrentTask()
	if !ok {
		return
	}
	fmt.Fprintf(out, "-> %s\n", task.Prompt)
}

// reloadSession rebuilds the session from the adventure file, keeping
// the old one when the new file does not load. Progress carries over
// through the shared store.
func reloadSession(ctx context.Context, prev *session.Session, store progress.Store, out, errOut io.Writer) *session.Session {
	adv, err := loadAdventure()
	if err != nil {
		fmt.Fprintf(errOut, "reload skipped: %v\n", err)
		return prev
	}
	next, err := session.New(ctx, session.Config{Adventure: adv, Store: store, Logger: logger})
	if err != nil {
		fmt.Fprintf(errOut, "reload skipped: %v\n", err)
		return prev
	}
	fmt.Fprintf(out, "%s changed, session rebuilt\n", adventurePath)
	printMission(out, next)
	return next
}
