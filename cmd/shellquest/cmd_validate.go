package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shellquest/internal/content"
)

// validateCmd checks an adventure file
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check an adventure file without playing it",
	Long: `Parses the adventure, validates it, and compiles everything a session
would: the starting filesystem, the pinned hosts, and every task check.
Problems an author would otherwise hit mid-game surface here.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	source := adventurePath
	if len(args) == 1 {
		source = args[0]
	}

	var (
		adv *content.Adventure
		err error
	)
	if source == "" {
		source = "built-in adventure"
		adv, err = content.Default()
	} else {
		adv, err = content.Load(source)
	}
	if err != nil {
		return err
	}

	if err := adv.Validate(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	if _, err := adv.BuildFS(); err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	plan, err := adv.Plan()
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	tasks := 0
	for _, m := range plan.Missions {
		tasks += len(m.Tasks)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok\n", source)
	fmt.Fprintf(out, "  id:       %s\n", adv.ID)
	if adv.Title != "" {
		fmt.Fprintf(out, "  title:    %s\n", adv.Title)
	}
	fmt.Fprintf(out, "  login:    %s@%s\n", adv.Username(), adv.Hostname())
	fmt.Fprintf(out, "  missions: %d\n", len(plan.Missions))
	fmt.Fprintf(out, "  tasks:    %d\n", tasks)
	fmt.Fprintf(out, "  files:    %d\n", len(adv.Filesystem))
	fmt.Fprintf(out, "  hosts:    %d\n", len(adv.Hosts))
	return nil
}
