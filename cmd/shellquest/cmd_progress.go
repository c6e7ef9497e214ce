package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// progressCmd groups the saved-progress subcommands
var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or reset saved progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved position for the current adventure",
	Args:  cobra.NoArgs,
	RunE:  runProgressShow,
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget saved progress for the current adventure",
	Args:  cobra.NoArgs,
	RunE:  runProgressReset,
}

func init() {
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressResetCmd)
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	adv, err := loadAdventure()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, ok, err := store.Load(cmd.Context(), adv.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "no saved progress for %q\n", adv.ID)
		return nil
	}

	fmt.Fprintf(out, "adventure: %s\n", rec.AdventureID)
	switch {
	case rec.MissionIndex == len(adv.Missions) && rec.TaskIndex == 0:
		fmt.Fprintln(out, "position:  complete")
	case rec.MissionIndex >= 0 && rec.MissionIndex < len(adv.Missions):
		m := adv.Missions[rec.MissionIndex]
		fmt.Fprintf(out, "position:  mission %d/%d (%s), task %d/%d\n",
			rec.MissionIndex+1, len(adv.Missions), m.Title,
			rec.TaskIndex+1, len(m.Tasks))
	default:
		fmt.Fprintf(out, "position:  mission %d, task %d (does not fit this adventure)\n",
			rec.MissionIndex, rec.TaskIndex)
	}
	fmt.Fprintf(out, "updated:   %s\n", rec.UpdatedAt.Local().Format(time.RFC1123))
	if rec.SessionID != "" {
		fmt.Fprintf(out, "session:   %s\n", rec.SessionID)
	}
	return nil
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	adv, err := loadAdventure()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Reset(cmd.Context(), adv.ID); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "progress for %q cleared\n", adv.ID)
	return nil
}
