package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shellquest/internal/content"
	"shellquest/internal/logging"
	"shellquest/internal/progress"
)

var (
	// Global flags
	verbose       bool
	logFile       string
	adventurePath string
	storeKind     string
	dataPath      string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shellquest",
	Short: "shellquest - learn the command line inside a simulated machine",
	Long: `shellquest drops you into a sandboxed shell on a virtual machine.

Adventures are YAML files that describe the machine: its filesystem, the
hosts it can reach, and a series of missions checked against the commands
you run. Nothing touches the real system; every file, host, and packet is
simulated.

Run "shellquest play" to start the built-in adventure.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// The interactive screen stays clean unless a log file is given.
		if cmd.Name() == "play" && logFile == "" {
			logger = zap.NewNop()
			return nil
		}

		var err error
		logger, err = logging.New(logging.Options{Verbose: verbose, LogFile: logFile})
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVarP(&adventurePath, "adventure", "a", "", "Adventure file (default: the built-in adventure)")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "json", "Progress store backend: json, sqlite, or memory")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Progress store path (default: .shellquest/progress.json or .db)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(progressCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadAdventure returns the adventure named by --adventure, or the
// built-in one.
func loadAdventure() (*content.Adventure, error) {
	if adventurePath == "" {
		return content.Default()
	}
	return content.Load(adventurePath)
}

// openStore builds the progress store selected by --store and --data.
func openStore() (progress.Store, error) {
	switch storeKind {
	case "memory":
		return progress.NewMemoryStore(), nil
	case "json":
		path := dataPath
		if path == "" {
			path = filepath.Join(".shellquest", "progress.json")
		}
		return progress.NewFileStore(path, logger)
	case "sqlite":
		path := dataPath
		if path == "" {
			path = filepath.Join(".shellquest", "progress.db")
		}
		return progress.NewSQLiteStore(path, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want json, sqlite, or memory)", storeKind)
	}
}
