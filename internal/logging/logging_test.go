package logging

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestVerboseEnablesDebug(t *testing.T) {
	quiet, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer quiet.Sync()
	if quiet.Core().Enabled(zapcore.DebugLevel) {
		t.Error("default logger should not emit debug")
	}

	loud, err := New(Options{Verbose: true})
	if err != nil {
		t.Fatal(err)
	}
	defer loud.Sync()
	if !loud.Core().Enabled(zapcore.DebugLevel) {
		t.Error("verbose logger should emit debug")
	}
}

func TestLogFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	logger, err := New(Options{LogFile: path})
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hello")
	logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("log file is empty")
	}
}
