package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")

	if _, err := os.Stat(filepath.Join(logDir, "architect.log")); err != nil {
		t.Errorf("expected log file to exist: %v", err)
	}
}

func TestInitWithLogDir(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "elsewhere")

	if err := Init(Config{ConfigDir: "/nonexistent/should/not/be/used", LogDir: logDir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := os.Stat(logDir); err != nil {
		t.Errorf("LogDir was not created: %v", err)
	}
}

func TestNamedWithoutInit(t *testing.T) {
	Logger = nil

	l := Named("journal")
	if l == nil {
		t.Fatal("Named() returned nil")
	}
	// Must not panic
	l.Info("discarded")
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
