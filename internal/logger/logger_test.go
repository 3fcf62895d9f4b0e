package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: false, ConfigDir: configDir}); err != nil {
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

	if _, err := os.Stat(filepath.Join(logDir, "suppleflow.log")); err != nil {
		t.Errorf("expected warning to create the log file: %v", err)
	}
}

func TestInitDebugMode(t *testing.T) {
	if err := Init(Config{Debug: true, ConfigDir: t.TempDir()}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %v", Logger.GetLevel())
	}
}

func TestHelpersBeforeInit(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	// Must not panic.
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	With("component", "api").Info("discarded")
}

func TestSetOutput(t *testing.T) {
	saved := Logger
	defer func() { Logger = saved }()

	var buf bytes.Buffer
	SetOutput(&buf, log.InfoLevel)
	Debug("hidden")
	With("component", "api").Info("request served", "status", 200)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message leaked at info level: %q", out)
	}
	if !strings.Contains(out, "request served") || !strings.Contains(out, "component=api") {
		t.Errorf("unexpected log output: %q", out)
	}
}
