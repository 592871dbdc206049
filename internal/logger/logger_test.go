package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dbsmedya/erdsql/internal/config"
	"github.com/dbsmedya/erdsql/internal/diag"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string // String representation of zapcore.Level
	}{
		{"debug", "debug"},
		{"info", "info"},
		{"", "info"}, // empty defaults to info
		{"warn", "warn"},
		{"error", "error"},
		{"unknown", "info"}, // unknown defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level := parseLevel(tt.input)
			if level.String() != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, level.String(), tt.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.LoggingConfig
	}{
		{"json format info level", &config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"text format debug level", &config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{"file output", &config.LoggingConfig{Level: "warn", Format: "json", Output: filepath.Join(t.TempDir(), "erdsql.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if logger == nil {
				t.Fatal("New() returned nil logger without error")
			}
			_ = logger.Sync()
		})
	}
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	if logger == nil {
		t.Fatal("NewDefault() returned nil")
	}

	// Should be able to log without panic
	logger.Info("test message")
	_ = logger.Sync()
}

func TestNewNop(t *testing.T) {
	logger := NewNop()
	logger.WithTable("student").Warn("discarded")
	_ = logger.Sync()
}

func TestContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	chained := logger.WithDiagram("school.drawio").WithTable("student").WithFields(map[string]interface{}{"columns": 3})
	if chained == logger {
		t.Error("context methods should return a new logger instance")
	}
	chained.Info("table emitted")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["diagram"] != "school.drawio" {
		t.Errorf("expected diagram field, got %v", fields)
	}
	if fields["table"] != "student" {
		t.Errorf("expected table field, got %v", fields)
	}
	if fields["columns"] != int64(3) {
		t.Errorf("expected columns field, got %v", fields["columns"])
	}
}

func TestDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	var list diag.List
	list.Add(diag.StructuralAnomaly, "r1", "identifying relationship between two strong entities")
	list.Add(diag.MalformedDiagram, "e9", "edge has no target")
	logger.Diagnostics(list)

	entries := logs.FilterLevelExact(zapcore.WarnLevel).All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(entries))
	}
	if entries[1].ContextMap()["kind"] != string(diag.MalformedDiagram) {
		t.Errorf("unexpected kind field: %v", entries[1].ContextMap())
	}
}

func TestBuildEncoder(t *testing.T) {
	if buildEncoder("json") == nil {
		t.Error("buildEncoder('json') returned nil")
	}
	if buildEncoder("text") == nil {
		t.Error("buildEncoder('text') returned nil")
	}
	if buildEncoder("unknown") == nil {
		t.Error("buildEncoder('unknown') returned nil")
	}
}

func TestBuildWriters(t *testing.T) {
	for _, out := range []string{"stdout", "stderr", ""} {
		if buildWriters(out) == nil {
			t.Errorf("buildWriters(%q) returned nil", out)
		}
	}

	if buildWriters(filepath.Join(t.TempDir(), "out.log")) == nil {
		t.Error("buildWriters(file) returned nil")
	}
}

func TestLoggingOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logger-test.json")

	cfg := &config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: path,
	}

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	logger.Info("test info message")
	logger.Debug("filtered debug message")
	logger.WithDiagram("test.drawio").Info("message with diagram context")
	_ = logger.Sync()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	contentStr := string(content)
	if !strings.Contains(contentStr, "test info message") {
		t.Error("Log file should contain 'test info message'")
	}
	if strings.Contains(contentStr, "filtered debug message") {
		t.Error("Debug message should be filtered at info level")
	}
	if !strings.Contains(contentStr, "test.drawio") {
		t.Error("Log file should contain diagram context")
	}
}
