package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Notation != "uml" {
		t.Errorf("expected notation 'uml', got %s", cfg.Notation)
	}

	// Test synthesis defaults
	if cfg.Synthesis.ColumnType != "VARCHAR(255)" {
		t.Errorf("expected column_type 'VARCHAR(255)', got %s", cfg.Synthesis.ColumnType)
	}
	if !cfg.Synthesis.EmitComments {
		t.Errorf("expected emit_comments enabled by default")
	}

	// Test compare defaults
	if cfg.Compare.CaseSensitive {
		t.Errorf("expected case-insensitive comparison by default")
	}
	if cfg.Compare.SuggestDistance != 3 {
		t.Errorf("expected suggest_distance 3, got %d", cfg.Compare.SuggestDistance)
	}

	// Test database defaults
	if cfg.Database.Port != 3306 {
		t.Errorf("expected database port 3306, got %d", cfg.Database.Port)
	}
	if cfg.Database.TLS != "preferred" {
		t.Errorf("expected database TLS 'preferred', got %s", cfg.Database.TLS)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("expected database driver 'mysql', got %s", cfg.Database.Driver)
	}
	if cfg.Database.Schema != "public" {
		t.Errorf("expected database schema 'public', got %s", cfg.Database.Schema)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Output != "stderr" {
		t.Errorf("expected logging output 'stderr', got %s", cfg.Logging.Output)
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ApplyOverrides("crows-foot", "debug", "")

	if cfg.Notation != "crows-foot" {
		t.Errorf("expected notation override, got %s", cfg.Notation)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level override, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("empty override should keep format, got %s", cfg.Logging.Format)
	}
}
