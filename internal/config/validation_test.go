package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidDefaultConfig(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("expected defaults to validate, got: %v", err)
	}
}

func TestInvalidNotation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Notation = "barker"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for unknown notation")
	}
	if !strings.Contains(err.Error(), "notation") {
		t.Errorf("expected error to mention 'notation', got: %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Synthesis.ColumnType = "  "
	cfg.Compare.SuggestDistance = -1
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(verrs), verrs)
	}

	for _, field := range []string{"synthesis.column_type", "compare.suggest_distance", "logging.level", "logging.format"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %q, got: %v", field, err)
		}
	}
}

func TestValidateDatabase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database = DatabaseConfig{
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Database: "school",
	}
	if err := cfg.ValidateDatabase(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}

	cfg.Database.Host = ""
	cfg.Database.Port = 99999
	cfg.Database.TLS = "sometimes"
	cfg.Database.MaxConnections = -1
	cfg.Database.Driver = "oracle"

	err := cfg.ValidateDatabase()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, field := range []string{"database.driver", "database.host", "database.port", "database.tls", "database.max_connections"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %q, got: %v", field, err)
		}
	}
}

func TestValidateIgnoresDatabase(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Host = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("database settings should not be required, got: %v", err)
	}
}

func TestValidationErrorsFormat(t *testing.T) {
	errs := ValidationErrors{
		{Field: "notation", Message: "unknown"},
		{Field: "logging.level", Message: "bad"},
	}
	expected := "validation failed:\n  - notation: unknown\n  - logging.level: bad"
	if errs.Error() != expected {
		t.Errorf("unexpected format:\n%s", errs.Error())
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("expected empty string for no errors")
	}
}
