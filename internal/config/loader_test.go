package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "erdsql.yaml")

	configContent := `
notation: crows-foot

synthesis:
  column_type: TEXT
  emit_comments: false

compare:
  case_sensitive: true
  strict_constraints: true
  suggest_distance: 2

database:
  host: localhost
  port: 3307
  user: reader
  password: secret
  database: school

logging:
  level: debug
  format: json
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Notation != "crows-foot" {
		t.Errorf("expected notation 'crows-foot', got %s", cfg.Notation)
	}
	if cfg.Synthesis.ColumnType != "TEXT" {
		t.Errorf("expected column_type 'TEXT', got %s", cfg.Synthesis.ColumnType)
	}
	if cfg.Synthesis.EmitComments {
		t.Errorf("expected emit_comments disabled")
	}
	if !cfg.Compare.CaseSensitive || !cfg.Compare.StrictConstraints {
		t.Errorf("expected compare flags enabled, got %+v", cfg.Compare)
	}
	if cfg.Compare.SuggestDistance != 2 {
		t.Errorf("expected suggest_distance 2, got %d", cfg.Compare.SuggestDistance)
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("expected database port 3307, got %d", cfg.Database.Port)
	}
	if cfg.Database.TLS != "preferred" {
		t.Errorf("expected default TLS to survive partial config, got %s", cfg.Database.TLS)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected logging format 'json', got %s", cfg.Logging.Format)
	}
}

func TestLoadWithEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "env-host")
	t.Setenv("TEST_DB_PASS", "env-pass")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "env.yaml")

	configContent := `
database:
  host: ${TEST_DB_HOST}
  user: reader
  password: $TEST_DB_PASS
  database: ${UNSET_VARIABLE_FOR_TEST}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Host != "env-host" {
		t.Errorf("expected host 'env-host', got %s", cfg.Database.Host)
	}
	if cfg.Database.Password != "env-pass" {
		t.Errorf("expected password 'env-pass', got %s", cfg.Database.Password)
	}
	if cfg.Database.Database != "${UNSET_VARIABLE_FOR_TEST}" {
		t.Errorf("expected unresolved variable to be kept, got %s", cfg.Database.Database)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ERDSQL_NOTATION", "chen")
	t.Setenv("ERDSQL_COMPARE_CASE_SENSITIVE", "true")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "erdsql.yaml")
	if err := os.WriteFile(configPath, []byte("notation: uml\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Notation != "chen" {
		t.Errorf("expected environment to override notation, got %s", cfg.Notation)
	}
	if !cfg.Compare.CaseSensitive {
		t.Errorf("expected environment to enable case_sensitive")
	}
}

func TestLoadOrDefault_NoFile(t *testing.T) {
	chdirForTest(t, t.TempDir())

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("expected defaults without a config file, got %v", err)
	}
	if cfg.Synthesis.ColumnType != "VARCHAR(255)" {
		t.Errorf("expected default column type, got %s", cfg.Synthesis.ColumnType)
	}
}

func TestLoadOrDefault_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	if err := os.WriteFile(filepath.Join(dir, DefaultFile), []byte("notation: chen-simple\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Notation != "chen-simple" {
		t.Errorf("expected notation from %s, got %s", DefaultFile, cfg.Notation)
	}
}

func TestLoadEnvFile(t *testing.T) {
	// Register cleanup for both variables, then clear them so the file wins.
	t.Setenv("ERDSQL_DATABASE_HOST", "")
	t.Setenv("ERDSQL_DATABASE_USER", "shell-user")
	os.Unsetenv("ERDSQL_DATABASE_HOST")

	envPath := filepath.Join(t.TempDir(), ".env")
	content := "ERDSQL_DATABASE_HOST=dotenv-host\nERDSQL_DATABASE_USER=dotenv-user\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	if err := LoadEnvFile(envPath); err != nil {
		t.Fatalf("failed to load env file: %v", err)
	}

	cfg, err := LoadFromViper(newViper())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Database.Host != "dotenv-host" {
		t.Errorf("expected host from env file, got %s", cfg.Database.Host)
	}
	if cfg.Database.User != "shell-user" {
		t.Errorf("expected existing environment to win, got %s", cfg.Database.User)
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("expected missing env file to be ignored, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/erdsql.yaml")
	if err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")
	if err := os.WriteFile(configPath, []byte("notation: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestExpandEnvVar(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "test_value"},
		{"$TEST_VAR", "test_value"},
		{"prefix_${TEST_VAR}_suffix", "prefix_test_value_suffix"},
		{"${NONEXISTENT_VAR_FOR_TEST}", "${NONEXISTENT_VAR_FOR_TEST}"},
		{"no_vars_here", "no_vars_here"},
		{"", ""},
	}

	for _, tt := range tests {
		result := expandEnvVar(tt.input)
		if result != tt.expected {
			t.Errorf("expandEnvVar(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

// chdirForTest changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("failed to restore working directory: %v", err)
		}
	})
}
