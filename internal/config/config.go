// Package config provides configuration structures and loading for erdsql.
package config

// Config represents the complete application configuration.
type Config struct {
	Notation  string          `yaml:"notation" mapstructure:"notation"` // uml, chen, crows-foot, chen-simple
	Synthesis SynthesisConfig `yaml:"synthesis" mapstructure:"synthesis"`
	Compare   CompareConfig   `yaml:"compare" mapstructure:"compare"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// SynthesisConfig controls how diagrams are compiled into DDL.
type SynthesisConfig struct {
	ColumnType   string `yaml:"column_type" mapstructure:"column_type"`     // datatype emitted for every column
	EmitComments bool   `yaml:"emit_comments" mapstructure:"emit_comments"` // provenance "--" lines
}

// CompareConfig controls the schema equivalence checker.
type CompareConfig struct {
	CaseSensitive     bool `yaml:"case_sensitive" mapstructure:"case_sensitive"`
	StrictConstraints bool `yaml:"strict_constraints" mapstructure:"strict_constraints"`
	SuggestDistance   int  `yaml:"suggest_distance" mapstructure:"suggest_distance"` // 0 disables table name suggestions
}

// DatabaseConfig represents the live database read by "erdsql dump".
type DatabaseConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // mysql or postgres
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
	Schema             string `yaml:"schema" mapstructure:"schema"` // postgres only
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Notation: "uml",
		Synthesis: SynthesisConfig{
			ColumnType:   "VARCHAR(255)",
			EmitComments: true,
		},
		Compare: CompareConfig{
			CaseSensitive:     false,
			StrictConstraints: false,
			SuggestDistance:   3,
		},
		Database: DatabaseConfig{
			Driver:             "mysql",
			Schema:             "public",
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     4,
			MaxIdleConnections: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-empty values are applied.
func (c *Config) ApplyOverrides(notation, logLevel, logFormat string) {
	if notation != "" {
		c.Notation = notation
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
}
