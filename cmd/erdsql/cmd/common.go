package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dbsmedya/erdsql/internal/cardinality"
	"github.com/dbsmedya/erdsql/internal/compare"
	"github.com/dbsmedya/erdsql/internal/config"
	"github.com/dbsmedya/erdsql/internal/diagram"
	"github.com/dbsmedya/erdsql/internal/logger"
	"github.com/dbsmedya/erdsql/internal/report"
	"github.com/dbsmedya/erdsql/internal/synth"
)

// ErrNotEquivalent makes the process exit non-zero when a comparison fails.
var ErrNotEquivalent = errors.New("schemas are not equivalent")

// ErrFindings makes the process exit non-zero when lint reports anomalies.
var ErrFindings = errors.New("schema has structural anomalies")

// loadConfig loads the configuration, applies flag overrides and validates
// the result.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadOrDefault(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.Notation, overrides.LogLevel, overrides.LogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger.
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

// readInput reads a file, or standard input when path is "-".
func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(inputReader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// writeOutput writes content to path, or to the output writer when path is
// empty or "-".
func writeOutput(path, content string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(outputWriter, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newPrinter() *report.Printer {
	return report.New(outputWriter, !noColor && outputWriter == io.Writer(os.Stdout))
}

func compareOptions(cfg *config.Config) compare.Options {
	return compare.Options{
		CaseSensitive:     cfg.Compare.CaseSensitive,
		StrictConstraints: cfg.Compare.StrictConstraints,
		SuggestDistance:   cfg.Compare.SuggestDistance,
	}
}

func synthOptions(cfg *config.Config) synth.Options {
	return synth.Options{
		ColumnType:   cfg.Synthesis.ColumnType,
		EmitComments: cfg.Synthesis.EmitComments,
	}
}

// synthesizeDiagram extracts and synthesizes the diagram at path. Extraction
// and synthesis diagnostics are logged as warnings.
func synthesizeDiagram(cfg *config.Config, log *logger.Logger, path string) (*synth.Result, error) {
	n, err := cardinality.ParseNotation(cfg.Notation)
	if err != nil {
		return nil, err
	}

	model, err := diagram.ExtractFile(path, n)
	if err != nil {
		return nil, err
	}

	dlog := log.WithDiagram(path)
	dlog.Diagnostics(model.Diagnostics)

	res := synth.New(synthOptions(cfg), dlog).Synthesize(model)
	dlog.Diagnostics(res.Diagnostics)
	dlog.Infow("diagram synthesized",
		"entities", len(model.Entities()),
		"relationships", model.Relationships.Len(),
		"tables", len(res.Tables()),
		"diagnostics", len(model.Diagnostics)+len(res.Diagnostics))
	return res, nil
}
