package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pattyshack/gull/operands"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		ext      string
		content  string
		expected *Config
	}{
		{
			"yaml",
			".yaml",
			"solver:\n  fuel: 32\n  strict: true\nlog:\n  level: debug\n",
			&Config{
				Solver: SolverConfig{Fuel: 32, Strict: true},
				Log:    LogConfig{Level: "debug"},
			},
		},
		{
			"partial yaml",
			".yml",
			"log:\n  development: true\n",
			&Config{
				Solver: SolverConfig{Fuel: operands.DefaultFuel},
				Log:    LogConfig{Level: "info", Development: true},
			},
		},
		{
			"empty yaml",
			".yaml",
			"",
			Default(),
		},
		{
			"toml",
			".toml",
			"[solver]\nfuel = 128\n\n[log]\nlevel = \"warn\"\n",
			&Config{
				Solver: SolverConfig{Fuel: 128},
				Log:    LogConfig{Level: "warn"},
			},
		},
		{
			"upper case extension",
			".TOML",
			"[solver]\nstrict = true\n",
			&Config{
				Solver: SolverConfig{Fuel: operands.DefaultFuel, Strict: true},
				Log:    LogConfig{Level: "info"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config, err := Parse(test.ext, []byte(test.content))
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}

			if diff := cmp.Diff(test.expected, config); diff != "" {
				t.Errorf("unexpected config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		content string
		invalid bool
	}{
		{"unknown yaml field", ".yaml", "solver:\n  gas: 1\n", false},
		{"unknown toml field", ".toml", "[solver]\ngas = 1\n", false},
		{"malformed toml", ".toml", "[solver\n", false},
		{"zero fuel", ".yaml", "solver:\n  fuel: 0\n", true},
		{"negative fuel", ".toml", "[solver]\nfuel = -3\n", true},
		{"bad level", ".yaml", "log:\n  level: loud\n", true},
		{"bad extension", ".json", "{}", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse(test.ext, []byte(test.content))
			if err == nil {
				t.Fatalf("expected error")
			}

			if test.invalid != errors.Is(err, ErrInvalidConfig) {
				t.Errorf("unexpected error: %s", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gull.toml")
	err := os.WriteFile(path, []byte("[solver]\nfuel = 16\n"), 0o644)
	if err != nil {
		t.Fatalf("failed to write config: %s", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if config.Solver.Fuel != 16 {
		t.Errorf("unexpected fuel: %d", config.Solver.Fuel)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected missing file error, found %v", err)
	}
}

func TestSolverOptions(t *testing.T) {
	logger := zap.NewNop()
	options := SolverConfig{Fuel: 7, Strict: true}.Options(logger)

	if options.Fuel != 7 || !options.Strict || options.AllowUnordered {
		t.Errorf("unexpected options: %+v", options)
	}
	if options.Logger != logger {
		t.Errorf("logger not propagated")
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := LogConfig{Level: "warn"}.NewLogger()
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if logger.Core().Enabled(zapcore.InfoLevel) ||
		!logger.Core().Enabled(zapcore.WarnLevel) {
		t.Errorf("unexpected logger level")
	}

	_, err = LogConfig{Level: "chatty"}.NewLogger()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected invalid config, found %v", err)
	}
}
