package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/pattyshack/gull/operands"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

type SolverConfig struct {
	// Upper bound on the number of actions a single tactic attempt may emit.
	Fuel int `yaml:"fuel" toml:"fuel"`

	// Panic when a tactic produces a solution which addresses felts outside of
	// the addressable window, instead of reporting an internal error.
	Strict bool `yaml:"strict" toml:"strict"`
}

type LogConfig struct {
	Level       string `yaml:"level" toml:"level"`
	Development bool   `yaml:"development" toml:"development"`
}

type Config struct {
	Solver SolverConfig `yaml:"solver" toml:"solver"`
	Log    LogConfig    `yaml:"log" toml:"log"`
}

func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			Fuel: operands.DefaultFuel,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Loads the config file.  The decoder is selected by the file extension
// (.yaml / .yml / .toml).  Missing fields keep their default values.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(filepath.Ext(path), content)
}

func Parse(ext string, content []byte) (*Config, error) {
	config := Default()

	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		err = decoder.Decode(config)
		if errors.Is(err, io.EOF) { // empty file
			err = nil
		}
	case ".toml":
		decoder := toml.NewDecoder(bytes.NewReader(content))
		decoder.DisallowUnknownFields()
		err = decoder.Decode(config)
	default:
		return nil, fmt.Errorf(
			"%w: unsupported config file extension (%s)",
			ErrInvalidConfig,
			ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (config *Config) Validate() error {
	if config.Solver.Fuel <= 0 {
		return fmt.Errorf(
			"%w: solver fuel must be positive (%d)",
			ErrInvalidConfig,
			config.Solver.Fuel)
	}

	_, err := zapcore.ParseLevel(config.Log.Level)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	return nil
}

func (solver SolverConfig) Options(logger *zap.Logger) operands.SolverOptions {
	options := operands.DefaultSolverOptions()
	options.Fuel = solver.Fuel
	options.Strict = solver.Strict
	options.Logger = logger
	return options
}

func (log LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(log.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	var zapConfig zap.Config
	if log.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	return zapConfig.Build()
}
