package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Window  WindowConfig  `yaml:"window" envconfig:"WINDOW"`
	Tracing TracingConfig `yaml:"tracing" envconfig:"TRACING"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the file system locations of the raw extract and
// the generated artifacts.
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR"`
	OutDir  string `yaml:"out_dir" envconfig:"OUT_DIR"`
	LogsDir string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// WindowConfig contains the default day-offset window bounds used when
// the CLI is invoked without positional arguments. MaxTime must exceed
// MinTime so the long-run window [MinTime, MaxTime) is non-empty.
type WindowConfig struct {
	MaxTime int `yaml:"max_time" envconfig:"MAX_TIME" validate:"min=1"`
	MinTime int `yaml:"min_time" envconfig:"MIN_TIME" validate:"min=0,ltfield=MaxTime"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	Environment string `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Default returns the built-in configuration used when neither the
// config file nor the environment overrides a setting.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/featuregen.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
			OutDir:  "out",
			LogsDir: "logs",
		},
		Window: WindowConfig{
			MaxTime: 3000,
			MinTime: 60,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Environment: "development",
		},
	}
}

// Load loads configuration: built-in defaults, layered with an optional
// config.yaml, layered with environment variables (prefix LOANRISK).
func Load() (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(configFilePath()); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables take precedence over the file.
	if err := envconfig.Process("LOANRISK", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks structural constraints on the configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// configFilePath returns the config file location, overridable for
// deployments that keep the file elsewhere.
func configFilePath() string {
	if p := os.Getenv("LOANRISK_CONFIG_FILE"); p != "" {
		return p
	}
	return "config.yaml"
}
