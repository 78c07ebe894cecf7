package fabrik

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-variable surface of the library. It only affects
// conveniences layered on top of the core: definition loading and logging.
type Config struct {
	// DefinitionPaths lists files or directories the HCL loader reads factory
	// and sequence definitions from.
	DefinitionPaths []string `env:"FABRIK_DEFINITIONS" envSeparator:":"`
	// SequenceStart is the initial counter value for sequences declared
	// without their own start.
	SequenceStart int64 `env:"FABRIK_SEQUENCE_START" envDefault:"1"`
	// LogLevel sets the slog level for the library's own logging: debug,
	// info, warn or error.
	LogLevel string `env:"FABRIK_LOG_LEVEL" envDefault:"warn"`
}

// DefaultConfig returns the configuration used when no environment variables
// are set.
func DefaultConfig() Config {
	return Config{SequenceStart: DefaultSequenceStart, LogLevel: "warn"}
}

// LoadConfigFromEnv parses Config from FABRIK_* environment variables.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("fabrik: parse env: %w", err)
	}
	return cfg, nil
}

// SlogLevel translates LogLevel into a slog.Level, defaulting to warn for
// unknown values.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
