package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix is the prefix of every environment variable read by the CLI.
const envPrefix = "TOOLSCRIPT"

// Config holds CLI configuration loaded from TOOLSCRIPT_* variables. Flags
// override these values per command.
type Config struct {
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"warn"`
	LogDev           bool          `envconfig:"LOG_DEV" default:"false"`
	HostOps          []string      `envconfig:"HOST_OPS" default:"all"`
	MaxCallStackSize int           `envconfig:"MAX_CALL_STACK" default:"1024"`
	MaxOpCalls       int           `envconfig:"MAX_OP_CALLS" default:"0"`
	Timeout          time.Duration `envconfig:"TIMEOUT" default:"0s"`
	MetricsAddr      string        `envconfig:"METRICS_ADDR"`
	PoolSize         int           `envconfig:"POOL_SIZE" default:"4"`
	HistoryFile      string        `envconfig:"HISTORY_FILE"`
}

// loadConfig reads configuration from the environment.
func loadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
