package runner

import (
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxCallStackSize bounds script recursion when no limit is set.
const DefaultMaxCallStackSize = 1024

// Config holds the configuration shared by every runner a Builder builds.
type Config struct {
	// Logger receives one summary line per run plus engine diagnostics.
	// Defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics, if set, records run and op-call counters.
	Metrics *Metrics

	// MaxCallStackSize limits script call depth. Zero means
	// DefaultMaxCallStackSize.
	MaxCallStackSize int

	// MaxOpCalls limits host op calls per run. Calls past the limit throw
	// in the script. Zero means unlimited.
	MaxOpCalls int
}

// Validate checks field ranges.
// Returns ErrConfiguration if a field is out of range.
func (c *Config) Validate() error {
	if c.MaxCallStackSize < 0 {
		return fmt.Errorf("%w: MaxCallStackSize must not be negative", ErrConfiguration)
	}
	if c.MaxOpCalls < 0 {
		return fmt.Errorf("%w: MaxOpCalls must not be negative", ErrConfiguration)
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.MaxCallStackSize == 0 {
		c.MaxCallStackSize = DefaultMaxCallStackSize
	}
}

// Option is a functional option for configuring a Builder.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

// WithMaxCallStackSize sets the script call depth limit.
func WithMaxCallStackSize(n int) Option {
	return func(c *Config) {
		c.MaxCallStackSize = n
	}
}

// WithMaxOpCalls sets the per-run host op call limit.
func WithMaxOpCalls(n int) Option {
	return func(c *Config) {
		c.MaxOpCalls = n
	}
}
