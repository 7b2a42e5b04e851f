package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/toolscript/runner"
)

func TestRun_TopLevel(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		code     int
		stdout   string
		stderrIn string
	}{
		{name: "no args", args: nil, code: exitUsage, stderrIn: "Usage:"},
		{name: "version", args: []string{"version"}, code: exitOK, stdout: "toolscript dev\n"},
		{name: "help", args: []string{"help"}, code: exitOK},
		{name: "unknown", args: []string{"frobnicate"}, code: exitUsage, stderrIn: `unknown command "frobnicate"`},
		{name: "run expression", args: []string{"run", "-e", "add(1, 2)"}, code: exitOK, stdout: "3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), tt.args, strings.NewReader(""), &stdout, &stderr)
			assert.Equal(t, tt.code, code)
			if tt.stdout != "" {
				assert.Equal(t, tt.stdout, stdout.String())
			}
			if tt.stderrIn != "" {
				assert.Contains(t, stderr.String(), tt.stderrIn)
			}
		})
	}
}

func TestRun_BadLogLevel(t *testing.T) {
	t.Setenv("TOOLSCRIPT_LOG_LEVEL", "loud")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"run", "-e", "1"}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "invalid log level")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"plain", errors.New("boom"), exitFailure},
		{"invalid name", &runner.Error{Kind: runner.KindInvalidVariableName}, exitUsage},
		{"serialization", &runner.Error{Kind: runner.KindSerialization}, exitUsage},
		{"duplicate", &runner.Error{Kind: runner.KindDuplicateBinding}, exitUsage},
		{"execution", &runner.Error{Kind: runner.KindExecution}, exitExecution},
		{"aborted", &runner.Error{Kind: runner.KindAborted}, exitExecution},
		{"unavailable", &runner.Error{Kind: runner.KindSessionUnavailable}, exitExecution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := withTimeout(context.Background(), 0)
	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
	cancel()
	require.Error(t, ctx.Err())

	ctx, cancel = withTimeout(context.Background(), time.Minute)
	defer cancel()
	deadline, hasDeadline := ctx.Deadline()
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, []string{"all"}, cfg.HostOps)
		assert.Equal(t, 1024, cfg.MaxCallStackSize)
		assert.Equal(t, 4, cfg.PoolSize)
		assert.Zero(t, cfg.Timeout)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("TOOLSCRIPT_LOG_LEVEL", "debug")
		t.Setenv("TOOLSCRIPT_HOST_OPS", "math,text")
		t.Setenv("TOOLSCRIPT_TIMEOUT", "2s")
		t.Setenv("TOOLSCRIPT_METRICS_ADDR", ":9090")
		t.Setenv("TOOLSCRIPT_MAX_OP_CALLS", "50")

		cfg, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, []string{"math", "text"}, cfg.HostOps)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.Equal(t, ":9090", cfg.MetricsAddr)
		assert.Equal(t, 50, cfg.MaxOpCalls)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Setenv("TOOLSCRIPT_POOL_SIZE", "many")
		_, err := loadConfig()
		require.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	for _, dev := range []bool{false, true} {
		logger, err := newLogger("info", dev)
		require.NoError(t, err)
		assert.NotNil(t, logger)
	}
	_, err := newLogger("loud", false)
	assert.Error(t, err)
}
