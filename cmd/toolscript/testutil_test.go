package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// testCLI is a cli with captured output.
type testCLI struct {
	*cli
	out *bytes.Buffer
	err *bytes.Buffer
}

func newTestCLI(t *testing.T, stdin string) *testCLI {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &testCLI{
		cli: &cli{
			cfg: Config{
				LogLevel:         "warn",
				HostOps:          []string{"all"},
				MaxCallStackSize: 1024,
				PoolSize:         2,
			},
			logger: zap.NewNop(),
			stdin:  strings.NewReader(stdin),
			stdout: out,
			stderr: errOut,
		},
		out: out,
		err: errOut,
	}
}

func (tc *testCLI) run(args ...string) int {
	return tc.runCmd(context.Background(), args)
}
