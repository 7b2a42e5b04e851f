package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpsCmd(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.Equal(t, exitOK, tc.opsCmd([]string{"-ops", "math"}))
		out := tc.out.String()
		assert.Contains(t, out, "add(a, b)")
		assert.Contains(t, out, "divide(a, b)")
		assert.NotContains(t, out, "greet")
	})

	t.Run("search", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.Equal(t, exitOK, tc.opsCmd([]string{"upper", "case"}))
		assert.Contains(t, tc.out.String(), "upper(text)")
	})

	t.Run("no match", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.Equal(t, exitOK, tc.opsCmd([]string{"zzzqqq"}))
		assert.Contains(t, tc.out.String(), `no ops match "zzzqqq"`)
	})

	t.Run("describe", func(t *testing.T) {
		tc := newTestCLI(t, "")
		require.Equal(t, exitOK, tc.opsCmd([]string{"-describe", "sleep"}))
		assert.Contains(t, tc.out.String(), "sleep(ms)")
		assert.Contains(t, tc.out.String(), "cancelled")
	})

	t.Run("describe unknown", func(t *testing.T) {
		tc := newTestCLI(t, "")
		assert.Equal(t, exitUsage, tc.opsCmd([]string{"-describe", "nope"}))
		assert.Contains(t, tc.err.String(), `operation "nope" is not registered`)
	})
}
