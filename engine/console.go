package engine

import (
	"time"

	"github.com/dop251/goja"
)

// nativeLog receives console output from the bootstrap as (level, message).
// The message is already formatted script-side.
func (s *Session) nativeLog(call goja.FunctionCall) goja.Value {
	level := call.Argument(0).String()
	msg := call.Argument(1).String()

	s.logs = append(s.logs, LogEntry{
		Level:   level,
		Message: msg,
		Time:    time.Now(),
	})

	switch level {
	case "error":
		s.console.Error(msg)
	case "warn":
		s.console.Warn(msg)
	case "debug", "trace":
		s.console.Debug(msg)
	default:
		s.console.Info(msg)
	}
	return goja.Undefined()
}

