package engine

import "time"

// LogEntry is one console call made by a script.
type LogEntry struct {
	// Level is the console method: log, info, debug, warn, error or trace.
	Level string `json:"level"`

	// Message is the space-joined, formatted arguments.
	Message string `json:"message"`

	Time time.Time `json:"time"`
}

// OpCall captures a single host operation invocation during a run.
type OpCall struct {
	// Op is the name of the operation that was called.
	Op string `json:"op"`

	// Args contains the exported script arguments.
	Args []any `json:"args,omitempty"`

	// Result contains the value returned by a successful call.
	Result any `json:"result,omitempty"`

	// Error contains the error message if the call failed.
	Error string `json:"error,omitempty"`

	// DurationMs is the call time in milliseconds.
	DurationMs int64 `json:"durationMs"`
}

// OK reports whether the call succeeded.
func (c OpCall) OK() bool {
	return c.Error == ""
}

// Outcome is the result of one successful Execute.
type Outcome struct {
	// Value is the rendered completion value of the source.
	Value string `json:"value"`

	// Console holds console output in call order.
	Console []LogEntry `json:"console,omitempty"`

	// OpCalls records every host operation call in order.
	OpCalls []OpCall `json:"opCalls,omitempty"`

	Duration time.Duration `json:"duration"`
}
