// Package engine runs JavaScript source in a persistent goja runtime.
//
// A [Session] is created once and reused for many runs. Construction strips
// host-access globals (require, process, module, exports) and loads an
// embedded bootstrap that provides:
//
//   - console.log/info/debug/warn/error/trace, captured per run and sent to
//     the session logger;
//   - ops.call(name, ...args) and host(name, ...args) for synchronous op
//     calls, ops.callAsync for a promise-returning form, plus ops.has,
//     ops.list, ops.search and ops.describe;
//   - one global function per registered op;
//   - setTimeout and clearTimeout as microtasks, and inert interval timers.
//
// [Session.Execute] evaluates a source unit and renders its completion value
// as text. Script failures are returned as [*ScriptError] carrying the engine
// diagnostic verbatim. Cancelling the context interrupts a run and poisons
// the session.
package engine
