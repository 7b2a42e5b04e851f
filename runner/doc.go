// Package runner executes JavaScript snippets with host values bound as
// variables, without ever splicing caller text into executable source.
//
// A [Builder] registers host ops and produces a [Runner]. Each Runner owns
// one persistent engine session:
//
//	r, err := runner.NewBuilder(runner.WithLogger(logger)).
//	    AddFunc("add", add).
//	    Build()
//	if err != nil { ... }
//	defer r.Close()
//
//	out, err := r.Run(ctx, "add(a, b)", binding.Bindings{
//	    {Name: "a", Value: 1},
//	    {Name: "b", Value: 2},
//	})
//	// out == "3"
//
// # Pipeline
//
// Every run validates each binding name against [A-Za-z_][A-Za-z0-9_]*,
// rejects duplicate names, encodes every value as JSON, and only then
// composes the source unit
//
//	{
//	const a = 1;
//	const b = 2;
//	<body>
//	}
//
// and hands it to the engine. Names are never escaped or repaired; a name
// that fails the grammar fails the run before any source is built. Error
// positions reported through engine.ScriptError are lines of body, not of
// the composed unit.
//
// # Persistence
//
// A Runner's session survives between runs. This is part of the contract:
//
//   - var declarations and assignments to globalThis persist and are visible
//     to later runs on the same Runner;
//   - bindings, and let, const and class declarations in the body, are
//     local to the run, so the next run may bind the same names again;
//   - function declarations in the body are local to the run as well; to
//     keep a function for later runs, assign it to a var or to globalThis;
//   - a "use strict" directive at the top of body is an ordinary expression
//     statement, since body is not the start of a script.
//
// Runners built from the same Builder share nothing. Use separate Runners,
// or a [Pool], for isolation or parallelism.
//
// # Errors
//
// Every failure is an [*Error] whose Kind is one of [KindInvalidVariableName],
// [KindSerialization], [KindExecution], [KindDuplicateBinding], [KindAborted]
// or [KindSessionUnavailable], and which matches the corresponding sentinel
// via errors.Is. Execution errors carry the engine diagnostic verbatim in
// Detail.
//
// There is no built-in timeout. Pass a context with a deadline; when it
// expires mid-run the run fails with [ErrAborted] and the Runner is no longer
// usable. A [Pool] replaces such runners on release.
package runner
