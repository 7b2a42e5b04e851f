// Package hostops provides ready-made host ops for scripts: arithmetic, text
// helpers and a few utilities.
//
// Each group is returned as a slice of [ops.Op] and can be registered with a
// runner builder:
//
//	r, err := runner.NewBuilder().AddOps(hostops.Math()...).Build()
//
// [All] returns every group; [Groups] and [Select] pick groups by name.
package hostops
