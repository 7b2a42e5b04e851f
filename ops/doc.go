// Package ops defines host operations: Go functions that scripts may call by
// name.
//
// An [Op] pairs a script-visible name with a [Func] and catalog metadata. A
// [Registry] validates and stores ops and indexes each one in a BM25 search
// catalog (namespace "host"), so scripts can discover ops at run time through
// ops.search and ops.describe.
//
// # Arguments
//
// A Func receives its arguments as plain exported values. The generic
// adapters [Unary], [Binary], [Variadic] and [Nullary] decode them into typed
// Go parameters through their JSON form:
//
//	reg.Register(ops.Op{
//	    Name:   "add",
//	    Params: []string{"a", "b"},
//	    Func: ops.Binary(func(_ context.Context, a, b float64) (float64, error) {
//	        return a + b, nil
//	    }),
//	})
//
// # Errors
//
// A Func error becomes a catchable script Error whose message is the error
// text. Panics are recovered by [Registry.Call] and reported as [ErrOpPanic].
package ops
