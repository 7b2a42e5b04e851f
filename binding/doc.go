// Package binding turns host values into script-level declarations without
// ever interpolating caller text into executable source.
//
// A run's bindings pass through three stages before the engine sees them:
//
//   - [ValidateName] accepts or rejects a binding name against the grammar
//     [A-Za-z_][A-Za-z0-9_]*. Names are never escaped or repaired.
//   - [Serialize] encodes a value as JSON, which is always a valid
//     JavaScript literal.
//   - [Compile] combines both into a prologue of `const name = literal;`
//     lines, failing on the first invalid name, duplicate name, or
//     unencodable value.
//
// [Compose] then wraps prologue and body into the single source unit that
// is handed to the engine.
//
// # Errors
//
// Every failure matches one of [ErrInvalidName], [ErrDuplicate] or
// [ErrSerialization] via errors.Is. The concrete types ([*NameError],
// [*DuplicateError], [*SerializeError]) carry the offending name and detail.
package binding
