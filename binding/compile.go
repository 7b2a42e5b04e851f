package binding

import (
	"errors"
	"sort"
	"strings"
)

// Binding is a single host value exposed to a script under Name.
type Binding struct {
	Name  string
	Value any
}

// Bindings is an ordered list of bindings. Order is preserved in the
// compiled prologue.
type Bindings []Binding

// FromMap converts a map into Bindings ordered by name, so the prologue
// for a given map is always the same text.
func FromMap(m map[string]any) Bindings {
	if len(m) == 0 {
		return nil
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(Bindings, 0, len(names))
	for _, name := range names {
		out = append(out, Binding{Name: name, Value: m[name]})
	}
	return out
}

// Names returns the binding names in order.
func (bs Bindings) Names() []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Name
	}
	return out
}

// Compile produces the declaration prologue for bs: one
// `const <name> = <json>;` line per binding, in order.
//
// Every name is validated, checked for duplicates and every value
// serialized before any text is returned; the first failure aborts
// compilation and no partial prologue is produced. An empty list compiles to
// the empty string.
func Compile(bs Bindings) (string, error) {
	if len(bs) == 0 {
		return "", nil
	}

	seen := make(map[string]int, len(bs))
	literals := make([]string, len(bs))
	for i, b := range bs {
		if err := ValidateName(b.Name); err != nil {
			return "", err
		}
		if first, dup := seen[b.Name]; dup {
			return "", &DuplicateError{Name: b.Name, First: first, Index: i}
		}
		seen[b.Name] = i

		lit, err := Serialize(b.Value)
		if err != nil {
			var serr *SerializeError
			if errors.As(err, &serr) {
				serr.Name = b.Name
			}
			return "", err
		}
		literals[i] = lit
	}

	var sb strings.Builder
	for i, b := range bs {
		sb.WriteString("const ")
		sb.WriteString(b.Name)
		sb.WriteString(" = ")
		sb.WriteString(literals[i])
		sb.WriteString(";\n")
	}
	return sb.String(), nil
}

// Compose joins a compiled prologue and the caller's script body into one
// source unit. The body is copied verbatim after the prologue; the pair is
// enclosed in a single block statement, which is not a function scope:
//
//   - the completion value of the body's last statement is the value of the
//     whole unit;
//   - prologue constants and the body's let/const/class declarations are
//     local to the unit, so the next run may bind the same names again;
//   - var declarations and globalThis assignments reach the global object
//     and persist in the session.
//
// No parsing happens here; syntax errors surface when the engine runs the
// unit.
func Compose(prologue, body string) string {
	var sb strings.Builder
	sb.Grow(len(prologue) + len(body) + 4)
	sb.WriteString("{\n")
	sb.WriteString(prologue)
	sb.WriteString(body)
	sb.WriteString("\n}")
	return sb.String()
}

// PrologueLines reports how many source lines Compose places before the
// first line of body.
func PrologueLines(prologue string) int {
	return 1 + strings.Count(prologue, "\n")
}
