package ops

import (
	"context"
	"fmt"
	"strings"
)

// Namespace is the catalog namespace every op is indexed under. Catalog IDs
// take the form "host:<name>".
const Namespace = "host"

// Func is the signature of a host operation. Arguments arrive as exported
// script values: nil, bool, int64, float64, string, []any or map[string]any.
// The returned value is converted back into a script value.
type Func func(ctx context.Context, args []any) (any, error)

// Op describes a single host operation.
type Op struct {
	// Name is the script-visible name. It must be a valid binding identifier.
	Name string

	// Description is a one-line summary shown by ops.search and ops.describe.
	Description string

	// Params names the positional arguments, in order. Used for the catalog
	// schema and for documentation only; arity is not enforced.
	Params []string

	// Tags are free-form keywords for catalog search.
	Tags []string

	// Notes is longer documentation returned by ops.describe.
	Notes string

	// Func is the implementation. Required.
	Func Func
}

// Signature renders the op as name(param, ...).
func (o Op) Signature() string {
	return o.Name + "(" + strings.Join(o.Params, ", ") + ")"
}

// ID returns the catalog ID of the op.
func (o Op) ID() string {
	return fmt.Sprintf("%s:%s", Namespace, o.Name)
}

// Summary is a search hit from the op catalog.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Doc is the full documentation of an op.
type Doc struct {
	Name        string   `json:"name"`
	Signature   string   `json:"signature"`
	Description string   `json:"description"`
	Params      []string `json:"params"`
	Summary     string   `json:"summary,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}
