package ops

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jonwraymond/tooldiscovery/index"
	"github.com/jonwraymond/tooldiscovery/search"
	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/jonwraymond/toolfoundation/model"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jonwraymond/toolscript/binding"
)

// DefaultSearchLimit caps Search when the caller passes a non-positive limit.
const DefaultSearchLimit = 10

// Registry holds the host operations exposed to scripts and a searchable
// catalog describing them.
//
// Registry is safe for concurrent use. Ops cannot be removed once
// registered; a session built from the registry exposes the set that existed
// when it was built.
type Registry struct {
	mu    sync.RWMutex
	ops   map[string]Op
	index index.Index
	docs  *tooldoc.InMemoryStore
}

// NewRegistry creates an empty registry with a BM25-backed catalog.
func NewRegistry() *Registry {
	idx := index.NewInMemoryIndex(index.IndexOptions{
		Searcher: search.NewBM25Searcher(search.BM25Config{}),
	})
	return &Registry{
		ops:   make(map[string]Op),
		index: idx,
		docs:  tooldoc.NewInMemoryStore(tooldoc.StoreOptions{Index: idx}),
	}
}

// Register adds op to the registry and its catalog.
func (r *Registry) Register(op Op) error {
	if err := binding.ValidateName(op.Name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOp, err)
	}
	if op.Func == nil {
		return fmt.Errorf("%w: %s: func is nil", ErrInvalidOp, op.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ops[op.Name]; exists {
		return fmt.Errorf("%w: %s", ErrOpExists, op.Name)
	}

	if err := r.index.RegisterTool(op.tool(), model.NewLocalBackend(op.Name)); err != nil {
		return fmt.Errorf("index op %s: %w", op.Name, err)
	}
	entry := tooldoc.DocEntry{Summary: op.Description, Notes: op.Notes}
	if err := r.docs.RegisterDoc(op.ID(), entry); err != nil {
		return fmt.Errorf("document op %s: %w", op.Name, err)
	}

	op.Params = append([]string(nil), op.Params...)
	r.ops[op.Name] = op
	return nil
}

// RegisterFunc registers fn under name with no catalog metadata.
func (r *Registry) RegisterFunc(name string, fn Func) error {
	return r.Register(Op{Name: name, Func: fn})
}

// Get retrieves an op by name.
func (r *Registry) Get(name string) (Op, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.ops[name]
	return op, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns registered op names sorted for deterministic output.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ops))
	for name := range r.ops {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered ops.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ops)
}

// Call invokes the op registered under name. A panic in the op is recovered
// and returned as an error matching ErrOpPanic.
func (r *Registry) Call(ctx context.Context, name string, args []any) (result any, err error) {
	op, ok := r.Get(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("%w: %s: %v", ErrOpPanic, name, p)
		}
	}()
	result, err = op.Func(ctx, args)
	var argErr *ArgError
	if errors.As(err, &argErr) && argErr.Op == "" {
		argErr.Op = name
	}
	return result, err
}

// Search queries the op catalog. A non-positive limit means
// DefaultSearchLimit.
func (r *Registry) Search(query string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	hits, err := r.index.Search(query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(hits))
	for _, h := range hits {
		if h.Namespace != Namespace {
			continue
		}
		out = append(out, Summary{Name: h.Name, Description: h.ShortDescription})
	}
	return out, nil
}

// Describe returns the full documentation of the op registered under name.
func (r *Registry) Describe(name string) (Doc, error) {
	op, ok := r.Get(name)
	if !ok {
		return Doc{}, &NotFoundError{Name: name}
	}
	doc := Doc{
		Name:        op.Name,
		Signature:   op.Signature(),
		Description: op.Description,
		Params:      op.Params,
	}
	if doc.Params == nil {
		doc.Params = []string{}
	}

	td, err := r.docs.DescribeTool(op.ID(), tooldoc.DetailFull)
	if err != nil {
		return Doc{}, fmt.Errorf("describe op %s: %w", name, err)
	}
	doc.Summary = td.Summary
	doc.Notes = td.Notes
	return doc, nil
}

// tool converts the op into a catalog entry. Params become an object schema
// so the catalog shows argument names.
func (o Op) tool() model.Tool {
	props := make(map[string]any, len(o.Params))
	for _, p := range o.Params {
		props[p] = map[string]any{}
	}
	desc := o.Description
	if desc == "" {
		desc = "host operation " + o.Signature()
	}
	return model.Tool{
		Tool: mcp.Tool{
			Name:        o.Name,
			Description: desc,
			InputSchema: map[string]any{
				"type":       "object",
				"properties": props,
			},
		},
		Namespace: Namespace,
		Tags:      model.NormalizeTags(o.Tags),
	}
}
