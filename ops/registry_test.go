package ops

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func echoFunc(_ context.Context, args []any) (any, error) {
	return args, nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	op := Op{Name: "echo", Description: "Echoes its arguments", Params: []string{"value"}, Func: echoFunc}
	if err := r.Register(op); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, ok := r.Get("echo")
	if !ok {
		t.Fatal("expected op to be registered")
	}
	if got.Description != "Echoes its arguments" {
		t.Errorf("Description = %q", got.Description)
	}
	if !r.Has("echo") || r.Has("missing") {
		t.Error("Has() returned wrong result")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegistry_RegisterRejects(t *testing.T) {
	tests := []struct {
		name    string
		op      Op
		wantErr error
	}{
		{name: "empty name", op: Op{Name: "", Func: echoFunc}, wantErr: ErrInvalidOp},
		{name: "invalid name", op: Op{Name: "my-op", Func: echoFunc}, wantErr: ErrInvalidOp},
		{name: "injection name", op: Op{Name: "x;evil()", Func: echoFunc}, wantErr: ErrInvalidOp},
		{name: "nil func", op: Op{Name: "noop"}, wantErr: ErrInvalidOp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.op)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if r.Len() != 0 {
				t.Errorf("rejected op was stored")
			}
		})
	}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterFunc("dup", echoFunc); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	err := r.RegisterFunc("dup", echoFunc)
	if !errors.Is(err, ErrOpExists) {
		t.Errorf("second Register() error = %v, want ErrOpExists", err)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := r.RegisterFunc(name, echoFunc); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}
	want := []string{"alpha", "mid", "zeta"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()
	_ = r.RegisterFunc("echo", echoFunc)

	got, err := r.Call(context.Background(), "echo", []any{"a", int64(1)})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !reflect.DeepEqual(got, []any{"a", int64(1)}) {
		t.Errorf("Call() = %v", got)
	}
}

func TestRegistry_CallNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Call(context.Background(), "missing", nil)
	if !errors.Is(err, ErrOpNotFound) {
		t.Fatalf("Call() error = %v, want ErrOpNotFound", err)
	}
	if err.Error() != `operation "missing" is not registered` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestRegistry_CallCanceledContext(t *testing.T) {
	r := NewRegistry()
	calls := 0
	_ = r.RegisterFunc("count", func(context.Context, []any) (any, error) {
		calls++
		return nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Call(ctx, "count", nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Call() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("op ran %d times on a canceled context", calls)
	}
}

func TestRegistry_CallRecoversPanic(t *testing.T) {
	r := NewRegistry()
	_ = r.RegisterFunc("boom", func(context.Context, []any) (any, error) {
		panic("kaboom")
	})

	got, err := r.Call(context.Background(), "boom", nil)
	if !errors.Is(err, ErrOpPanic) {
		t.Fatalf("Call() error = %v, want ErrOpPanic", err)
	}
	if got != nil {
		t.Errorf("Call() result = %v, want nil", got)
	}
	if !strings.Contains(err.Error(), "kaboom") {
		t.Errorf("error %q does not carry the panic value", err.Error())
	}
}

func TestRegistry_CallArgErrorNamesOp(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(Op{Name: "square", Func: Unary(func(_ context.Context, n float64) (float64, error) {
		return n * n, nil
	})})

	_, err := r.Call(context.Background(), "square", []any{"not a number"})
	var argErr *ArgError
	if !errors.As(err, &argErr) {
		t.Fatalf("Call() error = %v, want *ArgError", err)
	}
	if argErr.Op != "square" || argErr.Index != 0 {
		t.Errorf("ArgError = %+v", argErr)
	}
}

func TestRegistry_Search(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(Op{
		Name:        "fibonacci",
		Description: "Computes the nth Fibonacci number",
		Tags:        []string{"math", "sequence"},
		Func:        echoFunc,
	})
	_ = r.Register(Op{
		Name:        "upper",
		Description: "Converts text to upper case",
		Tags:        []string{"text"},
		Func:        echoFunc,
	})

	hits, err := r.Search("fibonacci", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) == 0 {
		t.Fatal("Search() returned no hits")
	}
	if hits[0].Name != "fibonacci" {
		t.Errorf("top hit = %q, want fibonacci", hits[0].Name)
	}
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(Op{
		Name:        "divide",
		Description: "Divides a by b",
		Params:      []string{"a", "b"},
		Notes:       "Division by zero is an error",
		Func:        echoFunc,
	})

	doc, err := r.Describe("divide")
	if err != nil {
		t.Fatalf("Describe() error = %v", err)
	}
	if doc.Signature != "divide(a, b)" {
		t.Errorf("Signature = %q", doc.Signature)
	}
	if doc.Summary != "Divides a by b" {
		t.Errorf("Summary = %q", doc.Summary)
	}
	if doc.Notes != "Division by zero is an error" {
		t.Errorf("Notes = %q", doc.Notes)
	}

	if _, err := r.Describe("missing"); !errors.Is(err, ErrOpNotFound) {
		t.Errorf("Describe(missing) error = %v, want ErrOpNotFound", err)
	}
}

func TestOp_Signature(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{Op{Name: "uuid"}, "uuid()"},
		{Op{Name: "upper", Params: []string{"s"}}, "upper(s)"},
		{Op{Name: "add", Params: []string{"a", "b"}}, "add(a, b)"},
	}
	for _, tt := range tests {
		if got := tt.op.Signature(); got != tt.want {
			t.Errorf("Signature() = %q, want %q", got, tt.want)
		}
	}
	if got := (Op{Name: "add"}).ID(); got != "host:add" {
		t.Errorf("ID() = %q, want host:add", got)
	}
}
