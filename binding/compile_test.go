package binding

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestCompile_Empty(t *testing.T) {
	got, err := Compile(nil)
	if err != nil {
		t.Fatalf("Compile(nil) error = %v", err)
	}
	if got != "" {
		t.Errorf("Compile(nil) = %q, want empty", got)
	}
}

func TestCompile_PreservesOrder(t *testing.T) {
	bs := Bindings{
		{Name: "b", Value: 2},
		{Name: "a", Value: "one"},
		{Name: "c", Value: []int{1, 2}},
	}
	got, err := Compile(bs)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := "const b = 2;\nconst a = \"one\";\nconst c = [1,2];\n"
	if got != want {
		t.Errorf("Compile() = %q, want %q", got, want)
	}
}

func TestCompile_InjectionStaysInsideLiteral(t *testing.T) {
	payload := "\"; globalThis.pwned = true; \""
	got, err := Compile(Bindings{{Name: "s", Value: payload}})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if strings.Count(got, "\n") != 1 {
		t.Errorf("prologue spans more than one line: %q", got)
	}
	if !strings.HasPrefix(got, "const s = \"\\\"; globalThis") {
		t.Errorf("payload quote was not escaped: %q", got)
	}
}

func TestCompile_InvalidName(t *testing.T) {
	_, err := Compile(Bindings{
		{Name: "ok", Value: 1},
		{Name: "x; evil()", Value: 2},
	})
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	var nameErr *NameError
	if !errors.As(err, &nameErr) || nameErr.Name != "x; evil()" {
		t.Errorf("expected NameError for offending name, got %v", err)
	}
}

func TestCompile_Duplicate(t *testing.T) {
	_, err := Compile(Bindings{
		{Name: "x", Value: 1},
		{Name: "y", Value: 2},
		{Name: "x", Value: 3},
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	var dupErr *DuplicateError
	if !errors.As(err, &dupErr) {
		t.Fatalf("expected *DuplicateError, got %T", err)
	}
	if dupErr.First != 0 || dupErr.Index != 2 {
		t.Errorf("positions = (%d, %d), want (0, 2)", dupErr.First, dupErr.Index)
	}
}

func TestCompile_SerializationNamesBinding(t *testing.T) {
	_, err := Compile(Bindings{
		{Name: "good", Value: 1},
		{Name: "bad", Value: math.NaN()},
	})
	if !errors.Is(err, ErrSerialization) {
		t.Fatalf("expected ErrSerialization, got %v", err)
	}
	var serr *SerializeError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *SerializeError, got %T", err)
	}
	if serr.Name != "bad" {
		t.Errorf("SerializeError.Name = %q, want %q", serr.Name, "bad")
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("error %q does not name the binding", err.Error())
	}
}

func TestCompile_FirstErrorWins(t *testing.T) {
	// The invalid name comes before the unencodable value.
	_, err := Compile(Bindings{
		{Name: "1st", Value: 1},
		{Name: "v", Value: make(chan int)},
	})
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}

	_, err = Compile(Bindings{
		{Name: "v", Value: make(chan int)},
		{Name: "1st", Value: 1},
	})
	if !errors.Is(err, ErrSerialization) {
		t.Errorf("expected ErrSerialization, got %v", err)
	}
}

func TestFromMap(t *testing.T) {
	bs := FromMap(map[string]any{"zeta": 1, "alpha": 2, "mid": 3})
	got := strings.Join(bs.Names(), ",")
	if got != "alpha,mid,zeta" {
		t.Errorf("FromMap names = %q, want alpha,mid,zeta", got)
	}
	if bs[0].Value != 2 {
		t.Errorf("alpha value = %v, want 2", bs[0].Value)
	}
	if FromMap(nil) != nil {
		t.Error("FromMap(nil) should be nil")
	}
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name     string
		prologue string
		body     string
		expected string
	}{
		{name: "empty", prologue: "", body: "", expected: "{\n\n}"},
		{name: "body only", prologue: "", body: "1 + 1", expected: "{\n1 + 1\n}"},
		{
			name:     "prologue and body",
			prologue: "const x = 1;\n",
			body:     "x * 2",
			expected: "{\nconst x = 1;\nx * 2\n}",
		},
		{
			name:     "trailing line comment is closed",
			prologue: "",
			body:     "1 // done",
			expected: "{\n1 // done\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compose(tt.prologue, tt.body); got != tt.expected {
				t.Errorf("Compose() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPrologueLines(t *testing.T) {
	if got := PrologueLines(""); got != 1 {
		t.Errorf("PrologueLines(\"\") = %d, want 1", got)
	}
	if got := PrologueLines("const a = 1;\nconst b = 2;\n"); got != 3 {
		t.Errorf("PrologueLines(two) = %d, want 3", got)
	}
}
