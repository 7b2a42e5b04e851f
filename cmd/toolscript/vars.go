package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/toolscript/binding"
)

// varFlags collects repeated -var name=value flags.
type varFlags []string

func (v *varFlags) String() string {
	return strings.Join(*v, ",")
}

func (v *varFlags) Set(s string) error {
	*v = append(*v, s)
	return nil
}

// parseVar parses name=value. The value is read as a YAML scalar or flow
// collection, so 3 is a number, true a boolean, [1, 2] a list and {a: 1} an
// object. An empty value is the empty string. The name is not checked here;
// the runner rejects invalid names.
func parseVar(s string) (binding.Binding, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok {
		return binding.Binding{}, fmt.Errorf("invalid -var %q: want name=value", s)
	}
	if raw == "" {
		return binding.Binding{Name: name, Value: ""}, nil
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return binding.Binding{}, fmt.Errorf("invalid -var %q: %w", s, err)
	}
	return binding.Binding{Name: name, Value: value}, nil
}

// loadVarsFile reads a YAML (or JSON) mapping of bindings, keeping the
// document order of its keys.
func loadVarsFile(path string) (binding.Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseVarsDocument(data)
}

func parseVarsDocument(data []byte) (binding.Bindings, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid vars file: %w", err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("invalid vars file: top level must be a mapping")
	}

	m := doc.Content[0]
	out := make(binding.Bindings, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		var value any
		if err := val.Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid vars file: %s (line %d): %w", key.Value, key.Line, err)
		}
		out = append(out, binding.Binding{Name: key.Value, Value: value})
	}
	return out, nil
}

// collectBindings merges a vars file with -var flags. A flag replaces a file
// entry of the same name; repeated flags are passed through so the runner
// reports them as duplicates.
func collectBindings(varsFile string, flags []string) (binding.Bindings, error) {
	var out binding.Bindings
	if varsFile != "" {
		fromFile, err := loadVarsFile(varsFile)
		if err != nil {
			return nil, err
		}
		out = fromFile
	}

	fileIndex := make(map[string]int, len(out))
	for i, b := range out {
		fileIndex[b.Name] = i
	}
	for _, s := range flags {
		b, err := parseVar(s)
		if err != nil {
			return nil, err
		}
		if i, ok := fileIndex[b.Name]; ok {
			out[i] = b
			delete(fileIndex, b.Name)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
