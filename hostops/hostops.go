package hostops

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonwraymond/toolscript/ops"
)

var groups = map[string]func() []ops.Op{
	"math": Math,
	"text": Text,
	"util": Util,
}

// Groups returns the names of the available op groups, sorted.
func Groups() []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every op from every group.
func All() []ops.Op {
	var out []ops.Op
	for _, name := range Groups() {
		out = append(out, groups[name]()...)
	}
	return out
}

// Select returns the ops of the named groups. "all" selects every group.
// Names are case-insensitive; blank names are skipped.
func Select(names ...string) ([]ops.Op, error) {
	var out []ops.Op
	seen := make(map[string]bool)
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if name == "all" {
			return All(), nil
		}
		group, ok := groups[name]
		if !ok {
			return nil, fmt.Errorf("unknown host op group %q (available: %s)", raw, strings.Join(Groups(), ", "))
		}
		out = append(out, group()...)
	}
	return out, nil
}
