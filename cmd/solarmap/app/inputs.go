package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stacklok/solarmap/internal/catalog"
)

const catalogPrefix = "catalog:"

// parseInputs turns command line arguments into construct arguments.
// "catalog:<id>" becomes a catalog entry; everything else is passed through as a path or URL.
func parseInputs(args []string) (inputs []any, usesCatalog bool, err error) {
	inputs = make([]any, 0, len(args))
	for _, arg := range args {
		rest, ok := strings.CutPrefix(arg, catalogPrefix)
		if !ok {
			inputs = append(inputs, arg)
			continue
		}
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return nil, false, fmt.Errorf("invalid catalog reference %q: want %s<id>", arg, catalogPrefix)
		}
		inputs = append(inputs, catalog.Entry{ID: id})
		usesCatalog = true
	}
	return inputs, usesCatalog, nil
}

// parseOverrides parses repeated key=value flags. Numeric values stay strings;
// metadata accessors convert them on read.
func parseOverrides(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(sets))
	for _, set := range sets {
		key, value, ok := strings.Cut(set, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q: want key=value", set)
		}
		out[key] = value
	}
	return out, nil
}
