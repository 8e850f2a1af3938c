package commands

import (
	"fmt"
	"strconv"
	"strings"

	hstarlark "github.com/leapstack-labs/hybrid/internal/starlark"
	"github.com/leapstack-labs/hybrid/pkg/ir"
	"go.starlark.net/starlark"
)

// parseArgs evaluates each command-line argument as a Starlark literal
// expression, e.g. 5, "s" or [1, 2].
func parseArgs(args []string) ([]any, error) {
	out := make([]any, len(args))
	thread := &starlark.Thread{Name: "args"}
	for i, arg := range args {
		v, err := starlark.EvalOptions(hstarlark.FileOptions, thread, fmt.Sprintf("arg%d", i), arg, nil)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, arg, err)
		}
		out[i] = hstarlark.ToGo(v)
	}
	return out, nil
}

// parsePlaceholder parses NAME[:D0,D1,...[:DTYPE]] into a placeholder.
func parsePlaceholder(spec string) (*ir.Placeholder, error) {
	parts := strings.Split(spec, ":")
	if len(parts) > 3 || parts[0] == "" {
		return nil, fmt.Errorf("invalid placeholder %q (want NAME[:SHAPE[:DTYPE]])", spec)
	}

	var shape []int64
	if len(parts) > 1 && parts[1] != "" {
		for _, d := range strings.Split(parts[1], ",") {
			n, err := strconv.ParseInt(strings.TrimSpace(d), 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid placeholder %q: bad dimension %q", spec, d)
			}
			shape = append(shape, n)
		}
	}

	var dtype string
	if len(parts) == 3 {
		dtype = parts[2]
	}
	return ir.NewPlaceholder(parts[0], shape, dtype), nil
}

func parsePlaceholders(specs []string) ([]any, error) {
	out := make([]any, len(specs))
	for i, spec := range specs {
		p, err := parsePlaceholder(spec)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
