package hybrid

import (
	"context"
	"log/slog"

	hstarlark "github.com/leapstack-labs/hybrid/internal/starlark"
	"go.starlark.net/starlark"
)

// callable is the native half of a module.
type callable interface {
	Call(ctx context.Context, args []any) (any, error)
}

// starlarkCallable runs a bound Starlark function on a fresh thread per call.
type starlarkCallable struct {
	name     string
	fn       starlark.Callable
	logger   *slog.Logger
	maxSteps uint64
}

func (c *starlarkCallable) Call(ctx context.Context, args []any) (any, error) {
	tuple, err := hstarlark.GoToStarlarkTuple(args)
	if err != nil {
		return nil, err
	}
	result, err := hstarlark.Call(ctx, c.name, c.fn, tuple, c.logger, c.maxSteps)
	if err != nil {
		return nil, err
	}
	return hstarlark.ToGo(result), nil
}
