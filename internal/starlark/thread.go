package starlark

import (
	"context"
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"
)

// NewThread creates a Starlark thread. Dialect print() output goes to
// logger at Info level. A maxSteps of 0 leaves execution unbounded.
func NewThread(name string, logger *slog.Logger, maxSteps uint64) *starlark.Thread {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	thread := &starlark.Thread{
		Name: name,
		Print: func(t *starlark.Thread, msg string) {
			logger.Info(msg, "thread", t.Name)
		},
	}
	if maxSteps > 0 {
		thread.SetMaxExecutionSteps(maxSteps)
	}
	return thread
}

// Cancelled reports a Starlark computation stopped by its context.
type Cancelled struct {
	Name  string
	Cause error
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Cause)
}

func (e *Cancelled) Unwrap() error {
	return e.Cause
}

// watch cancels thread when ctx is done. The returned stop function must be
// called once the computation finishes.
func watch(ctx context.Context, thread *starlark.Thread) (stop func() bool) {
	return context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
}

// Call invokes fn on a fresh thread with positional args. If ctx ends first
// the computation is cancelled and a *Cancelled error is returned.
func Call(ctx context.Context, name string, fn starlark.Callable, args starlark.Tuple, logger *slog.Logger, maxSteps uint64) (starlark.Value, error) {
	thread := NewThread(name, logger, maxSteps)
	stop := watch(ctx, thread)
	defer stop()

	result, err := starlark.Call(thread, fn, args, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &Cancelled{Name: name, Cause: context.Cause(ctx)}
		}
		return nil, err
	}
	return result, nil
}
