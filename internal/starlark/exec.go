package starlark

import (
	"context"
	"fmt"
	"log/slog"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// FileOptions enables the dialect features kernels rely on: while loops,
// top-level control flow, global reassignment, sets and recursion.
var FileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

// ExecError represents a failure while executing a unit.
type ExecError struct {
	File      string
	Message   string
	Backtrace string // empty unless the failure happened at run time
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// ExecOptions configures Exec.
type ExecOptions struct {
	Logger      *slog.Logger
	MaxSteps    uint64
	Predeclared starlark.StringDict // defaults to Predeclared()
}

// Exec compiles and runs src as a unit and returns its frozen globals.
func Exec(ctx context.Context, filename string, src []byte, opts ExecOptions) (starlark.StringDict, error) {
	predeclared := opts.Predeclared
	if predeclared == nil {
		predeclared = Predeclared()
	}

	thread := NewThread("exec:"+filename, opts.Logger, opts.MaxSteps)
	stop := watch(ctx, thread)
	defer stop()

	globals, err := starlark.ExecFileOptions(FileOptions, thread, filename, src, predeclared)
	if err != nil {
		execErr := &ExecError{File: filename, Message: err.Error()}
		if evalErr, ok := err.(*starlark.EvalError); ok {
			execErr.Message = evalErr.Msg
			execErr.Backtrace = evalErr.Backtrace()
		}
		if ctx.Err() != nil {
			return nil, &Cancelled{Name: filename, Cause: context.Cause(ctx)}
		}
		return nil, execErr
	}

	globals.Freeze()
	return globals, nil
}
