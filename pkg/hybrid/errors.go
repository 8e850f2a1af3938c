package hybrid

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/hybrid/pkg/script"
)

// Sentinel errors matched by errors.Is.
var (
	ErrParse           = script.ErrParse
	ErrDefinitionCount = script.ErrDefinitionCount
	ErrBind            = errors.New("bind error")
	ErrIO              = errors.New("io error")
)

// BindError reports source that parses but cannot be bound into an
// executable unit.
type BindError struct {
	Name    string
	File    string
	Message string
	Err     error // underlying execution error, if any
}

func (e *BindError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bind %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("bind %s: %s", e.Name, e.Message)
}

func (e *BindError) Unwrap() error { return e.Err }

// Is reports whether target is ErrBind.
func (e *BindError) Is(target error) bool {
	return target == ErrBind
}

// IOError reports a failure reading or writing source or temporary files.
type IOError struct {
	Op   string // "read", "write", "tempdir"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// LoadError wraps any construction failure with the last state the
// module reached. Its message is the underlying error's.
type LoadError struct {
	State State
	Err   error
}

func (e *LoadError) Error() string { return e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }
