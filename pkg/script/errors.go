package script

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by errors.Is.
var (
	ErrParse           = errors.New("parse error")
	ErrDefinitionCount = errors.New("definition count error")
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	File    string
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// DefinitionCountError reports a source that does not contain exactly one
// top-level function definition.
type DefinitionCountError struct {
	File  string
	Count int
	Names []string
}

func (e *DefinitionCountError) Error() string {
	file := e.File
	if file == "" {
		file = "<source>"
	}
	if e.Count == 0 {
		return fmt.Sprintf("%s: no function definition found", file)
	}
	return fmt.Sprintf("%s: found %d function definitions (%s), only one is supported",
		file, e.Count, strings.Join(e.Names, ", "))
}

// Is reports whether target is ErrDefinitionCount.
func (e *DefinitionCountError) Is(target error) bool {
	return target == ErrDefinitionCount
}

// Common error messages
const (
	ErrUnexpectedToken    = "unexpected %s, expected %s"
	ErrUnterminatedString = "unterminated string literal"
	ErrInvalidNumber      = "invalid number literal"
	ErrBadOutdent         = "unindent does not match any outer indentation level"
	ErrBadTarget          = "cannot assign to %s"
	ErrDuplicateParam     = "duplicate parameter %q"
	ErrParamOrder         = "non-default parameter %q follows default parameter"
)
