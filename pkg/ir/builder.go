package ir

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/hybrid/pkg/script"
)

// ErrArity is matched by errors.Is for argument count mismatches.
var ErrArity = errors.New("arity mismatch")

// Environment is the calling environment handed to an OpBuilder: the
// module-level names of the bound unit.
type Environment struct {
	Unit    string
	Globals map[string]any
}

// Lookup returns the global bound to name.
func (e Environment) Lookup(name string) (any, bool) {
	v, ok := e.Globals[name]
	return v, ok
}

// Names returns the global names in sorted order.
func (e Environment) Names() []string {
	names := make([]string, 0, len(e.Globals))
	for name := range e.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpBuilder lowers an entry-point definition applied to symbolic arguments
// into an IR artifact.
type OpBuilder interface {
	Build(def *script.FuncDef, env Environment, args []any) (any, error)
}

// OpBuilderFunc adapts a function to the OpBuilder interface.
type OpBuilderFunc func(def *script.FuncDef, env Environment, args []any) (any, error)

// Build calls f(def, env, args).
func (f OpBuilderFunc) Build(def *script.FuncDef, env Environment, args []any) (any, error) {
	return f(def, env, args)
}

// ArityError reports a call whose argument count the definition cannot accept.
type ArityError struct {
	Func string
	Min  int
	Max  int
	Got  int
}

func (e *ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("%s: takes %d argument(s), got %d", e.Func, e.Min, e.Got)
	}
	return fmt.Sprintf("%s: takes %d to %d arguments, got %d", e.Func, e.Min, e.Max, e.Got)
}

// Is reports whether target is ErrArity.
func (e *ArityError) Is(target error) bool {
	return target == ErrArity
}

// Binding pairs a parameter with the symbolic value it receives.
type Binding struct {
	Param string
	Value Symbolic
}

// Op is the artifact produced by Builder. It records the definition, the
// parameter bindings and the module globals the body refers to.
type Op struct {
	Name     string
	Inputs   []Binding
	Defaults map[string]string // unbound parameters, rendered default expressions
	Captures []string          // globals referenced by the body
	Def      *script.FuncDef
}

// String renders the op header, e.g. addone(x=A).
func (o *Op) String() string {
	parts := make([]string, 0, len(o.Inputs)+len(o.Defaults))
	for _, in := range o.Inputs {
		parts = append(parts, in.Param+"="+in.Value.SymbolName())
	}
	for _, name := range o.Def.ParamNames()[len(o.Inputs):] {
		parts = append(parts, name+"="+o.Defaults[name])
	}
	return fmt.Sprintf("%s(%s)", o.Name, strings.Join(parts, ", "))
}

// Builder is the reference OpBuilder. It checks arity, binds parameters and
// records captured globals. It does not lower the body.
type Builder struct{}

// Build implements OpBuilder.
func (Builder) Build(def *script.FuncDef, env Environment, args []any) (any, error) {
	if def == nil {
		return nil, errors.New("build: nil definition")
	}

	minArgs, maxArgs := def.RequiredParams(), len(def.Params)
	if len(args) < minArgs || len(args) > maxArgs {
		return nil, &ArityError{Func: def.Name, Min: minArgs, Max: maxArgs, Got: len(args)}
	}

	op := &Op{
		Name:     def.Name,
		Inputs:   make([]Binding, len(args)),
		Defaults: make(map[string]string),
		Def:      def,
	}
	for i, arg := range args {
		sym, ok := arg.(Symbolic)
		if !ok {
			return nil, fmt.Errorf("build %s: argument %d (%s) is %T, not symbolic", def.Name, i, def.Params[i].Name, arg)
		}
		op.Inputs[i] = Binding{Param: def.Params[i].Name, Value: sym}
	}
	for _, p := range def.Params[len(args):] {
		op.Defaults[p.Name] = script.ExprString(p.Default)
	}

	op.Captures = captures(def, env)
	return op, nil
}

// captures lists, in order of first use, the environment globals that the
// definition's body references. Parameter names shadow globals.
func captures(def *script.FuncDef, env Environment) []string {
	params := make(map[string]bool, len(def.Params))
	for _, p := range def.Params {
		params[p.Name] = true
	}

	seen := make(map[string]bool)
	var names []string
	script.Walk(def, func(n script.Node) bool {
		id, ok := n.(*script.Ident)
		if !ok || params[id.Name] || seen[id.Name] {
			return true
		}
		if _, ok := env.Lookup(id.Name); ok {
			seen[id.Name] = true
			names = append(names, id.Name)
		}
		return true
	})
	return names
}
