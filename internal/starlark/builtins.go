package starlark

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	starlarkmath "go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// LoopAnnotations are the range-like loop kinds. Natively they all behave
// like range; an op-builder reads their names from the definition.
var LoopAnnotations = []string{"serial", "parallel", "vectorize", "unroll", "const_range"}

// Predeclared returns the globals available to every unit.
func Predeclared() starlark.StringDict {
	globals := starlark.StringDict{
		"output_tensor": starlark.NewBuiltin("output_tensor", outputTensor),
		"allocate":      starlark.NewBuiltin("allocate", allocate),
		"sigmoid":       starlark.NewBuiltin("sigmoid", sigmoid),
		"popcount":      starlark.NewBuiltin("popcount", popcount),
		"max_num":       starlark.Float(math.MaxFloat64),
		"min_num":       starlark.Float(-math.MaxFloat64),
		"math":          starlarkmath.Module,
		"struct":        starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
	for _, name := range LoopAnnotations {
		globals[name] = loopRange(name)
	}
	return globals
}

// loopRange returns a builtin named name with range's behavior.
func loopRange(name string) *starlark.Builtin {
	rng := starlark.Universe["range"].(*starlark.Builtin)
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		v, err := starlark.Call(thread, rng, args, kwargs)
		if err != nil {
			return nil, fmt.Errorf("%s: %s", name, strings.TrimPrefix(err.Error(), "range: "))
		}
		return v, nil
	})
}

// outputTensor implements output_tensor(shape, dtype="float32").
func outputTensor(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var shape starlark.Value
	dtype := "float32"
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "shape", &shape, "dtype?", &dtype); err != nil {
		return nil, err
	}
	return zeros(b.Name(), shape, dtype)
}

// allocate implements allocate(shape, dtype="float32", scope="global").
// The scope only matters to an op-builder.
func allocate(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var shape starlark.Value
	dtype, scope := "float32", "global"
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "shape", &shape, "dtype?", &dtype, "scope?", &scope); err != nil {
		return nil, err
	}
	return zeros(b.Name(), shape, dtype)
}

// zeros builds a nested list of the given shape filled with the zero value
// of dtype. A scalar shape is treated as one dimension.
func zeros(fn string, shape starlark.Value, dtype string) (starlark.Value, error) {
	var zero starlark.Value
	switch {
	case strings.HasPrefix(dtype, "float"):
		zero = starlark.Float(0)
	case strings.HasPrefix(dtype, "int"), strings.HasPrefix(dtype, "uint"):
		zero = starlark.MakeInt(0)
	case dtype == "bool":
		zero = starlark.False
	default:
		return nil, fmt.Errorf("%s: unsupported dtype %q", fn, dtype)
	}

	var dims []int
	if iter, ok := shape.(starlark.Indexable); ok {
		for i := 0; i < iter.Len(); i++ {
			d, err := starlark.AsInt32(iter.Index(i))
			if err != nil {
				return nil, fmt.Errorf("%s: shape[%d]: %w", fn, i, err)
			}
			dims = append(dims, d)
		}
	} else {
		d, err := starlark.AsInt32(shape)
		if err != nil {
			return nil, fmt.Errorf("%s: shape: %w", fn, err)
		}
		dims = []int{d}
	}
	for i, d := range dims {
		if d < 0 {
			return nil, fmt.Errorf("%s: shape[%d] is negative", fn, i)
		}
	}

	return fill(dims, zero), nil
}

func fill(dims []int, zero starlark.Value) starlark.Value {
	if len(dims) == 0 {
		return zero
	}
	elems := make([]starlark.Value, dims[0])
	for i := range elems {
		elems[i] = fill(dims[1:], zero)
	}
	return starlark.NewList(elems)
}

func sigmoid(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x); err != nil {
		return nil, err
	}
	f, ok := starlark.AsFloat(x)
	if !ok {
		return nil, fmt.Errorf("%s: got %s, want number", b.Name(), x.Type())
	}
	return starlark.Float(1 / (1 + math.Exp(-f))), nil
}

// popcount counts the set bits of a non-negative int of any width.
func popcount(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var x starlark.Int
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x); err != nil {
		return nil, err
	}
	if x.Sign() < 0 {
		return nil, fmt.Errorf("%s: negative value %s", b.Name(), x)
	}
	if u, ok := x.Uint64(); ok {
		return starlark.MakeInt(bits.OnesCount64(u)), nil
	}
	n := 0
	for _, w := range x.BigInt().Bits() {
		n += bits.OnesCount(uint(w))
	}
	return starlark.MakeInt(n), nil
}
