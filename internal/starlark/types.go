// Package starlark provides the Starlark execution support behind hybrid
// units: value conversion, per-call threads, unit execution and the
// runtime builtins kernels use when executed natively.
package starlark

import (
	"fmt"
	"math/big"

	"go.starlark.net/starlark"
)

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: starlark.Value (passed through), string, int, int32,
// int64, *big.Int, float32, float64, bool, []string, []int64, []float64,
// []any, map[string]any.
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case starlark.Value:
		return val, nil

	case string:
		return starlark.String(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case int32:
		return starlark.MakeInt64(int64(val)), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case *big.Int:
		return starlark.MakeBigInt(val), nil

	case float32:
		return starlark.Float(val), nil

	case float64:
		return starlark.Float(val), nil

	case bool:
		return starlark.Bool(val), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil

	case []int64:
		list := make([]starlark.Value, len(val))
		for i, n := range val {
			list[i] = starlark.MakeInt64(n)
		}
		return starlark.NewList(list), nil

	case []float64:
		list := make([]starlark.Value, len(val))
		for i, f := range val {
			list[i] = starlark.Float(f)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// GoToStarlarkTuple converts a Go argument list to a Starlark tuple.
func GoToStarlarkTuple(args []any) (starlark.Tuple, error) {
	tuple := make(starlark.Tuple, len(args))
	for i, arg := range args {
		sv, err := GoToStarlark(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		tuple[i] = sv
	}
	return tuple, nil
}

// ToGo converts a Starlark value back to a Go value.
// Returns: string, int64, *big.Int for ints outside the int64 range,
// float64, bool, []any, map[string]any, or nil. Values with no lossless Go
// form (functions, structs, dicts with non-string keys) are returned
// unchanged.
func ToGo(v starlark.Value) any {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil

	case starlark.String:
		return string(val)

	case starlark.Int:
		if i64, ok := val.Int64(); ok {
			return i64
		}
		return val.BigInt()

	case starlark.Float:
		return float64(val)

	case starlark.Bool:
		return bool(val)

	case *starlark.List:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = ToGo(val.Index(i))
		}
		return result

	case starlark.Tuple:
		result := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			result[i] = ToGo(val.Index(i))
		}
		return result

	case *starlark.Dict:
		result := make(map[string]any, val.Len())
		for _, item := range val.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return val
			}
			result[string(key)] = ToGo(item[1])
		}
		return result

	default:
		return v
	}
}

// GlobalsToGo converts module globals for use outside Starlark.
func GlobalsToGo(globals starlark.StringDict) map[string]any {
	out := make(map[string]any, len(globals))
	for name, v := range globals {
		out[name] = ToGo(v)
	}
	return out
}
