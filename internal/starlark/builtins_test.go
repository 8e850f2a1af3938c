package starlark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

// eval runs src and returns the global named result.
func eval(t *testing.T, src string) (starlark.Value, error) {
	t.Helper()
	globals, err := Exec(context.Background(), "builtins.star", []byte(src), ExecOptions{})
	if err != nil {
		return nil, err
	}
	return globals["result"], nil
}

func TestPredeclared_Names(t *testing.T) {
	globals := Predeclared()
	for _, name := range []string{"output_tensor", "allocate", "sigmoid", "popcount", "max_num", "min_num", "math", "struct"} {
		assert.Contains(t, globals, name)
	}
	for _, name := range LoopAnnotations {
		assert.Contains(t, globals, name)
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "output tensor 2d", src: "result = output_tensor((2, 3))", want: "[[0.0, 0.0, 0.0], [0.0, 0.0, 0.0]]"},
		{name: "output tensor int", src: "result = output_tensor([2], 'int32')", want: "[0, 0]"},
		{name: "output tensor scalar shape", src: "result = output_tensor(3, dtype='bool')", want: "[False, False, False]"},
		{name: "allocate with scope", src: "result = allocate((1,), 'float32', 'local')", want: "[0.0]"},
		{name: "parallel loop", src: "result = [i for i in parallel(3)]", want: "[0, 1, 2]"},
		{name: "unroll with bounds", src: "result = list(unroll(1, 4))", want: "[1, 2, 3]"},
		{name: "const range", src: "result = list(const_range(2))", want: "[0, 1]"},
		{name: "sigmoid", src: "result = sigmoid(0)", want: "0.5"},
		{name: "popcount", src: "result = popcount(7)", want: "3"},
		{name: "popcount above 32 bits", src: "result = popcount(1 << 40 | 1)", want: "2"},
		{name: "popcount full 64 bits", src: "result = popcount((1 << 64) - 1)", want: "64"},
		{name: "popcount big int", src: "result = popcount(1 << 100 | 1 << 70 | 3)", want: "4"},
		{name: "math module", src: "result = math.sqrt(16)", want: "4.0"},
		{name: "struct", src: "result = struct(a = 1).a", want: "1"},
		{name: "max num", src: "result = max_num > 1e300", want: "True"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBuiltins_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{name: "unknown dtype", src: "result = output_tensor(2, 'complex')", wantMsg: `unsupported dtype "complex"`},
		{name: "negative dim", src: "result = allocate((2, -1))", wantMsg: "shape[1] is negative"},
		{name: "bad dim", src: "result = output_tensor(('a',))", wantMsg: "shape[0]"},
		{name: "loop error names annotation", src: "result = serial('x')", wantMsg: "serial:"},
		{name: "sigmoid non number", src: "result = sigmoid('x')", wantMsg: "want number"},
		{name: "popcount negative", src: "result = popcount(-1)", wantMsg: "popcount: negative value -1"},
		{name: "popcount non int", src: "result = popcount(1.5)", wantMsg: "popcount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eval(t, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
