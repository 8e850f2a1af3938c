package starlark

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

func TestExec(t *testing.T) {
	src := `# @hybrid.script
SCALE = 2
SCALE = 3

def scale(x):
    return x * SCALE

if SCALE > 2:
    BIG = True
`
	globals, err := Exec(context.Background(), "scale.star", []byte(src), ExecOptions{})
	require.NoError(t, err)

	assert.Equal(t, starlark.MakeInt(3), globals["SCALE"], "globals may be reassigned")
	assert.Equal(t, starlark.True, globals["BIG"], "top-level control flow is allowed")
	_, ok := globals["scale"].(*starlark.Function)
	assert.True(t, ok, "expected *starlark.Function, got %T", globals["scale"])
}

func TestExec_FreezesGlobals(t *testing.T) {
	globals, err := Exec(context.Background(), "frozen.star", []byte("ITEMS = [1, 2]\n"), ExecOptions{})
	require.NoError(t, err)

	items := globals["ITEMS"].(*starlark.List)
	assert.Error(t, items.Append(starlark.MakeInt(3)), "frozen list must reject mutation")
}

func TestExec_Errors(t *testing.T) {
	tests := []struct {
		name          string
		src           string
		wantMsg       string
		wantBacktrace bool
	}{
		{name: "undefined name", src: "def f(x):\n    return y\n", wantMsg: "undefined: y"},
		{name: "runtime failure", src: "X = 1 // 0\n", wantMsg: "division by zero", wantBacktrace: true},
		{name: "syntax error", src: "def f(:\n", wantMsg: "bad.star:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Exec(context.Background(), "bad.star", []byte(tt.src), ExecOptions{})
			require.Error(t, err)

			var execErr *ExecError
			require.True(t, errors.As(err, &execErr), "expected *ExecError, got %T", err)
			assert.Equal(t, "bad.star", execErr.File)
			assert.Contains(t, execErr.Message, tt.wantMsg)
			if tt.wantBacktrace {
				assert.NotEmpty(t, execErr.Backtrace)
			}
		})
	}
}

func TestExec_CustomPredeclared(t *testing.T) {
	_, err := Exec(context.Background(), "p.star", []byte("X = output_tensor(2)\n"), ExecOptions{
		Predeclared: starlark.StringDict{},
	})
	require.Error(t, err, "output_tensor is not predeclared")
}
