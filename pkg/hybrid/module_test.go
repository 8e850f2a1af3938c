package hybrid

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leapstack-labs/hybrid/internal/registry"
	hstarlark "github.com/leapstack-labs/hybrid/internal/starlark"
	"github.com/leapstack-labs/hybrid/internal/testutil"
	"github.com/leapstack-labs/hybrid/pkg/ir"
	"github.com/leapstack-labs/hybrid/pkg/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
)

const addone = "def addone(x): return x + 1"

// countingCallable records native invocations.
type countingCallable struct {
	inner callable
	calls atomic.Int32
}

func (c *countingCallable) Call(ctx context.Context, args []any) (any, error) {
	c.calls.Add(1)
	return c.inner.Call(ctx, args)
}

// countingBuilder records op-builder invocations and returns a fixed artifact.
type countingBuilder struct {
	artifact any
	err      error
	calls    atomic.Int32
}

func (b *countingBuilder) Build(_ *script.FuncDef, _ ir.Environment, _ []any) (any, error) {
	b.calls.Add(1)
	return b.artifact, b.err
}

// newCounted builds src with a counting builder and wraps the native
// callable in a counter.
func newCounted(t *testing.T, src string) (*Module, *countingBuilder, *countingCallable) {
	t.Helper()
	builder := &countingBuilder{artifact: "artifact"}
	loader := NewLoader(
		WithLogger(testutil.NewTestLogger(t)),
		WithOpBuilder(builder),
		WithTempDir(t.TempDir()),
	)
	m, err := loader.New(context.Background(), src)
	require.NoError(t, err)

	native := &countingCallable{inner: m.fn}
	m.fn = native
	return m, builder, native
}

func TestNew_DiscoversName(t *testing.T) {
	m, err := New(context.Background(), addone)
	require.NoError(t, err)

	assert.Equal(t, "addone", m.Name())
	assert.Equal(t, script.Marker+"\n"+addone, m.Source())
	assert.Equal(t, "addone(x)", m.Signature())
	assert.Equal(t, []string{"x"}, m.Params())
	assert.Equal(t, Bound, m.State())
	assert.Empty(t, m.Path(), "inline modules have no backing file")
	require.NotNil(t, m.Definition())
	assert.Equal(t, "addone", m.Definition().Name)
}

func TestNew_ExplicitName(t *testing.T) {
	loader := NewLoader(WithLogger(testutil.NewTestLogger(t)))

	m, err := loader.New(context.Background(), addone, WithName("increment"))
	require.NoError(t, err)
	assert.Equal(t, "increment", m.Name())

	// The definition keeps its own identifier and still runs.
	got, err := m.Call(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	unit, ok := loader.Units().Get("increment")
	require.True(t, ok, "unit is registered under the explicit name")
	assert.Same(t, m.Unit(), unit)
	_, ok = loader.Units().Get("addone")
	assert.False(t, ok)
}

func TestNew_DefinitionCount(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantCount int
	}{
		{name: "no definition", src: "x = 1\n", wantCount: 0},
		{name: "empty", src: "", wantCount: 0},
		{name: "two definitions", src: "def a(x): return x\ndef b(x): return x\n", wantCount: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(WithLogger(testutil.NewTestLogger(t)))
			m, err := loader.New(context.Background(), tt.src)
			require.Error(t, err)
			assert.Nil(t, m, "no module escapes a failed construction")
			assert.True(t, errors.Is(err, ErrDefinitionCount))

			var countErr *script.DefinitionCountError
			require.True(t, errors.As(err, &countErr), "expected *script.DefinitionCountError, got %T", err)
			assert.Equal(t, tt.wantCount, countErr.Count)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, SourceAcquired, loadErr.State)
			assert.Equal(t, 0, loader.Units().Count(), "nothing is registered")
		})
	}
}

func TestNew_ParseError(t *testing.T) {
	m, err := New(context.Background(), "def f(x) return x")
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, ErrParse))

	var perr *script.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "script.star", perr.File)
	assert.Equal(t, 2, perr.Pos.Line, "marker line shifts the definition to line 2")
}

func TestNew_BindErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantMsg string
	}{
		{name: "undefined name", src: "def f(x):\n    return y\n", wantMsg: "undefined: y"},
		{name: "top level failure", src: "X = 1 // 0\ndef f(x): return x\n", wantMsg: "division by zero"},
		{name: "shadowed entry point", src: "def f(x): return x\nf = 1\n", wantMsg: "f is a int, not callable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(WithLogger(testutil.NewTestLogger(t)))
			m, err := loader.New(context.Background(), tt.src)
			require.Error(t, err)
			assert.Nil(t, m)
			assert.True(t, errors.Is(err, ErrBind), "expected ErrBind, got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var bindErr *BindError
			require.True(t, errors.As(err, &bindErr))
			assert.Equal(t, "f", bindErr.Name)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, DefinitionResolved, loadErr.State)
			assert.Equal(t, 0, loader.Units().Count())
		})
	}
}

func TestBindError_Unwrap(t *testing.T) {
	_, err := New(context.Background(), "X = 1 // 0\ndef f(x): return x\n")
	require.Error(t, err)

	var execErr *hstarlark.ExecError
	require.True(t, errors.As(err, &execErr), "expected *ExecError in chain, got %T", err)
	assert.NotEmpty(t, execErr.Backtrace)
}

func TestNew_RemovesTempDir(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "success", src: addone},
		{name: "definition count failure", src: "x = 1"},
		{name: "parse failure", src: "def ("},
		{name: "bind failure", src: "def f(x):\n    return y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := t.TempDir()
			_, _ = NewLoader(WithTempDir(base)).New(context.Background(), tt.src)

			entries, err := os.ReadDir(base)
			require.NoError(t, err)
			assert.Empty(t, entries, "temp dir must be removed on every exit path")
		})
	}
}

func TestNew_TempDirFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	_, err := NewLoader(WithTempDir(missing)).New(context.Background(), addone)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "tempdir", ioErr.Op)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kernel.star")
	require.NoError(t, os.WriteFile(path, []byte(script.Wrap(addone)), 0o644))

	m, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "addone", m.Name())
	assert.Equal(t, path, m.Path())
	assert.Equal(t, path, m.Unit().Path)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.star")

	m, err := Load(context.Background(), path)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read", ioErr.Op)
	assert.Equal(t, path, ioErr.Path)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, Uninitialized, loadErr.State)
}

func TestSave_Extension(t *testing.T) {
	m, err := New(context.Background(), addone)
	require.NoError(t, err)
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "appends extension", path: filepath.Join(dir, "kernel"), want: filepath.Join(dir, "kernel.star")},
		{name: "keeps extension", path: filepath.Join(dir, "other.star"), want: filepath.Join(dir, "other.star")},
		{name: "foreign extension", path: filepath.Join(dir, "k.py"), want: filepath.Join(dir, "k.py.star")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Save(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			data, err := os.ReadFile(got)
			require.NoError(t, err)
			assert.Equal(t, m.Source(), string(data), "source is written verbatim")
		})
	}
}

func TestSave_Error(t *testing.T) {
	m, err := New(context.Background(), addone)
	require.NoError(t, err)

	_, err = m.Save(filepath.Join(t.TempDir(), "missing", "kernel"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIO))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	src := "SCALE = 3\n\ndef scale(x):\n    return x * SCALE\n"
	m, err := New(context.Background(), src)
	require.NoError(t, err)

	path, err := m.Save(filepath.Join(t.TempDir(), "scale"))
	require.NoError(t, err)

	loaded, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, m.Source(), loaded.Source())
	assert.Equal(t, m.Name(), loaded.Name())

	got, err := loaded.Call(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)

	// Rebuilding from saved text keeps a single marker line.
	rebuilt, err := New(context.Background(), loaded.Source())
	require.NoError(t, err)
	assert.Equal(t, m.Source(), rebuilt.Source())
}

func TestCall_NativePath(t *testing.T) {
	m, builder, native := newCounted(t, addone)

	got, err := m.Call(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)
	assert.Equal(t, int32(1), native.calls.Load())
	assert.Equal(t, int32(0), builder.calls.Load(), "op-builder must not run for concrete arguments")
}

func TestCall_SymbolicPath(t *testing.T) {
	m, builder, native := newCounted(t, addone)

	got, err := m.Call(context.Background(), ir.NewPlaceholder("A", []int64{3}, ""))
	require.NoError(t, err)
	assert.Equal(t, "artifact", got, "the op-builder artifact is returned unchanged")
	assert.Equal(t, int32(1), builder.calls.Load())
	assert.Equal(t, int32(0), native.calls.Load(), "native function must not run for symbolic arguments")
}

func TestCall_MixedArgumentsRouteNative(t *testing.T) {
	m, builder, native := newCounted(t, "def add(a, b): return a + b")

	_, err := m.Call(context.Background(), ir.NewPlaceholder("A", nil, ""), 1)
	require.Error(t, err, "the native function cannot add a placeholder")
	assert.Equal(t, int32(1), native.calls.Load())
	assert.Equal(t, int32(0), builder.calls.Load())
}

func TestCall_NoArgumentsRouteNative(t *testing.T) {
	m, builder, native := newCounted(t, "def seven(): return 7")

	got, err := m.Call(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got)
	assert.Equal(t, int32(1), native.calls.Load())
	assert.Equal(t, int32(0), builder.calls.Load())
}

func TestCall_ErrorsPropagateUnchanged(t *testing.T) {
	want := errors.New("lowering failed")
	builder := &countingBuilder{err: want}
	m, err := NewLoader(WithOpBuilder(builder)).New(context.Background(), addone)
	require.NoError(t, err)

	_, err = m.Call(context.Background(), ir.NewPlaceholder("A", nil, ""))
	assert.Same(t, want, err)
}

func TestCall_CustomClassifier(t *testing.T) {
	builder := &countingBuilder{artifact: "ir"}
	everything := ir.ClassifierFunc(func([]any) bool { return true })
	m, err := NewLoader(WithOpBuilder(builder), WithClassifier(everything)).New(context.Background(), addone)
	require.NoError(t, err)

	got, err := m.Call(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "ir", got)
	assert.Equal(t, int32(1), builder.calls.Load())
}

func TestCall_ReferenceBuilder(t *testing.T) {
	m, err := New(context.Background(), "SCALE = 2\ndef scale(x):\n    return x * SCALE\n")
	require.NoError(t, err)

	got, err := m.Call(context.Background(), ir.NewPlaceholder("A", []int64{4}, ""))
	require.NoError(t, err)

	op, ok := got.(*ir.Op)
	require.True(t, ok, "expected *ir.Op, got %T", got)
	assert.Equal(t, "scale(x=A)", op.String())
	assert.Equal(t, []string{"SCALE"}, op.Captures)
	assert.Equal(t, int64(2), m.Environment().Globals["SCALE"])
}

func TestCall_Builtins(t *testing.T) {
	src := `def outer_product(a, b):
    c = output_tensor((len(a), len(b)), 'int32')
    for i in parallel(len(a)):
        for j in serial(len(b)):
            c[i][j] = a[i] * b[j]
    return c
`
	m, err := New(context.Background(), src)
	require.NoError(t, err)

	got, err := m.Call(context.Background(), []int64{1, 2}, []int64{3, 4})
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{int64(3), int64(4)}, []any{int64(6), int64(8)}}, got)
}

func TestCall_BitwiseAndSlices(t *testing.T) {
	src := `def pack(x, bits):
    mask = ~0 << 4
    y = x
    y <<= 1
    return (y | 1) & ~mask ^ 2, bits[1:], bits[::2]
`
	m, err := New(context.Background(), src)
	require.NoError(t, err)

	got, err := m.Call(context.Background(), 5, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(9), []any{int64(2), int64(3)}, []any{int64(1), int64(3)}}, got)
}

func TestCall_BigIntResult(t *testing.T) {
	m, err := New(context.Background(), "def scale(x): return x * 100000000000000000000")
	require.NoError(t, err)

	got, err := m.Call(context.Background(), 2)
	require.NoError(t, err)
	n, ok := got.(*big.Int)
	require.True(t, ok, "expected *big.Int, got %T", got)
	assert.Equal(t, "200000000000000000000", n.String())
}

func TestCall_NonStringDictKeys(t *testing.T) {
	m, err := New(context.Background(), "def f(x): return {1: x}")
	require.NoError(t, err)

	got, err := m.Call(context.Background(), 3)
	require.NoError(t, err, "the function succeeded so the call must too")
	dict, ok := got.(*starlark.Dict)
	require.True(t, ok, "expected *starlark.Dict, got %T", got)
	assert.Equal(t, "{1: 3}", dict.String())
}

func TestCall_Cancelled(t *testing.T) {
	m, err := New(context.Background(), "def spin():\n    while True:\n        pass\n")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = m.Call(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCall_MaxSteps(t *testing.T) {
	m, err := NewLoader(WithMaxSteps(500)).New(context.Background(), "def spin():\n    while True:\n        pass\n")
	require.NoError(t, err)

	_, err = m.Call(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many steps")
}

func TestCall_Concurrent(t *testing.T) {
	m, err := New(context.Background(), addone)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]any, 50)
	errs := make([]error, 50)
	for i := range results {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n], errs[n] = m.Call(context.Background(), n)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(i+1), results[i])
	}
}

func TestLoader_ConcurrentLoads(t *testing.T) {
	units := registry.NewUnits()
	loader := NewLoader(WithRegistry(units))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := loader.New(context.Background(), addone)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, units.Count(), "same name, last registration wins")
}

func TestLoader_RebindReleasesReplacedUnit(t *testing.T) {
	loader := NewLoader(WithTempDir(t.TempDir()))

	first, err := loader.New(context.Background(), addone)
	require.NoError(t, err)
	firstID := first.Unit().ID

	for i := 0; i < 20; i++ {
		_, err := loader.New(context.Background(), addone)
		require.NoError(t, err)
	}

	_, ok := loader.Units().GetByID(firstID)
	assert.False(t, ok, "the loader must not retain a replaced unit")
	assert.Equal(t, 1, loader.Units().Count())

	// The first module still owns its callable.
	got, err := first.Call(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "source acquired", SourceAcquired.String())
	assert.Equal(t, "definition resolved", DefinitionResolved.String())
	assert.Equal(t, "bound", Bound.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestLoader_Logging(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	loader := NewLoader(WithLogger(logger), WithTempDir(t.TempDir()))

	m, err := loader.New(context.Background(), "def shout(x):\n    print(\"got\", x)\n    return x\n", WithName("loud"))
	require.NoError(t, err)

	_, err = m.Call(context.Background(), 3)
	require.NoError(t, err)

	assert.Len(t, logs.Lines(`msg="got 3"`), 1, "print output is logged at info")
	assert.Len(t, logs.Lines("module name differs from definition"), 1)
	assert.Len(t, logs.Lines("bound unit"), 1)
	assert.Contains(t, logs.String(), "level=DEBUG")
}
