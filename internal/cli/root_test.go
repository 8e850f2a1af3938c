package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/hybrid/internal/cli/output"
	"github.com/leapstack-labs/hybrid/internal/cli/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loopSrc = "def spin(n):\n    total = 0\n    for i in range(n):\n        total += i\n    return total\n"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_Subcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"check", "inspect", "run", "wrap", "watch", "version", "completion"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	for _, flag := range []string{"config", "temp-dir", "max-steps", "log-level", "log-format", "output"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRoot_ConfigFileSetsOutput(t *testing.T) {
	dir := testutil.SetupTestProject(t, "output: json\n", map[string]string{
		"addone.star": "def addone(x):\n    return x + 1\n",
	})
	t.Chdir(dir)

	out, _, err := run(t, "run", "addone.star", "1")
	require.NoError(t, err)

	var got output.RunOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "native", got.Path)
	assert.EqualValues(t, 2, got.Result)
}

func TestRoot_FlagOverridesConfigFile(t *testing.T) {
	dir := testutil.SetupTestProject(t, "output: json\n", map[string]string{
		"addone.star": "def addone(x):\n    return x + 1\n",
	})
	t.Chdir(dir)

	out, _, err := run(t, "run", "-o", "text", "addone.star", "1")
	require.NoError(t, err)
	assert.Equal(t, "2", strings.TrimSpace(out))
}

func TestRoot_EnvOverridesConfigFile(t *testing.T) {
	dir := testutil.SetupTestProject(t, "max_steps: 0\n", map[string]string{"spin.star": loopSrc})
	t.Chdir(dir)
	t.Setenv("HYBRID_MAX_STEPS", "100")

	_, _, err := run(t, "run", "spin.star", "100000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many steps")
}

func TestRoot_MaxStepsFlag(t *testing.T) {
	dir := testutil.SetupTestProject(t, "", map[string]string{"spin.star": loopSrc})
	t.Chdir(dir)

	out, _, err := run(t, "run", "spin.star", "10")
	require.NoError(t, err)
	assert.Equal(t, "45", strings.TrimSpace(out))

	_, _, err = run(t, "--max-steps", "100", "run", "spin.star", "100000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many steps")
}

func TestRoot_MissingTempDir(t *testing.T) {
	dir := testutil.SetupTestProject(t, "", nil)
	t.Chdir(dir)

	_, _, err := run(t, "--temp-dir", filepath.Join(dir, "missing"), "check", "x.star")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temp directory does not exist")
}

func TestRoot_InvalidConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t, "log_level: loud\n", nil)
	t.Chdir(dir)

	_, _, err := run(t, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log_level "loud"`)
}

func TestRoot_DebugLogging(t *testing.T) {
	dir := testutil.SetupTestProject(t, "", map[string]string{
		"addone.star": "def addone(x):\n    return x + 1\n",
	})
	t.Chdir(dir)

	_, errOut, err := run(t, "--log-level", "debug", "--log-format", "json", "check", "addone.star")
	require.NoError(t, err)
	assert.Contains(t, errOut, `"level":"DEBUG"`)
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "hybrid")

	_, _, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}
