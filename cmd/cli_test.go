package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestAskGreeting(t *testing.T) {
	path := writeConfigFixture(t)

	stdout, _, err := executeCLI(t, "--config", path, "ask", "hello", "there")
	require.NoError(t, err)
	assert.Equal(t, "Hello, USER. I am the AGENT Ai PALS. You said: hello there\n", stdout)
}

func TestAskPlanning(t *testing.T) {
	path := writeConfigFixture(t)

	stdout, _, err := executeCLI(t, "--config", path, "ask", "--planning", "--interactions", "2", "How do we ship?")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Jane has been appointed as the leader.")
	assert.Contains(t, stdout, "Deliberation complete after")
	assert.Contains(t, stdout, "Actionable steps:")
}

func TestAskJSON(t *testing.T) {
	path := writeConfigFixture(t)

	stdout, _, err := executeCLI(t, "--config", path, "ask", "--json", "hi")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, `"system_version": "1.0"`)
}

func TestPlan(t *testing.T) {
	path := writeConfigFixture(t)

	stdout, _, err := executeCLI(t, "--config", path, "plan", "research,", "build")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Jane will work on research.")
	assert.Contains(t, stdout, "Sam will work on build.")
}

func TestAskRequiresPrompt(t *testing.T) {
	_, _, err := executeCLI(t, "ask")
	require.Error(t, err)
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := executeCLI(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+path)

	_, _, err = executeCLI(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "[ledger]")
	assert.Contains(t, stdout, "devils_advocate")
	assert.Contains(t, stdout, "Victor")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model:\n  provider: acme\n"), 0o600))

	_, _, err := executeCLI(t, "--config", path, "ask", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model provider")
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfigFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := `model:
  provider: mock
logging:
  level: error
deliberation:
  rounds: 2
  step_timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}
