package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and the
// exit code main would use.
func execute(t *testing.T, args ...string) (string, int) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), GetExitCode(err)
}

// writeConfig writes a logos.yaml into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logos.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "logos", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"parse", "resolve", "invoke", "compose", "define", "laws", "test", "trace"}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	_, code := execute(t, "parse", "world.house", "--format", "xml")
	assert.Equal(t, ExitCommandError, code)
}

func TestUsageErrorsAreCommandErrors(t *testing.T) {
	_, code := execute(t, "parse")
	assert.Equal(t, ExitCommandError, code)

	_, code = execute(t, "parse", "world.house", "--no-such-flag")
	assert.Equal(t, ExitCommandError, code)
}

func TestBadConfig(t *testing.T) {
	cfg := writeConfig(t, "suggestions: 0\n")
	_, code := execute(t, "--config", cfg, "invoke", "world.house.manifest")
	assert.Equal(t, ExitCommandError, code)

	_, code = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "resolve", "world.house")
	assert.Equal(t, ExitCommandError, code)
}
