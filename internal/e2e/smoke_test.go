package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	_, stderr, err := runZcgw(t, binaryPath, home,
		"config", "set",
		"--provider", "anthropic",
		"--model", "claude-sonnet-4",
		"--api-key", "sk-test-123",
	)
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runZcgw(t, binaryPath, home, "config", "show")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "anthropic")
	assert.Contains(t, stdout, "claude-sonnet-4")
	assert.NotContains(t, stdout, "sk-test-123")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "zcgw-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/zcgw")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build zcgw binary: %s", string(output))
	return binaryPath
}

func runZcgw(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
