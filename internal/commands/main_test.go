package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "hgb-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "hgb")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/hgb")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runHGB(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HGB_LOG_LEVEL=error")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// initBooks creates a books directory without git and returns its path.
func initBooks(t *testing.T, extra ...string) string {
	t.Helper()
	dir := t.TempDir()
	args := append([]string{"init", dir, "--name", "Test GmbH", "--no-git"}, extra...)
	out, err := runHGB(t, args...)
	require.NoError(t, err, out)
	return dir
}
