package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accountsCSV "github.com/cleared-dev/hgb/internal/accounts"
)

func readAccounts(t *testing.T, dir string) int {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, accountsCSV.FileName))
	require.NoError(t, err)
	defer f.Close()

	accts, err := accountsCSV.ReadAccounts(f)
	require.NoError(t, err)
	return len(accts)
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := initBooks(t)

	info, err := os.Stat(filepath.Join(dir, "accounts"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	for _, f := range []string{"hgb.yaml", ".gitignore", accountsCSV.FileName} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, "%s should exist", f)
	}
	assert.Equal(t, 0, readAccounts(t, dir), "plain init starts with no accounts")
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runHGB(t, "init", dir, "--name", "Bäckerei Müller", "--legal-form", "UG", "--no-git")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "hgb.yaml"))
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Bäckerei Müller")
	assert.Contains(t, contents, "legal_form: UG")
	assert.Contains(t, contents, "driver: csv")
	assert.Contains(t, contents, "auto_commit: false")
}

func TestInit_Starter(t *testing.T) {
	dir := initBooks(t, "--starter")
	assert.Equal(t, 11, readAccounts(t, dir), "starter pack has 11 accounts")
}

func TestInit_GitRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	out, err := runHGB(t, "init", dir, "--name", "Test GmbH")
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	msg, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "init: Initialize Test GmbH")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	author, err := authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(author), "HGB Buchhaltung <buchhaltung@hgb.local>")
}

func TestInit_AutoCommitsPostings(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	out, err := runHGB(t, "init", dir, "--name", "Test GmbH", "--starter")
	require.NoError(t, err, out)

	out, err = runHGB(t, "--repo", dir, "account", "debit", "1200", "100")
	require.NoError(t, err, out)

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	msg, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "debit: 1200 100.00")
}

func TestInit_Gitignore(t *testing.T) {
	dir := initBooks(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	for _, pattern := range []string{".env", "*.db"} {
		assert.Contains(t, string(data), pattern, ".gitignore should contain %s", pattern)
	}
}

func TestInit_RequiresName(t *testing.T) {
	_, err := runHGB(t, "init", t.TempDir())
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := initBooks(t)
	out, err := runHGB(t, "init", dir, "--name", "Again", "--no-git")
	require.Error(t, err)
	assert.Contains(t, out, "already exists")
}

func TestCommands_RequireBooks(t *testing.T) {
	out, err := runHGB(t, "--repo", t.TempDir(), "account", "list")
	require.Error(t, err)
	assert.Contains(t, out, "run 'hgb init' first")
}
