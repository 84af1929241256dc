// Package gitops keeps the books directory under version control.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if _, err := run(dir, nil, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// HasChanges reports whether the working tree has uncommitted or untracked
// files.
func HasChanges(dir string) (bool, error) {
	out, err := run(dir, nil, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll stages all files and creates a commit authored and committed by
// the given identity. Returns the short commit hash.
func CommitAll(dir, message, authorName, authorEmail string) (string, error) {
	if _, err := run(dir, nil, "add", "-A"); err != nil {
		return "", err
	}

	identity := []string{
		"GIT_AUTHOR_NAME=" + authorName,
		"GIT_AUTHOR_EMAIL=" + authorEmail,
		"GIT_COMMITTER_NAME=" + authorName,
		"GIT_COMMITTER_EMAIL=" + authorEmail,
	}
	if _, err := run(dir, identity, "commit", "--quiet", "-m", message); err != nil {
		return "", err
	}

	out, err := run(dir, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommitIfChanged commits only when the working tree is dirty. It returns an
// empty hash when there was nothing to commit.
func CommitIfChanged(dir, message, authorName, authorEmail string) (string, error) {
	dirty, err := HasChanges(dir)
	if err != nil || !dirty {
		return "", err
	}
	return CommitAll(dir, message, authorName, authorEmail)
}

func run(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
