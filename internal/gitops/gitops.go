// Package gitops versions a project directory with the git command line.
package gitops

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoChanges is returned by Commit when the work tree is clean.
var ErrNoChanges = errors.New("nothing to commit")

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func run(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = append(os.Environ(), env...)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(out.String()), err)
	}
	return strings.TrimSpace(out.String()), nil
}

// Init creates a repository at dir. An existing repository is left alone.
func Init(dir string) error {
	if IsRepo(dir) {
		return nil
	}
	_, err := run(dir, nil, "init", "--quiet")
	return err
}

// Author identifies who commits.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Commit stages every change in dir and commits it, returning the short hash.
func Commit(dir, message string, author Author) (string, error) {
	if _, err := run(dir, nil, "add", "-A"); err != nil {
		return "", err
	}
	status, err := run(dir, nil, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	if status == "" {
		return "", ErrNoChanges
	}
	// committer identity may be unset on the host
	env := []string{"GIT_COMMITTER_NAME=" + author.Name, "GIT_COMMITTER_EMAIL=" + author.Email}
	if _, err := run(dir, env, "commit", "--quiet", "-m", message, "--author", author.String()); err != nil {
		return "", err
	}
	return run(dir, nil, "rev-parse", "--short", "HEAD")
}
