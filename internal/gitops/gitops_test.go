package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if !Available() {
		t.Skip("git not available")
	}
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir))

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir))

	// second init is a no-op
	require.NoError(t, Init(dir))
}

func TestCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts.csv"), []byte("account_id\n"), 0o644))

	author := Author{Name: "Test Author", Email: "test@example.com"}
	hash, err := Commit(dir, "init: Household", author)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "init: Household|Test Author <test@example.com>")

	_, err = Commit(dir, "again", author)
	require.ErrorIs(t, err, ErrNoChanges)
}

func TestCommit_NotARepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	_, err := Commit(dir, "x", Author{Name: "a", Email: "a@b"})
	require.Error(t, err)
}
