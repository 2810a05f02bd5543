package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncOpensExistingCheckout(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "deck.md"), []byte("W: ang\nT: particle\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("deck.md")
	require.NoError(t, err)
	_, err = wt.Commit("add deck", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	// No "origin" remote: pulling an existing checkout must surface the error.
	err = Sync(context.Background(), "https://example.com/decks.git", dir, Options{})
	assert.Error(t, err)
}

func TestSyncRejectsUnreadablePath(t *testing.T) {
	parent := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(parent, nil, 0o644))

	// A path below a regular file cannot be stat'ed as a directory.
	err := Sync(context.Background(), "https://example.com/decks.git", filepath.Join(parent, "child"), Options{})
	assert.Error(t, err)
}
