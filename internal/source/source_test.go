package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	for _, p := range []string{
		"https://github.com/nix-community/home-manager",
		"http://example.com/repo.git",
		"git@github.com:owner/repo.git",
		"ssh://git@host/repo",
		"file:///srv/repo",
	} {
		assert.True(t, IsRemote(p), p)
	}
	for _, p := range []string{".", "./modules", "/etc/nixos", "github.com/owner/repo"} {
		assert.False(t, IsRemote(p), p)
	}
}

func TestResolveLocal(t *testing.T) {
	c, err := Resolve(context.Background(), "./modules", Options{
		Git: func(context.Context, ...string) error { t.Fatal("git must not run"); return nil },
	})
	require.NoError(t, err)
	assert.Equal(t, "./modules", c.Dir)
	assert.False(t, c.Remote)
	assert.NoError(t, c.Close())
}

func TestResolveRemote(t *testing.T) {
	var got []string
	git := func(_ context.Context, args ...string) error {
		got = args
		dest := args[len(args)-1]
		return os.WriteFile(filepath.Join(dest, "default.nix"), []byte("{}"), 0o644)
	}

	c, err := Resolve(context.Background(), "https://example.com/repo.git", Options{
		Branch: "release",
		Depth:  3,
		Logger: log.New(io.Discard),
		Git:    git,
	})
	require.NoError(t, err)
	assert.True(t, c.Remote)
	assert.Equal(t, []string{"clone", "--quiet", "--depth", "3", "--branch", "release", "--", "https://example.com/repo.git", c.Dir}, got)
	assert.FileExists(t, filepath.Join(c.Dir, "default.nix"))

	require.NoError(t, c.Close())
	assert.NoDirExists(t, c.Dir)
}

func TestResolveRemoteFailureCleansUp(t *testing.T) {
	var dest string
	_, err := Resolve(context.Background(), "git@host:repo.git", Options{
		Logger: log.New(io.Discard),
		Git: func(_ context.Context, args ...string) error {
			dest = args[len(args)-1]
			return errors.New("repository not found")
		},
	})
	assert.ErrorContains(t, err, "cloning git@host:repo.git: repository not found")
	assert.NoDirExists(t, dest)
}
