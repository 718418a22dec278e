package collect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/nix-options-doc/internal/parser"
)

func enableModule(name, desc string) string {
	return fmt.Sprintf("{ lib, ... }:\n{\n  options.%s.enable = lib.mkEnableOption %q;\n}\n", name, desc)
}

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo", 0o755))
	for path, content := range files {
		full := filepath.Join("/repo", path)
		require.NoError(t, fs.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, afero.WriteFile(fs, full, []byte(content), 0o644))
	}
	return fs
}

func optionNames(opts []parser.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Name
	}
	return out
}

func TestCollectBasic(t *testing.T) {
	fs := memFS(t, map[string]string{
		"main.nix":         enableModule("main", "Main"),
		"modules/a.nix":    enableModule("a", "A"),
		"modules/b/b.nix":  enableModule("b", "B"),
		"README.md":        "# not nix",
		"modules/c.nix.in": enableModule("c", "C"),
	})

	res, err := New(fs, Options{}).Collect(context.Background(), "/repo")
	require.NoError(t, err)

	assert.Equal(t, []string{"main.nix", "modules/a.nix", "modules/b/b.nix"}, res.Files)
	assert.Equal(t, []string{"options.main.enable", "options.a.enable", "options.b.enable"}, optionNames(res.Options))
	assert.Equal(t, "modules/a.nix", res.Options[1].File)
	assert.Equal(t, 3, res.Options[1].Line)
	assert.Empty(t, res.Skipped)
}

func TestCollectHiddenEntries(t *testing.T) {
	fs := memFS(t, map[string]string{
		".hidden.nix":         enableModule("hidden", "Hidden file"),
		".git/config.nix":     enableModule("git", "Hidden dir"),
		"visible/.secret.nix": enableModule("secret", "Nested hidden"),
		"visible/ok.nix":      enableModule("ok", "Visible"),
	})

	res, err := New(fs, Options{}).Collect(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"options.ok.enable"}, optionNames(res.Options))
}

func TestCollectExclusions(t *testing.T) {
	fs := memFS(t, map[string]string{
		"main.nix":              enableModule("main", "Main"),
		"excluded/excluded.nix": enableModule("excluded", "Excluded"),
		"excludedness/kept.nix": enableModule("kept", "Kept"),
		"deep/skip/x.nix":       enableModule("deep", "Deep"),
	})

	all, err := New(fs, Options{}).Collect(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Contains(t, optionNames(all.Options), "options.excluded.enable")

	res, err := New(fs, Options{Exclude: []string{"excluded", "/repo/deep/skip", " "}}).Collect(context.Background(), "/repo")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"options.main.enable", "options.kept.enable"}, optionNames(res.Options))
}

func TestCollectExtension(t *testing.T) {
	fs := memFS(t, map[string]string{
		"a.nix":  enableModule("a", "A"),
		"b.tmpl": enableModule("b", "B"),
	})

	res, err := New(fs, Options{Extension: ".tmpl"}).Collect(context.Background(), "/repo")
	require.NoError(t, err)
	assert.Equal(t, []string{"options.b.enable"}, optionNames(res.Options))
}

func TestCollectErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := New(afero.NewMemMapFs(), Options{}).Collect(context.Background(), "/nope")
		require.ErrorIs(t, err, ErrRootNotFound)
	})

	t.Run("root is a file", func(t *testing.T) {
		fs := memFS(t, map[string]string{"file.nix": "{ }"})
		_, err := New(fs, Options{}).Collect(context.Background(), "/repo/file.nix")
		require.ErrorIs(t, err, ErrRootNotDir)
	})

	t.Run("invalid file does not abort", func(t *testing.T) {
		fs := memFS(t, map[string]string{
			"broken.nix": "{ options.x = mkEnableOption \"unterminated; }",
			"good.nix":   enableModule("good", "Good"),
		})
		require.NoError(t, fs.MkdirAll("/repo/dir.nix", 0o755))

		res, err := New(fs, Options{}).Collect(context.Background(), "/repo")
		require.NoError(t, err)
		assert.Equal(t, []string{"options.good.enable"}, optionNames(res.Options))
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, "broken.nix", res.Skipped[0].File)
		assert.Error(t, res.Skipped[0].Err)
	})
}

func TestCollectDuplicates(t *testing.T) {
	files := map[string]string{
		"a.nix": "{ options.test.enable = mkEnableOption \"from a\";\n  options.test.enable = mkEnableOption \"from a again\"; }",
		"b.nix": enableModule("test", "from b"),
		"c.nix": enableModule("test", "from c"),
	}
	for i := 0; i < 20; i++ {
		files[fmt.Sprintf("z/%02d.nix", i)] = enableModule("test", fmt.Sprintf("late %d", i))
	}
	fs := memFS(t, files)

	for _, jobs := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("jobs=%d", jobs), func(t *testing.T) {
			res, err := New(fs, Options{Jobs: jobs}).Collect(context.Background(), "/repo")
			require.NoError(t, err)
			require.Len(t, res.Options, 1)
			assert.Equal(t, "from a again", res.Options[0].Description)
			assert.Equal(t, "a.nix", res.Options[0].File)
			assert.Equal(t, 22, res.Duplicates)
		})
	}
}

func TestCollectReplacements(t *testing.T) {
	fs := memFS(t, map[string]string{
		"bt.nix": "{ options.${namespace}.bluetooth.enable = lib.mkEnableOption \"bluetooth for ${namespace}\"; }",
	})
	res, err := New(fs, Options{Replacements: map[string]string{"namespace": "snowflake"}}).Collect(context.Background(), "/repo")
	require.NoError(t, err)
	require.Len(t, res.Options, 1)
	assert.Equal(t, "options.snowflake.bluetooth.enable", res.Options[0].Name)
	assert.Equal(t, "bluetooth for snowflake", res.Options[0].Description)
}

func TestCollectProgress(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 10; i++ {
		files[fmt.Sprintf("m%d.nix", i)] = enableModule(fmt.Sprintf("m%d", i), "x")
	}
	fs := memFS(t, files)

	var mu sync.Mutex
	var seen []int
	progress := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 10, total)
		seen = append(seen, done)
	}

	_, err := New(fs, Options{Jobs: 4, Progress: progress}).Collect(context.Background(), "/repo")
	require.NoError(t, err)
	sort.Ints(seen)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, seen)
}

func TestCollectCancelled(t *testing.T) {
	fs := memFS(t, map[string]string{"a.nix": enableModule("a", "A")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(fs, Options{}).Collect(ctx, "/repo")
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestCollectSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "linked.nix"), []byte(enableModule("linked", "Linked")), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.nix"), []byte(enableModule("main", "Main")), 0o644))
	if err := os.Symlink(outside, filepath.Join(root, "external")); err != nil {
		t.Skip("symlinks not supported:", err)
	}
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

	fs := afero.NewOsFs()

	res, err := New(fs, Options{FollowSymlinks: true}).Collect(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"options.linked.enable", "options.main.enable"}, optionNames(res.Options))
	assert.Equal(t, "external/linked.nix", res.Options[0].File)

	res, err = New(fs, Options{FollowSymlinks: false}).Collect(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{"options.main.enable"}, optionNames(res.Options))
}
