package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/nix-options-doc/internal/collect"
	"github.com/saltyorg/nix-options-doc/internal/config"
	"github.com/saltyorg/nix-options-doc/internal/docs"
	"github.com/saltyorg/nix-options-doc/internal/parser"
	"github.com/saltyorg/nix-options-doc/internal/types"
)

const fooModule = `{ lib, ... }:
{
  options.services.foo = {
    enable = lib.mkEnableOption "the foo service";
    port = lib.mkOption {
      type = lib.types.int;
      default = 8080;
    };
  };
}
`

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := appFs
	appFs = afero.NewMemMapFs()
	t.Cleanup(func() { appFs = prev })
	return appFs
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSourceFlagsApply(t *testing.T) {
	var f sourceFlags
	c := &cobra.Command{Use: "x"}
	f.register(c)
	require.NoError(t, c.ParseFlags([]string{
		"--path", "/src", "-j", "3", "--replace", "ns=services.foo",
		"-e", "a,b", "--prefix", "services", "--follow-symlinks=false", "-s",
	}))

	cfg := config.Default()
	cfg.Replacements = map[string]string{"keep": "me"}
	require.NoError(t, f.apply(c, cfg))

	assert.Equal(t, "/src", cfg.Path)
	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, map[string]string{"keep": "me", "ns": "services.foo"}, cfg.Replacements)
	assert.Equal(t, []string{"a", "b"}, cfg.Exclude)
	assert.Equal(t, "services", cfg.Filter.Prefix)
	assert.False(t, cfg.FollowSymlinks)
	assert.True(t, cfg.Output.Sort)
	assert.Equal(t, "nix", cfg.Extension, "unchanged flags keep config values")
}

func TestSourceFlagsApplyInvalid(t *testing.T) {
	var f sourceFlags
	c := &cobra.Command{Use: "x"}
	f.register(c)
	require.NoError(t, c.ParseFlags([]string{"--replace", "broken"}))
	assert.ErrorContains(t, f.apply(c, config.Default()), "no `=` found")

	var g sourceFlags
	c = &cobra.Command{Use: "y"}
	g.register(c)
	require.NoError(t, c.ParseFlags([]string{"--depth", "0"}))
	assert.ErrorContains(t, g.apply(c, config.Default()), "git.depth must be at least 1")
}

func sampleOptions() []parser.Option {
	return []parser.Option{
		{Name: "services.foo.port", Type: types.Simple(types.Int), File: "foo.nix", Line: 5},
		{Name: "services.foo.enable", Description: "Whether to enable foo.", Type: types.Simple(types.Bool), File: "foo.nix", Line: 4},
		{Name: "programs.bar.enable", Type: types.Raw("any"), File: "bar.nix", Line: 2},
	}
}

func TestPostProcess(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.Prefix = "services."
	cfg.Filter.StripPrefix = "services"
	cfg.Output.Sort = true
	cfg.PathPrefix = "https://example.com/blob/main/"

	got := postProcess(cfg, sampleOptions())
	require.Len(t, got, 2)
	assert.Equal(t, "foo.enable", got[0].Name)
	assert.Equal(t, "foo.port", got[1].Name)
	assert.Equal(t, "https://example.com/blob/main/foo.nix", got[0].File)
}

func TestOptionsForDoc(t *testing.T) {
	cfg := config.Default()
	cfg.Filter.StripPrefix = "services"

	got := optionsForDoc(cfg, &docs.DocConfig{Prefix: "services.foo", StripPrefix: "services.foo"}, sampleOptions())
	require.Len(t, got, 2)
	assert.Equal(t, "port", got[0].Name)

	got = optionsForDoc(cfg, nil, sampleOptions())
	require.Len(t, got, 3)
	assert.Equal(t, "foo.port", got[0].Name)
	assert.Equal(t, "programs.bar.enable", got[2].Name)
}

func TestBuildCheckResult(t *testing.T) {
	cfg := config.Default()
	res := &collect.Result{
		Options: sampleOptions(),
		Skipped: []collect.SkippedFile{{File: "broken.nix", Err: assert.AnError}},
	}

	result := buildCheckResult(cfg, res, []string{"docs/foo.md"})
	assert.Equal(t, []string{"services.foo.port", "programs.bar.enable"}, result.Undocumented)
	assert.Equal(t, []string{"programs.bar.enable"}, result.Untyped)
	assert.Equal(t, []string{"broken.nix: " + assert.AnError.Error()}, result.ParseFailures)
	assert.Equal(t, 5, result.TotalIssues())

	cfg.Check.RequireDescription = false
	cfg.Filter.Prefix = "services"
	result = buildCheckResult(cfg, res, nil)
	assert.Empty(t, result.Undocumented)
	assert.Empty(t, result.Untyped)
}

func TestDocTargets(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/docs/a.md", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/docs/sub/b.md", nil, 0o644))
	require.NoError(t, afero.WriteFile(fs, "/other.md", nil, 0o644))

	m := newDocManager(config.Default())
	got, err := docTargets(m, []string{"/docs", "/docs/a.md", "/other.md"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/docs/a.md", "/docs/sub/b.md", "/other.md"}, got)

	got, err = docTargets(m, nil, []string{"/other.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/other.md"}, got)

	_, err = docTargets(m, []string{"/missing"}, nil)
	assert.ErrorContains(t, err, "reading /missing")
}

func TestGenerateAndUpdate(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/src/foo.nix", []byte(fooModule), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/docs/foo.md", []byte(
		"---\nnix_options_doc:\n  strip_prefix: options.services\n---\n# Foo\n\n<!-- BEGIN NIX OPTIONS -->\n<!-- END NIX OPTIONS -->\n"), 0o644))

	_, err := execute(t, "generate", "--path", "/src", "--out", "/out/options.json", "--format", "json", "--config", "")
	require.NoError(t, err)
	data, err := afero.ReadFile(fs, "/out/options.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "options.services.foo.enable"`)
	assert.Contains(t, string(data), `"nix_type": "boolean"`)
	// Namespaced type expressions are kept verbatim.
	assert.Contains(t, string(data), `"nix_type": "lib.types.int"`)

	out, err := execute(t, "update", "--path", "/src", "/docs/foo.md")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated 1, unchanged 0, skipped 0, errors 0")

	doc, err := afero.ReadFile(fs, "/docs/foo.md")
	require.NoError(t, err)
	assert.Contains(t, string(doc), "### [`foo.enable`](foo.nix#L4)")
	assert.Contains(t, string(doc), "**Default:** `8080`")
	assert.Contains(t, string(doc), "**Type:** `lib.types.int`")
}
