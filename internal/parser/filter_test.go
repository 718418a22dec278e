package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltyorg/nix-options-doc/internal/types"
)

func sampleOptions() []Option {
	return []Option{
		{Name: "services.nginx.enable", Type: types.Simple(types.Bool), Description: "Enable nginx", Default: "false", File: "nginx.nix", Line: 3},
		{Name: "services.nginx.port", Type: types.Simple(types.Int), Default: "80", File: "nginx.nix", Line: 7},
		{Name: "programs.git.package", Type: types.Raw("types.package"), Description: "The Git package to use", File: "git.nix", Line: 1},
		{Name: "programs.git.extraConfig", Type: types.Simple(types.Attrs), File: "git.nix", Line: 9},
	}
}

func names(opts []Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Name
	}
	return out
}

func TestFilterOptions(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"zero keeps all", Filter{}, []string{"services.nginx.enable", "services.nginx.port", "programs.git.package", "programs.git.extraConfig"}},
		{"prefix", Filter{Prefix: "services.nginx"}, []string{"services.nginx.enable", "services.nginx.port"}},
		{"type case insensitive", Filter{Type: "BOOL"}, []string{"services.nginx.enable"}},
		{"type matches display", Filter{Type: "attribute"}, []string{"programs.git.extraConfig"}},
		{"search name", Filter{Search: "PORT"}, []string{"services.nginx.port"}},
		{"search description", Filter{Search: "git package"}, []string{"programs.git.package"}},
		{"has default", Filter{HasDefault: true}, []string{"services.nginx.enable", "services.nginx.port"}},
		{"has description", Filter{HasDescription: true}, []string{"services.nginx.enable", "programs.git.package"}},
		{"combined", Filter{Prefix: "services", HasDescription: true}, []string{"services.nginx.enable"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(FilterOptions(sampleOptions(), tt.filter)))
		})
	}
}

func TestSortOptions(t *testing.T) {
	in := sampleOptions()
	sorted := SortOptions(in)
	assert.Equal(t, []string{"programs.git.extraConfig", "programs.git.package", "services.nginx.enable", "services.nginx.port"}, names(sorted))
	assert.Equal(t, "services.nginx.enable", in[0].Name, "input must not be reordered")
}

func TestStripPrefix(t *testing.T) {
	opts := []Option{{Name: "options.foo.bar"}, {Name: "options"}, {Name: "other.x"}}
	assert.Equal(t, []string{"foo.bar", "options", "other.x"}, names(StripPrefix(opts, "options.")))
	assert.Equal(t, []string{"options.foo.bar", "options", "other.x"}, names(StripPrefix(opts, "")))
}

func TestRewritePaths(t *testing.T) {
	opts := RewritePaths([]Option{{File: "modules/a.nix"}}, "https://github.com/o/r/blob/main/")
	assert.Equal(t, "https://github.com/o/r/blob/main/modules/a.nix", opts[0].File)
}

func TestOptionJSON(t *testing.T) {
	opt := Option{Name: "a.b", Type: types.Simple(types.Str), Default: `"x"`, File: "a.nix", Line: 2}
	data, err := json.Marshal(opt)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "a.b",
		"description": null,
		"nix_type": "string",
		"default_value": "\"x\"",
		"example": null,
		"file_path": "a.nix",
		"line_number": 2
	}`, string(data))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "example")
	assert.Nil(t, decoded["example"])
}
