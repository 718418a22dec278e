package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	table := map[string]string{"namespace": "snowflake", "system": "x86_64-linux"}

	tests := []struct {
		name  string
		in    string
		table map[string]string
		want  string
	}{
		{"known", "${namespace}.bluetooth", table, "snowflake.bluetooth"},
		{"several", "${namespace} on ${system}", table, "snowflake on x86_64-linux"},
		{"unknown kept", "${other}.x", table, "${other}.x"},
		{"empty table", "${namespace}", nil, "${namespace}"},
		{"no placeholder", "plain", table, "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, tt.table))
		})
	}
}

func TestDedent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single line", "  keep me  ", "  keep me  "},
		{"first line kept", "A\n  B\n  C", "A\nB\nC"},
		{"relative indent", "A\n    B\n      C\n    D", "A\nB\n  C\nD"},
		{"blank lines", "\n  x\n   \n  y\n", "\nx\n\ny\n"},
		{"mixed prefixes", "head\n\t a\n\t b", "head\na\nb"},
		{"no common prefix", "h\n a\nb", "h\n a\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedent(tt.in))
		})
	}
}

func TestStripDirectives(t *testing.T) {
	in := "Use {option}`services.foo.enable` and {command}`nixos-rebuild` here."
	assert.Equal(t, "Use `services.foo.enable` and `nixos-rebuild` here.", StripDirectives(in))
	assert.Equal(t, "{Upper}`x`", StripDirectives("{Upper}`x`"))
}

func TestConvertAdmonitions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "warning",
			in:   ":::{.warning}\nThis is a warning.\n:::",
			want: "> [!WARNING]  \n> This is a warning.",
		},
		{
			name: "space after colons",
			in:   "::: {.tip}\nUse it.\n:::",
			want: "> [!TIP]  \n> Use it.",
		},
		{
			name: "caution keeps its kind",
			in:   ":::{.caution}\nCareful.\n:::",
			want: "> [!CAUTION]  \n> Careful.",
		},
		{
			name: "unknown kind",
			in:   ":::{.info}\nFYI.\n:::",
			want: "> [!NOTE]  \n> FYI.",
		},
		{
			name: "case insensitive",
			in:   ":::{.Important}\nRead.\n:::",
			want: "> [!IMPORTANT]  \n> Read.",
		},
		{
			name: "multi line with code",
			in:   "Intro.\n\n:::{.note}\nFirst line.\n```nix\n{ a = 1; }\n```\n:::\n\nOutro.",
			want: "Intro.\n\n> [!NOTE]  \n> First line.\n> ```nix\n> { a = 1; }\n> ```\n\nOutro.",
		},
		{
			name: "two blocks",
			in:   ":::{.note}\nA\n:::\n:::{.tip}\nB\n:::",
			want: "> [!NOTE]  \n> A\n> [!TIP]  \n> B",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertAdmonitions(tt.in))
		})
	}
}

func TestDescription(t *testing.T) {
	table := map[string]string{"namespace": "snowflake"}
	in := "Enable ${namespace} support.\n    Uses {file}`/etc/foo`.\n\n    :::{.note}\n    Requires a reboot.\n    :::"
	want := "Enable snowflake support.\nUses `/etc/foo`.\n\n> [!NOTE]  \n> Requires a reboot."

	got := Description(in, table)
	assert.Equal(t, want, got)
	assert.Equal(t, got, Description(got, table), "description normalization must be idempotent")
}

func TestUnwrapLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"indented", "lib.literalExpression ''\n  { a = 1; }\n''", "{ a = 1; }"},
		{"quoted", `literalExpression "pkgs.hello"`, "pkgs.hello"},
		{"deep namespace", `pkgs.lib.literalExpression "x"`, "x"},
		{"legacy name", `literalExample "y"`, "y"},
		{"no wrapper", `  "test"  `, `"test"`},
		{"list", "[1, 2]", "[1, 2]"},
		{"no delimiters", "lib.literalExpression foo", "lib.literalExpression foo"},
		{"empty indented", "literalExpression ''''", "literalExpression ''''"},
		{"similar name", `literalExpressionish "z"`, `literalExpressionish "z"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnwrapLiteral(tt.in))
		})
	}
}

func TestValue(t *testing.T) {
	in := "lib.literalExpression ''\n  {\n    a = 1;\n  }\n''"
	assert.Equal(t, "{\n  a = 1;\n}", Value(in))
}

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, "Simple test option", TrimQuotes(`"Simple test option"`))
	assert.Equal(t, "\n  multi\n", TrimQuotes("''\n  multi\n''"))
}
