// Package normalize cleans free-text payloads pulled out of Nix option
// declarations: placeholder substitution, dedenting, inline role stripping
// and admonition conversion.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ${name} placeholder; the name is any run of non-"}" characters.
	placeholderRe = regexp.MustCompile(`\$\{([^}]+)\}`)

	// {role}`code` inline directive.
	directiveRe = regexp.MustCompile("\\{[a-z]+\\}(`[^`]+`)")

	// ::: {.kind} ... ::: fenced admonition block.
	admonitionRe = regexp.MustCompile(`:::\s*\{\.([a-zA-Z]+)\}([\s\S]*?):::`)

	// literalExpression / literalExample wrapper, optionally namespaced.
	literalRe = regexp.MustCompile(`^(?:[A-Za-z_][A-Za-z0-9_'\-]*\.)*(?:literalExpression|literalExample)\b`)
)

// admonitionKinds lists the alert kinds rendered as-is. Anything else
// becomes NOTE.
var admonitionKinds = map[string]bool{
	"note":      true,
	"tip":       true,
	"important": true,
	"warning":   true,
	"caution":   true,
}

// Substitute replaces every ${name} placeholder found in table.
// Unknown names are left verbatim.
func Substitute(text string, table map[string]string) string {
	if len(table) == 0 {
		return text
	}
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholderRe.FindStringSubmatch(m)[1]
		if v, ok := table[name]; ok {
			return v
		}
		return m
	})
}

// Dedent keeps the first line exactly and strips the longest common
// leading whitespace of the remaining non-blank lines. Whitespace-only
// lines after the first become empty.
func Dedent(text string) string {
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		return text
	}
	lines := strings.Split(rest, "\n")

	prefix, havePrefix := "", false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !havePrefix {
			prefix, havePrefix = indent, true
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return first + "\n" + strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// StripDirectives rewrites {role}`code` to `code`.
func StripDirectives(text string) string {
	return directiveRe.ReplaceAllString(text, "$1")
}

// ConvertAdmonitions rewrites ":::{.kind} body :::" blocks into GitHub
// alert blockquotes.
func ConvertAdmonitions(text string) string {
	return admonitionRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := admonitionRe.FindStringSubmatch(m)
		kind := strings.ToLower(sub[1])
		if !admonitionKinds[kind] {
			kind = "note"
		}
		body := strings.TrimSpace(sub[2])
		// A Caser is stateful and must not be shared across goroutines.
		return "> [!" + cases.Upper(language.English).String(kind) + "]  \n> " + strings.ReplaceAll(body, "\n", "\n> ")
	})
}

// Description runs the full description pipeline: substitution, dedent,
// directive stripping, then admonition conversion.
func Description(text string, table map[string]string) string {
	text = Substitute(text, table)
	text = Dedent(text)
	text = StripDirectives(text)
	return ConvertAdmonitions(text)
}

// UnwrapLiteral extracts the payload of a literalExpression wrapper. The
// payload is the text between the first and last indented-string
// delimiters, or failing that the first and last double quotes. Input
// without a wrapper, or with no usable delimiter pair, is returned trimmed
// and otherwise unchanged.
func UnwrapLiteral(text string) string {
	text = strings.TrimSpace(text)
	if !literalRe.MatchString(text) {
		return text
	}
	if start := strings.Index(text, "''"); start >= 0 {
		end := strings.LastIndex(text, "''")
		if end > start+2 {
			return strings.TrimSpace(text[start+2 : end])
		}
		return text
	}
	if start := strings.Index(text, `"`); start >= 0 {
		end := strings.LastIndex(text, `"`)
		if end > start+1 {
			return strings.TrimSpace(text[start+1 : end])
		}
	}
	return text
}

// Value normalizes a default or example expression.
func Value(text string) string {
	return Dedent(UnwrapLiteral(text))
}

// TrimQuotes strips every leading and trailing quote character, matching
// both plain and indented string delimiters.
func TrimQuotes(text string) string {
	return strings.Trim(text, `"'`)
}
