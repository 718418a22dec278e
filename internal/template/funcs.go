package template

import (
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxInlineWidth is the longest value rendered as inline code. Longer or
// multi-line values get a fenced block.
const MaxInlineWidth = 72

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	titleCaser := cases.Title(language.English)
	return template.FuncMap{
		// String functions
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"title":     titleCaser.String,
		"trimSpace": strings.TrimSpace,
		"contains":  strings.Contains,
		"hasPrefix": strings.HasPrefix,
		"hasSuffix": strings.HasSuffix,
		"replace":   strings.ReplaceAll,
		"join":      strings.Join,
		"split":     strings.Split,

		// Formatting functions
		"indent":     indent,
		"isBlock":    IsBlock,
		"inlineCode": InlineCode,
		"anchor":     Anchor,
		"oneLine":    OneLine,
		"tableCell":  tableCell,
	}
}

// indent adds n spaces of indentation to each line.
func indent(n int, s string) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// IsBlock reports whether a value should be rendered as a fenced block
// rather than inline code.
func IsBlock(value string) bool {
	return strings.Contains(value, "\n") || len(value) > MaxInlineWidth
}

// InlineCode wraps value in a Markdown code span, widening the fence when
// the value itself contains backticks.
func InlineCode(value string) string {
	if !strings.Contains(value, "`") {
		return "`" + value + "`"
	}
	fence := "``"
	for strings.Contains(value, fence) {
		fence += "`"
	}
	return fence + " " + value + " " + fence
}

// Anchor turns an option name into an HTML id.
func Anchor(name string) string {
	return strings.NewReplacer(".", "-", ":", "-").Replace(name)
}

// OneLine flattens text to a single line.
func OneLine(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", ""), "\n", " ")
}

// tableCell makes text safe for a Markdown table cell.
func tableCell(s string) string {
	return strings.ReplaceAll(OneLine(s), "|", `\|`)
}
