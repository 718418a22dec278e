package render

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// TerminalWidth is the word-wrap width used for terminal previews.
const TerminalWidth = 100

// Terminal styles Markdown for display in a terminal.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = TerminalWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("creating terminal renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering for terminal: %w", err)
	}
	return out, nil
}
