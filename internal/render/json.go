package render

import (
	"encoding/json"
	"fmt"

	"github.com/saltyorg/nix-options-doc/internal/parser"
)

// RenderJSON renders options as a pretty-printed JSON array.
func RenderJSON(options []parser.Option) (string, error) {
	if options == nil {
		options = []parser.Option{}
	}
	data, err := json.MarshalIndent(options, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding json: %w", err)
	}
	return string(data) + "\n", nil
}
