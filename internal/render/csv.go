package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/saltyorg/nix-options-doc/internal/parser"
	"github.com/saltyorg/nix-options-doc/internal/template"
)

var csvHeader = []string{"Option", "Type", "Default", "Example", "Description", "FilePath", "LineNumber"}

// RenderCSV renders options as CSV with one row per option. Absent fields
// are written as "-" and descriptions are flattened to a single line.
func RenderCSV(options []parser.Option) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("writing csv header: %w", err)
	}
	for _, opt := range options {
		row := []string{
			opt.Name,
			opt.Type.String(),
			orDash(opt.Default),
			orDash(opt.Example),
			orDash(template.OneLine(opt.Description)),
			opt.File,
			strconv.Itoa(opt.Line),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("writing csv row for %s: %w", opt.Name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flushing csv: %w", err)
	}
	return buf.String(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
