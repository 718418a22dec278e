package render

import (
	"strconv"

	"github.com/saltyorg/nix-options-doc/internal/parser"
	"github.com/saltyorg/nix-options-doc/internal/template"
)

// DocData is the value passed to Markdown templates.
type DocData struct {
	Title        string
	Generator    string
	GeneratorURL string
	Options      []OptionData
}

// OptionData is one option as seen by templates.
type OptionData struct {
	Name        string
	Anchor      string
	Link        string // file#Lline
	File        string
	Line        int
	Description string
	Type        string
	Default     string
	Example     string
	Fields      []Field // Type, Default, Example in order, absent ones omitted
}

// Field is a labelled value. Block is set when the value should be shown
// as a fenced code block.
type Field struct {
	Label string
	Value string
	Block bool
}

// BuildDocData assembles template data for options.
func BuildDocData(meta Meta, options []parser.Option) DocData {
	data := DocData{
		Title:        meta.Title,
		Generator:    meta.Generator,
		GeneratorURL: meta.GeneratorURL,
		Options:      make([]OptionData, 0, len(options)),
	}
	for _, opt := range options {
		data.Options = append(data.Options, buildOptionData(opt))
	}
	return data
}

func buildOptionData(opt parser.Option) OptionData {
	typ := opt.Type.String()
	od := OptionData{
		Name:        opt.Name,
		Anchor:      template.Anchor(opt.Name),
		Link:        opt.File + "#L" + strconv.Itoa(opt.Line),
		File:        opt.File,
		Line:        opt.Line,
		Description: opt.Description,
		Type:        typ,
		Default:     opt.Default,
		Example:     opt.Example,
	}
	od.Fields = append(od.Fields, newField("Type", typ))
	if opt.HasDefault() {
		od.Fields = append(od.Fields, newField("Default", opt.Default))
	}
	if opt.HasExample() {
		od.Fields = append(od.Fields, newField("Example", opt.Example))
	}
	return od
}

func newField(label, value string) Field {
	return Field{Label: label, Value: value, Block: template.IsBlock(value)}
}
