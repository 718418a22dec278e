package render

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var alertRe = regexp.MustCompile(`^\[!(NOTE|TIP|IMPORTANT|WARNING|CAUTION)\]$`)

// newMarkdown returns the goldmark instance used for descriptions: GFM,
// raw HTML passthrough, and GitHub-style alert blockquotes.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(alertTransformer{}, 999)),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// markdownToHTML converts a description to an HTML fragment.
func markdownToHTML(md goldmark.Markdown, source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// alertTransformer marks blockquotes opening with "[!KIND]" as alerts: the
// marker is replaced by a title paragraph and the blockquote gets
// markdown-alert classes.
type alertTransformer struct{}

func (alertTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	src := reader.Source()
	var quotes []*ast.Blockquote
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if bq, ok := n.(*ast.Blockquote); ok && entering {
			quotes = append(quotes, bq)
		}
		return ast.WalkContinue, nil
	})
	for _, bq := range quotes {
		markAlert(bq, src)
	}
}

func markAlert(bq *ast.Blockquote, src []byte) {
	para, ok := bq.FirstChild().(*ast.Paragraph)
	if !ok {
		return
	}

	// The link parser may split "[!NOTE]" into several text nodes; gather
	// them up to the first line break.
	var label strings.Builder
	var marker []ast.Node
	for c := para.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			break
		}
		label.Write(t.Segment.Value(src))
		marker = append(marker, c)
		if t.SoftLineBreak() || t.HardLineBreak() {
			break
		}
	}
	m := alertRe.FindStringSubmatch(strings.TrimSpace(label.String()))
	if m == nil {
		return
	}

	for _, c := range marker {
		para.RemoveChild(para, c)
	}
	kind := strings.ToLower(m[1])
	bq.SetAttributeString("class", []byte("markdown-alert markdown-alert-"+kind))

	title := ast.NewParagraph()
	title.SetAttributeString("class", []byte("markdown-alert-title"))
	title.AppendChild(title, ast.NewString([]byte(cases.Title(language.English).String(kind))))
	bq.InsertBefore(bq, para, title)
	if !para.HasChildren() {
		bq.RemoveChild(bq, para)
	}
}
