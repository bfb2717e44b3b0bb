package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/wordhtml/internal/richtext"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Emphasis maps to
// italic, strong emphasis to bold and headings to bold paragraphs. Lists and
// block quotes are flattened into their paragraphs.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*richtext.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &richtext.Document{Title: titleOf(filename)}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch node := c.(type) {
			case *ast.Heading:
				doc.Paragraphs = append(doc.Paragraphs, richtext.Paragraph{
					Runs: inlineRuns(node, src, richtext.StyleSet(0).With(richtext.Bold), nil),
				})
			case *ast.Paragraph, *ast.TextBlock:
				doc.Paragraphs = append(doc.Paragraphs, richtext.Paragraph{
					Runs: inlineRuns(node, src, 0, nil),
				})
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				lines := c.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					line := strings.TrimRight(string(seg.Value(src)), "\r\n")
					var para richtext.Paragraph
					if strings.TrimSpace(line) != "" {
						para.Runs = []richtext.Run{{Text: line}}
					}
					doc.Paragraphs = append(doc.Paragraphs, para)
				}
			case *ast.ThematicBreak:
				doc.Paragraphs = append(doc.Paragraphs, richtext.Paragraph{})
			case *ast.HTMLBlock:
				// Raw HTML is not carried over.
			default:
				walk(c)
			}
		}
	}
	walk(root)

	return doc, nil
}

// inlineRuns flattens the inline children of n into styled runs.
func inlineRuns(n ast.Node, src []byte, style richtext.StyleSet, runs []richtext.Run) []richtext.Run {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			runs = appendRun(runs, string(node.Value(src)), style)
			if node.SoftLineBreak() || node.HardLineBreak() {
				runs = appendRun(runs, " ", style)
			}
		case *ast.String:
			runs = appendRun(runs, string(node.Value), style)
		case *ast.Emphasis:
			st := style.With(richtext.Italic)
			if node.Level >= 2 {
				st = style.With(richtext.Bold)
			}
			runs = inlineRuns(node, src, st, runs)
		case *ast.AutoLink:
			runs = appendRun(runs, string(node.Label(src)), style)
		case *ast.RawHTML:
			continue
		default:
			runs = inlineRuns(c, src, style, runs)
		}
	}
	return runs
}
