package render

import (
	"strings"

	"github.com/dgallion1/wordhtml/internal/richtext"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Placeholder is emitted for paragraphs without visible text.
const Placeholder = "<p>&nbsp;</p>"

// Options controls how runs are laid out inside a paragraph.
type Options struct {
	Separator string // Inserted between spans
	TrimRuns  bool   // Trim run text and drop runs that become empty
}

var (
	// DocumentOptions matches the document pipeline: trimmed runs joined by a space.
	DocumentOptions = Options{Separator: " ", TrimRuns: true}
	// TextOptions matches the styled-text pipeline: line text is kept verbatim.
	TextOptions = Options{}
)

var declarations = map[richtext.Style]string{
	richtext.Bold:      "font-weight:bold",
	richtext.Italic:    "font-style:italic",
	richtext.Underline: "text-decoration:underline",
}

// CSS maps a StyleSet to its inline declaration list.
func CSS(s richtext.StyleSet) string {
	var decls []string
	for _, st := range richtext.Styles {
		if s.Has(st) {
			decls = append(decls, declarations[st])
		}
	}
	return strings.Join(decls, "; ")
}

// Span builds a <span> node. The style attribute is omitted for plain text.
func Span(text string, s richtext.StyleSet) *html.Node {
	span := &html.Node{Type: html.ElementNode, DataAtom: atom.Span, Data: "span"}
	if css := CSS(s); css != "" {
		span.Attr = []html.Attribute{{Key: "style", Val: css}}
	}
	span.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return span
}

// Paragraph renders one paragraph to a single <p> element.
func Paragraph(p richtext.Paragraph, opts Options) string {
	var spans []*html.Node
	for _, r := range p.Runs {
		text := r.Text
		if opts.TrimRuns {
			text = strings.TrimSpace(text)
		}
		if text == "" {
			continue
		}
		spans = append(spans, Span(text, r.Style))
	}
	if len(spans) == 0 || p.IsBlank() {
		return Placeholder
	}

	para := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.P,
		Data:     "p",
		Attr:     []html.Attribute{{Key: "style", Val: "text-align:" + p.Align.CSS()}},
	}
	for i, span := range spans {
		if i > 0 && opts.Separator != "" {
			para.AppendChild(&html.Node{Type: html.TextNode, Data: opts.Separator})
		}
		para.AppendChild(span)
	}
	return nodeString(para)
}

// Document renders every paragraph; the result has one entry per paragraph.
func Document(doc *richtext.Document, opts Options) []string {
	out := make([]string, 0, len(doc.Paragraphs))
	for _, p := range doc.Paragraphs {
		out = append(out, Paragraph(p, opts))
	}
	return out
}

// Join produces the output file body.
func Join(paragraphs []string) string {
	return strings.Join(paragraphs, "\n")
}

func nodeString(n *html.Node) string {
	var b strings.Builder
	// strings.Builder never fails and the tree holds no void elements.
	_ = html.Render(&b, n)
	return b.String()
}
