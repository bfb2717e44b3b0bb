package parser

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"github.com/dgallion1/wordhtml/internal/richtext"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Only body paragraphs and their direct runs
// are read; tables, drawings and hyperlink runs are skipped.
type DOCXParser struct{}

// sizedReaderAt is satisfied by *bytes.Reader, *strings.Reader and friends.
type sizedReaderAt interface {
	io.ReaderAt
	Size() int64
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*richtext.Document, error) {
	var (
		out *richtext.Document
		err error
	)
	if ra, ok := r.(sizedReaderAt); ok {
		out, err = parseDOCX(ra, ra.Size())
	} else {
		out, err = parseViaTemp(r)
	}
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	out.Title = titleOf(filename)
	return out, nil
}

// parseViaTemp spools r to disk since go-docx needs a ReaderAt and a size.
func parseViaTemp(r io.Reader) (*richtext.Document, error) {
	tmp, err := os.CreateTemp("", "wordhtml-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, r)
	if err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	return parseDOCX(tmp, size)
}

func parseDOCX(ra io.ReaderAt, size int64) (*richtext.Document, error) {
	doc, err := docx.Parse(ra, size)
	if err != nil {
		return nil, err
	}
	toggles, err := readRunToggles(ra, size)
	if err != nil {
		return nil, err
	}

	out := &richtext.Document{}
	pi := 0
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		var paraToggles []runToggles
		if pi < len(toggles) {
			paraToggles = toggles[pi]
		}
		out.Paragraphs = append(out.Paragraphs, docxParagraph(para, paraToggles))
		pi++
	}
	return out, nil
}

func docxParagraph(para *docx.Paragraph, toggles []runToggles) richtext.Paragraph {
	out := richtext.Paragraph{Align: docxAlignment(para)}
	ri := 0
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		style := docxRunStyle(run)
		if ri < len(toggles) {
			style = toggles[ri].apply(style)
		}
		out.Runs = append(out.Runs, richtext.Run{
			Text:  docxRunText(run),
			Style: style,
		})
		ri++
	}
	return out
}

// runToggles records w:b and w:i elements whose w:val switches them off.
// go-docx keeps only the presence of these elements.
type runToggles struct {
	boldOff   bool
	italicOff bool
}

func (t runToggles) apply(s richtext.StyleSet) richtext.StyleSet {
	if t.boldOff {
		s = s.Without(richtext.Bold)
	}
	if t.italicOff {
		s = s.Without(richtext.Italic)
	}
	return s
}

// readRunToggles scans word/document.xml and returns, per body paragraph and
// per direct run, the explicitly disabled toggles. Paragraphs and runs are
// counted the way go-docx builds Body.Items and Paragraph.Children.
func readRunToggles(ra io.ReaderAt, size int64) ([][]runToggles, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, err
	}
	var part *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("word/document.xml not found")
	}
	rc, err := part.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	xdoc := etree.NewDocument()
	if _, err := xdoc.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("read document.xml: %w", err)
	}
	root := xdoc.Root()
	if root == nil {
		return nil, nil
	}

	var out [][]runToggles
	for _, body := range childrenNamed(root, "body") {
		for _, p := range childrenNamed(body, "p") {
			var runs []runToggles
			for _, r := range childrenNamed(p, "r") {
				var t runToggles
				for _, rPr := range childrenNamed(r, "rPr") {
					for _, el := range rPr.ChildElements() {
						switch el.Tag {
						case "b":
							t.boldOff = onOffDisabled(el)
						case "i":
							t.italicOff = onOffDisabled(el)
						}
					}
				}
				runs = append(runs, t)
			}
			out = append(out, runs)
		}
	}
	return out, nil
}

// childrenNamed matches on the local name, ignoring the namespace prefix.
func childrenNamed(e *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, c := range e.ChildElements() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// onOffDisabled reports whether an ST_OnOff element is explicitly off.
func onOffDisabled(el *etree.Element) bool {
	for _, a := range el.Attr {
		if a.Key != "val" {
			continue
		}
		switch strings.ToLower(a.Value) {
		case "0", "false", "off":
			return true
		}
	}
	return false
}

// docxAlignment maps w:jc to an Alignment. Unknown or missing values are Left.
func docxAlignment(para *docx.Paragraph) richtext.Alignment {
	if para.Properties == nil || para.Properties.Justification == nil {
		return richtext.Left
	}
	switch strings.ToLower(para.Properties.Justification.Val) {
	case "center":
		return richtext.Center
	case "right", "end":
		return richtext.Right
	case "both", "distribute":
		return richtext.Justify
	}
	return richtext.Left
}

func docxRunStyle(run *docx.Run) richtext.StyleSet {
	props := run.RunProperties
	if props == nil {
		return 0
	}
	underline := props.Underline != nil && !strings.EqualFold(props.Underline.Val, "none")
	return richtext.Of(props.Bold != nil, props.Italic != nil, underline)
}

func docxRunText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			buf.WriteString(c.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}
