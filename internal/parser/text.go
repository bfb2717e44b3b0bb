package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/wordhtml/internal/richtext"
)

// TextParser handles plain text files. Every line becomes one unstyled,
// left-aligned paragraph; blank lines become blank paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*richtext.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &richtext.Document{Title: titleOf(filename)}
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		var para richtext.Paragraph
		if strings.TrimSpace(line) != "" {
			para.Runs = []richtext.Run{{Text: line}}
		}
		doc.Paragraphs = append(doc.Paragraphs, para)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return doc, nil
}
