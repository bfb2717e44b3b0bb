package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/wordhtml/internal/richtext"
)

// Parser converts raw document bytes into a richtext.Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*richtext.Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".docx":     true,
	".md":       true,
	".markdown": true,
	".pdf":      true,
	".txt":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".docx":
		return &DOCXParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleOf strips directory and extension from a filename.
func titleOf(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// appendRun adds text to runs, extending the last run when the style matches.
func appendRun(runs []richtext.Run, text string, style richtext.StyleSet) []richtext.Run {
	if text == "" {
		return runs
	}
	if n := len(runs); n > 0 && runs[n-1].Style == style {
		runs[n-1].Text += text
		return runs
	}
	return append(runs, richtext.Run{Text: text, Style: style})
}
