package parser

import (
	"strings"
	"testing"
)

func TestTextParser_OneParagraphPerLine(t *testing.T) {
	input := "First line.\n\n   \nLast line.\r\n"
	doc, err := (&TextParser{}).Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if len(doc.Paragraphs) != 4 {
		t.Fatalf("expected 4 paragraphs, got %d", len(doc.Paragraphs))
	}
	if doc.Paragraphs[0].Text() != "First line." {
		t.Errorf("unexpected first paragraph %q", doc.Paragraphs[0].Text())
	}
	if !doc.Paragraphs[1].IsBlank() || !doc.Paragraphs[2].IsBlank() {
		t.Error("expected blank and whitespace-only lines to be blank paragraphs")
	}
	if doc.Paragraphs[3].Text() != "Last line." {
		t.Errorf("expected carriage return to be stripped, got %q", doc.Paragraphs[3].Text())
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	doc, err := (&TextParser{}).Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Paragraphs) != 0 {
		t.Errorf("expected 0 paragraphs for empty input, got %d", len(doc.Paragraphs))
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.docx", "B.DOCX", "c.md", "d.markdown", "e.pdf", "f.txt"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("%s: unexpected error: %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("%s: expected supported", name)
		}
	}
	if _, err := ForFile("sheet.csv"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if IsSupportedExtension("page.html") {
		t.Error("expected html to be unsupported")
	}
}
