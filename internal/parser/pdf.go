package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os/exec"
	"sort"
	"strings"

	"github.com/dgallion1/wordhtml/internal/richtext"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. Each visual text line becomes a paragraph;
// bold and italic are inferred from font names. It tries the Go library
// first, then falls back to pdftotext (unstyled) if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*richtext.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	doc := &richtext.Document{Title: titleOf(filename)}
	paras, err := extractPDFParagraphs(data)
	if err != nil && p.FallbackPdftotext {
		paras, err = extractPdftotext(data)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	doc.Paragraphs = paras
	return doc, nil
}

func extractPDFParagraphs(data []byte) (paras []richtext.Paragraph, err error) {
	// The library panics on malformed input.
	defer func() {
		if rec := recover(); rec != nil {
			paras = nil
			err = fmt.Errorf("pdf content: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, line := range pdfLines(page.Content().Text) {
			paras = append(paras, richtext.Paragraph{Runs: pdfRuns(line)})
		}
	}
	return paras, nil
}

// pdfLines groups glyphs by baseline, top of page first, left to right.
func pdfLines(glyphs []pdflib.Text) [][]pdflib.Text {
	byY := make(map[int64][]pdflib.Text)
	var keys []int64
	for _, g := range glyphs {
		y := int64(math.Round(g.Y))
		if _, ok := byY[y]; !ok {
			keys = append(keys, y)
		}
		byY[y] = append(byY[y], g)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })

	lines := make([][]pdflib.Text, 0, len(keys))
	for _, y := range keys {
		line := byY[y]
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		lines = append(lines, line)
	}
	return lines
}

// pdfRuns merges glyphs into styled runs, inserting a space where the gap
// between glyphs is wider than a fifth of the font size.
func pdfRuns(line []pdflib.Text) []richtext.Run {
	var runs []richtext.Run
	for i, g := range line {
		style := pdfFontStyle(g.Font)
		if i > 0 {
			prev := line[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > g.FontSize*0.2 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(g.S, " ") {
				runs = appendRun(runs, " ", pdfFontStyle(prev.Font))
			}
		}
		runs = appendRun(runs, g.S, style)
	}
	return runs
}

// pdfFontStyle infers a style set from a base font name such as
// "Helvetica-BoldOblique" or "ABCDEF+TimesNewRomanPS-ItalicMT".
func pdfFontStyle(font string) richtext.StyleSet {
	name := strings.ToLower(font)
	bold := strings.Contains(name, "bold") || strings.Contains(name, "black") || strings.Contains(name, "heavy")
	italic := strings.Contains(name, "italic") || strings.Contains(name, "oblique")
	return richtext.Of(bold, italic, false)
}

func extractPdftotext(data []byte) ([]richtext.Paragraph, error) {
	cmd := exec.Command("pdftotext", "-layout", "-", "-")
	cmd.Stdin = bytes.NewReader(data)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	var paras []richtext.Paragraph
	for _, line := range strings.Split(strings.ReplaceAll(string(out), "\f", "\n"), "\n") {
		var para richtext.Paragraph
		if strings.TrimSpace(line) != "" {
			para.Runs = []richtext.Run{{Text: strings.TrimSpace(line)}}
		}
		paras = append(paras, para)
	}
	for len(paras) > 0 && len(paras[len(paras)-1].Runs) == 0 {
		paras = paras[:len(paras)-1]
	}
	return paras, nil
}
