package editor

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/wordhtml/internal/richtext"
)

var (
	ErrEmptySelection = errors.New("empty selection")
	ErrOutOfRange     = errors.New("position out of range")
)

// Position addresses a character by zero-based line and rune column.
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Before reports whether p sorts before q in buffer order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Selection is the half-open character range [From, To).
type Selection struct {
	From Position `json:"from"`
	To   Position `json:"to"`
}

// Contains reports whether pos lies inside the selection.
func (s Selection) Contains(pos Position) bool {
	return !pos.Before(s.From) && pos.Before(s.To)
}

func (s Selection) normalize() Selection {
	if s.To.Before(s.From) {
		s.From, s.To = s.To, s.From
	}
	return s
}

// Op is the effect of a style record.
type Op int

const (
	OpAdd Op = iota
	OpRemove
)

func (o Op) String() string {
	if o == OpRemove {
		return "remove"
	}
	return "add"
}

// StyleRecord is one applied style toggle.
type StyleRecord struct {
	Sel   Selection
	Style richtext.Style
	Op    Op
}

// AlignRecord is one applied alignment.
type AlignRecord struct {
	Line  int
	Align richtext.Alignment
}

// Buffer is the editor state. Records are replayed in application order, so
// the most recently applied record covering a character or line wins.
type Buffer struct {
	lines  []string
	styles []StyleRecord
	aligns []AlignRecord
}

// New creates a buffer for text. Lines are split on "\n"; a trailing newline
// typed by the user yields a final blank line.
func New(text string) *Buffer {
	return &Buffer{lines: strings.Split(text, "\n")}
}

// Text returns the buffer content.
func (b *Buffer) Text() string { return strings.Join(b.lines, "\n") }

// Lines returns a copy of the buffer lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

func (b *Buffer) LineCount() int { return len(b.lines) }

// StyleRecords returns the applied style records in order.
func (b *Buffer) StyleRecords() []StyleRecord {
	out := make([]StyleRecord, len(b.styles))
	copy(out, b.styles)
	return out
}

// AlignRecords returns the applied alignment records in order.
func (b *Buffer) AlignRecords() []AlignRecord {
	out := make([]AlignRecord, len(b.aligns))
	copy(out, b.aligns)
	return out
}

func (b *Buffer) validate(pos Position) error {
	if pos.Line < 0 || pos.Line >= len(b.lines) {
		return fmt.Errorf("%w: line %d", ErrOutOfRange, pos.Line)
	}
	if pos.Col < 0 || pos.Col > utf8.RuneCountInString(b.lines[pos.Line]) {
		return fmt.Errorf("%w: line %d col %d", ErrOutOfRange, pos.Line, pos.Col)
	}
	return nil
}

// ToggleStyle removes st from sel when it is active at the selection start,
// and adds it over sel otherwise.
func (b *Buffer) ToggleStyle(sel Selection, st richtext.Style) error {
	sel = sel.normalize()
	if err := b.validate(sel.From); err != nil {
		return err
	}
	if err := b.validate(sel.To); err != nil {
		return err
	}
	if sel.From == sel.To {
		return ErrEmptySelection
	}

	op := OpAdd
	if b.StyleAt(sel.From).Has(st) {
		op = OpRemove
	}
	b.styles = append(b.styles, StyleRecord{Sel: sel, Style: st, Op: op})
	return nil
}

// ApplyAlignment sets the alignment of the line holding the cursor.
func (b *Buffer) ApplyAlignment(cursor Position, a richtext.Alignment) error {
	if err := b.validate(cursor); err != nil {
		return err
	}
	b.aligns = append(b.aligns, AlignRecord{Line: cursor.Line, Align: a})
	return nil
}

// StyleAt resolves the style set active at pos.
func (b *Buffer) StyleAt(pos Position) richtext.StyleSet {
	var s richtext.StyleSet
	for _, rec := range b.styles {
		if !rec.Sel.Contains(pos) {
			continue
		}
		if rec.Op == OpRemove {
			s = s.Without(rec.Style)
		} else {
			s = s.With(rec.Style)
		}
	}
	return s
}

// AlignmentAt resolves the alignment of a line. Left when none was applied.
func (b *Buffer) AlignmentAt(line int) richtext.Alignment {
	a := richtext.Left
	for _, rec := range b.aligns {
		if rec.Line == line {
			a = rec.Align
		}
	}
	return a
}

// Snapshot captures the buffer as a document with one paragraph per line.
func (b *Buffer) Snapshot() *richtext.Document {
	doc := &richtext.Document{Paragraphs: make([]richtext.Paragraph, 0, len(b.lines))}
	for i, line := range b.lines {
		p := richtext.Paragraph{Align: b.AlignmentAt(i)}
		if strings.TrimSpace(line) != "" {
			p.Runs = b.lineRuns(i, line)
		}
		doc.Paragraphs = append(doc.Paragraphs, p)
	}
	return doc
}

// lineRuns splits a non-blank line at style boundaries.
func (b *Buffer) lineRuns(line int, text string) []richtext.Run {
	var segs []richtext.Run
	col := 0
	for _, r := range text {
		st := b.StyleAt(Position{Line: line, Col: col})
		if n := len(segs); n > 0 && segs[n-1].Style == st {
			segs[n-1].Text += string(r)
		} else {
			segs = append(segs, richtext.Run{Text: string(r), Style: st})
		}
		col++
	}

	// Fold whitespace-only segments into a neighbour so no run is blank.
	var runs []richtext.Run
	pending := ""
	for _, seg := range segs {
		if strings.TrimSpace(seg.Text) == "" {
			if n := len(runs); n > 0 {
				runs[n-1].Text += seg.Text
			} else {
				pending += seg.Text
			}
			continue
		}
		seg.Text = pending + seg.Text
		pending = ""
		if n := len(runs); n > 0 && runs[n-1].Style == seg.Style {
			runs[n-1].Text += seg.Text
			continue
		}
		runs = append(runs, seg)
	}
	return runs
}
