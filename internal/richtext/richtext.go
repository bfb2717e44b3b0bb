package richtext

import (
	"fmt"
	"strings"
)

// Style is a single character format.
type Style uint8

const (
	Bold Style = 1 << iota
	Italic
	Underline
)

// StyleSet is a set of character formats attached to a run.
type StyleSet uint8

// Styles lists every style in rendering order.
var Styles = []Style{Bold, Italic, Underline}

func (s StyleSet) Has(st Style) bool { return s&StyleSet(st) != 0 }

func (s StyleSet) With(st Style) StyleSet { return s | StyleSet(st) }

func (s StyleSet) Without(st Style) StyleSet { return s &^ StyleSet(st) }

// Toggle adds st when absent and removes it when present.
func (s StyleSet) Toggle(st Style) StyleSet { return s ^ StyleSet(st) }

// Of builds a StyleSet from boolean flags, the shape document libraries expose.
func Of(bold, italic, underline bool) StyleSet {
	var s StyleSet
	if bold {
		s = s.With(Bold)
	}
	if italic {
		s = s.With(Italic)
	}
	if underline {
		s = s.With(Underline)
	}
	return s
}

func (s StyleSet) String() string {
	var names []string
	for _, st := range Styles {
		if s.Has(st) {
			names = append(names, st.String())
		}
	}
	if len(names) == 0 {
		return "plain"
	}
	return strings.Join(names, "+")
}

func (st Style) String() string {
	switch st {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	}
	return fmt.Sprintf("style(%d)", uint8(st))
}

// ParseStyle accepts the names produced by Style.String.
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bold":
		return Bold, nil
	case "italic":
		return Italic, nil
	case "underline":
		return Underline, nil
	}
	return 0, fmt.Errorf("unknown style: %q", name)
}

// Alignment is paragraph-level text justification. The zero value is Left.
type Alignment int

const (
	Left Alignment = iota
	Center
	Right
	Justify
)

// CSS returns the text-align keyword. Values outside the enum map to "left".
func (a Alignment) CSS() string {
	switch a {
	case Center:
		return "center"
	case Right:
		return "right"
	case Justify:
		return "justify"
	}
	return "left"
}

func (a Alignment) String() string { return a.CSS() }

// ParseAlignment accepts the CSS keywords returned by CSS.
func ParseAlignment(name string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "left", "":
		return Left, nil
	case "center":
		return Center, nil
	case "right":
		return Right, nil
	case "justify":
		return Justify, nil
	}
	return Left, fmt.Errorf("unknown alignment: %q", name)
}

// Run is a contiguous span of text sharing one StyleSet.
type Run struct {
	Text  string
	Style StyleSet
}

// Paragraph is an ordered run sequence plus one alignment.
type Paragraph struct {
	Runs  []Run
	Align Alignment
}

// IsBlank reports whether no run carries non-whitespace text.
func (p Paragraph) IsBlank() bool {
	for _, r := range p.Runs {
		if strings.TrimSpace(r.Text) != "" {
			return false
		}
	}
	return true
}

// Text returns the concatenated run text.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Document is the transient result of reading a source.
type Document struct {
	Title      string // Document title (from filename)
	Paragraphs []Paragraph
}
