package convert

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/wordhtml/internal/editor"
	"github.com/dgallion1/wordhtml/internal/parser"
	"github.com/dgallion1/wordhtml/internal/render"
	"github.com/dgallion1/wordhtml/internal/richtext"
)

// DefaultOutputSuffix replaces the input extension in output file names.
const DefaultOutputSuffix = "_converted.html"

// Options configures a Converter.
type Options struct {
	OutputSuffix         string
	PDFFallbackPdftotext bool
}

// Result is a finished conversion.
type Result struct {
	Input      string        `json:"input,omitempty"`
	Output     string        `json:"output,omitempty"`
	Title      string        `json:"title,omitempty"`
	Paragraphs []string      `json:"paragraphs"`
	Duration   time.Duration `json:"duration_ns"`
}

// HTML returns the newline-joined paragraphs, the output file body.
func (r *Result) HTML() string { return render.Join(r.Paragraphs) }

// Converter runs conversions synchronously on the caller's goroutine.
type Converter struct {
	opts  Options
	stats *Stats
	log   *slog.Logger
}

func New(opts Options, stats *Stats, log *slog.Logger) *Converter {
	if opts.OutputSuffix == "" {
		opts.OutputSuffix = DefaultOutputSuffix
	}
	if stats == nil {
		stats = NewStats(time.Hour)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Converter{opts: opts, stats: stats, log: log}
}

// Stats returns the latency collector shared by all conversions.
func (c *Converter) Stats() *Stats { return c.stats }

// ValidateSuffix checks an output suffix: it must end in ".html" and hold no
// path separators, so the output always lands next to its input and never
// on it.
func ValidateSuffix(suffix string) error {
	if !strings.HasSuffix(strings.ToLower(suffix), ".html") {
		return fmt.Errorf("output suffix must end in .html: %q", suffix)
	}
	if strings.ContainsAny(suffix, `/\`) {
		return fmt.Errorf("output suffix must not contain path separators: %q", suffix)
	}
	return nil
}

// OutputPath derives the output file for path: its extension is replaced
// by suffix, "report.docx" becoming "report_converted.html".
func OutputPath(path, suffix string) string {
	if suffix == "" {
		suffix = DefaultOutputSuffix
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

// OutputPath derives the output file using the configured suffix.
func (c *Converter) OutputPath(path string) string {
	return OutputPath(path, c.opts.OutputSuffix)
}

// Text converts an editor buffer. It has no failure mode.
func (c *Converter) Text(buf *editor.Buffer) *Result {
	start := time.Now()
	doc := buf.Snapshot()
	res := &Result{
		Paragraphs: render.Document(doc, render.TextOptions),
	}
	res.Duration = time.Since(start)
	c.stats.Record(res.Duration)
	return res
}

// ConvertReader converts a document read from r without touching the file
// system. filename selects the parser and the title.
func (c *Converter) ConvertReader(ctx context.Context, r io.Reader, filename string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	doc, err := c.parse(r, filename)
	if err != nil {
		c.stats.RecordFailure()
		c.log.Error("read failed", "input", filename, "error", err)
		return nil, readError(filename, err)
	}

	res := &Result{
		Input:      filename,
		Title:      doc.Title,
		Paragraphs: render.Document(doc, render.DocumentOptions),
	}
	res.Duration = time.Since(start)
	c.stats.Record(res.Duration)
	c.log.Info("converted", "input", filename, "paragraphs", len(res.Paragraphs), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

// ConvertFile converts the document at path and writes the HTML next to it.
// An empty path returns ErrCancelled. Failures are *Error values of kind
// KindRead or KindWrite.
func (c *Converter) ConvertFile(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	doc, err := c.parseFile(path)
	if err != nil {
		c.stats.RecordFailure()
		c.log.Error("read failed", "input", path, "error", err)
		return nil, readError(path, err)
	}

	res := &Result{
		Input:      path,
		Output:     c.OutputPath(path),
		Title:      doc.Title,
		Paragraphs: render.Document(doc, render.DocumentOptions),
	}
	if samePath(path, res.Output) {
		c.stats.RecordFailure()
		c.log.Error("write failed", "output", res.Output, "error", ErrOverwriteInput)
		return nil, writeError(res.Output, ErrOverwriteInput)
	}
	if err := WriteHTML(res.Output, res.Paragraphs); err != nil {
		c.stats.RecordFailure()
		c.log.Error("write failed", "output", res.Output, "error", err)
		return nil, writeError(res.Output, err)
	}

	res.Duration = time.Since(start)
	c.stats.Record(res.Duration)
	c.log.Info("converted", "input", path, "output", res.Output, "paragraphs", len(res.Paragraphs), "duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func (c *Converter) parserFor(filename string) (parser.Parser, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = c.opts.PDFFallbackPdftotext
	}
	return p, nil
}

func (c *Converter) parse(r io.Reader, filename string) (*richtext.Document, error) {
	p, err := c.parserFor(filename)
	if err != nil {
		return nil, err
	}
	return p.Parse(r, filename)
}

func (c *Converter) parseFile(path string) (*richtext.Document, error) {
	p, err := c.parserFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	// *os.File is not a sized ReaderAt; SectionReader gives parsers both.
	return p.Parse(io.NewSectionReader(f, 0, info.Size()), path)
}

// WriteHTML writes newline-joined paragraphs to path as UTF-8. The file is
// closed before returning; a failed close is reported as a write error.
func WriteHTML(path string, paragraphs []string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(render.Join(paragraphs)); err != nil {
		return err
	}
	return w.Flush()
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// IsCancelled reports whether err means the user chose no input.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
