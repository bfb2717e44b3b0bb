package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dgallion1/wordhtml/internal/convert"
	flag "github.com/spf13/pflag"
)

var (
	ErrNoInput = errors.New("no input files")
	ErrUsage   = errors.New("invalid usage")
)

// cliFlags holds the parsed command line.
type cliFlags struct {
	stdout  bool
	text    bool
	quiet   bool
	verbose bool
	suffix  string
	help    bool
}

func newFlagSet(f *cliFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("wordhtml", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&f.stdout, "stdout", false, "print HTML to stdout instead of writing files")
	fs.BoolVar(&f.text, "text", false, "read plain styled text from stdin")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress success messages")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log conversions to stderr")
	fs.StringVar(&f.suffix, "suffix", "", "output file suffix (default \"_converted.html\")")
	fs.BoolVarP(&f.help, "help", "h", false, "show this help")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: wordhtml [flags] FILE...")
		fmt.Fprintln(stderr, "       wordhtml --text < notes.txt")
		fmt.Fprintln(stderr)
		fmt.Fprint(stderr, fs.FlagUsages())
	}
	return fs
}

// parseFlags parses args (without the program name) and returns the input
// files.
func parseFlags(args []string, stderr io.Writer) (cliFlags, []string, error) {
	var f cliFlags
	fs := newFlagSet(&f, stderr)
	if err := fs.Parse(args); err != nil {
		return f, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if f.help {
		fs.Usage()
		return f, nil, nil
	}

	if f.suffix != "" {
		if err := convert.ValidateSuffix(f.suffix); err != nil {
			return f, nil, fmt.Errorf("%w: %v", ErrUsage, err)
		}
	}

	files := fs.Args()
	switch {
	case f.text && len(files) > 0:
		return f, nil, fmt.Errorf("%w: --text reads stdin and takes no files", ErrUsage)
	case !f.text && len(files) == 0:
		fs.Usage()
		return f, nil, ErrNoInput
	}
	return f, files, nil
}
