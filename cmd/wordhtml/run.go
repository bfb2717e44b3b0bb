package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/wordhtml/internal/convert"
	"github.com/dgallion1/wordhtml/internal/editor"
)

// run executes the CLI and returns the process exit code. Every file is
// attempted; the code reflects the last failure.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	f, files, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, ErrNoInput) {
			fmt.Fprintln(stderr, "error:", err)
		}
		return exitCodeFor(err)
	}
	if f.help {
		return ExitSuccess
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if f.verbose {
		log = slog.New(slog.NewTextHandler(stderr, nil))
	}
	conv := convert.New(convert.Options{OutputSuffix: f.suffix}, nil, log)
	ctx := context.Background()

	if f.text {
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintln(stderr, "error: reading stdin:", err)
			return ExitRead
		}
		// The final line terminator ends the last line; it does not start a new one.
		text := strings.TrimSuffix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		res := conv.Text(editor.New(text))
		fmt.Fprintln(stdout, res.HTML())
		return ExitSuccess
	}

	code := ExitSuccess
	for _, file := range files {
		err := convertOne(ctx, conv, file, f, stdout, stderr)
		if err != nil && !convert.IsCancelled(err) {
			fmt.Fprintf(stderr, "error: could not convert %s: %v\n", file, cause(err))
			code = exitCodeFor(err)
		}
	}
	return code
}

func convertOne(ctx context.Context, conv *convert.Converter, file string, f cliFlags, stdout, stderr io.Writer) error {
	if !f.stdout {
		res, err := conv.ConvertFile(ctx, file)
		if err != nil {
			return err
		}
		if !f.quiet {
			fmt.Fprintf(stderr, "converted: %s\n", res.Output)
		}
		return nil
	}

	in, err := os.Open(file)
	if err != nil {
		return &convert.Error{Kind: convert.KindRead, Path: file, Err: err}
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return &convert.Error{Kind: convert.KindRead, Path: file, Err: err}
	}
	res, err := conv.ConvertReader(ctx, io.NewSectionReader(in, 0, info.Size()), file)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, res.HTML())
	return nil
}

// cause drops the path from a conversion error; the caller already names
// the file.
func cause(err error) error {
	var convErr *convert.Error
	if errors.As(err, &convErr) && convErr.Err != nil {
		return convErr.Err
	}
	return err
}
