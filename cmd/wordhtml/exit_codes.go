package main

import (
	"errors"
	"os"

	"github.com/dgallion1/wordhtml/internal/convert"
)

// Exit codes for the wordhtml CLI.
// 0=success, 1=general, 2=usage, then one code per failure kind.
const (
	ExitSuccess = 0 // Every input converted
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags or no input
	ExitRead    = 3 // Input missing or not a readable document
	ExitWrite   = 4 // Output file could not be written
)

// exitCodeFor returns the exit code for an error. Wrapped errors are matched
// with errors.Is.
func exitCodeFor(err error) int {
	if err == nil || errors.Is(err, convert.ErrCancelled) {
		return ExitSuccess
	}
	if errors.Is(err, convert.ErrWrite) {
		return ExitWrite
	}
	if errors.Is(err, convert.ErrRead) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitRead
	}
	if errors.Is(err, ErrNoInput) || errors.Is(err, ErrUsage) {
		return ExitUsage
	}
	return ExitGeneral
}
