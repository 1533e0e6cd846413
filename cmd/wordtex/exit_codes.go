package main

import (
	"errors"
	"os"

	wordtex "github.com/wordtex/wordtex"
	"github.com/wordtex/wordtex/internal/config"
	"github.com/wordtex/wordtex/internal/pandoc"
)

// Exit codes, Unix conventions: 0 success, 1 general, 2 usage, then
// custom codes below 126.
const (
	ExitSuccess = 0 // successful run
	ExitGeneral = 1 // general/unexpected error
	ExitUsage   = 2 // invalid flags, config, or input format
	ExitIO      = 3 // file not found, permission denied
	ExitEngine  = 4 // pandoc missing or failing
)

// errUsage marks command-line usage errors.
var errUsage = errors.New("usage error")

// exitCodeFor maps an error onto the exit code. Callers must wrap with
// fmt.Errorf("%w", err) for errors.Is to see through.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, pandoc.ErrNotFound) {
		return ExitEngine
	}

	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, errReadInput) ||
		errors.Is(err, errWriteOutput) {
		return ExitIO
	}

	if errors.Is(err, errUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, wordtex.ErrNoInput) ||
		errors.Is(err, wordtex.ErrUnknownFormat) {
		return ExitUsage
	}

	return ExitGeneral
}
