// Command wordtex converts Word clipboard HTML to LaTeX/Markdown and
// back, and serves the HTTP API for the browser UI.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// maxprocs.Set only fails on an invalid GOMAXPROCS env value, in
	// which case runtime defaults apply and the program continues.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "wordtex:", err)
		os.Exit(exitCodeFor(err))
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return errUsage
	}

	switch args[0] {
	case "convert":
		return runConvert(args[1:])
	case "clipboard":
		return runClipboard(args[1:])
	case "serve":
		return runServe(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "version", "--version", "-v":
		fmt.Println("wordtex", Version)
		return nil
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		return nil
	}

	printUsage(os.Stderr)
	return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
}
