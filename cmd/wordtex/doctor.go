package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/wordtex/wordtex/internal/pandoc"
)

// runDoctor checks the external dependencies and reports what is missing.
func runDoctor(args []string) error {
	fs := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
	binary := fs.String("pandoc", "", "pandoc binary (default from PATH)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: wordtex doctor [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	engine := pandoc.NewEngine(pandoc.WithRunner(&pandoc.ExecRunner{Binary: *binary}))
	version, err := engine.Version(ctx)
	if err != nil {
		fmt.Println("pandoc: NOT FOUND")
		return fmt.Errorf("checking pandoc: %w", err)
	}
	fmt.Println("pandoc:", version)

	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		fmt.Println("browser:", bin)
	} else {
		fmt.Println("browser: auto (rod downloads Chromium on first PDF export)")
	}
	return nil
}
