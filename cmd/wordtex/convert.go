package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	wordtex "github.com/wordtex/wordtex"
	"github.com/wordtex/wordtex/internal/pandoc"
)

// runConvert handles the forward direction: Word clipboard HTML in, one
// of the markup formats out.
func runConvert(args []string) error {
	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	to := fs.StringP("to", "t", "latex", "output format: latex, markdown or html")
	out := fs.StringP("output", "o", "", "output file (default stdout)")
	binary := fs.String("pandoc", "", "pandoc binary (default from PATH)")
	quiet := fs.BoolP("quiet", "q", false, "suppress warnings on stderr")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: wordtex convert [flags] [file|-]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	switch *to {
	case "latex", "markdown", "html":
	default:
		return fmt.Errorf("%w: --to must be latex, markdown or html, got %q", errUsage, *to)
	}

	input, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	conv := newConverter(*binary)
	defer conv.Close()

	res, err := conv.Convert(context.Background(), input)
	if err != nil {
		return err
	}

	if !*quiet {
		for _, w := range res.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}
	}

	var output string
	switch *to {
	case "latex":
		output = res.LaTeX
	case "markdown":
		output = res.Markdown
	case "html":
		output = res.HTML
	}
	return writeOutput(*out, []byte(output))
}

// runClipboard handles the reverse direction: markup source in, CF_HTML
// clipboard payload out.
func runClipboard(args []string) error {
	fs := pflag.NewFlagSet("clipboard", pflag.ContinueOnError)
	from := fs.StringP("from", "f", "markdown", "source format: markdown or latex")
	out := fs.StringP("output", "o", "", "output file (default stdout)")
	binary := fs.String("pandoc", "", "pandoc binary (default from PATH)")
	fragment := fs.Bool("fragment", false, "print the HTML fragment instead of the CF_HTML payload")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: wordtex clipboard [flags] [file|-]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	format, err := wordtex.ParseFormat(*from)
	if err != nil {
		return err
	}

	input, err := readInput(fs.Arg(0))
	if err != nil {
		return err
	}

	conv := newConverter(*binary)
	defer conv.Close()

	clip, err := conv.ToClipboard(context.Background(), string(input), format)
	if err != nil {
		return err
	}

	if *fragment {
		return writeOutput(*out, []byte(clip.Fragment))
	}
	return writeOutput(*out, clip.Payload)
}

// newConverter builds a Converter around an optional custom binary path.
func newConverter(binary string) *wordtex.Converter {
	engine := pandoc.NewEngine(pandoc.WithRunner(&pandoc.ExecRunner{Binary: binary}))
	return wordtex.New(wordtex.WithEngine(engine))
}
