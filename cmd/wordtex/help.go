package main

import (
	"fmt"
	"io"
)

const usageText = `wordtex - convert between Word clipboard HTML and LaTeX/Markdown

Usage:
  wordtex convert   [flags] [file|-]   clipboard HTML -> latex/markdown/html
  wordtex clipboard [flags] [file|-]   latex/markdown -> CF_HTML payload
  wordtex serve     [flags]            run the HTTP API server
  wordtex doctor    [flags]            check external dependencies
  wordtex version                      print the version

Run 'wordtex <command> --help' for command flags.
`

func printUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}
