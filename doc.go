// Package wordtex converts between Word clipboard HTML with embedded OMML
// math and the scientific markup formats, LaTeX and Markdown, in both
// directions.
//
// The forward direction takes the raw clipboard payload, lifts the math
// XML out before HTML parsing so its case-sensitive tags survive, builds a
// typed document tree and renders it as LaTeX, Markdown and clean HTML,
// translating every equation through Pandoc. The reverse direction turns
// LaTeX or Markdown source into a byte-exact CF_HTML clipboard envelope
// that Word pastes with live equations.
//
// Create a Converter with New, then call Convert for the forward direction
// and ToClipboard for the reverse:
//
//	conv := wordtex.New()
//	defer conv.Close()
//
//	res, err := conv.Convert(ctx, clipboardBytes)
//	if err != nil { ... }
//	fmt.Println(res.LaTeX)
//
// Pandoc must be installed; every equation and document conversion runs
// through it as a subprocess.
package wordtex
