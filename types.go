package wordtex

import "fmt"

// Format identifies a plain-text source format for the reverse direction.
type Format string

// Supported source formats.
const (
	FormatMarkdown Format = "markdown"
	FormatLatex    Format = "latex"
)

// ParseFormat maps a user-supplied format selector onto a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "latex", "tex":
		return FormatLatex, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Result is the forward-direction output: the same document rendered in
// all three target formats, plus any non-fatal warnings collected along
// the way. A non-empty warning list still accompanies a usable result;
// warnings are additive, never a failure.
type Result struct {
	LaTeX    string   `json:"latex"`
	Markdown string   `json:"markdown"`
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings,omitempty"`
}

// Clipboard is the reverse-direction output: the CF_HTML payload to put on
// the clipboard and the bare HTML fragment for display.
type Clipboard struct {
	Payload  []byte `json:"payload"`
	Fragment string `json:"fragment"`
}
