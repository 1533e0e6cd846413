package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// ErrPreview indicates Markdown preview rendering failed.
var ErrPreview = errors.New("preview rendering failed")

// Preview renders converted Markdown back to HTML for the browser preview
// pane, GFM tables and syntax highlighting included.
type Preview struct {
	md goldmark.Markdown
}

// NewPreview creates a Preview renderer. Raw HTML passes through: the
// input is the user's own converted document, and inline runs carried over
// from Word arrive as HTML.
func NewPreview() *Preview {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			htmlrenderer.WithUnsafe(),
			htmlrenderer.WithXHTML(),
		),
	)
	return &Preview{md: md}
}

// Render converts Markdown to an HTML fragment. Goldmark has no native
// context support, so cancellation uses the goroutine + select pattern.
func (p *Preview) Render(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := p.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrPreview, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
