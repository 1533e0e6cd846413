package wordtex

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wordtex/wordtex/internal/cfhtml"
	"github.com/wordtex/wordtex/internal/docparse"
	"github.com/wordtex/wordtex/internal/export"
	"github.com/wordtex/wordtex/internal/omml"
	"github.com/wordtex/wordtex/internal/pandoc"
	"github.com/wordtex/wordtex/internal/render"
)

// engine is the slice of the Pandoc engine the converter uses. Tests stub
// it; production always uses *pandoc.Engine.
type engine interface {
	FragmentToLatex(ctx context.Context, docx []byte) (string, error)
	ToHTMLMathML(ctx context.Context, src, fromFormat string) (string, error)
	ToDocx(ctx context.Context, src, fromFormat string) ([]byte, error)
	Version(ctx context.Context) (string, error)
}

// pdfRenderer abstracts HTML-to-PDF rendering so tests run without a
// browser.
type pdfRenderer interface {
	Render(ctx context.Context, htmlContent string) ([]byte, error)
	Close() error
}

// Compile-time interface implementation checks.
var (
	_ engine      = (*pandoc.Engine)(nil)
	_ pdfRenderer = (*export.Renderer)(nil)
)

// defaultPDFTimeout bounds headless-Chrome rendering for PDF export.
const defaultPDFTimeout = 60 * time.Second

// Converter runs both conversion directions. Create with New, release the
// PDF browser with Close. A Converter is safe for concurrent use: every
// request carries its own state and the engine spawns a fresh process per
// call.
type Converter struct {
	engine   engine
	markdown *render.MarkdownRenderer
	preview  *render.Preview
	pdf      pdfRenderer
}

// Option configures a Converter.
type Option func(*Converter)

// WithEngine replaces the default Pandoc engine, e.g. to set timeouts or a
// custom binary path.
func WithEngine(e *pandoc.Engine) Option {
	return func(c *Converter) { c.engine = e }
}

// New creates a Converter with default configuration.
func New(opts ...Option) *Converter {
	c := &Converter{
		markdown: render.NewMarkdownRenderer(),
		preview:  render.NewPreview(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.engine == nil {
		c.engine = pandoc.NewEngine()
	}
	if c.pdf == nil {
		c.pdf = export.NewRenderer(defaultPDFTimeout)
	}
	return c
}

// Convert runs the forward direction: Word clipboard HTML in, the document
// rendered as LaTeX, Markdown and clean HTML out. Equations that fail to
// convert degrade to plain text and surface as warnings on the result; the
// conversion itself still succeeds.
func (c *Converter) Convert(ctx context.Context, clipboard []byte) (*Result, error) {
	if len(bytes.TrimSpace(clipboard)) == 0 {
		return nil, ErrNoInput
	}

	// The CF_HTML header, when present, is bookkeeping for the clipboard
	// and not part of the document.
	raw := string(cfhtml.StripHeader(clipboard))

	simplified, arena := omml.Extract(raw)
	nodes, warnings, err := docparse.Build(simplified, arena)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	nodes, mathWarnings := c.resolveTree(ctx, nodes)
	warnings = append(warnings, mathWarnings...)

	return &Result{
		LaTeX:    render.Latex(nodes),
		Markdown: c.markdown.Render(nodes),
		HTML:     render.HTML(nodes),
		Warnings: warnings,
	}, nil
}

// ToClipboard runs the reverse direction: LaTeX or Markdown source in, a
// CF_HTML clipboard payload out. Pandoc is asked for HTML with MathML
// because the MathML writer keeps the no-break spacing markers the spacing
// preprocessor plants; the OMML writer drops them. Engine failure here is
// fatal, a clipboard payload has no degraded form.
func (c *Converter) ToClipboard(ctx context.Context, source string, format Format) (*Clipboard, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrNoInput
	}

	var from string
	switch format {
	case FormatMarkdown:
		source = cfhtml.NormalizeUnitSpacingMarkdown(source)
		from = pandoc.FormatMarkdown
	case FormatLatex:
		source = cfhtml.NormalizeUnitSpacing(source)
		from = pandoc.FormatLatex
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	fragment, err := c.engine.ToHTMLMathML(ctx, source, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClipboard, err)
	}

	fragment = strings.TrimSpace(fragment)
	env := cfhtml.Wrap(fragment)
	return &Clipboard{Payload: env.Bytes(), Fragment: fragment}, nil
}

// Preview renders Markdown to the HTML preview fragment.
func (c *Converter) Preview(ctx context.Context, markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", ErrNoInput
	}
	return c.preview.Render(ctx, markdown)
}

// ExportDocx converts LaTeX or Markdown source to a Word document.
func (c *Converter) ExportDocx(ctx context.Context, source string, format Format) ([]byte, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrNoInput
	}

	var from string
	switch format {
	case FormatMarkdown:
		from = pandoc.FormatMarkdown
	case FormatLatex:
		from = pandoc.FormatLatex
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	out, err := c.engine.ToDocx(ctx, source, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	return out, nil
}

// ExportPDF renders Markdown source to PDF through the preview renderer
// and headless Chrome.
func (c *Converter) ExportPDF(ctx context.Context, markdown string) ([]byte, error) {
	fragment, err := c.Preview(ctx, markdown)
	if err != nil {
		return nil, err
	}
	pdf, err := c.pdf.Render(ctx, export.WrapDocument(fragment))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}
	return pdf, nil
}

// EngineVersion reports the conversion engine's version line, for health
// checks and the doctor command.
func (c *Converter) EngineVersion(ctx context.Context) (string, error) {
	return c.engine.Version(ctx)
}

// Close releases the headless browser held for PDF export.
func (c *Converter) Close() error {
	if c.pdf != nil {
		return c.pdf.Close()
	}
	return nil
}
