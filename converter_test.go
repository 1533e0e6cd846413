package wordtex

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wordtex/wordtex/internal/cfhtml"
	"github.com/wordtex/wordtex/internal/render"
)

// stubEngine fakes the Pandoc engine with canned responses per call.
type stubEngine struct {
	fragmentLatex string
	fragmentErr   error
	html          string
	htmlErr       error
	docx          []byte
	docxErr       error

	gotSource string
	gotFormat string
}

func (e *stubEngine) FragmentToLatex(context.Context, []byte) (string, error) {
	return e.fragmentLatex, e.fragmentErr
}

func (e *stubEngine) ToHTMLMathML(_ context.Context, src, fromFormat string) (string, error) {
	e.gotSource = src
	e.gotFormat = fromFormat
	return e.html, e.htmlErr
}

func (e *stubEngine) ToDocx(_ context.Context, src, fromFormat string) ([]byte, error) {
	e.gotSource = src
	e.gotFormat = fromFormat
	return e.docx, e.docxErr
}

func (e *stubEngine) Version(context.Context) (string, error) {
	return "pandoc 0.0-test", nil
}

// stubPDF fakes the headless browser.
type stubPDF struct {
	out []byte
	err error
}

func (p *stubPDF) Render(context.Context, string) ([]byte, error) { return p.out, p.err }
func (p *stubPDF) Close() error                                   { return nil }

func newTestConverter(e engine) *Converter {
	return &Converter{
		engine:   e,
		markdown: render.NewMarkdownRenderer(),
		preview:  render.NewPreview(),
		pdf:      &stubPDF{out: []byte("%PDF-1.4 stub")},
	}
}

const clipboardDoc = `<html><body>` +
	`<p>Force grows with mass.</p>` +
	`<p><m:oMathPara><m:oMath><m:r><m:t>F=ma</m:t></m:r></m:oMath></m:oMathPara></p>` +
	`<p>Nothing else changes.</p>` +
	`</body></html>`

func TestConvert(t *testing.T) {
	t.Parallel()

	eng := &stubEngine{fragmentLatex: `\[F = ma\]`}
	c := newTestConverter(eng)

	result, err := c.Convert(context.Background(), []byte(clipboardDoc))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("Warnings = %v, want none", result.Warnings)
	}

	if !strings.Contains(result.LaTeX, "\\[\nF = ma\n\\]") {
		t.Errorf("LaTeX = %q, want display math", result.LaTeX)
	}
	if !strings.Contains(result.LaTeX, "Force grows with mass.") {
		t.Errorf("LaTeX = %q, want surrounding prose", result.LaTeX)
	}
	if !strings.Contains(result.Markdown, "$$\nF = ma\n$$") {
		t.Errorf("Markdown = %q, want display math", result.Markdown)
	}
	if !strings.Contains(result.HTML, `<span class="math display">`) {
		t.Errorf("HTML = %q, want math span", result.HTML)
	}

	// Prose order survives in every output.
	for name, out := range map[string]string{"latex": result.LaTeX, "markdown": result.Markdown} {
		if strings.Index(out, "Force grows") > strings.Index(out, "Nothing else") {
			t.Errorf("%s output reordered: %q", name, out)
		}
	}
}

func TestConvertStripsClipboardHeader(t *testing.T) {
	t.Parallel()

	blob := cfhtml.Wrap("<p>Paragraph only.</p>").Bytes()
	c := newTestConverter(&stubEngine{})

	result, err := c.Convert(context.Background(), blob)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(result.Markdown, "Paragraph only.") {
		t.Errorf("Markdown = %q, want paragraph content", result.Markdown)
	}
	if strings.Contains(result.Markdown, "Version:") {
		t.Errorf("Markdown = %q, clipboard header leaked through", result.Markdown)
	}
}

func TestConvertEmptyInput(t *testing.T) {
	t.Parallel()

	c := newTestConverter(&stubEngine{})
	if _, err := c.Convert(context.Background(), []byte("   \n")); !errors.Is(err, ErrNoInput) {
		t.Errorf("Convert() error = %v, want ErrNoInput", err)
	}
}

// A failing equation degrades to its text content with a warning while the
// rest of the document converts normally.
func TestConvertDegradedEquation(t *testing.T) {
	t.Parallel()

	eng := &stubEngine{fragmentErr: errors.New("pandoc exploded")}
	c := newTestConverter(eng)

	result, err := c.Convert(context.Background(), []byte(clipboardDoc))
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "degraded to plain text") {
		t.Errorf("warning = %q", result.Warnings[0])
	}
	if !strings.Contains(result.Markdown, "F=ma") {
		t.Errorf("Markdown = %q, want stripped equation text", result.Markdown)
	}
	if !strings.Contains(result.Markdown, "Force grows with mass.") {
		t.Errorf("Markdown = %q, want surrounding prose intact", result.Markdown)
	}
}

func TestToClipboard(t *testing.T) {
	t.Parallel()

	eng := &stubEngine{html: "<p>x is <math>x</math></p>\n"}
	c := newTestConverter(eng)

	clip, err := c.ToClipboard(context.Background(), "x is $x$", FormatMarkdown)
	if err != nil {
		t.Fatalf("ToClipboard() error = %v", err)
	}
	if clip.Fragment != "<p>x is <math>x</math></p>" {
		t.Errorf("Fragment = %q", clip.Fragment)
	}

	env, err := cfhtml.Parse(clip.Payload)
	if err != nil {
		t.Fatalf("payload does not parse: %v", err)
	}
	if got := string(env.Fragment()); got != clip.Fragment {
		t.Errorf("payload fragment = %q, want %q", got, clip.Fragment)
	}
}

// The spacing preprocessor runs before the engine sees the source.
func TestToClipboardNormalizesSpacing(t *testing.T) {
	t.Parallel()

	eng := &stubEngine{html: "<p></p>"}
	c := newTestConverter(eng)

	if _, err := c.ToClipboard(context.Background(), `$1\,\text{AU}$`, FormatMarkdown); err != nil {
		t.Fatalf("ToClipboard() error = %v", err)
	}
	if want := `$1\text{` + "\u00a0" + `AU}$`; eng.gotSource != want {
		t.Errorf("engine source = %q, want %q", eng.gotSource, want)
	}
}

func TestToClipboardErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		format Format
		engine *stubEngine
		want   error
	}{
		{name: "empty source", source: " ", format: FormatLatex, engine: &stubEngine{}, want: ErrNoInput},
		{name: "unknown format", source: "x", format: Format("rtf"), engine: &stubEngine{}, want: ErrUnknownFormat},
		{name: "engine failure", source: "x", format: FormatLatex, engine: &stubEngine{htmlErr: errors.New("boom")}, want: ErrClipboard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestConverter(tt.engine)
			if _, err := c.ToClipboard(context.Background(), tt.source, tt.format); !errors.Is(err, tt.want) {
				t.Errorf("ToClipboard() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExportDocx(t *testing.T) {
	t.Parallel()

	eng := &stubEngine{docx: []byte("PK docx bytes")}
	c := newTestConverter(eng)

	out, err := c.ExportDocx(context.Background(), "# Title", FormatMarkdown)
	if err != nil {
		t.Fatalf("ExportDocx() error = %v", err)
	}
	if string(out) != "PK docx bytes" {
		t.Errorf("ExportDocx() = %q", out)
	}
	if eng.gotFormat == "" || !strings.HasPrefix(eng.gotFormat, "markdown") {
		t.Errorf("engine format = %q, want markdown reader", eng.gotFormat)
	}
}

func TestExportDocxEngineFailure(t *testing.T) {
	t.Parallel()

	c := newTestConverter(&stubEngine{docxErr: errors.New("boom")})
	if _, err := c.ExportDocx(context.Background(), "x", FormatLatex); !errors.Is(err, ErrExport) {
		t.Errorf("ExportDocx() error = %v, want ErrExport", err)
	}
}

func TestExportPDF(t *testing.T) {
	t.Parallel()

	c := newTestConverter(&stubEngine{})
	out, err := c.ExportPDF(context.Background(), "# Title")
	if err != nil {
		t.Fatalf("ExportPDF() error = %v", err)
	}
	if !strings.HasPrefix(string(out), "%PDF") {
		t.Errorf("ExportPDF() = %q", out)
	}
}

func TestPreviewEmptyInput(t *testing.T) {
	t.Parallel()

	c := newTestConverter(&stubEngine{})
	if _, err := c.Preview(context.Background(), ""); !errors.Is(err, ErrNoInput) {
		t.Errorf("Preview() error = %v, want ErrNoInput", err)
	}
}
