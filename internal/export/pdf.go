// Package export renders converted documents to PDF with headless Chrome.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/wordtex/wordtex/internal/fileutil"
)

// Sentinel errors for PDF rendering.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFRender      = errors.New("PDF rendering failed")
)

// documentTemplate wraps a preview fragment in a printable HTML5 document.
const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Document</title>
<style>
body { font-family: Georgia, serif; max-width: 46em; margin: 2em auto; line-height: 1.5; }
table { border-collapse: collapse; }
td, th { border: 1px solid #999; padding: 0.3em 0.6em; }
</style>
</head>
<body>
%s
</body>
</html>`

// WrapDocument embeds an HTML fragment in the printable document shell.
func WrapDocument(fragment string) string {
	return fmt.Sprintf(documentTemplate, fragment)
}

// Page dimensions in inches, US Letter.
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// Renderer renders HTML to PDF using go-rod. The browser launches lazily
// on first use and is shared by all renders; the mutex serializes launch
// and shutdown so concurrent renders never race on the shared process.
type Renderer struct {
	mu      sync.Mutex
	browser *rod.Browser
	timeout time.Duration

	// connect is replaced in tests to render without a real browser.
	connect func() (*rod.Browser, error)
}

// NewRenderer creates a Renderer with the given per-render timeout.
func NewRenderer(timeout time.Duration) *Renderer {
	return &Renderer{timeout: timeout, connect: launchBrowser}
}

// launchBrowser starts headless Chrome and connects to it. rod downloads
// Chromium when none is found.
func launchBrowser() (*rod.Browser, error) {
	l := launcher.New()
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}
	// Containerized and CI environments cannot run the Chrome sandbox.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return browser, nil
}

// ensureBrowser returns the shared browser, launching it on first use.
// Concurrent first renders wait on the lock and reuse the single launch.
func (r *Renderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser != nil {
		return r.browser, nil
	}

	browser, err := r.connect()
	if err != nil {
		return nil, err
	}
	r.browser = browser
	return browser, nil
}

// Render writes the HTML to a temp file, loads it in a fresh page and
// prints it to PDF.
func (r *Renderer) Render(ctx context.Context, htmlContent string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFRender, err)
	}

	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFRender, err)
	}
	return pdf, nil
}

// Close releases browser resources.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browser == nil {
		return nil
	}

	err := r.browser.Close()
	r.browser = nil
	return err
}

func floatPtr(v float64) *float64 {
	return &v
}
