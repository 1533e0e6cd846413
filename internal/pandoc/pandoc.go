// Package pandoc drives the Pandoc CLI, the conversion engine behind all
// math and document translation.
//
// Equation fragments travel through Pandoc's docx reader: the OMML is
// packed into a minimal in-memory docx archive, written to a temp file and
// converted to LaTeX. Whole documents go the other way, from Markdown or
// LaTeX source to HTML with MathML, or to a docx download. The Runner
// interface isolates subprocess execution so tests can stub the binary.
package pandoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Sentinel errors for engine failures.
var (
	ErrNotFound = errors.New("pandoc not found on PATH")
	ErrTimeout  = errors.New("pandoc timed out")
	ErrRun      = errors.New("pandoc failed")
)

// Pandoc input format names for the supported source formats. The markdown
// reader is extended so both $...$ and \(...\) math survive.
const (
	FormatMarkdown = "markdown+tex_math_dollars+tex_math_single_backslash"
	FormatLatex    = "latex"
)

// Default timeouts: equation fragments are tiny and must fail fast, whole
// documents get more room.
const (
	DefaultFragmentTimeout = 10 * time.Second
	DefaultDocumentTimeout = 30 * time.Second

	versionTimeout = 5 * time.Second
)

// Runner abstracts command execution to enable testing without real
// subprocesses.
type Runner interface {
	Run(ctx context.Context, stdin []byte, args ...string) (stdout []byte, stderr string, err error)
}

// ExecRunner implements Runner by invoking the Pandoc binary.
type ExecRunner struct {
	// Binary overrides the executable name; empty means "pandoc".
	Binary string
}

var _ Runner = (*ExecRunner)(nil)

func (r *ExecRunner) Run(ctx context.Context, stdin []byte, args ...string) ([]byte, string, error) {
	name := r.Binary
	if name == "" {
		name = "pandoc"
	}
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.String(), err
}

// Engine runs Pandoc conversions with per-call timeouts.
type Engine struct {
	runner          Runner
	fragmentTimeout time.Duration
	documentTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithFragmentTimeout sets the timeout for equation fragment conversions.
// Panics if d is not positive.
func WithFragmentTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pandoc: fragment timeout must be positive")
	}
	return func(e *Engine) { e.fragmentTimeout = d }
}

// WithDocumentTimeout sets the timeout for whole-document conversions.
// Panics if d is not positive.
func WithDocumentTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pandoc: document timeout must be positive")
	}
	return func(e *Engine) { e.documentTimeout = d }
}

// NewEngine creates an Engine with the given options applied over the
// defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		fragmentTimeout: DefaultFragmentTimeout,
		documentTimeout: DefaultDocumentTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runner == nil {
		e.runner = &ExecRunner{}
	}
	return e
}

// FragmentToLatex converts a docx archive holding one equation to LaTeX.
// Pandoc needs a seekable file for docx input, so the archive goes through
// a temp file.
func (e *Engine) FragmentToLatex(ctx context.Context, docx []byte) (string, error) {
	tmpPath, cleanup, err := writeTempDocx(docx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, e.fragmentTimeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(ctx, nil, tmpPath, "-f", "docx", "-t", "latex", "--wrap=none")
	if err != nil {
		return "", runError(ctx, stderr, err)
	}
	return string(stdout), nil
}

// ToHTMLMathML converts source text to an HTML fragment with equations as
// MathML, the representation Word pastes best.
func (e *Engine) ToHTMLMathML(ctx context.Context, src, fromFormat string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.documentTimeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(ctx, []byte(src), "-f", fromFormat, "-t", "html", "--mathml")
	if err != nil {
		return "", runError(ctx, stderr, err)
	}
	return string(stdout), nil
}

// ToDocx converts source text to a Word document.
func (e *Engine) ToDocx(ctx context.Context, src, fromFormat string) ([]byte, error) {
	tmpPath, cleanup, err := writeTempDocx(nil)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, e.documentTimeout)
	defer cancel()

	_, stderr, err := e.runner.Run(ctx, []byte(src), "-f", fromFormat, "-t", "docx", "-o", tmpPath)
	if err != nil {
		return nil, runError(ctx, stderr, err)
	}

	out, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("reading converted document: %w", err)
	}
	return out, nil
}

// Version reports the first line of pandoc --version output.
func (e *Engine) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(ctx, nil, "--version")
	if err != nil {
		return "", runError(ctx, stderr, err)
	}
	line, _, _ := strings.Cut(string(stdout), "\n")
	return strings.TrimSpace(line), nil
}

// runError maps a runner failure onto the package sentinels.
func runError(ctx context.Context, stderr string, err error) error {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return fmt.Errorf("%w: install it from https://pandoc.org/installing.html", ErrNotFound)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return fmt.Errorf("%w: %s", ErrRun, msg)
	}
	return fmt.Errorf("%w: %v", ErrRun, err)
}

// writeTempDocx creates a temporary docx file. Returns the file path and a
// cleanup function to remove it.
func writeTempDocx(content []byte) (path string, cleanup func(), err error) {
	tmpFile, err := os.CreateTemp("", "wordtex-*.docx")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, err := tmpFile.Write(content); err != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", err)
	}

	return path, cleanup, nil
}
