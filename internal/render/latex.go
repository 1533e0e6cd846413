// Package render turns a resolved document tree into the output formats:
// LaTeX, Markdown and clean HTML, plus the Markdown browser preview.
//
// Renderers expect math nodes to hold LaTeX already; resolving OMML is the
// converter's job. Every renderer reads the tree without modifying it, so
// the same tree can feed all three outputs.
package render

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/wordtex/wordtex/internal/doctree"
)

// Heading commands by level. Levels past subsubsection flatten to
// paragraph headings, LaTeX has nothing deeper.
var sectionCommands = []string{
	1: `\section`, 2: `\subsection`, 3: `\subsubsection`,
	4: `\paragraph`, 5: `\subparagraph`, 6: `\subparagraph`,
}

// latexEscaper handles the characters LaTeX reserves. A single Replacer
// never rescans its own output, so backslash expansion is safe here.
var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`%`, `\%`,
	`#`, `\#`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Latex renders the tree as a LaTeX document body. Blocks are separated by
// blank lines; inline math uses $...$ and display math \[...\].
func Latex(nodes []doctree.Node) string {
	blocks := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if block := latexBlock(n); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func latexBlock(n doctree.Node) string {
	switch n.Kind {
	case doctree.Heading:
		return sectionCommands[clampLevel(n.Level)] + "{" + latexEscaper.Replace(n.Content) + "}"
	case doctree.Paragraph:
		return latexInlineSeq(n.Children)
	case doctree.Text:
		return latexInline(n)
	case doctree.InlineMath:
		return "$" + n.Content + "$"
	case doctree.DisplayMath:
		return latexDisplay(n)
	case doctree.List:
		return latexList(n)
	case doctree.Table:
		return latexTable(n)
	}
	return ""
}

// latexDisplay wraps display math in \[...\], adding an aligned environment
// for multi-row blocks that do not already carry one.
func latexDisplay(n doctree.Node) string {
	content := strings.TrimSpace(n.Content)
	if needsAlignedWrap(n.MathEnv, content) {
		content = "\\begin{aligned}\n" + content + "\n\\end{aligned}"
	}
	return "\\[\n" + content + "\n\\]"
}

// needsAlignedWrap reports whether a detected row environment still has to
// be added around the math body. Pandoc sometimes emits the environment
// itself; wrapping twice would nest aligned in aligned.
func needsAlignedWrap(env, content string) bool {
	if env != doctree.EnvAligned && env != doctree.EnvMultiline {
		return false
	}
	return !strings.Contains(content, `\begin{`)
}

func latexList(n doctree.Node) string {
	env := "itemize"
	if n.Ordered {
		env = "enumerate"
	}
	indent := strings.Repeat("  ", clampLevel(n.Level)-1)
	var b strings.Builder
	b.WriteString(indent + "\\begin{" + env + "}\n")
	for _, item := range n.Children {
		if item.Kind == doctree.List {
			b.WriteString(latexList(item) + "\n")
			continue
		}
		b.WriteString(indent + "  \\item " + latexInline(item) + "\n")
	}
	b.WriteString(indent + "\\end{" + env + "}")
	return b.String()
}

func latexTable(n doctree.Node) string {
	cols := 0
	for _, row := range n.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\\begin{tabular}{" + strings.Repeat("l", cols) + "}\n")
	for _, row := range n.Rows {
		cells := make([]string, cols)
		for i := range cells {
			if i < len(row) {
				cells[i] = latexInlineSeq(row[i])
			}
		}
		b.WriteString(strings.Join(cells, " & ") + " \\\\\n")
	}
	b.WriteString("\\end{tabular}")
	return b.String()
}

func latexInlineSeq(nodes []doctree.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := latexInline(n); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func latexInline(n doctree.Node) string {
	switch n.Kind {
	case doctree.InlineMath, doctree.DisplayMath:
		return "$" + n.Content + "$"
	case doctree.Text:
		if n.Markup != "" {
			return markupToLatex(n.Markup)
		}
		return latexEscaper.Replace(n.Content)
	}
	return latexEscaper.Replace(n.Content)
}

// Inline formatting elements mapped onto LaTeX commands. Anything else
// contributes only its text.
var latexInlineCommands = map[string]string{
	"b": `\textbf`, "strong": `\textbf`,
	"i": `\emph`, "em": `\emph`,
	"u":    `\underline`,
	"sup":  `\textsuperscript`,
	"sub":  `\textsubscript`,
	"code": `\texttt`,
}

// markupToLatex converts an inline HTML run into LaTeX formatting
// commands. Parse failures fall back to the escaped raw text; inline runs
// are tiny and a lossy fallback beats losing the content.
func markupToLatex(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return latexEscaper.Replace(markup)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				b.WriteString(latexEscaper.Replace(c.Data))
			case html.ElementNode:
				if cmd, ok := latexInlineCommands[c.Data]; ok {
					b.WriteString(cmd + "{")
					walk(c)
					b.WriteString("}")
				} else {
					walk(c)
				}
			}
		}
	}
	walk(doc)
	return b.String()
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}
