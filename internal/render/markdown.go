package render

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"github.com/wordtex/wordtex/internal/doctree"
)

// MarkdownRenderer renders the document tree as Markdown with TeX math.
// Inline HTML formatting runs go through html-to-markdown so bold, italics
// and links survive as Markdown syntax.
type MarkdownRenderer struct {
	conv *converter.Converter
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
			),
		),
	}
}

// Render produces the Markdown document. Inline math uses $...$, display
// math $$...$$; tables become GFM pipe tables.
func (r *MarkdownRenderer) Render(nodes []doctree.Node) string {
	blocks := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if block := r.block(n); block != "" {
			blocks = append(blocks, block)
		}
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

func (r *MarkdownRenderer) block(n doctree.Node) string {
	switch n.Kind {
	case doctree.Heading:
		return strings.Repeat("#", clampLevel(n.Level)) + " " + n.Content
	case doctree.Paragraph:
		return r.inlineSeq(n.Children)
	case doctree.Text:
		return r.inline(n)
	case doctree.InlineMath:
		return "$" + n.Content + "$"
	case doctree.DisplayMath:
		return r.display(n)
	case doctree.List:
		return r.list(n)
	case doctree.Table:
		return r.table(n)
	}
	return ""
}

func (r *MarkdownRenderer) display(n doctree.Node) string {
	content := strings.TrimSpace(n.Content)
	if needsAlignedWrap(n.MathEnv, content) {
		content = "\\begin{aligned}\n" + content + "\n\\end{aligned}"
	}
	return "$$\n" + content + "\n$$"
}

func (r *MarkdownRenderer) list(n doctree.Node) string {
	var b strings.Builder
	r.writeList(&b, n)
	return strings.TrimSuffix(b.String(), "\n")
}

// writeList indents each nesting level by two spaces, the GFM convention.
func (r *MarkdownRenderer) writeList(b *strings.Builder, n doctree.Node) {
	indent := strings.Repeat("  ", clampLevel(n.Level)-1)
	marker := "- "
	if n.Ordered {
		marker = "1. "
	}
	for _, item := range n.Children {
		if item.Kind == doctree.List {
			r.writeList(b, item)
			continue
		}
		b.WriteString(indent + marker + r.inline(item) + "\n")
	}
}

// table renders a GFM pipe table. The first row serves as the header; GFM
// has no headerless tables.
func (r *MarkdownRenderer) table(n doctree.Node) string {
	if len(n.Rows) == 0 {
		return ""
	}
	cols := 0
	for _, row := range n.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}

	rowLine := func(row doctree.Row) string {
		cells := make([]string, cols)
		for i := range cells {
			if i < len(row) {
				cells[i] = strings.ReplaceAll(r.inlineSeq(row[i]), "|", `\|`)
			}
		}
		return "| " + strings.Join(cells, " | ") + " |"
	}

	var b strings.Builder
	b.WriteString(rowLine(n.Rows[0]) + "\n")
	b.WriteString("|" + strings.Repeat(" --- |", cols))
	for _, row := range n.Rows[1:] {
		b.WriteString("\n" + rowLine(row))
	}
	return b.String()
}

func (r *MarkdownRenderer) inlineSeq(nodes []doctree.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := r.inline(n); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func (r *MarkdownRenderer) inline(n doctree.Node) string {
	switch n.Kind {
	case doctree.InlineMath, doctree.DisplayMath:
		return "$" + n.Content + "$"
	case doctree.Text:
		if n.Markup != "" {
			if md, err := r.conv.ConvertString(n.Markup); err == nil {
				return strings.TrimSpace(md)
			}
		}
		return n.Content
	}
	return n.Content
}
