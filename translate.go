package wordtex

import (
	"context"
	"fmt"
	"strings"

	"github.com/wordtex/wordtex/internal/cleanup"
	"github.com/wordtex/wordtex/internal/doctree"
	"github.com/wordtex/wordtex/internal/omml"
	"github.com/wordtex/wordtex/internal/pandoc"
)

// resolveTree replaces the OMML in every math node with cleaned LaTeX. The
// input tree is left untouched; resolution builds a copy so a tree can be
// resolved and rendered while the original stays reusable.
func (c *Converter) resolveTree(ctx context.Context, nodes []doctree.Node) ([]doctree.Node, []string) {
	var warnings []string
	out := make([]doctree.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
		switch n.Kind {
		case doctree.InlineMath, doctree.DisplayMath:
			latex, warns := c.translateMath(ctx, n.Content)
			out[i].Content = latex
			warnings = append(warnings, warns...)
		default:
			if len(n.Children) > 0 {
				children, warns := c.resolveTree(ctx, n.Children)
				out[i].Children = children
				warnings = append(warnings, warns...)
			}
			if len(n.Rows) > 0 {
				rows := make([]doctree.Row, len(n.Rows))
				for ri, row := range n.Rows {
					cells := make(doctree.Row, len(row))
					for ci, cell := range row {
						resolved, warns := c.resolveTree(ctx, cell)
						cells[ci] = resolved
						warnings = append(warnings, warns...)
					}
					rows[ri] = cells
				}
				out[i].Rows = rows
			}
		}
	}
	return out, warnings
}

// translateMath converts one OMML fragment to LaTeX through Pandoc's docx
// reader and the cleanup passes. Engine failure degrades to the tag-stripped
// text content with a warning; a broken equation must never take the whole
// document down with it.
func (c *Converter) translateMath(ctx context.Context, xml string) (string, []string) {
	normalized := omml.NormalizeFragment(xml)

	docx, err := pandoc.BuildMathDocx(normalized)
	if err == nil {
		var latex string
		if latex, err = c.engine.FragmentToLatex(ctx, docx); err == nil {
			return cleanup.Clean(stripMathDelimiters(latex)), nil
		}
	}

	fallback := omml.StripTags(xml)
	warn := fmt.Sprintf("equation conversion failed, degraded to plain text: %v", err)
	return fallback, []string{warn}
}

// Delimiter pairs Pandoc wraps math output in, outermost first.
var mathDelimiters = [][2]string{
	{`\[`, `\]`},
	{`\(`, `\)`},
	{`$$`, `$$`},
	{`$`, `$`},
}

// stripMathDelimiters peels the math-mode delimiters off a Pandoc result,
// leaving bare math source for the renderers to re-delimit per format.
func stripMathDelimiters(latex string) string {
	latex = strings.TrimSpace(latex)
	for _, d := range mathDelimiters {
		if strings.HasPrefix(latex, d[0]) && strings.HasSuffix(latex, d[1]) && len(latex) >= len(d[0])+len(d[1]) {
			return strings.TrimSpace(latex[len(d[0]) : len(latex)-len(d[1])])
		}
	}
	return latex
}
