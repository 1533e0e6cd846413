package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/wordtex/wordtex/internal/doctree"
)

// htmlPolicy sanitizes the assembled fragment. Clipboard HTML is attacker
// writable in principle (anything can put itself on the clipboard), so the
// inline markup carried through from the source goes through bluemonday.
// Math spans need their class attribute to keep the inline/display marking.
var htmlPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowTables()
	p.AllowAttrs("class").OnElements("span")
	return p
}()

// HTML renders the tree as a sanitized HTML fragment. Math is emitted in
// Pandoc's span convention: class "math inline" with \(...\) delimiters,
// class "math display" with \[...\].
func HTML(nodes []doctree.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		writeHTMLBlock(&b, n)
	}
	return htmlPolicy.Sanitize(b.String())
}

func writeHTMLBlock(b *strings.Builder, n doctree.Node) {
	switch n.Kind {
	case doctree.Heading:
		tag := []string{"h1", "h2", "h3", "h4", "h5", "h6"}[clampLevel(n.Level)-1]
		b.WriteString("<" + tag + ">" + html.EscapeString(n.Content) + "</" + tag + ">\n")
	case doctree.Paragraph:
		b.WriteString("<p>" + htmlInlineSeq(n.Children) + "</p>\n")
	case doctree.Text:
		b.WriteString("<p>" + htmlInline(n) + "</p>\n")
	case doctree.InlineMath:
		b.WriteString("<p>" + mathSpan(n.Content, "inline") + "</p>\n")
	case doctree.DisplayMath:
		b.WriteString("<p>" + mathSpan(displayBody(n), "display") + "</p>\n")
	case doctree.List:
		writeHTMLList(b, n)
	case doctree.Table:
		writeHTMLTable(b, n)
	}
}

func displayBody(n doctree.Node) string {
	content := strings.TrimSpace(n.Content)
	if needsAlignedWrap(n.MathEnv, content) {
		content = "\\begin{aligned}\n" + content + "\n\\end{aligned}"
	}
	return content
}

func mathSpan(latex, mode string) string {
	open, close := `\(`, `\)`
	if mode == "display" {
		open, close = `\[`, `\]`
	}
	return `<span class="math ` + mode + `">` + open + html.EscapeString(latex) + close + `</span>`
}

// writeHTMLList nests a child List node inside the <li> of the item it
// follows, the way HTML expects sublists.
func writeHTMLList(b *strings.Builder, n doctree.Node) {
	tag := "ul"
	if n.Ordered {
		tag = "ol"
	}
	b.WriteString("<" + tag + ">\n")
	for i := 0; i < len(n.Children); i++ {
		item := n.Children[i]
		if item.Kind == doctree.List {
			// A sublist with no preceding item still renders.
			writeHTMLList(b, item)
			continue
		}
		b.WriteString("<li>" + htmlInline(item))
		for i+1 < len(n.Children) && n.Children[i+1].Kind == doctree.List {
			b.WriteString("\n")
			writeHTMLList(b, n.Children[i+1])
			i++
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</" + tag + ">\n")
}

func writeHTMLTable(b *strings.Builder, n doctree.Node) {
	b.WriteString("<table>\n")
	for _, row := range n.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>" + htmlInlineSeq(cell) + "</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n")
}

func htmlInlineSeq(nodes []doctree.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := htmlInline(n); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func htmlInline(n doctree.Node) string {
	switch n.Kind {
	case doctree.InlineMath, doctree.DisplayMath:
		return mathSpan(n.Content, "inline")
	case doctree.Text:
		if n.Markup != "" {
			return n.Markup
		}
		return html.EscapeString(n.Content)
	}
	return html.EscapeString(n.Content)
}
