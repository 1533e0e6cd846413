// Package docparse builds the document tree from clipboard markup.
//
// The input is the simplified markup produced by the placeholder
// extraction step: all math XML replaced by placeholder elements, safe for
// an HTML parser. Build walks the parsed DOM in document order, maps the
// recognized block elements onto doctree nodes and resolves placeholders
// back to their original XML through the arena. A placeholder that cannot
// be resolved degrades to a visible text marker and a warning; it never
// fails the build.
package docparse

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/wordtex/wordtex/internal/doctree"
	"github.com/wordtex/wordtex/internal/omml"
)

// FallbackText replaces a math block whose placeholder failed to resolve.
const FallbackText = "[equation unavailable]"

var (
	// Word heading paragraphs carry classes like MsoHeading2.
	headingClassRe = regexp.MustCompile(`(?i)^MsoHeading(\d)`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
)

// Inline elements kept as formatting runs with their markup preserved, so
// the renderers can carry the formatting into each output dialect.
var runTags = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true, "u": true,
	"sup": true, "sub": true, "s": true, "strike": true,
	"a": true, "code": true,
}

// Build parses the simplified markup and returns the document tree in
// document order plus any non-fatal warnings.
func Build(markup string, arena *omml.Arena) ([]doctree.Node, []string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, nil, fmt.Errorf("parsing markup: %w", err)
	}

	b := &builder{arena: arena}
	root := findElement(doc, "body")
	if root == nil {
		root = doc
	}
	b.walk(root)
	return b.nodes, b.warnings, nil
}

type builder struct {
	arena    *omml.Arena
	nodes    []doctree.Node
	warnings []string
}

func (b *builder) walk(parent *html.Node) {
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			text := normalizeText(child.Data)
			if text != "" && text != "StartFragment" && text != "EndFragment" {
				b.nodes = append(b.nodes, doctree.Node{Kind: doctree.Text, Content: text})
			}
			continue
		}
		if child.Type != html.ElementNode {
			continue
		}

		switch child.Data {
		case omml.PlaceholderTag:
			kind := doctree.InlineMath
			if attr(child, omml.AttrRole) == omml.RoleDisplay {
				kind = doctree.DisplayMath
			}
			b.nodes = append(b.nodes, b.mathNode(child, kind))
		case "table":
			b.handleTable(child)
		case "ul", "ol":
			b.handleList(child)
		case "p":
			b.handleParagraph(child)
		case "w:p":
			b.handleWordParagraph(child)
		default:
			if level := detectHeading(child); level > 0 {
				b.nodes = append(b.nodes, doctree.Node{
					Kind:    doctree.Heading,
					Level:   level,
					Content: normalizeText(textContent(child)),
				})
				continue
			}
			b.walk(child)
		}
	}
}

// mathNode restores a placeholder into a math node of the given kind. On
// failure it returns a visible text fallback and records a warning.
func (b *builder) mathNode(ph *html.Node, kind doctree.Kind) doctree.Node {
	xml, ok := b.resolvePlaceholder(ph)
	if !ok {
		return doctree.Node{Kind: doctree.Text, Content: FallbackText}
	}
	n := doctree.Node{Kind: kind, Content: xml}
	if kind == doctree.DisplayMath {
		n.MathEnv = omml.DetectEnv(xml)
	}
	return n
}

func (b *builder) resolvePlaceholder(ph *html.Node) (string, bool) {
	raw := attr(ph, omml.AttrID)
	id, err := strconv.Atoi(raw)
	if err != nil {
		b.warnings = append(b.warnings, fmt.Sprintf("math placeholder has invalid id %q", raw))
		return "", false
	}
	xml, ok := b.arena.Restore(id)
	if !ok {
		b.warnings = append(b.warnings, fmt.Sprintf("math placeholder %d could not be restored", id))
		return "", false
	}
	return xml, true
}

// handleParagraph maps a <p> onto the tree. A paragraph holding a display
// placeholder becomes that display block alone; a Word heading class makes
// it a heading; otherwise its inline content becomes a paragraph, unwrapped
// when it holds a single run.
func (b *builder) handleParagraph(p *html.Node) {
	if ph := findDisplayPlaceholder(p); ph != nil {
		b.nodes = append(b.nodes, b.mathNode(ph, doctree.DisplayMath))
		return
	}
	if level := detectHeading(p); level > 0 {
		b.nodes = append(b.nodes, doctree.Node{
			Kind:    doctree.Heading,
			Level:   level,
			Content: normalizeText(textContent(p)),
		})
		return
	}

	children := b.extractInline(p)
	switch len(children) {
	case 0:
	case 1:
		b.nodes = append(b.nodes, children[0])
	default:
		b.nodes = append(b.nodes, doctree.Node{Kind: doctree.Paragraph, Children: children})
	}
}

// handleWordParagraph maps a raw OOXML <w:p> paragraph: text lives in
// <w:t> runs, preserved verbatim since their spacing is significant.
func (b *builder) handleWordParagraph(wp *html.Node) {
	if ph := findDisplayPlaceholder(wp); ph != nil {
		b.nodes = append(b.nodes, b.mathNode(ph, doctree.DisplayMath))
		return
	}

	var children []doctree.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case omml.PlaceholderTag:
				children = append(children, b.mathNode(c, doctree.InlineMath))
			case "w:t":
				if text := textContent(c); strings.TrimSpace(text) != "" {
					children = append(children, doctree.Node{Kind: doctree.Text, Content: text})
				}
			default:
				collect(c)
			}
		}
	}
	collect(wp)

	switch len(children) {
	case 0:
	case 1:
		b.nodes = append(b.nodes, children[0])
	default:
		b.nodes = append(b.nodes, doctree.Node{Kind: doctree.Paragraph, Children: children})
	}
}

// extractInline collects the inline runs of a container: plain text,
// formatting runs with markup attached, and inline math. Unknown
// containers are flattened; one that flattens to nothing but still has
// text keeps its markup so no content is lost.
func (b *builder) extractInline(parent *html.Node) []doctree.Node {
	var out []doctree.Node
	for child := parent.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case child.Type == html.TextNode:
			if text := normalizeText(child.Data); text != "" {
				out = append(out, doctree.Node{Kind: doctree.Text, Content: text})
			}
		case child.Type != html.ElementNode:
		case child.Data == omml.PlaceholderTag:
			out = append(out, b.mathNode(child, doctree.InlineMath))
		case runTags[child.Data]:
			if text := textContent(child); strings.TrimSpace(text) != "" {
				out = append(out, doctree.Node{Kind: doctree.Text, Content: text, Markup: outerHTML(child)})
			}
		default:
			if inner := b.extractInline(child); len(inner) > 0 {
				out = append(out, inner...)
			} else if text := textContent(child); strings.TrimSpace(text) != "" {
				out = append(out, doctree.Node{Kind: doctree.Text, Content: text, Markup: outerHTML(child)})
			}
		}
	}
	return out
}

// handleList maps a <ul> or <ol>. Items keep their inner markup so
// formatted list entries survive. A list nested inside an item becomes a
// child List node one level deeper, placed right after its item.
func (b *builder) handleList(list *html.Node) {
	b.nodes = append(b.nodes, b.listNode(list, 1))
}

func (b *builder) listNode(list *html.Node, depth int) doctree.Node {
	var children []doctree.Node
	for child := list.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "li" {
			continue
		}
		children = append(children, doctree.Node{
			Kind:    doctree.Text,
			Content: normalizeText(itemText(child)),
			Markup:  itemMarkup(child),
		})
		for _, sub := range directLists(child) {
			children = append(children, b.listNode(sub, depth+1))
		}
	}
	return doctree.Node{
		Kind:     doctree.List,
		Ordered:  list.Data == "ol",
		Level:    depth,
		Children: children,
	}
}

// directLists returns the ul and ol descendants of an item without
// descending into a matched list, so deeper nesting stays with its own
// parent item.
func directLists(li *html.Node) []*html.Node {
	var lists []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				lists = append(lists, c)
				continue
			}
			walk(c)
		}
	}
	walk(li)
	return lists
}

// itemText is textContent without nested list subtrees, which become
// their own nodes.
func itemText(li *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
				continue
			}
			if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
				continue
			}
			walk(c)
		}
	}
	walk(li)
	return buf.String()
}

// itemMarkup renders an item's children, skipping nested lists.
func itemMarkup(li *html.Node) string {
	var buf bytes.Buffer
	for c := li.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue
		}
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// handleTable maps a <table> into rows of cells. Display math inside a
// cell is forced to inline so it cannot break tabular layout.
func (b *builder) handleTable(table *html.Node) {
	var rows []doctree.Row
	for _, tr := range findAll(table, "tr") {
		var row doctree.Row
		for _, cell := range findCells(tr) {
			row = append(row, b.extractCell(cell))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if len(rows) > 0 {
		b.nodes = append(b.nodes, doctree.Node{Kind: doctree.Table, Rows: rows})
	}
}

func (b *builder) extractCell(cell *html.Node) doctree.Cell {
	paragraphs := findAll(cell, "p")
	if len(paragraphs) == 0 {
		return doctree.Cell(b.extractInline(cell))
	}

	var out []doctree.Node
	for _, p := range paragraphs {
		if ph := findDisplayPlaceholder(p); ph != nil {
			out = append(out, b.mathNode(ph, doctree.InlineMath))
			continue
		}
		out = append(out, b.extractInline(p)...)
	}
	return doctree.Cell(out)
}

// detectHeading returns the heading level for h1-h6 elements and Word
// MsoHeading classes, clamped to 1-6, or 0 when the element is not a
// heading.
func detectHeading(n *html.Node) int {
	name := n.Data
	if len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6' {
		return int(name[1] - '0')
	}
	for _, cls := range strings.Fields(attr(n, "class")) {
		if m := headingClassRe.FindStringSubmatch(cls); m != nil {
			level, _ := strconv.Atoi(m[1])
			return clampLevel(level)
		}
	}
	return 0
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

func findDisplayPlaceholder(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == omml.PlaceholderTag && attr(n, omml.AttrRole) == omml.RoleDisplay {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if ph := findDisplayPlaceholder(c); ph != nil {
			return ph
		}
	}
	return nil
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, name string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == name {
				found = append(found, c)
			}
			walk(c)
		}
	}
	walk(n)
	return found
}

// findCells returns the td and th descendants of a row without descending
// into a matched cell, so a nested table never duplicates content.
func findCells(tr *html.Node) []*html.Node {
	var cells []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, c)
				continue
			}
			walk(c)
		}
	}
	walk(tr)
	return cells
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// normalizeText collapses whitespace runs, no-break spaces included, into
// single spaces and trims the ends.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func outerHTML(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}
