package render

import (
	"context"
	"strings"
	"testing"

	"github.com/wordtex/wordtex/internal/doctree"
)

func TestHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []doctree.Node
		want  []string
	}{
		{
			name:  "paragraph",
			nodes: []doctree.Node{{Kind: doctree.Text, Content: "Hello"}},
			want:  []string{"<p>Hello</p>"},
		},
		{
			name:  "heading",
			nodes: []doctree.Node{{Kind: doctree.Heading, Level: 2, Content: "Results"}},
			want:  []string{"<h2>Results</h2>"},
		},
		{
			name:  "inline math span",
			nodes: []doctree.Node{{Kind: doctree.InlineMath, Content: "x^{2}"}},
			want:  []string{`<span class="math inline">`, `\(x^{2}\)`},
		},
		{
			name:  "display math span",
			nodes: []doctree.Node{{Kind: doctree.DisplayMath, Content: "E = mc^{2}"}},
			want:  []string{`<span class="math display">`, `\[E = mc^{2}\]`},
		},
		{
			name: "table",
			nodes: []doctree.Node{{Kind: doctree.Table, Rows: []doctree.Row{
				{{{Kind: doctree.Text, Content: "a"}}},
			}}},
			want: []string{"<table>", "<td>a</td>"},
		},
		{
			name: "list",
			nodes: []doctree.Node{{Kind: doctree.List, Ordered: true, Children: []doctree.Node{
				{Kind: doctree.Text, Content: "one"},
			}}},
			want: []string{"<ol>", "<li>one</li>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := HTML(tt.nodes)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("HTML() = %q, want it to contain %q", got, want)
				}
			}
		})
	}
}

// Script injection through clipboard content must not reach the output.
func TestHTMLSanitizes(t *testing.T) {
	t.Parallel()

	nodes := []doctree.Node{{Kind: doctree.Paragraph, Children: []doctree.Node{
		{Kind: doctree.Text, Content: "x", Markup: `<b onclick="alert(1)">x</b><script>alert(2)</script>`},
	}}}
	got := HTML(nodes)
	if strings.Contains(got, "script") || strings.Contains(got, "onclick") {
		t.Errorf("HTML() = %q, script content survived", got)
	}
	if !strings.Contains(got, "<b>x</b>") {
		t.Errorf("HTML() = %q, formatting lost", got)
	}
}

func TestHTMLEscapesText(t *testing.T) {
	t.Parallel()

	got := HTML([]doctree.Node{{Kind: doctree.Text, Content: "a < b"}})
	if !strings.Contains(got, "a &lt; b") {
		t.Errorf("HTML() = %q, want escaped comparison", got)
	}
}

func TestPreviewRender(t *testing.T) {
	t.Parallel()

	p := NewPreview()
	got, err := p.Render(context.Background(), "# Title\n\nSome *emphasis* and a table:\n\n| a | b |\n| --- | --- |\n| 1 | 2 |\n")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{"<h1", "Title", "<em>emphasis</em>", "<table>"} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %q, want it to contain %q", got, want)
		}
	}
}

func TestPreviewRenderCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPreview()
	if _, err := p.Render(ctx, "# Title"); err == nil {
		t.Error("Render() error = nil, want context error")
	}
}

func TestHTMLNestedList(t *testing.T) {
	t.Parallel()

	nodes := []doctree.Node{{
		Kind:  doctree.List,
		Level: 1,
		Children: []doctree.Node{
			{Kind: doctree.Text, Content: "fruit"},
			{Kind: doctree.List, Level: 2, Children: []doctree.Node{
				{Kind: doctree.Text, Content: "apple"},
			}},
			{Kind: doctree.Text, Content: "nuts"},
		},
	}}
	got := HTML(nodes)
	if strings.Count(got, "<ul>") != 2 {
		t.Fatalf("got %d <ul> tags, want 2: %q", strings.Count(got, "<ul>"), got)
	}
	if !strings.Contains(got, "<li>apple</li>") {
		t.Errorf("nested item missing: %q", got)
	}
	if !strings.Contains(got, "</ul>\n</li>") {
		t.Errorf("sublist not nested inside its item: %q", got)
	}
	if !strings.Contains(got, "<li>nuts</li>") {
		t.Errorf("sibling item after sublist missing: %q", got)
	}
}
