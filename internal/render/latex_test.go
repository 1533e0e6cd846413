package render

import (
	"strings"
	"testing"

	"github.com/wordtex/wordtex/internal/doctree"
)

func TestLatex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		nodes []doctree.Node
		want  string
	}{
		{
			name:  "paragraph",
			nodes: []doctree.Node{{Kind: doctree.Text, Content: "Hello world."}},
			want:  "Hello world.\n",
		},
		{
			name:  "heading",
			nodes: []doctree.Node{{Kind: doctree.Heading, Level: 2, Content: "Results"}},
			want:  "\\subsection{Results}\n",
		},
		{
			name:  "heading clamped",
			nodes: []doctree.Node{{Kind: doctree.Heading, Level: 9, Content: "Deep"}},
			want:  "\\subparagraph{Deep}\n",
		},
		{
			name:  "reserved characters escaped",
			nodes: []doctree.Node{{Kind: doctree.Text, Content: "50% of $10 & a_b"}},
			want:  "50\\% of \\$10 \\& a\\_b\n",
		},
		{
			name:  "inline math untouched",
			nodes: []doctree.Node{{Kind: doctree.InlineMath, Content: `x^{2}`}},
			want:  "$x^{2}$\n",
		},
		{
			name:  "display math",
			nodes: []doctree.Node{{Kind: doctree.DisplayMath, Content: `E = mc^{2}`}},
			want:  "\\[\nE = mc^{2}\n\\]\n",
		},
		{
			name: "mixed paragraph",
			nodes: []doctree.Node{{Kind: doctree.Paragraph, Children: []doctree.Node{
				{Kind: doctree.Text, Content: "Force is"},
				{Kind: doctree.InlineMath, Content: "F=ma"},
			}}},
			want: "Force is $F=ma$\n",
		},
		{
			name: "blocks separated by blank lines",
			nodes: []doctree.Node{
				{Kind: doctree.Text, Content: "One."},
				{Kind: doctree.Text, Content: "Two."},
			},
			want: "One.\n\nTwo.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Latex(tt.nodes); got != tt.want {
				t.Errorf("Latex() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLatexDisplayAlignedWrap(t *testing.T) {
	t.Parallel()

	t.Run("wraps multi-row block", func(t *testing.T) {
		t.Parallel()

		n := doctree.Node{Kind: doctree.DisplayMath, MathEnv: doctree.EnvAligned, Content: "a &= b \\\\\nc &= d"}
		got := Latex([]doctree.Node{n})
		if strings.Count(got, `\begin{aligned}`) != 1 {
			t.Errorf("Latex() = %q, want one aligned environment", got)
		}
	})

	t.Run("does not double wrap", func(t *testing.T) {
		t.Parallel()

		n := doctree.Node{Kind: doctree.DisplayMath, MathEnv: doctree.EnvAligned,
			Content: "\\begin{aligned}\na &= b\n\\end{aligned}"}
		got := Latex([]doctree.Node{n})
		if strings.Count(got, `\begin{aligned}`) != 1 {
			t.Errorf("Latex() = %q, want one aligned environment", got)
		}
	})
}

func TestLatexList(t *testing.T) {
	t.Parallel()

	ordered := doctree.Node{Kind: doctree.List, Ordered: true, Children: []doctree.Node{
		{Kind: doctree.Text, Content: "first"},
		{Kind: doctree.Text, Content: "second"},
	}}
	got := Latex([]doctree.Node{ordered})
	want := "\\begin{enumerate}\n  \\item first\n  \\item second\n\\end{enumerate}\n"
	if got != want {
		t.Errorf("Latex() = %q, want %q", got, want)
	}

	unordered := ordered
	unordered.Ordered = false
	if got := Latex([]doctree.Node{unordered}); !strings.Contains(got, "itemize") {
		t.Errorf("Latex() = %q, want itemize", got)
	}
}

func TestLatexTable(t *testing.T) {
	t.Parallel()

	table := doctree.Node{Kind: doctree.Table, Rows: []doctree.Row{
		{{{Kind: doctree.Text, Content: "a"}}, {{Kind: doctree.Text, Content: "b"}}},
		{{{Kind: doctree.Text, Content: "c"}}},
	}}
	got := Latex([]doctree.Node{table})
	if !strings.Contains(got, `\begin{tabular}{ll}`) {
		t.Errorf("Latex() = %q, want two-column tabular", got)
	}
	if !strings.Contains(got, "a & b \\\\") {
		t.Errorf("Latex() = %q, want first row", got)
	}
	if !strings.Contains(got, "c &  \\\\") {
		t.Errorf("Latex() = %q, want padded short row", got)
	}
}

func TestMarkupToLatex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{name: "bold", markup: "<b>x</b>", want: `\textbf{x}`},
		{name: "italic", markup: "<i>x</i>", want: `\emph{x}`},
		{name: "superscript", markup: "<sup>2</sup>", want: `\textsuperscript{2}`},
		{name: "nested", markup: "<b><i>x</i></b>", want: `\textbf{\emph{x}}`},
		{name: "unknown tag text kept", markup: `<span style="x">y</span>`, want: "y"},
		{name: "text escaped inside run", markup: "<b>50%</b>", want: `\textbf{50\%}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := markupToLatex(tt.markup); got != tt.want {
				t.Errorf("markupToLatex(%q) = %q, want %q", tt.markup, got, tt.want)
			}
		})
	}
}

func TestLatexNestedList(t *testing.T) {
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
	want := "\\begin{itemize}\n" +
		"  \\item fruit\n" +
		"  \\begin{itemize}\n" +
		"    \\item apple\n" +
		"  \\end{itemize}\n" +
		"  \\item nuts\n" +
		"\\end{itemize}\n"
	if got := Latex(nodes); got != want {
		t.Errorf("Latex() = %q, want %q", got, want)
	}
}
