// Package doctree defines the intermediate document tree shared by the
// clipboard parser and the output renderers.
//
// A tree is a flat slice of block-level nodes. Inline structure lives in
// Children; tables carry their own two-dimensional cell layout in Rows.
// Math nodes hold OMML XML in Content until the math resolver replaces it
// with LaTeX, so a tree is renderable only after resolution.
package doctree

// Kind discriminates the node variants.
type Kind int

const (
	// Text is a plain or inline-formatted text run.
	Text Kind = iota
	// Paragraph groups inline children into one block.
	Paragraph
	// Heading is a section heading with Level 1-6.
	Heading
	// List is a bullet or numbered list of items.
	List
	// Table is a grid of cells.
	Table
	// InlineMath is an equation rendered inside running text.
	InlineMath
	// DisplayMath is an equation rendered as its own block.
	DisplayMath
)

// String returns a short name for the kind, for logs and test output.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Paragraph:
		return "paragraph"
	case Heading:
		return "heading"
	case List:
		return "list"
	case Table:
		return "table"
	case InlineMath:
		return "inline-math"
	case DisplayMath:
		return "display-math"
	}
	return "unknown"
}

// Math environments detected from OMML structure. A display node with one
// of these in MathEnv renders wrapped in the matching LaTeX environment.
const (
	EnvAligned   = "aligned"
	EnvMultiline = "multiline"
	EnvMatrix    = "pmatrix"
)

// Node is one element of the document tree.
//
// Which fields are meaningful depends on Kind:
//
//	Text         Content (plain text), Markup (raw inline HTML, optional)
//	Paragraph    Children
//	Heading      Level, Content
//	List         Ordered, Level (nesting depth, top level is 1), Children
//	             (one Text per item; a list nested in an item follows it
//	             as a child List node)
//	Table        Rows
//	InlineMath   Content (OMML before resolution, LaTeX after)
//	DisplayMath  Content, MathEnv
type Node struct {
	Kind     Kind
	Content  string
	Markup   string
	Level    int
	Ordered  bool
	Children []Node
	Rows     []Row
	MathEnv  string
}

// Row is one table row.
type Row []Cell

// Cell is the node sequence inside one table cell. Cells hold Text and
// InlineMath nodes only; block math is forced inline inside tables.
type Cell []Node
