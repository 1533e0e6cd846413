// Package omml extracts Office Math Markup Language blocks from Word
// clipboard HTML and prepares them for conversion.
//
// OMML cannot survive an HTML parser: parsers lowercase tag names, rewrite
// self-closing tags and reorder attributes, all of which break the strict
// XML that the math converter needs. Extract therefore lifts every math
// block out of the raw markup before parsing and substitutes a neutral
// placeholder element; the original XML is kept byte for byte in an Arena
// and restored by id when the document tree is built.
package omml

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wordtex/wordtex/internal/doctree"
)

// Placeholder element substituted for extracted math blocks. The id
// attribute indexes into the Arena, the role attribute records whether the
// block was display or inline math.
const (
	PlaceholderTag = "omml-ph"
	AttrID         = "data-id"
	AttrRole       = "data-role"
)

// Math block roles.
const (
	RoleDisplay = "display"
	RoleInline  = "inline"
)

var (
	// Word wraps equations in conditional comments; the gte msEquation
	// branch holds the OMML, the !msEquation branch holds an image fallback.
	equationCondRe = regexp.MustCompile(`(?is)<!--\[if\s+gte\s+msEquation\s+\d+\]>(.*?)<!\[endif\]-->`)
	fallbackCondRe = regexp.MustCompile(`(?is)<!--\[if\s+!msEquation\]>.*?<!\[endif\]-->`)
	// Remaining conditional comments (VML images, supportedlists, ...).
	otherCondRe = regexp.MustCompile(`(?s)<!--\[if\s[^\]]*\]>.*?<!\[endif\]-->`)

	// oMathPara is a display math block and may contain several oMath runs.
	mathParaRe = regexp.MustCompile(`(?is)<m:oMathPara\b[^>]*>.*?</m:oMathPara>`)
	// A standalone oMath, matched after display blocks are gone, is inline.
	mathRe = regexp.MustCompile(`(?is)<m:oMath\b[^>]*>.*?</m:oMath>`)

	// Counts oMath opening tags inside one display block.
	mathOpenRe = regexp.MustCompile(`(?i)<m:omath\b`)
	// Matrix container.
	matrixOpenRe = regexp.MustCompile(`<m:m\b`)
)

// Arena holds extracted OMML blocks in document order.
type Arena struct {
	blocks []block
}

type block struct {
	xml  string
	role string
}

// Len reports how many blocks were extracted.
func (a *Arena) Len() int { return len(a.blocks) }

// Restore returns the original XML for a placeholder id.
func (a *Arena) Restore(id int) (string, bool) {
	if id < 0 || id >= len(a.blocks) {
		return "", false
	}
	return a.blocks[id].xml, true
}

func (a *Arena) add(xml, role string) string {
	id := len(a.blocks)
	a.blocks = append(a.blocks, block{xml: xml, role: role})
	return fmt.Sprintf(`<%s %s="%d" %s="%s"></%s>`, PlaceholderTag, AttrID, id, AttrRole, role, PlaceholderTag)
}

// Extract unwraps Word's conditional comments and replaces every OMML block
// in raw with a placeholder element. Display blocks (oMathPara) are taken
// first so that their inner oMath runs are not re-matched as inline math.
// The returned markup is safe to hand to an HTML parser.
func Extract(raw string) (string, *Arena) {
	arena := &Arena{}

	cleaned := equationCondRe.ReplaceAllString(raw, "$1")
	cleaned = fallbackCondRe.ReplaceAllString(cleaned, "")
	cleaned = otherCondRe.ReplaceAllString(cleaned, "")

	cleaned = mathParaRe.ReplaceAllStringFunc(cleaned, func(m string) string {
		return arena.add(m, RoleDisplay)
	})
	cleaned = mathRe.ReplaceAllStringFunc(cleaned, func(m string) string {
		return arena.add(m, RoleInline)
	})
	return cleaned, arena
}

// DetectEnv inspects a display block's XML for structure that needs a LaTeX
// environment: an equation array renders as aligned, several oMath runs in
// one block as a multi-line display, a matrix container as pmatrix.
func DetectEnv(xml string) string {
	lower := strings.ToLower(xml)
	if strings.Contains(lower, "<m:eqarr") {
		return doctree.EnvAligned
	}
	if len(mathOpenRe.FindAllStringIndex(xml, -1)) > 1 {
		return doctree.EnvMultiline
	}
	if matrixOpenRe.MatchString(lower) {
		return doctree.EnvMatrix
	}
	return ""
}
