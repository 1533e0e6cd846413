// Package cleanup normalizes the LaTeX math that Pandoc produces from
// converted equations.
//
// Pandoc's docx reader leaves a number of artifacts behind: stacked brace
// groups for multi-line equations, single-column array environments where
// aligned rows are wanted, stray thin-space commands, doubled row breaks.
// Clean applies a fixed sequence of rewrites so that the emitted math is
// stable: running Clean on its own output returns it unchanged.
package cleanup

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Single-column arrays are equation stacks; multi-column arrays are
	// real matrices and keep their environment.
	alignedArrayRe = regexp.MustCompile(`(?s)(\\begin\{aligned\}\s*)\\begin\{array\}\{[lcr]\}\s*(.*?)\s*\\end\{array\}(\s*\\end\{aligned\})`)
	bareArrayRe    = regexp.MustCompile(`(?s)^\s*\\begin\{array\}\{[lcr]\}\s*(.*?)\s*\\end\{array\}\s*$`)

	nestedBeginRe = regexp.MustCompile(`\\begin\{aligned\}\s*\\begin\{aligned\}`)
	nestedEndRe   = regexp.MustCompile(`\\end\{aligned\}\s*\\end\{aligned\}`)

	// Word tags equation variables bold-italic, which comes out as \mathbf.
	boldVarRe = regexp.MustCompile(`\\mathbf\{(\w)\}`)

	// Pandoc writes \log\ _{10} with a stray backslash-space.
	logBraceSubRe = regexp.MustCompile(`(\\log)\\\s*_\{`)
	logBareSubRe  = regexp.MustCompile(`(\\log)\\\s*_(\w)`)

	multiSpaceRe = regexp.MustCompile(`  +`)
	rowBreakRe   = regexp.MustCompile(`\s*\\\\\s*`)

	emptyTextRe    = regexp.MustCompile(`\\text\{[ \t]*\}`)
	doubledRowRe   = regexp.MustCompile(`\\\\\\\\`)
	leftSpaceRe    = regexp.MustCompile(`\\left\s+`)
	rightSpaceRe   = regexp.MustCompile(`\\right\s+`)
	spaceNewlineRe = regexp.MustCompile(`[ \t]+\n`)
	newlineSpaceRe = regexp.MustCompile(`\n[ \t]+`)

	// A digit running into a \text unit label gets a thin space.
	numberUnitRe = regexp.MustCompile(`(\d)\s*(\\text\{)`)
)

// rowSep joins equation lines: the LaTeX row break followed by a newline.
const rowSep = " \\\\\n"

// Clean rewrites LaTeX math emitted by Pandoc into the form the renderers
// expect. Clean is idempotent.
func Clean(latex string) string {
	latex = unwrapMultilineGroups(latex)
	latex = unwrapArrays(latex)
	latex = collapseNestedAligned(latex)
	latex = addAlignmentMarkers(latex)
	latex = unwrapBoldVars(latex)
	latex = fixLogSubscript(latex)
	latex = normalizeWhitespace(latex)
	latex = fixEngineQuirks(latex)
	latex = fixNumberUnitSpacing(latex)
	return strings.TrimSpace(latex)
}

type braceGroup struct {
	start, end int
	content    string
}

// topLevelGroups returns the brace groups at depth zero. Escaped braces do
// not open or close groups.
func topLevelGroups(latex string) []braceGroup {
	var groups []braceGroup
	depth := 0
	start := -1
	for i := 0; i < len(latex); i++ {
		switch latex[i] {
		case '\\':
			i++
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					groups = append(groups, braceGroup{start: start, end: i, content: latex[start+1 : i]})
					start = -1
				}
			}
		}
	}
	return groups
}

// unwrapMultilineGroups joins the stacked brace groups Pandoc emits for a
// multi-equation block into backslash-separated lines. A group sequence
// only qualifies when the whole string consists of consecutive top-level
// groups, so \frac{a}{b} style command arguments are left alone: those are
// either embedded in surrounding text or too short to be equation lines.
func unwrapMultilineGroups(latex string) string {
	groups := topLevelGroups(latex)
	if len(groups) < 2 {
		return latex
	}
	for i := 0; i < len(groups)-1; i++ {
		if strings.TrimSpace(latex[groups[i].end+1:groups[i+1].start]) != "" {
			return latex
		}
	}
	if strings.TrimSpace(latex[:groups[0].start]) != "" {
		return latex
	}
	if strings.TrimSpace(latex[groups[len(groups)-1].end+1:]) != "" {
		return latex
	}

	newlineGroups := 0
	for _, g := range groups {
		if strings.Contains(g.content, "\n") {
			newlineGroups++
		}
	}
	switch {
	case newlineGroups >= 1:
	case len(groups) >= 3:
	case len(groups) == 2:
		for _, g := range groups {
			if utf8.RuneCountInString(strings.TrimSpace(g.content)) <= 5 {
				return latex
			}
		}
	default:
		return latex
	}

	lines := make([]string, len(groups))
	for i, g := range groups {
		lines[i] = strings.TrimSpace(g.content)
	}
	return strings.Join(lines, rowSep)
}

// unwrapArrays strips single-column array environments down to their rows,
// both inside an aligned environment and when the array is the whole
// expression.
func unwrapArrays(latex string) string {
	latex = alignedArrayRe.ReplaceAllString(latex, "${1}${2}${3}")
	return bareArrayRe.ReplaceAllString(latex, "$1")
}

// collapseNestedAligned flattens doubly-wrapped aligned environments.
func collapseNestedAligned(latex string) string {
	for nestedBeginRe.MatchString(latex) {
		latex = nestedBeginRe.ReplaceAllString(latex, `\begin{aligned}`)
		latex = nestedEndRe.ReplaceAllString(latex, `\end{aligned}`)
	}
	return latex
}

// Relation commands that can carry the alignment marker, tried in order at
// each backslash. A match only counts when the following character is not
// a letter, so \le never fires inside \left.
var relationCommands = []string{
	`\approx`, `\simeq`, `\cong`, `\equiv`, `\sim`, `\propto`, `\doteq`,
	`\leq`, `\le`, `\geq`, `\ge`, `\ll`, `\gg`, `\neq`, `\ne`,
	`\to`, `\rightarrow`, `\leftarrow`, `\Rightarrow`, `\Leftarrow`,
	`\Leftrightarrow`, `\iff`,
}

// addAlignmentMarkers inserts & before the leftmost relation operator of
// every line in a multi-line block, so the aligned environment lines the
// equations up on their relation symbols.
func addAlignmentMarkers(latex string) string {
	if !strings.Contains(latex, `\\`) {
		return latex
	}
	lines := rowBreakRe.Split(latex, -1)
	if len(lines) < 2 {
		return latex
	}
	for i, line := range lines {
		lines[i] = insertAlignment(line)
	}
	return strings.Join(lines, rowSep)
}

func insertAlignment(line string) string {
	if strings.Contains(line, "&") {
		return line
	}
	pos := relationPos(line)
	if pos < 0 {
		return line
	}
	return line[:pos] + "&" + line[pos:]
}

// relationPos returns the byte offset of the leftmost relation operator
// outside all brace groups, or -1 if the line has none.
func relationPos(line string) int {
	depth := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '\\':
			if depth == 0 && matchRelationCommand(line[i:]) {
				return i
			}
			i++
		case '=':
			if depth == 0 {
				return i
			}
		case '<', '>':
			if depth == 0 && !followedByLetter(line, i+1) {
				return i
			}
		}
	}
	return -1
}

func matchRelationCommand(s string) bool {
	for _, cmd := range relationCommands {
		if !strings.HasPrefix(s, cmd) {
			continue
		}
		if len(s) > len(cmd) && isASCIILetter(s[len(cmd)]) {
			continue
		}
		return true
	}
	return false
}

func followedByLetter(s string, i int) bool {
	return i < len(s) && isASCIILetter(s[i])
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// unwrapBoldVars turns \mathbf{x} into plain x for single-character
// variables. Word marks equation variables bold-italic and Pandoc keeps
// the bold; standard notation wants them plain. Longer \mathbf arguments
// are deliberate bolding and stay.
func unwrapBoldVars(latex string) string {
	return boldVarRe.ReplaceAllString(latex, "$1")
}

// fixLogSubscript removes the stray backslash-space Pandoc puts between
// \log and its subscript.
func fixLogSubscript(latex string) string {
	latex = logBraceSubRe.ReplaceAllString(latex, "${1}_{")
	return logBareSubRe.ReplaceAllString(latex, "${1}_{${2}}")
}

// normalizeWhitespace collapses runs of spaces, gives every row break the
// canonical " \\<newline>" form and trims line ends.
func normalizeWhitespace(latex string) string {
	latex = multiSpaceRe.ReplaceAllString(latex, " ")
	latex = rowBreakRe.ReplaceAllString(latex, rowSep)
	lines := strings.Split(latex, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

// fixEngineQuirks removes known Pandoc artifacts: empty \text groups,
// doubled row breaks, empty brace groups and padded \left / \right. The
// empty-group removal loops because deleting {} can expose another.
func fixEngineQuirks(latex string) string {
	latex = emptyTextRe.ReplaceAllString(latex, " ")
	latex = doubledRowRe.ReplaceAllString(latex, `\\`)
	for strings.Contains(latex, "{}") {
		latex = strings.ReplaceAll(latex, "{}", "")
	}
	latex = leftSpaceRe.ReplaceAllString(latex, `\left`)
	latex = rightSpaceRe.ReplaceAllString(latex, `\right`)
	latex = multiSpaceRe.ReplaceAllString(latex, " ")
	latex = spaceNewlineRe.ReplaceAllString(latex, "\n")
	return newlineSpaceRe.ReplaceAllString(latex, "\n")
}

// fixNumberUnitSpacing inserts a thin space between a digit and a \text
// unit label, the ISO convention for quantity-unit pairs. Letter-to-\text
// runs like x\text{th} are ordinal suffixes and keep no space.
func fixNumberUnitSpacing(latex string) string {
	return numberUnitRe.ReplaceAllString(latex, `${1}\,${2}`)
}
