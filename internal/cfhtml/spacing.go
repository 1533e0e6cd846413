package cfhtml

import "regexp"

// The OMML writer drops explicit LaTeX spacing commands that sit next to a
// \text group and strips leading whitespace inside the group, so "1\,
// \text{AU}" pastes as "1AU". A no-break space survives because it is
// emitted as a character reference rather than strippable whitespace, so
// the spacing rewrite moves every such command into the group as U+00A0.

const nbsp = " "

var (
	// A spacing command directly before a text group. The group-open and
	// any blank already at its head are consumed so stacked commands
	// collapse into a single marker.
	spacingCmdRe = regexp.MustCompile(`\\(?:[,:;]|qquad|quad|enspace|thinspace|medspace|thickspace| )\s*\\text\{[ \t\x{00A0}]*`)
	// A literal leading space inside a text group, with no command before.
	leadingSpaceRe = regexp.MustCompile(`\\text\{[ \t]+`)

	// Math spans in Markdown source. Display spans go first so a $$ pair
	// is never misread as empty inline math.
	displayMathRe = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	inlineMathRe  = regexp.MustCompile(`\$([^$\n]+?)\$`)
)

func normalizeMathSpacing(math string) string {
	for {
		next := spacingCmdRe.ReplaceAllString(math, `\text{`+nbsp)
		if next == math {
			break
		}
		math = next
	}
	return leadingSpaceRe.ReplaceAllString(math, `\text{`+nbsp)
}

// NormalizeUnitSpacing applies the spacing rewrite to a whole LaTeX
// document.
func NormalizeUnitSpacing(text string) string {
	return normalizeMathSpacing(text)
}

// NormalizeUnitSpacingMarkdown applies the spacing rewrite inside Markdown
// math delimiters only; prose is left alone.
func NormalizeUnitSpacingMarkdown(text string) string {
	text = displayMathRe.ReplaceAllStringFunc(text, func(m string) string {
		return "$$" + normalizeMathSpacing(m[2:len(m)-2]) + "$$"
	})
	return inlineMathRe.ReplaceAllStringFunc(text, func(m string) string {
		return "$" + normalizeMathSpacing(m[1:len(m)-1]) + "$"
	})
}
