package omml

import (
	"regexp"
	"strings"
)

var (
	// HTML formatting tags Word mixes into clipboard OMML. They are invalid
	// inside docx XML and make the math converter reject the document.
	htmlOpenRe  = regexp.MustCompile(`(?i)<(?:font|span|i|b|u|em|strong|br|div|img|a)\b[^>]*/?>`)
	htmlCloseRe = regexp.MustCompile(`(?i)</(?:font|span|i|b|u|em|strong|br|div|img|a)>`)

	// A math run and an optional leading run-properties block.
	runRe     = regexp.MustCompile(`(?s)<m:r\b[^>]*>(.*?)</m:r>`)
	runPropRe = regexp.MustCompile(`(?s)^(<m:rPr\b.*?</m:rPr>)(.*)$`)

	// Namespace declarations are stripped from fragments; the docx
	// envelope document declares them all.
	xmlnsRe = regexp.MustCompile(`\s+xmlns:\w+="[^"]*"`)

	// Any markup, for last-resort text extraction.
	anyTagRe = regexp.MustCompile(`<[^>]+>`)
)

// NormalizeFragment turns a raw clipboard OMML block into strict XML the
// docx writer can embed: HTML formatting tags are stripped, bare run text
// is wrapped in m:t, namespace declarations are removed and tag case is
// restored.
func NormalizeFragment(xml string) string {
	xml = htmlOpenRe.ReplaceAllString(xml, "")
	xml = htmlCloseRe.ReplaceAllString(xml, "")
	xml = wrapBareRunText(xml)
	xml = xmlnsRe.ReplaceAllString(xml, "")
	return RestoreCase(xml)
}

// wrapBareRunText moves text that sits directly inside an m:r element into
// an m:t child. Proper OOXML always has the m:t wrapper but clipboard HTML
// usually omits it, and the math converter extracts nothing without it.
func wrapBareRunText(xml string) string {
	return runRe.ReplaceAllStringFunc(xml, func(run string) string {
		inner := runRe.FindStringSubmatch(run)[1]
		if strings.Contains(inner, "<m:t>") || strings.Contains(inner, "<m:t ") {
			return run
		}
		if parts := runPropRe.FindStringSubmatch(inner); parts != nil {
			if text := strings.TrimSpace(parts[2]); text != "" {
				return "<m:r>" + parts[1] + `<m:t xml:space="preserve">` + text + "</m:t></m:r>"
			}
			return "<m:r>" + parts[1] + "</m:r>"
		}
		if text := strings.TrimSpace(inner); text != "" {
			return `<m:r><m:t xml:space="preserve">` + text + "</m:t></m:r>"
		}
		return "<m:r></m:r>"
	})
}

// StripTags deletes all markup and returns the trimmed text content. Used
// as the fallback rendering when a block cannot be converted.
func StripTags(xml string) string {
	return strings.TrimSpace(anyTagRe.ReplaceAllString(xml, ""))
}
