package omml

import (
	"regexp"
	"strings"
)

// tagCase maps lowercased OOXML tag and attribute names to their canonical
// case. HTML parsers lowercase everything they touch; the docx writer needs
// sSub back, not ssub. Names already in canonical case pass through the map
// unchanged, unknown names keep whatever case they arrived in.
var tagCase = map[string]string{
	// Math namespace (m:)
	"m:omath":       "m:oMath",
	"m:omathpara":   "m:oMathPara",
	"m:r":           "m:r",
	"m:t":           "m:t",
	"m:f":           "m:f",
	"m:fpr":         "m:fPr",
	"m:num":         "m:num",
	"m:den":         "m:den",
	"m:e":           "m:e",
	"m:sub":         "m:sub",
	"m:sup":         "m:sup",
	"m:ssub":        "m:sSub",
	"m:ssup":        "m:sSup",
	"m:ssubsup":     "m:sSubSup",
	"m:nary":        "m:nary",
	"m:narypr":      "m:naryPr",
	"m:chr":         "m:chr",
	"m:limloc":      "m:limLoc",
	"m:limlow":      "m:limLow",
	"m:limupp":      "m:limUpp",
	"m:lim":         "m:lim",
	"m:rad":         "m:rad",
	"m:radpr":       "m:radPr",
	"m:deghide":     "m:degHide",
	"m:deg":         "m:deg",
	"m:func":        "m:func",
	"m:funcpr":      "m:funcPr",
	"m:fname":       "m:fName",
	"m:d":           "m:d",
	"m:dpr":         "m:dPr",
	"m:begchr":      "m:begChr",
	"m:endchr":      "m:endChr",
	"m:eqarr":       "m:eqArr",
	"m:m":           "m:m",
	"m:mr":          "m:mr",
	"m:mpr":         "m:mPr",
	"m:mcs":         "m:mcs",
	"m:mc":          "m:mc",
	"m:mcpr":        "m:mcPr",
	"m:count":       "m:count",
	"m:mcjc":        "m:mcJc",
	"m:ctrlpr":      "m:ctrlPr",
	"m:rpr":         "m:rPr",
	"m:sty":         "m:sty",
	"m:brk":         "m:brk",
	"m:aln":         "m:aln",
	"m:bar":         "m:bar",
	"m:barpr":       "m:barPr",
	"m:pos":         "m:pos",
	"m:box":         "m:box",
	"m:boxpr":       "m:boxPr",
	"m:acc":         "m:acc",
	"m:accpr":       "m:accPr",
	"m:groupchr":    "m:groupChr",
	"m:groupchrpr":  "m:groupChrPr",
	"m:borderbox":   "m:borderBox",
	"m:borderboxpr": "m:borderBoxPr",
	"m:phantom":     "m:phantom",
	"m:phantpr":     "m:phantPr",
	"m:val":         "m:val",
	// WordprocessingML tags commonly nested inside math runs
	"w:rpr":    "w:rPr",
	"w:rfonts": "w:rFonts",
	"w:ascii":  "w:ascii",
	"w:i":      "w:i",
	"w:b":      "w:b",
}

var (
	// Namespaced tag in opening or closing form. The delimiter after the
	// name is captured and reinserted since RE2 has no lookahead.
	caseTagRe = regexp.MustCompile(`(</?)([mw]:[A-Za-z]+)([\s/>])`)
	// Namespaced attribute name.
	caseAttrRe = regexp.MustCompile(`\s([mw]:[A-Za-z]+)=`)
)

// RestoreCase rewrites lowercased OOXML tag and attribute names to their
// canonical case.
func RestoreCase(xml string) string {
	xml = caseTagRe.ReplaceAllStringFunc(xml, func(m string) string {
		parts := caseTagRe.FindStringSubmatch(m)
		if proper, ok := tagCase[strings.ToLower(parts[2])]; ok {
			return parts[1] + proper + parts[3]
		}
		return m
	})
	xml = caseAttrRe.ReplaceAllStringFunc(xml, func(m string) string {
		parts := caseAttrRe.FindStringSubmatch(m)
		if proper, ok := tagCase[strings.ToLower(parts[1])]; ok {
			return " " + proper + "="
		}
		return m
	})
	return xml
}
