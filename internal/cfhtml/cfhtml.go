// Package cfhtml reads and writes the CF_HTML clipboard payload format.
//
// CF_HTML is the "HTML Format" Windows clipboard representation: an ASCII
// header of byte offsets followed by an HTML document whose fragment is
// delimited by StartFragment/EndFragment comment markers. All offsets
// count UTF-8 bytes from the very start of the blob, header included, and
// are zero-padded to nine digits so the header length never shifts once
// the offsets are filled in.
package cfhtml

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Sentinel errors for malformed clipboard payloads.
var (
	ErrNoHeader   = errors.New("clipboard payload has no CF_HTML header")
	ErrBadOffsets = errors.New("clipboard header offsets out of range")
)

const headerTemplate = "Version:0.9\r\n" +
	"StartHTML:%09d\r\n" +
	"EndHTML:%09d\r\n" +
	"StartFragment:%09d\r\n" +
	"EndFragment:%09d\r\n"

var (
	openTag  = []byte("<html><body><!--StartFragment-->")
	closeTag = []byte("<!--EndFragment--></body></html>")
)

var (
	versionPrefix = []byte("Version:")

	// Some producers write -1 for offsets they do not fill in.
	startHTMLRe     = regexp.MustCompile(`StartHTML:(-?\d+)`)
	endHTMLRe       = regexp.MustCompile(`EndHTML:(-?\d+)`)
	startFragmentRe = regexp.MustCompile(`StartFragment:(-?\d+)`)
	endFragmentRe   = regexp.MustCompile(`EndFragment:(-?\d+)`)
)

// Envelope is a decoded or freshly built CF_HTML payload.
type Envelope struct {
	StartHTML     int
	EndHTML       int
	StartFragment int
	EndFragment   int
	Header        string
	Body          []byte
}

// Bytes returns the full clipboard blob, header plus body.
func (e *Envelope) Bytes() []byte {
	buf := make([]byte, 0, len(e.Header)+len(e.Body))
	buf = append(buf, e.Header...)
	buf = append(buf, e.Body...)
	return buf
}

// Wrap builds the clipboard envelope around an HTML fragment. The header
// length is computed from a zero-offset template first; the fixed-width
// offset fields keep the length stable when the real values go in.
func Wrap(fragment string) *Envelope {
	headerLen := len(fmt.Sprintf(headerTemplate, 0, 0, 0, 0))
	frag := []byte(fragment)

	sh := headerLen
	sf := sh + len(openTag)
	ef := sf + len(frag)
	eh := ef + len(closeTag)

	body := make([]byte, 0, len(openTag)+len(frag)+len(closeTag))
	body = append(body, openTag...)
	body = append(body, frag...)
	body = append(body, closeTag...)

	return &Envelope{
		StartHTML:     sh,
		EndHTML:       eh,
		StartFragment: sf,
		EndFragment:   ef,
		Header:        fmt.Sprintf(headerTemplate, sh, eh, sf, ef),
		Body:          body,
	}
}

// StripHeader removes the CF_HTML header from a clipboard blob and returns
// the HTML document bytes. Payloads without a header pass through
// unchanged; a header with unusable offsets falls back to everything from
// the first angle bracket.
func StripHeader(raw []byte) []byte {
	if !bytes.HasPrefix(raw, versionPrefix) {
		return raw
	}
	if m := startHTMLRe.FindSubmatch(raw); m != nil {
		if off, err := strconv.Atoi(string(m[1])); err == nil && off > 0 && off <= len(raw) {
			return raw[off:]
		}
	}
	if idx := bytes.IndexByte(raw, '<'); idx >= 0 {
		return raw[idx:]
	}
	return raw
}

// Parse decodes a CF_HTML blob into an Envelope, validating that the four
// offsets are present, ordered and inside the payload.
func Parse(raw []byte) (*Envelope, error) {
	if !bytes.HasPrefix(raw, versionPrefix) {
		return nil, ErrNoHeader
	}

	offsets := make([]int, 4)
	for i, re := range []*regexp.Regexp{startHTMLRe, endHTMLRe, startFragmentRe, endFragmentRe} {
		m := re.FindSubmatch(raw)
		if m == nil {
			return nil, ErrNoHeader
		}
		off, err := strconv.Atoi(string(m[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadOffsets, err)
		}
		offsets[i] = off
	}

	sh, eh, sf, ef := offsets[0], offsets[1], offsets[2], offsets[3]
	if sh < 0 || eh > len(raw) || sh > eh || sf < sh || ef > eh || sf > ef {
		return nil, ErrBadOffsets
	}

	return &Envelope{
		StartHTML:     sh,
		EndHTML:       eh,
		StartFragment: sf,
		EndFragment:   ef,
		Header:        string(raw[:sh]),
		Body:          append([]byte(nil), raw[sh:eh]...),
	}, nil
}

// Fragment returns the bytes between the fragment offsets.
func (e *Envelope) Fragment() []byte {
	full := e.Bytes()
	if e.StartFragment < 0 || e.EndFragment > len(full) || e.StartFragment > e.EndFragment {
		return nil
	}
	return full[e.StartFragment:e.EndFragment]
}
