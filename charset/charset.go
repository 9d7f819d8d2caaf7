// Package charset resolves MIME charset labels to codecs and decodes bytes
// into text without ever failing.
//
// Labels are looked up in the WHATWG label table first (which knows the
// aliases mail clients really send, like "x-sjis" or "latin1"), then in the
// IANA MIME names, then in the full IANA registry. Anything else is treated
// as UTF-8. Invalid input never produces an error: undecodable sequences
// become U+FFFD.
package charset

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Default is the encoding used when a label is empty or unknown.
var Default encoding.Encoding = unicode.UTF8

// Lookup returns the encoding named by label. The second return value is
// false if the label is not known or names an encoding that has no decoder
// available.
func Lookup(label string) (encoding.Encoding, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return nil, false
	}

	if e, err := htmlindex.Get(label); err == nil && e != nil {
		return e, true
	}

	if e, err := ianaindex.MIME.Encoding(label); err == nil && e != nil {
		return e, true
	}

	if e, err := ianaindex.IANA.Encoding(label); err == nil && e != nil {
		return e, true
	}

	return nil, false
}

// IsKnown reports whether label names a charset Lookup can resolve.
func IsKnown(label string) bool {
	_, ok := Lookup(label)
	return ok
}

// Name returns the canonical name of the charset for label, or "utf-8" if
// the label is not known.
func Name(label string) string {
	e, ok := Lookup(label)
	if !ok {
		return "utf-8"
	}

	if name, err := htmlindex.Name(e); err == nil {
		return name
	}

	if name, err := ianaindex.MIME.Name(e); err == nil {
		return strings.ToLower(name)
	}

	return strings.ToLower(strings.TrimSpace(label))
}

// Decode converts b from the charset named by label into a UTF-8 string.
// Unknown labels decode as UTF-8. Decode never fails: invalid byte sequences
// are replaced with U+FFFD.
func Decode(label string, b []byte) string {
	e, ok := Lookup(label)
	if !ok {
		e = Default
	}

	out, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return decodeUTF8(b)
	}

	return string(out)
}

// DecodeString is Decode for string input.
func DecodeString(label, s string) string {
	return Decode(label, []byte(s))
}

func decodeUTF8(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
