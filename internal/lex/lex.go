// Package lex holds the byte-level primitives shared by the grammar packages:
// character classes from RFC 5234, the ASCII hex-pair used by both RFC 2047
// Q-encoding and RFC 2231 / RFC 3461 escapes, and ASCII-only string
// conversion.
package lex

import (
	"strings"
	"unicode/utf8"
)

// CRLF is the network line break that terminates header lines.
const CRLF = "\r\n"

// IsWSP reports whether c is a space or horizontal tab.
func IsWSP(c byte) bool { return c == ' ' || c == '\t' }

// IsVchar reports whether c is a visible (printing) ASCII character.
func IsVchar(c byte) bool { return c >= 0x21 && c <= 0x7e }

// IsDigit reports whether c is an ASCII decimal digit.
func IsDigit(c byte) bool { return c >= '0' && c <= '9' }

// IsAlphaDigit reports whether c is an ASCII letter or digit.
func IsAlphaDigit(c byte) bool {
	return IsDigit(c) || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// HexPair decodes the two hex digits at the start of b. Both upper and lower
// case digits are accepted. It returns false if b is shorter than two bytes
// or either byte is not a hex digit.
func HexPair(b []byte) (byte, bool) {
	if len(b) < 2 {
		return 0, false
	}
	hi, ok := unhex(b[0])
	if !ok {
		return 0, false
	}
	lo, ok := unhex(b[1])
	if !ok {
		return 0, false
	}
	return hi<<4 | lo, true
}

// HasCRLF reports whether b begins with a CRLF.
func HasCRLF(b []byte) bool {
	return len(b) >= 2 && b[0] == '\r' && b[1] == '\n'
}

// HasPrefixFold reports whether b begins with prefix, ignoring ASCII case.
func HasPrefixFold(b []byte, prefix string) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if lower(b[i]) != lower(prefix[i]) {
			return false
		}
	}
	return true
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 0x20
	}
	return c
}

// ToLower lower-cases ASCII letters only. Other bytes, including invalid
// UTF-8, are left untouched so offsets stay stable.
func ToLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		b[i] = lower(c)
	}
	return string(b)
}

// ASCII converts b to a string treating it as US-ASCII. Every byte above 0x7f
// becomes a single replacement character.
func ASCII(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c < utf8.RuneSelf {
			sb.WriteByte(c)
		} else {
			sb.WriteRune(utf8.RuneError)
		}
	}
	return sb.String()
}
