package rfc5322

import (
	"strings"
	"unicode/utf8"

	"github.com/zostay/go-mailparse/internal/lex"
)

// Policy decides which input units the grammar accepts as text. Each method
// examines the start of b and reports the rune matched and the number of
// bytes it spans. A method that does not match returns ok == false.
//
// There are two policies. Strict accepts printable ASCII only and is meant
// for envelope-level text where 8-bit data must not leak through. Intl
// additionally accepts any well-formed multi-byte UTF-8 sequence as a single
// unit, as RFC 6532 allows in message headers.
type Policy interface {
	Vchar(b []byte) (r rune, n int, ok bool)
	Ctext(b []byte) (r rune, n int, ok bool)
	Atext(b []byte) (r rune, n int, ok bool)
	Qtext(b []byte) (r rune, n int, ok bool)
	Dtext(b []byte) (r rune, n int, ok bool)
}

var (
	// Strict is the ASCII-only policy. Inside quoted strings each byte
	// above 0x7f is read as U+FFFD instead of ending the string.
	Strict Policy = strict{}

	// Intl is the RFC 6532 policy. It tries the Strict rule first and then
	// accepts a complete 2 to 4 byte UTF-8 sequence.
	Intl Policy = intl{}
)

const atextSpecials = "!#$%&'*+-/=?^_`{|}~"

func isAtext(c byte) bool {
	return lex.IsAlphaDigit(c) || strings.IndexByte(atextSpecials, c) >= 0
}

func isCtext(c byte) bool {
	return lex.IsVchar(c) && c != '(' && c != ')' && c != '\\'
}

func isQtext(c byte) bool {
	return lex.IsVchar(c) && c != '"' && c != '\\'
}

func isDtext(c byte) bool {
	return lex.IsVchar(c) && c != '[' && c != ']' && c != '\\'
}

func one(b []byte, fn func(byte) bool) (rune, int, bool) {
	if len(b) == 0 || !fn(b[0]) {
		return 0, 0, false
	}
	return rune(b[0]), 1, true
}

// eightBit matches any single byte above 0x7f as U+FFFD.
func eightBit(b []byte) (rune, int, bool) {
	if len(b) == 0 || b[0] < utf8.RuneSelf {
		return 0, 0, false
	}
	return utf8.RuneError, 1, true
}

// utf8NonASCII matches a single well-formed multi-byte UTF-8 sequence.
func utf8NonASCII(b []byte) (rune, int, bool) {
	if len(b) == 0 || b[0] < utf8.RuneSelf {
		return 0, 0, false
	}
	r, n := utf8.DecodeRune(b)
	if n < 2 {
		return 0, 0, false
	}
	return r, n, true
}

type strict struct{}

func (strict) Vchar(b []byte) (rune, int, bool) { return one(b, lex.IsVchar) }
func (strict) Ctext(b []byte) (rune, int, bool) { return one(b, isCtext) }
func (strict) Atext(b []byte) (rune, int, bool) { return one(b, isAtext) }
func (strict) Dtext(b []byte) (rune, int, bool) { return one(b, isDtext) }

func (strict) Qtext(b []byte) (rune, int, bool) {
	if r, n, ok := one(b, isQtext); ok {
		return r, n, true
	}
	return eightBit(b)
}

type intl struct{}

type unitFunc func([]byte) (rune, int, bool)

// first returns the match of the first fn that accepts b.
func first(b []byte, fns ...unitFunc) (rune, int, bool) {
	for _, fn := range fns {
		if r, n, ok := fn(b); ok {
			return r, n, true
		}
	}
	return 0, 0, false
}

func (intl) Vchar(b []byte) (rune, int, bool) { return first(b, strict{}.Vchar, utf8NonASCII) }
func (intl) Ctext(b []byte) (rune, int, bool) { return first(b, strict{}.Ctext, utf8NonASCII) }
func (intl) Atext(b []byte) (rune, int, bool) { return first(b, strict{}.Atext, utf8NonASCII) }
func (intl) Dtext(b []byte) (rune, int, bool) { return first(b, strict{}.Dtext, utf8NonASCII) }

func (intl) Qtext(b []byte) (rune, int, bool) {
	return first(b,
		func(b []byte) (rune, int, bool) { return one(b, isQtext) },
		utf8NonASCII,
		eightBit,
	)
}
