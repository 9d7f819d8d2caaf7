// Package rfc2047 decodes the encoded words of RFC 2047, the
// =?charset?encoding?text?= form used to carry non-ASCII text in message
// headers.
//
// Decoding never fails. An encoding letter other than Q or B, or a payload
// that does not decode, leaves the encoded text in place as the payload. The
// charset is resolved only when Decode is called, and unknown charsets are
// read as UTF-8.
package rfc2047

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/zostay/go-mailparse/charset"
	"github.com/zostay/go-mailparse/internal/lex"
)

// ErrNoMatch is returned when the input does not start with an encoded word.
var ErrNoMatch = errors.New("no encoded word found")

// EncodedWord is a single encoded word with its transfer encoding undone but
// its charset not yet applied.
type EncodedWord struct {
	// Charset is the charset label exactly as it appeared in the word.
	Charset string

	// Language is the RFC 2231 language tag following the charset, if any.
	Language string

	// Encoding is the encoding letter as it appeared in the word.
	Encoding byte

	// Bytes is the payload after Q or B decoding. When the encoding is not
	// recognized or the payload does not decode, it holds the encoded text.
	Bytes []byte
}

// Decode returns the payload as text in the word's charset. It never fails;
// invalid sequences become U+FFFD.
func (w *EncodedWord) Decode() string {
	return charset.Decode(w.Charset, w.Bytes)
}

// String returns the decoded text.
func (w *EncodedWord) String() string {
	return w.Decode()
}

// isToken matches RFC 2047 token characters. The asterisk is left out so the
// charset of "=?utf-8*en?..." can be split from its language.
func isToken(c byte) bool {
	return lex.IsVchar(c) && !strings.ContainsRune(`()<>@,;:\"/[]?.=*`, rune(c))
}

func isLangToken(c byte) bool {
	return isToken(c) || c == '*'
}

func isEncodedText(c byte) bool {
	return lex.IsVchar(c) && c != '?'
}

func span(b []byte, fn func(byte) bool) int {
	i := 0
	for i < len(b) && fn(b[i]) {
		i++
	}
	return i
}

// ParseEncodedWord parses one encoded word from the start of b and returns
// it along with the bytes that follow it.
func ParseEncodedWord(b []byte) (*EncodedWord, []byte, error) {
	rest := b
	if len(rest) < 2 || rest[0] != '=' || rest[1] != '?' {
		return nil, b, ErrNoMatch
	}
	rest = rest[2:]

	n := span(rest, isToken)
	if n == 0 {
		return nil, b, ErrNoMatch
	}
	cs := rest[:n]
	rest = rest[n:]

	var lang []byte
	if len(rest) > 0 && rest[0] == '*' {
		n = span(rest[1:], isLangToken)
		if n == 0 {
			return nil, b, ErrNoMatch
		}
		lang = rest[1 : 1+n]
		rest = rest[1+n:]
	}

	if len(rest) < 3 || rest[0] != '?' || !isToken(rest[1]) || rest[2] != '?' {
		return nil, b, ErrNoMatch
	}
	enc := rest[1]
	rest = rest[3:]

	n = span(rest, isEncodedText)
	if n == 0 || len(rest) < n+2 || rest[n] != '?' || rest[n+1] != '=' {
		return nil, b, ErrNoMatch
	}
	text := rest[:n]
	rest = rest[n+2:]

	return &EncodedWord{
		Charset:  string(cs),
		Language: string(lang),
		Encoding: enc,
		Bytes:    decodeText(enc, text),
	}, rest, nil
}

// Decode parses one encoded word from the start of b and returns its text.
func Decode(b []byte) (string, []byte, error) {
	w, rest, err := ParseEncodedWord(b)
	if err != nil {
		return "", b, err
	}
	return w.Decode(), rest, nil
}

func decodeText(enc byte, text []byte) []byte {
	switch enc {
	case 'q', 'Q':
		return DecodeQ(text)
	case 'b', 'B':
		if out, ok := DecodeB(text); ok {
			return out
		}
	}

	out := make([]byte, len(text))
	copy(out, text)
	return out
}

// DecodeQ undoes the Q encoding: an underscore is a space, =XX is the byte
// with hex value XX, and every other byte stands for itself. An equal sign
// not followed by two hex digits is kept literally.
func DecodeQ(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		switch c := b[i]; c {
		case '=':
			if v, ok := lex.HexPair(b[i+1:]); ok {
				out = append(out, v)
				i += 2
				continue
			}
			out = append(out, c)
		case '_':
			out = append(out, ' ')
		default:
			out = append(out, c)
		}
	}
	return out
}

// DecodeB undoes the B encoding, which is standard padded base64. It returns
// false if b is not valid base64.
func DecodeB(b []byte) ([]byte, bool) {
	out := make([]byte, base64.StdEncoding.DecodedLen(len(b)))
	n, err := base64.StdEncoding.Decode(out, b)
	if err != nil {
		return nil, false
	}
	return out[:n], true
}
