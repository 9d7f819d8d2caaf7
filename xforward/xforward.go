// Package xforward parses the attributes of the Postfix XFORWARD SMTP
// command, which a proxy uses to pass on what it knows about the original
// client.
package xforward

import (
	"errors"

	"github.com/zostay/go-mailparse/internal/lex"
	"github.com/zostay/go-mailparse/rfc3461"
)

// ErrNoMatch is returned when the input does not hold at least one valid
// attribute.
var ErrNoMatch = errors.New("no match")

// Names lists the attribute names XFORWARD allows, in their normalized form.
var Names = []string{"addr", "helo", "ident", "name", "port", "proto", "source"}

const unavailable = "[unavailable]"

// Param is a single XFORWARD attribute. Value is nil when the attribute was
// sent as [UNAVAILABLE].
type Param struct {
	Name  string
	Value *string
}

// String returns the attribute as it would be sent, with the value xtext
// encoded.
func (p Param) String() string {
	if p.Value == nil {
		return p.Name + "=[UNAVAILABLE]"
	}
	return p.Name + "=" + rfc3461.EncodeXText(*p.Value)
}

func name(b []byte) (string, []byte, bool) {
	for _, n := range Names {
		if lex.HasPrefixFold(b, n) {
			return n, b[len(n):], true
		}
	}
	return "", b, false
}

func param(b []byte) (Param, []byte, bool) {
	n, rest, ok := name(b)
	if !ok || len(rest) == 0 || rest[0] != '=' {
		return Param{}, b, false
	}
	rest = rest[1:]

	if lex.HasPrefixFold(rest, unavailable) {
		return Param{Name: n}, rest[len(unavailable):], true
	}

	x, rest := rfc3461.XText(rest)
	v := lex.ASCII(x)
	return Param{Name: n, Value: &v}, rest, true
}

func skipWSP(b []byte) []byte {
	for len(b) > 0 && lex.IsWSP(b[0]) {
		b = b[1:]
	}
	return b
}

// Params parses whitespace separated name=value attributes. Names are
// matched case-insensitively and returned in lower case. Values are xtext
// decoded. Nothing else is validated.
func Params(b []byte) ([]Param, []byte, error) {
	first, rest, ok := param(skipWSP(b))
	if !ok {
		return nil, b, ErrNoMatch
	}

	out := []Param{first}
	for {
		after := skipWSP(rest)
		if len(after) == len(rest) {
			break
		}

		p, next, ok := param(after)
		if !ok {
			break
		}
		out = append(out, p)
		rest = next
	}

	return out, rest, nil
}

// Command parses a complete XFORWARD command line, including the command
// name and the terminating CRLF.
func Command(b []byte) ([]Param, []byte, error) {
	const verb = "XFORWARD "
	if !lex.HasPrefixFold(b, verb) {
		return nil, b, ErrNoMatch
	}

	ps, rest, err := Params(b[len(verb):])
	if err != nil || !lex.HasCRLF(rest) {
		return nil, b, ErrNoMatch
	}

	return ps, rest[2:], nil
}
