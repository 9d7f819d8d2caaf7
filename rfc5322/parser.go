package rfc5322

import (
	"strings"

	"github.com/zostay/go-mailparse/internal/lex"
	"github.com/zostay/go-mailparse/rfc2047"
)

// MaxCommentDepth is the deepest comment nesting accepted. Input nested any
// deeper does not match.
const MaxCommentDepth = 64

// parser walks a byte slice with an offset. Every grammar method either
// matches, advancing the offset, or fails and leaves the offset where it
// found it.
type parser struct {
	pol   Policy
	b     []byte
	o     int
	depth int
}

func newParser(pol Policy, b []byte) *parser {
	if pol == nil {
		pol = Intl
	}
	return &parser{pol: pol, b: b}
}

func (p *parser) rest() []byte {
	return p.b[p.o:]
}

func (p *parser) take(c byte) bool {
	if p.o < len(p.b) && p.b[p.o] == c {
		p.o++
		return true
	}
	return false
}

func (p *parser) takeCRLF() bool {
	if lex.HasCRLF(p.rest()) {
		p.o += 2
		return true
	}
	return false
}

func (p *parser) wsps() []byte {
	start := p.o
	for p.o < len(p.b) && lex.IsWSP(p.b[p.o]) {
		p.o++
	}
	return p.b[start:p.o]
}

// run matches fn one or more times and returns the runes it matched.
func (p *parser) run(fn unitFunc) (string, bool) {
	var sb strings.Builder
	for {
		r, n, ok := fn(p.rest())
		if !ok {
			break
		}
		sb.WriteRune(r)
		p.o += n
	}
	return sb.String(), sb.Len() > 0
}

// fws matches folding whitespace. The line break is dropped and the
// whitespace on either side of it is returned.
func (p *parser) fws() (string, bool) {
	start := p.o

	var pre []byte
	lead := p.wsps()
	if p.takeCRLF() {
		pre = lead
	} else {
		p.o = start
	}

	ws := p.wsps()
	if len(ws) == 0 {
		p.o = start
		return "", false
	}

	return string(pre) + string(ws), true
}

func (p *parser) ofws() string {
	s, _ := p.fws()
	return s
}

func (p *parser) quotedPair() (rune, bool) {
	start := p.o
	if !p.take('\\') {
		return 0, false
	}

	if r, n, ok := p.pol.Vchar(p.rest()); ok {
		p.o += n
		return r, true
	}

	if p.o < len(p.b) && lex.IsWSP(p.b[p.o]) {
		p.o++
		return rune(p.b[p.o-1]), true
	}

	p.o = start
	return 0, false
}

func (p *parser) comment() (Comment, bool) {
	if p.depth >= MaxCommentDepth {
		return nil, false
	}

	start := p.o
	if !p.take('(') {
		return nil, false
	}

	p.depth++
	defer func() { p.depth-- }()

	out := Comment{}
	var text strings.Builder
	flush := func() {
		if text.Len() > 0 {
			out = append(out, CommentText(text.String()))
			text.Reset()
		}
	}

	for {
		save := p.o
		ws := p.ofws()

		if s, ok := p.run(p.pol.Ctext); ok {
			text.WriteString(ws)
			text.WriteString(s)
			continue
		}

		if r, ok := p.quotedPair(); ok {
			text.WriteString(ws)
			text.WriteRune(r)
			continue
		}

		if c, ok := p.comment(); ok {
			text.WriteString(ws)
			flush()
			out = append(out, c)
			continue
		}

		p.o = save
		break
	}

	text.WriteString(p.ofws())
	if !p.take(')') {
		p.o = start
		return nil, false
	}
	flush()

	return out, true
}

// cfws matches comments and folding whitespace.
func (p *parser) cfws() bool {
	start := p.o

	comments := 0
	for {
		save := p.o
		p.ofws()
		if _, ok := p.comment(); !ok {
			p.o = save
			break
		}
		comments++
	}

	if comments > 0 {
		p.ofws()
		return true
	}

	p.o = start
	_, ok := p.fws()
	return ok
}

func (p *parser) encodedWord() (string, bool) {
	w, rest, err := rfc2047.ParseEncodedWord(p.rest())
	if err != nil {
		return "", false
	}
	p.o = len(p.b) - len(rest)
	return w.Decode(), true
}

// quotedString matches a quoted string with optional surrounding CFWS and
// returns its content. Encoded words inside the quotes are decoded, and
// whitespace between two adjacent encoded words is dropped.
func (p *parser) quotedString() (string, bool) {
	start := p.o
	p.cfws()
	if !p.take('"') {
		p.o = start
		return "", false
	}

	var sb strings.Builder
	lastWasWord := false
	for {
		save := p.o
		ws, hasWS := p.fws()

		if s, ok := p.encodedWord(); ok {
			if hasWS && !lastWasWord {
				sb.WriteString(ws)
			}
			sb.WriteString(s)
			lastWasWord = true
			continue
		}

		s, ok := p.run(p.pol.Qtext)
		if !ok {
			var r rune
			if r, ok = p.quotedPair(); ok {
				s = string(r)
			}
		}

		if !ok {
			p.o = save
			break
		}

		if hasWS {
			sb.WriteString(ws)
		}
		sb.WriteString(s)
		lastWasWord = false
	}

	sb.WriteString(p.ofws())
	if !p.take('"') {
		p.o = start
		return "", false
	}
	p.cfws()

	return sb.String(), true
}
