package rfc2231

import (
	"strings"

	"github.com/zostay/go-mailparse/internal/lex"
	"github.com/zostay/go-mailparse/rfc5322"
)

const (
	tspecials      = `()<>@,;:\"/[]?=`
	attrExclusions = `*'%` + tspecials
)

func isToken(c byte) bool {
	return c >= 33 && c <= 126 && strings.IndexByte(tspecials, c) < 0
}

func isAttributeChar(c byte) bool {
	return c >= 33 && c <= 126 && strings.IndexByte(attrExclusions, c) < 0
}

type valueKind int

const (
	regularValue valueKind = iota
	initialValue
	otherValue
)

// parameter is a single name=value pair before reassembly. Section is -1
// when the name carries no section number.
type parameter struct {
	name    string
	section int
	kind    valueKind

	// value is set for regular parameters.
	value string

	// charset, language and raw are set for extended parameters.
	charset  string
	language string
	raw      []byte
}

type parser struct {
	b []byte
	o int
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

func (p *parser) span(fn func(byte) bool) []byte {
	start := p.o
	for p.o < len(p.b) && fn(p.b[p.o]) {
		p.o++
	}
	return p.b[start:p.o]
}

func (p *parser) ofws() {
	if _, rest, err := rfc5322.FWS(p.rest()); err == nil {
		p.o = len(p.b) - len(rest)
	}
}

func (p *parser) token() (string, bool) {
	t := p.span(isToken)
	return string(t), len(t) > 0
}

func (p *parser) attribute() (string, bool) {
	a := p.span(isAttributeChar)
	return string(a), len(a) > 0
}

func (p *parser) equals() bool {
	start := p.o
	p.ofws()
	if !p.take('=') {
		p.o = start
		return false
	}
	p.ofws()
	return true
}

func (p *parser) initialSection() bool {
	if len(p.rest()) >= 2 && p.b[p.o] == '*' && p.b[p.o+1] == '0' {
		p.o += 2
		return true
	}
	return false
}

// otherSection matches "*" followed by one to eight digits without a leading
// zero.
func (p *parser) otherSection() (int, bool) {
	start := p.o
	if !p.take('*') {
		return 0, false
	}

	n := 0
	digits := 0
	for digits < 8 && p.o < len(p.b) && lex.IsDigit(p.b[p.o]) {
		if digits == 0 && p.b[p.o] == '0' {
			break
		}
		n = n*10 + int(p.b[p.o]-'0')
		p.o++
		digits++
	}

	if digits == 0 {
		p.o = start
		return 0, false
	}
	return n, true
}

func (p *parser) section() (int, bool) {
	if p.initialSection() {
		return 0, true
	}
	return p.otherSection()
}

func (p *parser) value() (string, bool) {
	if t, ok := p.token(); ok {
		return t, true
	}

	s, rest, err := rfc5322.QuotedString(rfc5322.Intl, p.rest())
	if err != nil {
		return "", false
	}
	p.o = len(p.b) - len(rest)
	return s, true
}

// extendedValues matches a run of attribute characters and %XX escapes and
// returns the bytes they stand for.
func (p *parser) extendedValues() []byte {
	var out []byte
	for p.o < len(p.b) {
		c := p.b[p.o]
		if c == '%' {
			v, ok := lex.HexPair(p.b[p.o+1:])
			if !ok {
				break
			}
			out = append(out, v)
			p.o += 3
			continue
		}

		if !isAttributeChar(c) {
			break
		}
		out = append(out, c)
		p.o++
	}
	return out
}

func (p *parser) regularParameter() (parameter, bool) {
	start := p.o
	name, ok := p.attribute()
	if !ok {
		return parameter{}, false
	}

	section, ok := p.section()
	if !ok {
		section = -1
	}

	if !p.equals() {
		p.o = start
		return parameter{}, false
	}

	v, ok := p.value()
	if !ok {
		p.o = start
		return parameter{}, false
	}

	return parameter{name: name, section: section, kind: regularValue, value: v}, true
}

func (p *parser) extendedInitialParameter() (parameter, bool) {
	start := p.o
	name, ok := p.attribute()
	if !ok {
		return parameter{}, false
	}

	section := -1
	if p.initialSection() {
		section = 0
	}

	if !p.take('*') || !p.equals() {
		p.o = start
		return parameter{}, false
	}

	cs, _ := p.attribute()
	if !p.take('\'') {
		p.o = start
		return parameter{}, false
	}

	lang, _ := p.attribute()
	if !p.take('\'') {
		p.o = start
		return parameter{}, false
	}

	return parameter{
		name:     name,
		section:  section,
		kind:     initialValue,
		charset:  cs,
		language: lang,
		raw:      p.extendedValues(),
	}, true
}

func (p *parser) extendedOtherParameter() (parameter, bool) {
	start := p.o
	name, ok := p.attribute()
	if !ok {
		return parameter{}, false
	}

	section, ok := p.otherSection()
	if !ok || !p.take('*') || !p.equals() {
		p.o = start
		return parameter{}, false
	}

	return parameter{
		name:    name,
		section: section,
		kind:    otherValue,
		raw:     p.extendedValues(),
	}, true
}

func (p *parser) parameter() (parameter, bool) {
	if v, ok := p.regularParameter(); ok {
		return v, true
	}
	if v, ok := p.extendedInitialParameter(); ok {
		return v, true
	}
	return p.extendedOtherParameter()
}

// parameterList matches zero or more ";"-prefixed parameters followed by an
// optional ";" and an optional CRLF.
func (p *parser) parameterList() []parameter {
	var out []parameter
	for {
		save := p.o
		p.ofws()
		if !p.take(';') {
			p.o = save
			break
		}
		p.ofws()

		v, ok := p.parameter()
		if !ok {
			p.o = save
			break
		}
		out = append(out, v)
	}

	save := p.o
	p.ofws()
	if !p.take(';') {
		p.o = save
	}
	if lex.HasCRLF(p.rest()) {
		p.o += 2
	}

	return out
}
