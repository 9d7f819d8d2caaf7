package rfc5322

import (
	"errors"
	"strings"
)

// ErrNoMatch is returned by every entry point of this package when the input
// does not match the requested grammar rule.
var ErrNoMatch = errors.New("no match")

func (p *parser) atom() (string, bool) {
	start := p.o
	p.cfws()
	s, ok := p.run(p.pol.Atext)
	if !ok {
		p.o = start
		return "", false
	}
	p.cfws()
	return s, true
}

func (p *parser) dotAtom() (string, bool) {
	start := p.o
	p.cfws()

	first, ok := p.run(p.pol.Atext)
	if !ok {
		p.o = start
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(first)
	for {
		save := p.o
		if !p.take('.') {
			break
		}
		s, ok := p.run(p.pol.Atext)
		if !ok {
			p.o = save
			break
		}
		sb.WriteByte('.')
		sb.WriteString(s)
	}

	p.cfws()
	return sb.String(), true
}

func (p *parser) paddedEncodedWord() (string, bool) {
	start := p.o
	p.cfws()
	s, ok := p.encodedWord()
	if !ok {
		p.o = start
		return "", false
	}
	p.cfws()
	return s, true
}

type word struct {
	text string
	atom bool
}

func (p *parser) word() (word, bool) {
	if s, ok := p.paddedEncodedWord(); ok {
		return word{text: s}, true
	}
	if s, ok := p.atom(); ok {
		return word{text: s, atom: true}, true
	}
	if s, ok := p.quotedString(); ok {
		return word{text: s}, true
	}
	return word{}, false
}

// displayName joins the words of a phrase. A space goes between two words
// when either of them is a bare atom. Encoded words and quoted strings next
// to each other are joined without one.
func (p *parser) displayName() (string, bool) {
	var words []word
	for {
		w, ok := p.word()
		if !ok {
			break
		}
		words = append(words, w)
	}

	if len(words) == 0 {
		return "", false
	}

	var sb strings.Builder
	for i, w := range words {
		if i > 0 && (w.atom || words[i-1].atom) {
			sb.WriteByte(' ')
		}
		sb.WriteString(w.text)
	}
	return sb.String(), true
}

func (p *parser) localPart() (LocalPart, bool) {
	if s, ok := p.dotAtom(); ok {
		return LocalPart{Value: s}, true
	}
	if s, ok := p.quotedString(); ok {
		return LocalPart{Value: s, Quoted: true}, true
	}
	return LocalPart{}, false
}

func (p *parser) domainLiteral() (AddressLiteral, bool) {
	start := p.o
	p.cfws()
	if !p.take('[') {
		p.o = start
		return AddressLiteral{}, false
	}

	var sb strings.Builder
	for {
		save := p.o
		ws := p.ofws()
		s, ok := p.run(p.pol.Dtext)
		if !ok {
			p.o = save
			break
		}
		sb.WriteString(ws)
		sb.WriteString(s)
	}
	sb.WriteString(p.ofws())

	if !p.take(']') {
		p.o = start
		return AddressLiteral{}, false
	}
	p.cfws()

	return ParseAddressLiteral(sb.String()), true
}

func (p *parser) domain() (DomainPart, bool) {
	if s, ok := p.dotAtom(); ok {
		return Domain(s), true
	}
	if l, ok := p.domainLiteral(); ok {
		return l, true
	}
	return nil, false
}

func (p *parser) addrSpec() (AddrSpec, bool) {
	start := p.o
	lp, ok := p.localPart()
	if !ok {
		return AddrSpec{}, false
	}

	if !p.take('@') {
		p.o = start
		return AddrSpec{}, false
	}

	d, ok := p.domain()
	if !ok {
		p.o = start
		return AddrSpec{}, false
	}

	return AddrSpec{LocalPart: lp, Domain: d}, true
}

func (p *parser) angleAddr() (AddrSpec, bool) {
	start := p.o
	p.cfws()
	if !p.take('<') {
		p.o = start
		return AddrSpec{}, false
	}

	a, ok := p.addrSpec()
	if !ok || !p.take('>') {
		p.o = start
		return AddrSpec{}, false
	}
	p.cfws()

	return a, true
}

func (p *parser) nameAddr() (*Mailbox, bool) {
	start := p.o

	var dname *string
	if s, ok := p.displayName(); ok {
		dname = &s
	}

	a, ok := p.angleAddr()
	if !ok {
		p.o = start
		return nil, false
	}

	return &Mailbox{DisplayName: dname, Address: a}, true
}

func (p *parser) mailbox() (*Mailbox, bool) {
	if m, ok := p.nameAddr(); ok {
		return m, true
	}
	if a, ok := p.addrSpec(); ok {
		return &Mailbox{Address: a}, true
	}
	return nil, false
}

// list matches one or more items separated by commas. A trailing comma that
// is not followed by another item is left unconsumed.
func list[T any](p *parser, item func() (T, bool)) ([]T, bool) {
	first, ok := item()
	if !ok {
		return nil, false
	}

	out := []T{first}
	for {
		save := p.o
		if !p.take(',') {
			break
		}
		next, ok := item()
		if !ok {
			p.o = save
			break
		}
		out = append(out, next)
	}
	return out, true
}

func (p *parser) mailboxList() ([]*Mailbox, bool) {
	return list(p, p.mailbox)
}

func (p *parser) group() (*Group, bool) {
	start := p.o

	dname, ok := p.displayName()
	if !ok || !p.take(':') {
		p.o = start
		return nil, false
	}

	members, ok := p.mailboxList()
	if !ok {
		p.cfws()
	}

	if !p.take(';') {
		p.o = start
		return nil, false
	}
	p.cfws()

	if members == nil {
		members = []*Mailbox{}
	}
	return &Group{DisplayName: dname, Members: members}, true
}

func (p *parser) address() (Address, bool) {
	if m, ok := p.mailbox(); ok {
		return m, true
	}
	if g, ok := p.group(); ok {
		return g, true
	}
	return nil, false
}

func (p *parser) addressList() ([]Address, bool) {
	return list(p, p.address)
}

// Atom parses an atom, ignoring surrounding comments and whitespace.
func Atom(pol Policy, b []byte) (string, []byte, error) {
	p := newParser(pol, b)
	s, ok := p.atom()
	if !ok {
		return "", b, ErrNoMatch
	}
	return s, p.rest(), nil
}

// DotAtom parses a dot-atom, ignoring surrounding comments and whitespace.
func DotAtom(pol Policy, b []byte) (string, []byte, error) {
	p := newParser(pol, b)
	s, ok := p.dotAtom()
	if !ok {
		return "", b, ErrNoMatch
	}
	return s, p.rest(), nil
}

// DisplayName parses a phrase and returns it with its words joined.
func DisplayName(pol Policy, b []byte) (string, []byte, error) {
	p := newParser(pol, b)
	s, ok := p.displayName()
	if !ok {
		return "", b, ErrNoMatch
	}
	return s, p.rest(), nil
}

// ParseDomain parses the domain part of an address: a dot-atom or a domain
// literal.
func ParseDomain(pol Policy, b []byte) (DomainPart, []byte, error) {
	p := newParser(pol, b)
	d, ok := p.domain()
	if !ok {
		return nil, b, ErrNoMatch
	}
	return d, p.rest(), nil
}

// ParseAddrSpec parses a bare local@domain address.
func ParseAddrSpec(pol Policy, b []byte) (AddrSpec, []byte, error) {
	p := newParser(pol, b)
	a, ok := p.addrSpec()
	if !ok {
		return AddrSpec{}, b, ErrNoMatch
	}
	return a, p.rest(), nil
}

// ParseMailbox parses a single mailbox, with or without a display name.
func ParseMailbox(pol Policy, b []byte) (*Mailbox, []byte, error) {
	p := newParser(pol, b)
	m, ok := p.mailbox()
	if !ok {
		return nil, b, ErrNoMatch
	}
	return m, p.rest(), nil
}

// ParseAddress parses a single mailbox or group.
func ParseAddress(pol Policy, b []byte) (Address, []byte, error) {
	p := newParser(pol, b)
	a, ok := p.address()
	if !ok {
		return nil, b, ErrNoMatch
	}
	return a, p.rest(), nil
}

// AddressList parses a comma separated list of one or more addresses.
func AddressList(pol Policy, b []byte) ([]Address, []byte, error) {
	p := newParser(pol, b)
	l, ok := p.addressList()
	if !ok {
		return nil, b, ErrNoMatch
	}
	return l, p.rest(), nil
}

func addressListCRLF(pol Policy, b []byte) ([]Address, []byte, error) {
	p := newParser(pol, b)
	l, ok := p.addressList()
	if !ok {
		return nil, b, ErrNoMatch
	}
	p.takeCRLF()
	return l, p.rest(), nil
}

// From parses the value of a From header. RFC 6854 allows more than one
// author, so this returns a list. A trailing CRLF is consumed.
func From(pol Policy, b []byte) ([]Address, []byte, error) {
	return addressListCRLF(pol, b)
}

// ReplyTo parses the value of a Reply-To header. A trailing CRLF is
// consumed.
func ReplyTo(pol Policy, b []byte) ([]Address, []byte, error) {
	return addressListCRLF(pol, b)
}

// Sender parses the value of a Sender header, which holds exactly one
// address. A trailing CRLF is consumed.
func Sender(pol Policy, b []byte) (Address, []byte, error) {
	p := newParser(pol, b)
	a, ok := p.address()
	if !ok {
		return nil, b, ErrNoMatch
	}
	p.takeCRLF()
	return a, p.rest(), nil
}
