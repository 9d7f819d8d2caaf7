package rfc5322

import (
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// LocalPart is the part of an addr-spec before the "@". Value holds the
// decoded text: for a quoted local part the quotes and escaping backslashes
// are removed.
type LocalPart struct {
	Value string

	// Quoted is true when the local part was written as a quoted string.
	Quoted bool
}

// isDotAtomText reports whether s can be written as a dot-atom. Non-ASCII
// characters are accepted as RFC 6532 allows.
func isDotAtomText(s string) bool {
	if s == "" {
		return false
	}
	for _, e := range strings.Split(s, ".") {
		if e == "" {
			return false
		}
		for _, c := range e {
			if c > 0x7f || c < 0x80 && isAtext(byte(c)) {
				continue
			}
			return false
		}
	}
	return true
}

func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range s {
		if c == '"' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	sb.WriteByte('"')
	return sb.String()
}

// String returns the local part as it would be written in an address. It is
// written as a dot-atom when possible and as a quoted string otherwise.
func (lp LocalPart) String() string {
	if isDotAtomText(lp.Value) {
		return lp.Value
	}
	return quote(lp.Value)
}

// DomainPart is the part of an addr-spec after the "@". It is either a
// Domain or an AddressLiteral.
type DomainPart interface {
	String() string
	domainPart()
}

// Domain is a dot-atom domain name with any surrounding comments removed.
type Domain string

func (Domain) domainPart() {}

// String returns the domain name.
func (d Domain) String() string { return string(d) }

// ASCII returns the domain in its A-label form.
func (d Domain) ASCII() (string, error) {
	return idna.Lookup.ToASCII(string(d))
}

// Unicode returns the domain in its U-label form.
func (d Domain) Unicode() (string, error) {
	return idna.Lookup.ToUnicode(string(d))
}

// IsDNSName reports whether the A-label form of the domain is a
// syntactically valid DNS name.
func (d Domain) IsDNSName() bool {
	a, err := d.ASCII()
	if err != nil {
		return false
	}
	_, ok := dns.IsDomainName(a)
	return ok
}

// AddrSpec is a bare email address: local part, "@", domain.
type AddrSpec struct {
	LocalPart LocalPart
	Domain    DomainPart
}

// String returns the address in local@domain form.
func (a AddrSpec) String() string {
	var d string
	if a.Domain != nil {
		d = a.Domain.String()
	}
	return a.LocalPart.String() + "@" + d
}

// Address is either a *Mailbox or a *Group.
type Address interface {
	String() string
	address()
}

// Mailbox is a single address with an optional display name.
type Mailbox struct {
	DisplayName *string
	Address     AddrSpec
}

func (*Mailbox) address() {}

// Name returns the display name or the empty string if there is none.
func (m *Mailbox) Name() string {
	if m.DisplayName == nil {
		return ""
	}
	return *m.DisplayName
}

func isPhraseText(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c > 0x7f || c == ' ' || c < 0x80 && isAtext(byte(c)) {
			continue
		}
		return false
	}
	return !strings.HasPrefix(s, " ") && !strings.HasSuffix(s, " ")
}

func phrase(s string) string {
	if isPhraseText(s) {
		return s
	}
	return quote(s)
}

// String returns the mailbox in name-addr form when it has a display name
// and as a bare addr-spec otherwise.
func (m *Mailbox) String() string {
	if m.DisplayName == nil {
		return m.Address.String()
	}
	return phrase(*m.DisplayName) + " <" + m.Address.String() + ">"
}

// Group is a named list of mailboxes. The list may be empty.
type Group struct {
	DisplayName string
	Members     []*Mailbox
}

func (*Group) address() {}

// String returns the group in "name: member, member;" form.
func (g *Group) String() string {
	var sb strings.Builder
	sb.WriteString(phrase(g.DisplayName))
	sb.WriteString(":")
	for i, m := range g.Members {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(" ")
		sb.WriteString(m.String())
	}
	sb.WriteString(";")
	return sb.String()
}

// Mailboxes flattens a list of addresses into the mailboxes they contain,
// expanding groups in place.
func Mailboxes(list []Address) []*Mailbox {
	var out []*Mailbox
	for _, a := range list {
		switch v := a.(type) {
		case *Mailbox:
			out = append(out, v)
		case *Group:
			out = append(out, v.Members...)
		}
	}
	return out
}
