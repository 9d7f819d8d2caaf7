package rfc5322

import (
	"net/netip"
	"strings"

	"github.com/zostay/go-mailparse/internal/lex"
)

// LiteralKind identifies the form of an address literal.
type LiteralKind int

const (
	// LiteralFreeForm is any literal that is not one of the recognized forms.
	LiteralFreeForm LiteralKind = iota

	// LiteralIPv4 is a dotted-quad IPv4 address.
	LiteralIPv4

	// LiteralIPv6 is an "IPv6:" prefixed IPv6 address.
	LiteralIPv6

	// LiteralGeneral is a "tag:value" literal from RFC 5321.
	LiteralGeneral
)

// String returns a short name for the kind.
func (k LiteralKind) String() string {
	switch k {
	case LiteralIPv4:
		return "ipv4"
	case LiteralIPv6:
		return "ipv6"
	case LiteralGeneral:
		return "general"
	default:
		return "free-form"
	}
}

// AddressLiteral is a bracketed domain such as [192.0.2.1]. IP is set for
// the IPv4 and IPv6 kinds. Tag and Value are set for the general kind. Value
// alone holds the text of a free-form literal.
type AddressLiteral struct {
	Kind  LiteralKind
	IP    netip.Addr
	Tag   string
	Value string
}

func (AddressLiteral) domainPart() {}

// String returns the literal with its brackets.
func (l AddressLiteral) String() string {
	switch l.Kind {
	case LiteralIPv4:
		return "[" + l.IP.String() + "]"
	case LiteralIPv6:
		return "[IPv6:" + l.IP.String() + "]"
	case LiteralGeneral:
		return "[" + l.Tag + ":" + l.Value + "]"
	default:
		return "[" + l.Value + "]"
	}
}

// ParseAddressLiteral classifies the text found between the brackets of a
// domain literal. Text that is not an IPv4 address, an IPv6: address, or a
// general tag:value literal is kept as a free-form literal. It never fails.
func ParseAddressLiteral(s string) AddressLiteral {
	if ip, ok := parseIPv4(s); ok {
		return AddressLiteral{Kind: LiteralIPv4, IP: ip}
	}

	if lex.HasPrefixFold([]byte(s), "IPv6:") {
		ip, err := netip.ParseAddr(s[5:])
		if err == nil && ip.Is6() && ip.Zone() == "" {
			return AddressLiteral{Kind: LiteralIPv6, IP: ip}
		}
	}

	if tag, value, ok := strings.Cut(s, ":"); ok && isLdhStr(tag) && isDcontent(value) {
		return AddressLiteral{Kind: LiteralGeneral, Tag: tag, Value: value}
	}

	return AddressLiteral{Kind: LiteralFreeForm, Value: s}
}

// parseIPv4 accepts four decimal numbers of one to three digits each, no
// greater than 255, separated by dots.
func parseIPv4(s string) (netip.Addr, bool) {
	var ip [4]byte
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return netip.Addr{}, false
	}
	for i, part := range parts {
		if len(part) < 1 || len(part) > 3 {
			return netip.Addr{}, false
		}
		n := 0
		for j := 0; j < len(part); j++ {
			if !lex.IsDigit(part[j]) {
				return netip.Addr{}, false
			}
			n = n*10 + int(part[j]-'0')
		}
		if n > 255 {
			return netip.Addr{}, false
		}
		ip[i] = byte(n)
	}
	return netip.AddrFrom4(ip), true
}

func isLdhStr(s string) bool {
	if s == "" || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !lex.IsAlphaDigit(s[i]) && (i == 0 || s[i] != '-') {
			return false
		}
	}
	return true
}

func isDcontent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 33 || c > 126 || c >= 91 && c <= 93 {
			return false
		}
	}
	return true
}
