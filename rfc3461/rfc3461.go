// Package rfc3461 implements the parameter grammar of the SMTP delivery
// status notification extension: xtext, the ORCPT address, the RET and
// ENVID parameters of MAIL and the NOTIFY parameter of RCPT.
package rfc3461

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zostay/go-mailparse/internal/lex"
	"github.com/zostay/go-mailparse/rfc5322"
)

// MaxEnvIDLength is the longest ENVID value accepted, in bytes, before
// xtext decoding.
const MaxEnvIDLength = 100

var (
	// ErrNoMatch is returned when the input does not match the grammar.
	ErrNoMatch = errors.New("no match")

	// ErrDuplicateRet is returned when RET is given more than once.
	ErrDuplicateRet = errors.New("duplicate RET")

	// ErrInvalidRet is returned when RET is neither FULL nor HDRS.
	ErrInvalidRet = errors.New("invalid RET")

	// ErrRetWithoutValue is returned when RET has no value.
	ErrRetWithoutValue = errors.New("RET without value")

	// ErrDuplicateEnvID is returned when ENVID is given more than once.
	ErrDuplicateEnvID = errors.New("duplicate ENVID")

	// ErrEnvIDTooLong is returned when ENVID is longer than MaxEnvIDLength.
	ErrEnvIDTooLong = fmt.Errorf("ENVID over %d bytes", MaxEnvIDLength)

	// ErrInvalidEnvID is returned when ENVID is not printable xtext.
	ErrInvalidEnvID = errors.New("invalid ENVID")

	// ErrEnvIDWithoutValue is returned when ENVID has no value.
	ErrEnvIDWithoutValue = errors.New("ENVID without value")
)

func isXChar(c byte) bool {
	return c >= 33 && c <= 42 || c >= 44 && c <= 60 || c >= 62 && c <= 126
}

func isPrintable(c byte) bool {
	return c >= 9 && c <= 13 || c >= 32 && c <= 126
}

// XText decodes a run of xtext from the start of b. Plain characters stand
// for themselves and "+XX" is the byte with hex value XX. Decoding stops at
// the first byte that is neither; the run may be empty.
func XText(b []byte) ([]byte, []byte) {
	out := []byte{}
	i := 0
	for i < len(b) {
		c := b[i]
		if c == '+' {
			v, ok := lex.HexPair(b[i+1:])
			if !ok {
				break
			}
			out = append(out, v)
			i += 3
			continue
		}

		if !isXChar(c) {
			break
		}
		out = append(out, c)
		i++
	}
	return out, b[i:]
}

// printableXText decodes xtext and fails if any decoded byte is not
// printable ASCII or ASCII whitespace.
func printableXText(b []byte) ([]byte, []byte, bool) {
	x, rest := XText(b)
	for _, c := range x {
		if !isPrintable(c) {
			return nil, b, false
		}
	}
	return x, rest, true
}

// EncodeXText encodes s as xtext, escaping "+", "=" and every byte outside
// the printable ASCII range.
func EncodeXText(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isXChar(c) {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, "+%02X", c)
	}
	return sb.String()
}

// ORCPTAddress parses the value of the ORCPT parameter of RCPT, an address
// type and an xtext encoded address separated by ";".
func ORCPTAddress(b []byte) (string, string, []byte, error) {
	typ, rest, err := rfc5322.Atom(rfc5322.Strict, b)
	if err != nil {
		return "", "", b, ErrNoMatch
	}

	if len(rest) == 0 || rest[0] != ';' {
		return "", "", b, ErrNoMatch
	}

	addr, rest, ok := printableXText(rest[1:])
	if !ok {
		return "", "", b, ErrNoMatch
	}

	return typ, lex.ASCII(addr), rest, nil
}

// Ret is the kind of message content a DSN should include.
type Ret int

const (
	// RetFull returns the full message.
	RetFull Ret = iota + 1

	// RetHdrs returns only the message header.
	RetHdrs
)

// String returns the keyword for the RET value.
func (r Ret) String() string {
	switch r {
	case RetFull:
		return "FULL"
	case RetHdrs:
		return "HDRS"
	default:
		return ""
	}
}

// Param is an ESMTP parameter. Value is nil for a parameter given without
// "=value".
type Param struct {
	Name  string
	Value *string
}

// String returns the parameter in name[=value] form.
func (p Param) String() string {
	if p.Value == nil {
		return p.Name
	}
	return p.Name + "=" + *p.Value
}

// MailParams holds the DSN parameters of a MAIL command. Nil fields were not
// given.
type MailParams struct {
	EnvID *string
	Ret   *Ret
}

// DSNMailParams pulls the RET and ENVID parameters out of the parameters of
// a MAIL command and validates them. Every other parameter is returned
// unchanged and in order.
func DSNMailParams(params []Param) (MailParams, []Param, error) {
	var (
		out   MailParams
		other []Param
	)

	for _, p := range params {
		switch lex.ToLower(p.Name) {
		case "ret":
			if p.Value == nil {
				return MailParams{}, nil, ErrRetWithoutValue
			}
			if out.Ret != nil {
				return MailParams{}, nil, ErrDuplicateRet
			}

			var r Ret
			switch lex.ToLower(*p.Value) {
			case "full":
				r = RetFull
			case "hdrs":
				r = RetHdrs
			default:
				return MailParams{}, nil, ErrInvalidRet
			}
			out.Ret = &r

		case "envid":
			if p.Value == nil {
				return MailParams{}, nil, ErrEnvIDWithoutValue
			}
			if out.EnvID != nil {
				return MailParams{}, nil, ErrDuplicateEnvID
			}
			if len(*p.Value) > MaxEnvIDLength {
				return MailParams{}, nil, ErrEnvIDTooLong
			}

			x, rest, ok := printableXText([]byte(*p.Value))
			if !ok || len(rest) > 0 {
				return MailParams{}, nil, ErrInvalidEnvID
			}
			id := lex.ASCII(x)
			out.EnvID = &id

		default:
			other = append(other, p)
		}
	}

	return out, other, nil
}

// Notify is the parsed NOTIFY parameter of RCPT.
type Notify struct {
	Never   bool
	Success bool
	Failure bool
	Delay   bool
}

var notifyItems = []string{"success", "failure", "delay"}

func notifyItem(s string) (string, string, bool) {
	for _, item := range notifyItems {
		if lex.HasPrefixFold([]byte(s), item) {
			return item, s[len(item):], true
		}
	}
	return "", s, false
}

// ParseNotify parses a NOTIFY value: either NEVER or a comma separated list
// of SUCCESS, FAILURE and DELAY, in any case. It returns the text left after
// the last keyword it recognized.
func ParseNotify(s string) (Notify, string, error) {
	if lex.HasPrefixFold([]byte(s), "never") {
		return Notify{Never: true}, s[len("never"):], nil
	}

	var n Notify
	item, rest, ok := notifyItem(s)
	if !ok {
		return Notify{}, s, ErrNoMatch
	}

	for {
		switch item {
		case "success":
			n.Success = true
		case "failure":
			n.Failure = true
		case "delay":
			n.Delay = true
		}

		if !strings.HasPrefix(rest, ",") {
			break
		}

		next, after, ok := notifyItem(rest[1:])
		if !ok {
			break
		}
		item, rest = next, after
	}

	return n, rest, nil
}
