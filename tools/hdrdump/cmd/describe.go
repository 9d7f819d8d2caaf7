package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/zostay/go-mailparse/header"
	"github.com/zostay/go-mailparse/headersection"
	"github.com/zostay/go-mailparse/param"
	"github.com/zostay/go-mailparse/rfc2231"
	"github.com/zostay/go-mailparse/rfc5322"
)

func describeAddresses(list []rfc5322.Address) string {
	parts := make([]string, 0, len(list))
	for _, a := range list {
		switch v := a.(type) {
		case *rfc5322.Mailbox:
			parts = append(parts, describeMailbox(v))
		case *rfc5322.Group:
			ms := make([]string, len(v.Members))
			for i, m := range v.Members {
				ms[i] = describeMailbox(m)
			}
			parts = append(parts, fmt.Sprintf("group %q [%s]", v.DisplayName, strings.Join(ms, ", ")))
		}
	}
	return strings.Join(parts, "; ")
}

func describeMailbox(m *rfc5322.Mailbox) string {
	s := m.Address.String()
	if lit, ok := m.Address.Domain.(rfc5322.AddressLiteral); ok {
		s += " (" + lit.Kind.String() + " literal)"
	}
	if m.DisplayName != nil {
		s = fmt.Sprintf("%q %s", *m.DisplayName, s)
	}
	return s
}

// describe returns the typed interpretation of a field, or the error that
// kept it from being interpreted.
func describe(pol rfc5322.Policy, h *header.Header, f *headersection.Field) string {
	name := string(f.Name)

	var (
		s   string
		err error
	)
	switch strings.ToLower(name) {
	case "from", "to", "cc", "bcc", "reply-to", "resent-from", "resent-to", "resent-cc":
		var list []rfc5322.Address
		list, err = h.GetAddresses(name)
		s = describeAddresses(list)
	case "sender":
		var a rfc5322.Address
		a, err = h.GetSender()
		if a != nil {
			s = describeAddresses([]rfc5322.Address{a})
		}
	case "date", "resent-date":
		var t time.Time
		t, err = h.GetTime(name)
		s = t.Format(time.RFC3339)
	case "content-type":
		var pv *param.Value
		if pv, err = h.GetContentType(); err == nil {
			s = pv.String()
		}
	case "content-disposition":
		var pv *param.Value
		if pv, err = h.GetContentDisposition(); err == nil {
			s = pv.String()
		}
	case "content-transfer-encoding":
		var te rfc2231.TransferEncoding
		if te, err = h.GetContentTransferEncoding(); err == nil {
			s = te.String()
		}
	default:
		s, _, _ = rfc5322.Unstructured(pol, f.Value)
		s = strings.Trim(s, " \t")
	}

	if err != nil {
		return "error: " + err.Error()
	}
	return s
}
