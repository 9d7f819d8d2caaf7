// Package header provides a typed view over a parsed header section. Field
// values are kept as raw bytes and only interpreted when a getter asks for
// them, using the grammars of the rfc5322, rfc2047 and rfc2231 packages.
// Interpreted values are cached.
//
// A Header is not safe for concurrent use.
package header

import (
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"braces.dev/errtrace"
	"github.com/araddon/dateparse"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mailparse/headersection"
	"github.com/zostay/go-mailparse/internal/lex"
	"github.com/zostay/go-mailparse/param"
	"github.com/zostay/go-mailparse/rfc2231"
	"github.com/zostay/go-mailparse/rfc5322"
)

// Errors returned by various header methods and functions.
var (
	// ErrNoSuchField is returned by Header methods when the operation
	// being performed failed because the header named does not exist.
	ErrNoSuchField = errors.New("no such header field")

	// ErrNoSuchFieldParameter is returned by Header methods when the
	// operation being performed failed because the header exists, but a
	// sub-field of the header does not exist.
	ErrNoSuchFieldParameter = errors.New("no such header field parameter")

	// ErrManyFields is returned by Header methods when the operation
	// being performed failed because the there are multiple fields with the
	// given name.
	ErrManyFields = errors.New("many header fields found")

	// ErrInvalidValue is returned by the typed getters when the field body
	// does not parse as the requested type.
	ErrInvalidValue = errors.New("invalid header field value")
)

// These are standard headers defined in RFC 5322 and RFC 2045.
const (
	Bcc                     = "Bcc"
	Cc                      = "Cc"
	ContentDisposition      = "Content-disposition"
	ContentTransferEncoding = "Content-transfer-encoding"
	ContentType             = "Content-type"
	Date                    = "Date"
	From                    = "From"
	MessageID               = "Message-id"
	ReplyTo                 = "Reply-to"
	Sender                  = "Sender"
	Subject                 = "Subject"
	To                      = "To"
)

// UnixDateWithEarlyYear is a date layout seen in the wild that the other
// parsers do not handle.
const UnixDateWithEarlyYear = "Mon Jan 02 15:04:05 2006 MST"

// Header holds the fields of a header section in their original order.
type Header struct {
	opts   options
	fields []*headersection.Field

	// valueCache holds interpreted values keyed by kind and lower-cased
	// field name. Only immutable values, or values cloned on the way out,
	// are stored here.
	valueCache map[string]any
}

// Len returns the number of fields, including invalid lines.
func (h *Header) Len() int {
	return len(h.fields)
}

// Fields returns the fields in their original order. Do not modify them.
func (h *Header) Fields() []*headersection.Field {
	return h.fields
}

// Names returns the names of the valid fields in their original order.
func (h *Header) Names() []string {
	names := make([]string, 0, len(h.fields))
	for _, f := range h.fields {
		if f.Valid() {
			names = append(names, string(f.Name))
		}
	}
	return names
}

// InvalidLines returns the lines of the header section that could not be
// read as fields.
func (h *Header) InvalidLines() []string {
	var lines []string
	for _, f := range h.fields {
		if !f.Valid() {
			lines = append(lines, string(f.Raw))
		}
	}
	return lines
}

// Clone returns a copy of the header. The copy shares nothing with the
// original input.
func (h *Header) Clone() *Header {
	fs := make([]*headersection.Field, len(h.fields))
	for i, f := range h.fields {
		fs[i] = f.Clone()
	}

	vc := make(map[string]any, len(h.valueCache))
	for k, v := range h.valueCache {
		vc[k] = v
	}

	return &Header{opts: h.opts, fields: fs, valueCache: vc}
}

func cacheKey(kind, name string) string {
	return kind + ":" + lex.ToLower(name)
}

func (h *Header) getValue(kind, name string) (any, bool) {
	v, found := h.valueCache[cacheKey(kind, name)]
	return v, found
}

func (h *Header) setValue(kind, name string, value any) {
	if h.valueCache == nil {
		h.valueCache = make(map[string]any, len(h.fields))
	}
	h.valueCache[cacheKey(kind, name)] = value
}

// invalid logs and returns an ErrInvalidValue for the named field.
func (h *Header) invalid(name, body string, cause error) error {
	h.opts.logger.Debug("header field value does not parse",
		"field", name,
		"body", body,
		"error", cause)
	return errtrace.Wrap(fmt.Errorf("%w: %s", ErrInvalidValue, name))
}

// raw returns the raw values of the named fields.
func (h *Header) raw(name string) [][]byte {
	var vs [][]byte
	for _, f := range h.fields {
		if f.Valid() && strings.EqualFold(string(f.Name), name) {
			vs = append(vs, f.Value)
		}
	}
	return vs
}

// getRaw returns the raw value of a field that should appear once. With
// more than one, the first is returned along with ErrManyFields.
func (h *Header) getRaw(name string) ([]byte, error) {
	vs := h.raw(name)
	switch len(vs) {
	case 0:
		return nil, errtrace.Wrap(ErrNoSuchField)
	case 1:
		return vs[0], nil
	default:
		return vs[0], errtrace.Wrap(ErrManyFields)
	}
}

// Unfold removes the CRLFs of folded lines and the whitespace around the
// value.
func Unfold(v []byte) string {
	s := strings.ReplaceAll(string(v), lex.CRLF, "")
	return strings.Trim(s, " \t")
}

// Get returns the unfolded body of the named field.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple headers for the given named field,
// it will return the first value found and return ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	v, err := h.getRaw(name)
	if v == nil {
		return "", err
	}
	return Unfold(v), err
}

// GetAll returns the unfolded bodies of all fields with the given name.
//
// It returns nil with ErrNoSuchField if no field with the given name is set on
// the header.
func (h *Header) GetAll(name string) ([]string, error) {
	vs := h.raw(name)
	if len(vs) == 0 {
		return nil, errtrace.Wrap(ErrNoSuchField)
	}
	bs := make([]string, len(vs))
	for i, v := range vs {
		bs[i] = Unfold(v)
	}
	return bs, nil
}

// GetText decodes the named field as unstructured text, decoding encoded
// words.
func (h *Header) GetText(name string) (string, error) {
	if v, found := h.getValue("text", name); found {
		return v.(string), nil
	}

	v, err := h.getRaw(name)
	if err != nil {
		return "", err
	}

	s, _, _ := rfc5322.Unstructured(h.opts.pol, v)
	s = strings.Trim(s, " \t")
	h.setValue("text", name, s)
	return s, nil
}

// GetSubject returns the decoded Subject.
func (h *Header) GetSubject() (string, error) {
	return errtrace.Wrap2(h.GetText(Subject))
}

// blank reports whether rest holds nothing but whitespace.
func blank(rest []byte) bool {
	return strings.Trim(string(rest), " \t\r\n") == ""
}

// GetAddresses parses the named field as an RFC 5322 address list. Groups
// are kept as *rfc5322.Group values.
func (h *Header) GetAddresses(name string) ([]rfc5322.Address, error) {
	if v, found := h.getValue("addresses", name); found {
		return v.([]rfc5322.Address), nil
	}

	v, err := h.getRaw(name)
	if err != nil {
		return nil, err
	}

	al, rest, err := rfc5322.AddressList(h.opts.pol, v)
	if err != nil || !blank(rest) {
		return nil, h.invalid(name, string(v), err)
	}

	h.setValue("addresses", name, al)
	return al, nil
}

// GetFrom returns the From addresses.
func (h *Header) GetFrom() ([]rfc5322.Address, error) {
	return errtrace.Wrap2(h.GetAddresses(From))
}

// GetReplyTo returns the Reply-To addresses.
func (h *Header) GetReplyTo() ([]rfc5322.Address, error) {
	return errtrace.Wrap2(h.GetAddresses(ReplyTo))
}

// GetSender returns the single Sender address.
func (h *Header) GetSender() (rfc5322.Address, error) {
	if v, found := h.getValue("address", Sender); found {
		return v.(rfc5322.Address), nil
	}

	v, err := h.getRaw(Sender)
	if err != nil {
		return nil, err
	}

	a, rest, err := rfc5322.Sender(h.opts.pol, v)
	if err != nil || !blank(rest) {
		return nil, h.invalid(Sender, string(v), err)
	}

	h.setValue("address", Sender, a)
	return a, nil
}

// ToAddr converts a parsed address into the go-addr representation.
func ToAddr(a rfc5322.Address) addr.AddressList {
	switch v := a.(type) {
	case *rfc5322.Mailbox:
		return addr.AddressList{toAddrMailbox(v)}
	case *rfc5322.Group:
		members := make(addr.MailboxList, 0, len(v.Members))
		for _, m := range v.Members {
			members = append(members, toAddrMailbox(m))
		}
		return addr.AddressList{addr.NewGroupParsed(v.DisplayName, members, v.String())}
	}
	return nil
}

func toAddrMailbox(m *rfc5322.Mailbox) *addr.Mailbox {
	orig := m.String()
	spec := addr.NewAddrSpecParsed(m.Address.LocalPart.String(), m.Address.Domain.String(), m.Address.String())
	mb, err := addr.NewMailboxParsed(m.Name(), spec, "", orig)
	if err != nil {
		mb, _ = addr.NewMailboxParsed("", spec, "", orig)
	}
	return mb
}

// parseAddrList runs the go-addr parser, which panics on some inputs such as
// groups with members. A panic is returned as an error.
func parseAddrList(body string) (al addr.AddressList, err error) {
	defer func() {
		if r := recover(); r != nil {
			al, err = nil, fmt.Errorf("go-addr: %v", r)
		}
	}()
	return addr.ParseEmailAddressList(body)
}

// GetAddressList returns the named field as an addr.AddressList. The field
// is parsed with the rfc5322 grammar and, when that fails, with
// addr.ParseEmailAddressList.
//
// It will return nil and ErrNoSuchField if the field is not set on the header.
// It will return ErrManyFields if the field is set more than once on the
// header.
func (h *Header) GetAddressList(name string) (addr.AddressList, error) {
	if v, found := h.getValue("addrlist", name); found {
		return v.(addr.AddressList), nil
	}

	list, err := h.GetAddresses(name)
	var al addr.AddressList
	switch {
	case err == nil:
		for _, a := range list {
			al = append(al, ToAddr(a)...)
		}
	case errors.Is(err, ErrInvalidValue):
		body, _ := h.Get(name)
		var perr error
		al, perr = parseAddrList(body)
		if perr != nil {
			h.opts.logger.Debug("address list fallback failed", "field", name, "error", perr)
			return nil, err
		}
	default:
		return nil, err
	}

	h.setValue("addrlist", name, al)
	return al, nil
}

// ParseTime parses a date the way GetTime does. It tries the RFC 5322 format
// first and then falls back to many other formats.
func ParseTime(body string) (time.Time, error) {
	t, err := mail.ParseDate(body)
	if err == nil {
		return t, nil
	}

	t, err = dateparse.ParseAny(body)
	if err == nil {
		return t, nil
	}

	t, err = time.Parse(UnixDateWithEarlyYear, body)
	if err == nil {
		return t, nil
	}

	return t, fmt.Errorf("time string %q cannot be parsed", body)
}

// GetTime parses the named field as a date.
//
// It will return the zero value and ErrNoSuchField if the header does not
// exist and ErrManyFields if more than one field with the name is set.
func (h *Header) GetTime(name string) (time.Time, error) {
	if v, found := h.getValue("time", name); found {
		return v.(time.Time), nil
	}

	body, err := h.Get(name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := ParseTime(body)
	if err != nil {
		return time.Time{}, h.invalid(name, body, err)
	}

	h.setValue("time", name, t)
	return t, nil
}

// GetDate returns the Date field as a time.Time.
func (h *Header) GetDate() (time.Time, error) {
	return errtrace.Wrap2(h.GetTime(Date))
}

func (h *Header) getParamValue(name string, parse func(string) (*param.Value, error)) (*param.Value, error) {
	if v, found := h.getValue("param", name); found {
		return v.(*param.Value).Clone(), nil
	}

	v, err := h.getRaw(name)
	if err != nil {
		return nil, err
	}

	body := string(v)
	pv, err := parse(body)
	switch {
	case errors.Is(err, param.ErrInvalidParameter):
		h.opts.logger.Debug("ignoring trailing garbage in header field",
			"field", name,
			"body", body)
	case err != nil:
		return nil, h.invalid(name, body, err)
	}

	h.setValue("param", name, pv)
	return pv.Clone(), nil
}

// GetContentType returns the Content-type header as a param.Value.
//
// It returns nil and ErrNoSuchField if the field is not set on the header. It
// returns nil and ErrManyFields if the field is set more than once on the
// header.
func (h *Header) GetContentType() (*param.Value, error) {
	return errtrace.Wrap2(h.getParamValue(ContentType, param.ParseContentType))
}

// GetContentDisposition returns the Content-disposition header as a
// param.Value.
func (h *Header) GetContentDisposition() (*param.Value, error) {
	return errtrace.Wrap2(h.getParamValue(ContentDisposition, param.ParseContentDisposition))
}

// GetContentTransferEncoding returns the classified
// Content-transfer-encoding.
func (h *Header) GetContentTransferEncoding() (rfc2231.TransferEncoding, error) {
	if v, found := h.getValue("cte", ContentTransferEncoding); found {
		return v.(rfc2231.TransferEncoding), nil
	}

	v, err := h.getRaw(ContentTransferEncoding)
	if err != nil {
		return rfc2231.TransferEncoding{}, err
	}

	te, _, err := rfc2231.ContentTransferEncoding(v)
	if err != nil {
		return te, h.invalid(ContentTransferEncoding, string(v), err)
	}

	h.setValue("cte", ContentTransferEncoding, te)
	return te, nil
}

// GetMediaType returns the MIME type set in the Content-type header.
func (h *Header) GetMediaType() (string, error) {
	pv, err := h.GetContentType()
	if err != nil {
		return "", err
	}
	return pv.MediaType(), nil
}

func (h *Header) getContentTypeParam(p string) (string, error) {
	pv, err := h.GetContentType()
	if err != nil {
		return "", err
	}
	if v := pv.Parameter(p); v != "" {
		return v, nil
	}
	return "", errtrace.Wrap(ErrNoSuchFieldParameter)
}

// GetCharset gets the charset from the Content-type header field.
//
// This method returns an empty string with ErrNoSuchField if no field is
// present in the header and with ErrNoSuchFieldParameter if the field is
// present, but the parameter is not set on the field.
func (h *Header) GetCharset() (string, error) {
	return errtrace.Wrap2(h.getContentTypeParam(param.Charset))
}

// GetBoundary gets the boundary from the Content-type header field.
func (h *Header) GetBoundary() (string, error) {
	return errtrace.Wrap2(h.getContentTypeParam(param.Boundary))
}

// GetFilename returns the filename parameter of the Content-disposition
// field, falling back to the name parameter of the Content-type field.
func (h *Header) GetFilename() (string, error) {
	if pv, err := h.GetContentDisposition(); err == nil {
		if fn := pv.Filename(); fn != "" {
			return fn, nil
		}
	}

	pv, err := h.GetContentType()
	switch {
	case errors.Is(err, ErrNoSuchField):
		return "", errtrace.Wrap(ErrNoSuchFieldParameter)
	case err != nil:
		return "", err
	}
	if fn := pv.Parameter(param.Name); fn != "" {
		return fn, nil
	}
	return "", errtrace.Wrap(ErrNoSuchFieldParameter)
}

// LogValue lists the field names when a Header is logged.
func (h *Header) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("fields", len(h.fields)),
		slog.Any("names", h.Names()),
		slog.Int("invalid", len(h.InvalidLines())),
	)
}
