// Package param provides a view of parameterized header values, such as the
// Content-type and Content-disposition fields, with their RFC 2231
// parameters already reassembled and decoded. It also provides helpers for
// breaking down the MIME type found in a Content-type field.
package param

import (
	"errors"
	"strings"

	"github.com/zostay/go-mailparse/internal/lex"
	"github.com/zostay/go-mailparse/rfc2231"
)

// Well known parameter names.
const (
	// Charset is the name of the charset parameter that may be present in the
	// Content-type header.
	Charset = "charset"

	// Boundary is the name of the boundary parameter that may be present in
	// the Content-type header.
	Boundary = "boundary"

	// Filename is the name of the filename parameter that may be present in
	// the Content-disposition header.
	Filename = "filename"

	// Name is the name of the older name parameter, which some mailers put on
	// the Content-type header in place of a filename.
	Name = "name"
)

var (
	// ErrNoValue is returned by the parse functions when the leading value
	// cannot be read at all.
	ErrNoValue = errors.New("no parameterized value")

	// ErrInvalidParameter is returned along with a usable Value when input
	// remains after the last parameter that could be parsed.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Value represents a parsed parameterized header field. A Value is
// immutable. Use Modify to derive a changed copy.
type Value struct {
	v  string
	ps rfc2231.Params
}

func trailing(v *Value, rest []byte) (*Value, error) {
	if strings.TrimLeft(string(rest), " \t\r\n") != "" {
		return v, ErrInvalidParameter
	}
	return v, nil
}

// ParseContentType parses the body of a Content-type field. The media type
// is lower-cased.
func ParseContentType(v string) (*Value, error) {
	mt, ps, rest, err := rfc2231.ContentType([]byte(v))
	if err != nil {
		return nil, ErrNoValue
	}
	return trailing(&Value{mt, ps}, rest)
}

// ParseContentDisposition parses the body of a Content-disposition field.
// The disposition is normalized as rfc2231.Disposition prints it.
func ParseContentDisposition(v string) (*Value, error) {
	d, ps, rest, err := rfc2231.ContentDisposition([]byte(v))
	if err != nil {
		return nil, ErrNoValue
	}
	return trailing(&Value{d.String(), ps}, rest)
}

// Parse takes a header field body and parses it as a Value. A body with a
// "type/subtype" leading value is read as a Content-type and anything else
// as a Content-disposition style token.
//
// When the leading value parses but something after the parameters does
// not, the Value is returned together with ErrInvalidParameter.
func Parse(v string) (*Value, error) {
	if pv, err := ParseContentType(v); !errors.Is(err, ErrNoValue) {
		return pv, err
	}
	return ParseContentDisposition(v)
}

// New creates a new parameterized header value with no parameters.
func New(v string) *Value {
	return &Value{v, rfc2231.Params{}}
}

// NewWithParams creates a new parameterized header value with a copy of the
// given parameters. Parameter names are lower-cased.
func NewWithParams(v string, ps map[string]string) *Value {
	pv := New(v)
	for k, val := range ps {
		pv.ps[lex.ToLower(k)] = val
	}
	return pv
}

// Modifier is a modification to apply to a Value when calling Modify.
type Modifier func(*Value)

// Change is a Modifier that replaces the primary value.
func Change(value string) Modifier {
	return func(pv *Value) {
		pv.v = value
	}
}

// Set is a Modifier that sets a parameter.
func Set(name, value string) Modifier {
	return func(pv *Value) {
		pv.ps[lex.ToLower(name)] = value
	}
}

// Delete is a Modifier that removes a parameter.
func Delete(name string) Modifier {
	return func(pv *Value) {
		delete(pv.ps, lex.ToLower(name))
	}
}

// Modify clones a Value, applies the given modifications and returns the
// new Value:
//
//	v, _ := param.Parse("multipart/mixed; boundary=abc123; charset=latin1")
//	nv := param.Modify(v, param.Change("multipart/alternative"), param.Set("charset", "utf-8"))
func Modify(pv *Value, changes ...Modifier) *Value {
	c := pv.Clone()
	for _, change := range changes {
		change(c)
	}
	return c
}

// Value returns the primary value, the part before the first semicolon.
func (pv *Value) Value() string {
	return pv.v
}

// MediaType is a synonym for Value, e.g. "text/html".
func (pv *Value) MediaType() string {
	return pv.v
}

// Disposition classifies the primary value as a Content-disposition.
func (pv *Value) Disposition() rfc2231.Disposition {
	return rfc2231.ParseDisposition(pv.v)
}

// Type returns the part of MediaType before the slash or an empty string
// when there is no slash.
func (pv *Value) Type() string {
	if ix := strings.IndexByte(pv.v, '/'); ix >= 0 {
		return pv.v[:ix]
	}
	return ""
}

// Subtype returns the part of MediaType after the slash or an empty string
// when there is no slash.
func (pv *Value) Subtype() string {
	if ix := strings.IndexByte(pv.v, '/'); ix >= 0 {
		return pv.v[ix+1:]
	}
	return ""
}

// Parameters returns the decoded parameters. Do not modify the returned
// map.
func (pv *Value) Parameters() rfc2231.Params {
	return pv.ps
}

// Parameter returns the value of the named parameter, matched
// case-insensitively.
func (pv *Value) Parameter(k string) string {
	v, _ := pv.ps.Get(k)
	return v
}

// Filename returns the filename parameter, falling back to the name
// parameter.
func (pv *Value) Filename() string {
	if fn := pv.Parameter(Filename); fn != "" {
		return fn
	}
	return pv.Parameter(Name)
}

// Charset returns the charset parameter.
func (pv *Value) Charset() string {
	return pv.Parameter(Charset)
}

// Boundary returns the boundary parameter.
func (pv *Value) Boundary() string {
	return pv.Parameter(Boundary)
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(`()<>@,;:\"/[]?=`, c) >= 0 {
			return false
		}
	}
	return true
}

func quote(s string) string {
	if isToken(s) {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

// String returns the primary value followed by the parameters in name
// order. Values that are not tokens are quoted.
func (pv *Value) String() string {
	var sb strings.Builder
	sb.WriteString(pv.v)
	for _, k := range pv.ps.Names() {
		sb.WriteString("; ")
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(quote(pv.ps[k]))
	}
	return sb.String()
}

// Bytes returns String as a byte slice.
func (pv *Value) Bytes() []byte {
	return []byte(pv.String())
}

// Clone returns a deep copy of the Value.
func (pv *Value) Clone() *Value {
	c := &Value{v: pv.v, ps: make(rfc2231.Params, len(pv.ps))}
	for k, v := range pv.ps {
		c.ps[k] = v
	}
	return c
}
