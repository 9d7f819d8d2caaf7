// Package headersection splits the header section of a mail message into
// fields.
//
// The splitter is deliberately forgiving. Field names are printable ASCII
// other than the colon, values may contain any byte (including 8-bit data),
// and lines that cannot be read as a field are kept as raw lines instead of
// stopping the scan. Fields must be terminated by CRLF. The section ends at
// the first empty line, and everything after it is the body.
//
// Values are returned as raw bytes, folding included. Hand them to the
// grammars in rfc5322, rfc2047 or rfc2231 for interpretation.
package headersection

import (
	"bytes"
	"errors"

	"github.com/zostay/go-mailparse/internal/lex"
)

var (
	// ErrIncomplete is returned by ParseField when b ends before the field
	// does. More input is required to decide.
	ErrIncomplete = errors.New("incomplete header field")

	// ErrNoMatch is returned when no field, raw line, or blank line could be
	// read. This only happens on input that does not contain a CRLF at all.
	ErrNoMatch = errors.New("no header field")
)

// Field is a single field of a header section. A well-formed field has a
// Name and a Value. A line that could not be read as a field is kept in Raw
// with Name and Value left nil.
//
// All slices point into the parsed input.
type Field struct {
	Name  []byte
	Value []byte
	Raw   []byte
}

// Valid reports whether the field had a name and a colon.
func (f *Field) Valid() bool {
	return f.Raw == nil
}

// String returns the field as it appeared on the wire, without the
// terminating CRLF.
func (f *Field) String() string {
	if !f.Valid() {
		return string(f.Raw)
	}
	return string(f.Name) + ":" + string(f.Value)
}

// Clone returns a copy of the field that does not share memory with the
// input it was parsed from.
func (f *Field) Clone() *Field {
	return &Field{
		Name:  bytes.Clone(f.Name),
		Value: bytes.Clone(f.Value),
		Raw:   bytes.Clone(f.Raw),
	}
}

func isFieldNameChar(c byte) bool {
	return (c >= 33 && c <= 57) || (c >= 59 && c <= 126)
}

// fieldValueEnd returns the offset of the CRLF terminating a field value
// that starts at b[0]. A CRLF followed by WSP and then more content is a
// fold and does not terminate the value. A fold that carries only
// whitespace does.
func fieldValueEnd(b []byte, atEOF bool) (int, error) {
	o := 0
	for {
		i := bytes.Index(b[o:], []byte(lex.CRLF))
		if i < 0 {
			if atEOF {
				return 0, ErrNoMatch
			}
			return 0, ErrIncomplete
		}
		end := o + i
		j := end + 2
		if j >= len(b) {
			if atEOF {
				return end, nil
			}
			return 0, ErrIncomplete
		}
		if !lex.IsWSP(b[j]) {
			return end, nil
		}
		for j < len(b) && lex.IsWSP(b[j]) {
			j++
		}
		switch {
		case j == len(b) && !atEOF:
			return 0, ErrIncomplete
		case j == len(b) || bytes.HasPrefix(b[j:], []byte(lex.CRLF)):
			return end, nil
		case b[j] == '\r' && j+1 == len(b) && !atEOF:
			return 0, ErrIncomplete
		}
		o = j
	}
}

// parseField reads one header line. With atEOF set, b is taken to be all
// of the remaining input, otherwise ErrIncomplete asks for more.
func parseField(b []byte, atEOF bool) (*Field, []byte, error) {
	switch {
	case len(b) == 0 || (len(b) == 1 && b[0] == '\r'):
		if atEOF {
			return nil, b, ErrNoMatch
		}
		return nil, b, ErrIncomplete
	case bytes.HasPrefix(b, []byte(lex.CRLF)):
		return nil, b[2:], nil
	}

	n := 0
	for n < len(b) && isFieldNameChar(b[n]) {
		n++
	}
	if n == len(b) && !atEOF {
		return nil, b, ErrIncomplete
	}

	if n > 0 && n < len(b) && b[n] == ':' {
		end, err := fieldValueEnd(b[n+1:], atEOF)
		if err == nil {
			end += n + 1
			return &Field{Name: b[:n], Value: b[n+1 : end]}, b[end+2:], nil
		}
		if errors.Is(err, ErrIncomplete) {
			return nil, b, err
		}
	}

	i := bytes.Index(b, []byte(lex.CRLF))
	if i < 0 {
		if atEOF {
			return nil, b, ErrNoMatch
		}
		return nil, b, ErrIncomplete
	}
	return &Field{Raw: b[:i]}, b[i+2:], nil
}

// ParseField reads a single line of a header section from b and returns the
// rest of b after its CRLF. It returns a nil field with a nil error for the
// empty line that ends the section.
//
// ParseField never guesses at the end of input. If b stops before the field
// can be known to be complete, for example a CRLF that might be followed by
// a fold, it returns ErrIncomplete and the caller should retry with more
// bytes.
func ParseField(b []byte) (*Field, []byte, error) {
	return parseField(b, false)
}

// ParseSection reads every field of the header section at the start of b.
// The returned rest is the body, which starts after the empty line ending
// the section. If the input ends before that empty line, ParseSection
// returns what it could read and the unread bytes as rest.
func ParseSection(b []byte) ([]*Field, []byte, error) {
	fields := []*Field{}
	for {
		f, rest, err := parseField(b, true)
		if err != nil {
			return fields, b, nil
		}
		b = rest
		if f == nil {
			return fields, b, nil
		}
		fields = append(fields, f)
	}
}
