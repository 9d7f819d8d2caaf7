// Package rfc2231 parses MIME header parameters, including the RFC 2231
// extensions for charset-tagged, percent-encoded and continued values, and
// the Content-Type, Content-Disposition and Content-Transfer-Encoding
// headers built on them.
//
// Continuations may arrive in any order. Segments are sorted by section
// number before they are joined, and runs of percent-encoded segments are
// decoded together so a multi-byte character split across two segments
// survives. Missing or duplicate sections are not errors.
package rfc2231

import (
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/zostay/go-mailparse/charset"
	"github.com/zostay/go-mailparse/internal/lex"
)

// ErrNoMatch is returned when the leading value of a header does not parse.
var ErrNoMatch = errors.New("no match")

// Params maps lower-cased parameter names to fully decoded values.
type Params map[string]string

// Get returns the named parameter. The name is matched case-insensitively.
func (ps Params) Get(name string) (string, bool) {
	v, ok := ps[strings.ToLower(name)]
	return v, ok
}

// Names returns the parameter names in sorted order.
func (ps Params) Names() []string {
	return slices.Sorted(maps.Keys(ps))
}

type segment struct {
	section int
	encoded bool
	text    string
	raw     []byte
}

type composite struct {
	charset    string
	hasCharset bool
	segments   []segment
}

// join sorts the segments and concatenates them. Adjacent encoded segments
// are buffered and decoded as one run.
func (c *composite) join() string {
	sort.SliceStable(c.segments, func(i, j int) bool {
		return c.segments[i].section < c.segments[j].section
	})

	var sb strings.Builder
	var buf []byte
	flush := func() {
		if len(buf) > 0 {
			sb.WriteString(charset.Decode(c.charset, buf))
			buf = buf[:0]
		}
	}

	for _, s := range c.segments {
		if s.encoded {
			buf = append(buf, s.raw...)
			continue
		}
		flush()
		sb.WriteString(s.text)
	}
	flush()

	return sb.String()
}

func decodeParameters(list []parameter) Params {
	simple := map[string]string{}
	simpleEncoded := map[string]string{}
	composites := map[string]*composite{}

	for _, p := range list {
		name := lex.ToLower(p.name)

		if p.section < 0 {
			switch p.kind {
			case regularValue:
				simple[name] = p.value
			case initialValue:
				simpleEncoded[name] = charset.Decode(p.charset, p.raw)
			}
			continue
		}

		c, ok := composites[name]
		if !ok {
			c = &composite{}
			composites[name] = c
		}

		switch p.kind {
		case regularValue:
			c.segments = append(c.segments, segment{section: p.section, text: p.value})
		case initialValue:
			if !c.hasCharset && charset.IsKnown(p.charset) {
				c.charset = p.charset
				c.hasCharset = true
			}
			c.segments = append(c.segments, segment{section: p.section, encoded: true, raw: p.raw})
		case otherValue:
			c.segments = append(c.segments, segment{section: p.section, encoded: true, raw: p.raw})
		}
	}

	out := Params(simple)
	for name, v := range simpleEncoded {
		out[name] = v
	}
	for name, c := range composites {
		out[name] = c.join()
	}

	return out
}

// Parameters parses a list of ";"-prefixed parameters, as found after the
// leading value of a MIME header, and reassembles them. A trailing ";" and
// CRLF are consumed. Parsing stops at the first parameter that does not
// parse, which is left in the returned rest. The list may be empty, so the
// error is always nil.
func Parameters(b []byte) (Params, []byte, error) {
	p := &parser{b: b}
	return decodeParameters(p.parameterList()), p.rest(), nil
}

// ContentType parses the value of a Content-Type header. It returns the
// lower-cased "type/subtype" and the parameters.
func ContentType(b []byte) (string, Params, []byte, error) {
	p := &parser{b: b}
	p.ofws()

	typ, ok := p.token()
	if !ok || !p.take('/') {
		return "", nil, b, ErrNoMatch
	}

	sub, ok := p.token()
	if !ok {
		return "", nil, b, ErrNoMatch
	}
	p.ofws()

	mt := lex.ToLower(typ + "/" + sub)
	return mt, decodeParameters(p.parameterList()), p.rest(), nil
}

// ContentDisposition parses the value of a Content-Disposition header. An
// unrecognized disposition is returned with the DispositionToken kind
// rather than failing.
func ContentDisposition(b []byte) (Disposition, Params, []byte, error) {
	p := &parser{b: b}
	p.ofws()

	t, ok := p.token()
	if !ok {
		return Disposition{}, nil, b, ErrNoMatch
	}
	p.ofws()

	return ParseDisposition(t), decodeParameters(p.parameterList()), p.rest(), nil
}

// ContentTransferEncoding parses the value of a Content-Transfer-Encoding
// header. An unrecognized encoding is returned with the EncodingToken kind
// rather than failing.
func ContentTransferEncoding(b []byte) (TransferEncoding, []byte, error) {
	p := &parser{b: b}
	p.ofws()

	t, ok := p.token()
	if !ok {
		return TransferEncoding{}, b, ErrNoMatch
	}
	p.ofws()

	return ParseTransferEncoding(t), p.rest(), nil
}
