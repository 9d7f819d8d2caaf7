package rfc5322

import "strings"

// encodedWords matches one or more encoded words and decodes them as one
// run. Folding whitespace between two encoded words is dropped.
func (p *parser) encodedWords() (string, bool) {
	first, ok := p.encodedWord()
	if !ok {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(first)
	for {
		save := p.o
		if _, ok := p.fws(); !ok {
			break
		}
		s, ok := p.encodedWord()
		if !ok {
			p.o = save
			break
		}
		sb.WriteString(s)
	}
	return sb.String(), true
}

func (p *parser) unstructured() string {
	text := func(b []byte) (rune, int, bool) {
		return first(b, p.pol.Vchar, eightBit)
	}

	var sb strings.Builder
	for {
		save := p.o
		ws := p.ofws()

		s, ok := p.encodedWords()
		if !ok {
			s, ok = p.run(text)
		}

		if !ok {
			p.o = save
			break
		}

		sb.WriteString(ws)
		sb.WriteString(s)
	}

	sb.Write(p.wsps())
	return sb.String()
}

// Unstructured decodes the value of an unstructured header such as Subject.
// Encoded words are decoded. Bytes above 0x7f that the policy does not accept
// are replaced with U+FFFD. Trailing whitespace is kept. It always matches,
// possibly consuming nothing, so the error is always nil.
func Unstructured(pol Policy, b []byte) (string, []byte, error) {
	p := newParser(pol, b)
	s := p.unstructured()
	return s, p.rest(), nil
}
