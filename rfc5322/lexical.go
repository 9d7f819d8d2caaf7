package rfc5322

import "strings"

// CommentContent is one piece of a comment: either CommentText or a nested
// Comment.
type CommentContent interface {
	commentContent()
}

// CommentText is a run of comment text. Quoted pairs are unescaped and
// folding whitespace has its line breaks removed.
type CommentText string

func (CommentText) commentContent() {}

// Comment is a parenthesized comment. Adjacent text is coalesced into a
// single CommentText, so text and nested comments alternate.
type Comment []CommentContent

func (Comment) commentContent() {}

// String returns the comment in parenthesized form. Text is written as is,
// without re-escaping.
func (c Comment) String() string {
	var sb strings.Builder
	c.write(&sb)
	return sb.String()
}

func (c Comment) write(sb *strings.Builder) {
	sb.WriteByte('(')
	for _, item := range c {
		switch v := item.(type) {
		case CommentText:
			sb.WriteString(string(v))
		case Comment:
			v.write(sb)
		}
	}
	sb.WriteByte(')')
}

// FWS parses folding whitespace and returns the whitespace with the line
// break removed.
func FWS(b []byte) (string, []byte, error) {
	p := newParser(Strict, b)
	s, ok := p.fws()
	if !ok {
		return "", b, ErrNoMatch
	}
	return s, p.rest(), nil
}

// CFWS parses a run of comments and folding whitespace and returns the
// bytes it spans.
func CFWS(pol Policy, b []byte) ([]byte, []byte, error) {
	p := newParser(pol, b)
	if !p.cfws() {
		return nil, b, ErrNoMatch
	}
	return b[:p.o], p.rest(), nil
}

// ParseComment parses a single comment, which may contain nested comments
// up to MaxCommentDepth deep.
func ParseComment(pol Policy, b []byte) (Comment, []byte, error) {
	p := newParser(pol, b)
	c, ok := p.comment()
	if !ok {
		return nil, b, ErrNoMatch
	}
	return c, p.rest(), nil
}

// QuotedString parses a quoted string with optional surrounding comments and
// returns its decoded content.
func QuotedString(pol Policy, b []byte) (string, []byte, error) {
	p := newParser(pol, b)
	s, ok := p.quotedString()
	if !ok {
		return "", b, ErrNoMatch
	}
	return s, p.rest(), nil
}
