// Package mailparse is a collection of parsers for the header section of
// Internet mail and for the parameters of the SMTP extensions that carry
// mail around.
//
// The code is split by the document that defines each grammar:
//
//   - rfc5322 parses addresses, display names, comments, quoted strings and
//     unstructured text, under either a Strict (ASCII) or Intl (UTF-8)
//     character policy.
//   - rfc2047 decodes encoded words such as =?utf-8?Q?caf=C3=A9?=.
//   - rfc2231 parses MIME parameter lists, reassembling continuations and
//     decoding charset-tagged values, and the Content-Type,
//     Content-Disposition and Content-Transfer-Encoding values built on them.
//   - rfc3461 parses delivery status notification parameters of the SMTP
//     MAIL and RCPT commands, and xforward parses the Postfix XFORWARD
//     command.
//   - headersection splits a header section into fields, either all at once
//     or streaming from an io.Reader.
//
// Every parser takes a byte slice and returns the parsed value together with
// the unparsed remainder, so parsers compose and callers can decide what to
// do with trailing input. Decoding is total: unknown charsets fall back to
// UTF-8 and invalid bytes become U+FFFD rather than errors.
//
// For most programs the header package is the place to start. It reads a
// header section and offers typed, cached access to its fields:
//
//	h, body, err := header.Read(r)
//	if err != nil {
//		return err
//	}
//	subject, _ := h.GetSubject()
//	from, _ := h.GetFrom()
//
// Header values such as Content-Type are returned as param.Value objects,
// which can be inspected and modified without disturbing the original text.
package mailparse
