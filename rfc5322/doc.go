// Package rfc5322 parses the structured and unstructured header grammar of
// RFC 5322 directly from raw bytes.
//
// Every parser takes a Policy. Strict accepts ASCII only, while Intl accepts
// UTF-8 as RFC 6532 permits. Entry points return the parsed value and the
// bytes left over after it, or ErrNoMatch. Comments are parsed and then
// dropped from results, and RFC 2047 encoded words are decoded wherever a
// phrase, a quoted string or unstructured text may hold them.
//
//	addrs, _, err := rfc5322.From(rfc5322.Intl, []byte(`"Joe Q. Public" <john.q.public@example.com>`))
//	if err != nil {
//		// not an address list
//	}
//	for _, m := range rfc5322.Mailboxes(addrs) {
//		fmt.Println(m.Name(), m.Address)
//	}
package rfc5322
