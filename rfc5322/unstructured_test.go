package rfc5322_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailparse/rfc5322"
)

func TestUnstructured(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		pol  rfc5322.Policy
		in   string
		want string
		rest string
	}{
		{"plain", rfc5322.Strict, "Hello World", "Hello World", ""},
		{"empty", rfc5322.Strict, "", "", ""},
		{"adjacent words", rfc5322.Strict, "=?utf-8?q?Hello?= =?utf-8?q?_World?=", "Hello World", ""},
		{"mixed", rfc5322.Strict, "Re: =?utf-8?q?caf=C3=A9?= time  ", "Re: café time  ", ""},
		{"folded words", rfc5322.Strict, "=?utf-8?q?a?=\r\n =?utf-8?q?b?=\r\n", "ab", "\r\n"},
		{"folded text", rfc5322.Strict, "a \r\n b", "a  b", ""},
		{"not a word", rfc5322.Strict, "=?bogus", "=?bogus", ""},
		{"word then text", rfc5322.Strict, "=?utf-8?q?x?=abc", "xabc", ""},
		{"text then word", rfc5322.Strict, "abc=?utf-8?q?x?=", "abc=?utf-8?q?x?=", ""},
		{"strict 8bit", rfc5322.Strict, "caf\xc3\xa9", "caf��", ""},
		{"intl utf8", rfc5322.Intl, "caf\xc3\xa9", "café", ""},
		{"intl invalid", rfc5322.Intl, "a\xffb", "a�b", ""},
		{"stops at control", rfc5322.Strict, "abc\x00def", "abc", "\x00def"},
		{"leading whitespace", rfc5322.Strict, " x", " x", ""},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			s, rest, err := rfc5322.Unstructured(c.pol, []byte(c.in))
			require.NoError(t, err)
			assert.Equal(t, c.want, s)
			assert.Equal(t, c.rest, string(rest))
		})
	}
}

func FuzzUnstructured(f *testing.F) {
	f.Add([]byte("Re: =?utf-8?q?caf=C3=A9?= time  "))
	f.Add([]byte("=?x-sjis?B?lEWWQI7Kg4GM9ZTygs6CtSiPzik=?="))
	f.Add([]byte{0xff, ' ', 0xc3})

	f.Fuzz(func(t *testing.T, b []byte) {
		for _, pol := range []rfc5322.Policy{rfc5322.Strict, rfc5322.Intl} {
			s, rest, err := rfc5322.Unstructured(pol, b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !utf8.ValidString(s) {
				t.Fatalf("invalid UTF-8 output %q", s)
			}
			if len(rest) > len(b) {
				t.Fatalf("rest grew: %d > %d", len(rest), len(b))
			}
		}
	})
}
