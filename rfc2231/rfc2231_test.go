package rfc2231_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailparse/rfc2231"
)

func TestContentType(t *testing.T) {
	t.Parallel()

	mt, ps, rest, err := rfc2231.ContentType([]byte("text/plain; charset=utf-8"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mt)
	assert.Equal(t, rfc2231.Params{"charset": "utf-8"}, ps)
	assert.Empty(t, rest)
}

func TestContentTypeVariants(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		mt   string
		ps   rfc2231.Params
		rest string
	}{
		{"no params", "Text/HTML", "text/html", rfc2231.Params{}, ""},
		{"leading space and crlf", " multipart/mixed; boundary=\"abc def\"\r\n", "multipart/mixed", rfc2231.Params{"boundary": "abc def"}, ""},
		{"trailing semicolon", "text/plain; charset=us-ascii;", "text/plain", rfc2231.Params{"charset": "us-ascii"}, ""},
		{"space before semicolon", "text/plain ; a=1 ; b=2", "text/plain", rfc2231.Params{"a": "1", "b": "2"}, ""},
		{"folded", "text/plain;\r\n\tcharset=utf-8;\r\n format=flowed", "text/plain", rfc2231.Params{"charset": "utf-8", "format": "flowed"}, ""},
		{"spaces around equals", "text/plain; charset = utf-8", "text/plain", rfc2231.Params{"charset": "utf-8"}, ""},
		{"name case", "text/plain; CharSet=UTF-8", "text/plain", rfc2231.Params{"charset": "UTF-8"}, ""},
		{"last wins", "text/plain; a=1; a=2", "text/plain", rfc2231.Params{"a": "2"}, ""},
		{"bad param stops", "text/plain; a=1; =x; b=2", "text/plain", rfc2231.Params{"a": "1"}, " =x; b=2"},
		{"encoded word in quotes", `text/plain; name="=?utf-8?q?caf=C3=A9?="`, "text/plain", rfc2231.Params{"name": "café"}, ""},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			mt, ps, rest, err := rfc2231.ContentType([]byte(c.in))
			require.NoError(t, err)
			assert.Equal(t, c.mt, mt)
			assert.Equal(t, c.ps, ps)
			assert.Equal(t, c.rest, string(rest))
		})
	}

	for _, in := range []string{"", "text", "text/", "/plain", "text /plain"} {
		_, _, rest, err := rfc2231.ContentType([]byte(in))
		assert.ErrorIsf(t, err, rfc2231.ErrNoMatch, "input %q", in)
		assert.Equal(t, in, string(rest))
	}
}

func TestExtendedParameters(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want rfc2231.Params
	}{
		{
			name: "charset and language",
			in:   "; title*=us-ascii'en-us'This%20is%20%2A%2A%2Afun%2A%2A%2A",
			want: rfc2231.Params{"title": "This is ***fun***"},
		},
		{
			name: "continuations",
			in:   "; URL*0=\"ftp://\"; URL*1=\"cs.utk.edu/pub/moore/bulk-mailer/bulk-mailer.tar\"",
			want: rfc2231.Params{"url": "ftp://cs.utk.edu/pub/moore/bulk-mailer/bulk-mailer.tar"},
		},
		{
			name: "mixed continuations",
			in:   "; title*0*=us-ascii'en'This%20is%20even%20more%20; title*1*=%2A%2A%2Afun%2A%2A%2A%20; title*2=\"isn't it!\"",
			want: rfc2231.Params{"title": "This is even more ***fun*** isn't it!"},
		},
		{
			name: "latin1 simple",
			in:   "; filename*=iso-8859-1''caf%E9.txt",
			want: rfc2231.Params{"filename": "café.txt"},
		},
		{
			name: "no charset",
			in:   "; filename*=''caf%C3%A9",
			want: rfc2231.Params{"filename": "café"},
		},
		{
			name: "split utf-8 sequence",
			in:   "; name*0*=utf-8''caf%C3; name*1*=%A9",
			want: rfc2231.Params{"name": "café"},
		},
		{
			name: "extended overrides regular",
			in:   "; filename*=utf-8''new; filename=old",
			want: rfc2231.Params{"filename": "new"},
		},
		{
			name: "composite overrides simple",
			in:   "; name=plain; name*0=a; name*1=b",
			want: rfc2231.Params{"name": "ab"},
		},
		{
			name: "missing sections",
			in:   "; name*3=c; name*1=a",
			want: rfc2231.Params{"name": "ac"},
		},
		{
			name: "duplicate sections",
			in:   "; name*0=a; name*0=b",
			want: rfc2231.Params{"name": "ab"},
		},
		{
			name: "first charset wins",
			in:   "; name*0*=iso-8859-1''%E9; name*0*=utf-8''%E9",
			want: rfc2231.Params{"name": "éé"},
		},
		{
			name: "unknown charset skipped in continuations",
			in:   "; name*0*=x-bogus''%E9; name*0*=iso-8859-1''%E9",
			want: rfc2231.Params{"name": "éé"},
		},
		{
			name: "only unknown charsets in continuations",
			in:   "; name*0*=x-bogus''caf%C3; name*1*=%A9",
			want: rfc2231.Params{"name": "café"},
		},
		{
			name: "unknown charset",
			in:   "; name*=x-bogus''ok",
			want: rfc2231.Params{"name": "ok"},
		},
		{
			name: "invalid utf-8",
			in:   "; name*=utf-8''%FF",
			want: rfc2231.Params{"name": "�"},
		},
		{
			name: "max section",
			in:   "; n*99999999=z; n*0=a",
			want: rfc2231.Params{"n": "az"},
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			ps, rest, err := rfc2231.Parameters([]byte(c.in))
			require.NoError(t, err)
			assert.Equal(t, c.want, ps)
			assert.Empty(t, rest)
		})
	}
}

func TestParametersStop(t *testing.T) {
	t.Parallel()

	// a trailing ";" is consumed even when the parameter after it is bad
	for in, rest := range map[string]string{
		"; n*01=a":            " n*01=a",
		"; n*123456789=a":     " n*123456789=a",
		"; n=":                " n=",
		"; n*=utf-8'a":        " n*=utf-8'a",
		"":                    "",
		"; a=1 junk":          " junk",
		"; a*=utf-8''%zz":     "%zz",
		"; a*=utf-8''ok rest": " rest",
	} {
		_, got, err := rfc2231.Parameters([]byte(in))
		require.NoError(t, err)
		assert.Equalf(t, rest, string(got), "input %q", in)
	}
}

// Reassembly does not depend on the order continuation segments arrive in.
func TestReassemblyIsOrderIndependent(t *testing.T) {
	t.Parallel()

	ps, _, err := rfc2231.Parameters([]byte(`; title*0="hello"; title*1="world"`))
	require.NoError(t, err)
	assert.Equal(t, "helloworld", ps["title"])

	ps, _, err = rfc2231.Parameters([]byte(`; title*1="world"; title*0="hello"`))
	require.NoError(t, err)
	assert.Equal(t, "helloworld", ps["title"])

	segments := []string{
		"; t*0*=utf-8''%E2%82",
		"; t*1*=%AC%20and",
		"; t*2=\" more \"",
		"; t*3*=%C3%A9",
	}
	want := "€ and more é"

	permute(segments, func(order []string) {
		in := ""
		for _, s := range order {
			in += s
		}
		ps, rest, err := rfc2231.Parameters([]byte(in))
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equalf(t, want, ps["t"], "input %q", in)
	})
}

func permute(s []string, fn func([]string)) {
	var rec func(int)
	rec = func(k int) {
		if k == len(s) {
			fn(s)
			return
		}
		for i := k; i < len(s); i++ {
			s[k], s[i] = s[i], s[k]
			rec(k + 1)
			s[k], s[i] = s[i], s[k]
		}
	}
	rec(0)
}

func TestParams(t *testing.T) {
	t.Parallel()

	ps := rfc2231.Params{"b": "2", "a": "1"}
	v, ok := ps.Get("A")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = ps.Get("c")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, ps.Names())
}

func TestContentDisposition(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want rfc2231.Disposition
		str  string
		ps   rfc2231.Params
	}{
		{"inline", rfc2231.Disposition{Kind: rfc2231.DispositionInline}, "inline", rfc2231.Params{}},
		{"INLINE", rfc2231.Disposition{Kind: rfc2231.DispositionInline}, "inline", rfc2231.Params{}},
		{
			"attachment; filename=genome.jpeg;\r\n modification-date=\"Wed, 12 Feb 1997 16:29:51 -0500\"",
			rfc2231.Disposition{Kind: rfc2231.DispositionAttachment}, "attachment",
			rfc2231.Params{"filename": "genome.jpeg", "modification-date": "Wed, 12 Feb 1997 16:29:51 -0500"},
		},
		{"X-Foo", rfc2231.Disposition{Kind: rfc2231.DispositionExtended, Value: "Foo"}, "x-Foo", rfc2231.Params{}},
		{"x-", rfc2231.Disposition{Kind: rfc2231.DispositionToken, Value: "x-"}, "x-", rfc2231.Params{}},
		{"form-data; name=field", rfc2231.Disposition{Kind: rfc2231.DispositionToken, Value: "form-data"}, "form-data", rfc2231.Params{"name": "field"}},
		{"inlined", rfc2231.Disposition{Kind: rfc2231.DispositionToken, Value: "inlined"}, "inlined", rfc2231.Params{}},
	}

	for _, c := range cases {
		d, ps, rest, err := rfc2231.ContentDisposition([]byte(c.in))
		require.NoErrorf(t, err, "input %q", c.in)
		assert.Equal(t, c.want, d)
		assert.Equal(t, c.str, d.String())
		assert.Equal(t, c.ps, ps)
		assert.Empty(t, rest)
	}

	_, _, _, err := rfc2231.ContentDisposition([]byte(" ; name=x"))
	assert.ErrorIs(t, err, rfc2231.ErrNoMatch)
}

func TestContentTransferEncoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in       string
		kind     rfc2231.EncodingKind
		str      string
		identity bool
	}{
		{"7bit", rfc2231.Encoding7Bit, "7bit", true},
		{" 8BIT ", rfc2231.Encoding8Bit, "8bit", true},
		{"binary\r\n", rfc2231.EncodingBinary, "binary", true},
		{"Base64", rfc2231.EncodingBase64, "base64", false},
		{"quoted-printable", rfc2231.EncodingQuotedPrintable, "quoted-printable", false},
		{"x-uuencode", rfc2231.EncodingExtended, "x-uuencode", false},
		{"gzip", rfc2231.EncodingToken, "gzip", false},
	}

	for _, c := range cases {
		e, _, err := rfc2231.ContentTransferEncoding([]byte(c.in))
		require.NoErrorf(t, err, "input %q", c.in)
		assert.Equalf(t, c.kind, e.Kind, "input %q", c.in)
		assert.Equal(t, c.str, e.String())
		assert.Equal(t, c.identity, e.IsIdentity())
	}

	_, rest, err := rfc2231.ContentTransferEncoding([]byte("binary\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "\r\n", string(rest))

	_, _, err = rfc2231.ContentTransferEncoding([]byte(""))
	assert.ErrorIs(t, err, rfc2231.ErrNoMatch)
}

func FuzzContentType(f *testing.F) {
	f.Add([]byte("text/plain; charset=utf-8"))
	f.Add([]byte("a/b; t*1*=%C3; t*0*=utf-8''%A9; t=\"x\""))

	f.Fuzz(func(t *testing.T, b []byte) {
		_, _, rest, err := rfc2231.ContentType(b)
		if err == nil && len(rest) > len(b) {
			t.Fatalf("rest grew: %d > %d", len(rest), len(b))
		}
	})
}
