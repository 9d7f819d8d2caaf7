package header_test

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zostay/go-addr/pkg/addr"

	"github.com/zostay/go-mailparse/header"
	"github.com/zostay/go-mailparse/headersection"
	"github.com/zostay/go-mailparse/rfc2231"
	"github.com/zostay/go-mailparse/rfc5322"
)

const testMessage = "From: \"Sterling\" <sterling@example.com>\r\n" +
	"To: steve@example.com, Team: stan@example.com, stu@example.com;\r\n" +
	"Cc: =?utf-8?Q?Andr=C3=A9?= <andre@example.com>\r\n" +
	"Sender: bob@example.org\r\n" +
	"Reply-To: list@example.net\r\n" +
	"Subject: =?utf-8?Q?Caf=C3=A9?=\r\n =?utf-8?Q?_au_lait?= time\r\n" +
	"Date: Mon, 02 Jan 2006 15:04:05 -0700\r\n" +
	"this line is junk\r\n" +
	"Content-Type: multipart/mixed;\r\n boundary=\"=_abc\"; charset=UTF-8\r\n" +
	"Content-Disposition: attachment; filename*=utf-8''%E2%82%AC%20rates.txt\r\n" +
	"Content-Transfer-Encoding: Base64\r\n" +
	"Keywords: one\r\n" +
	"keywords: two\r\n" +
	"\r\n" +
	"body\r\n"

func parse(t *testing.T, s string, opts ...header.Option) *header.Header {
	t.Helper()

	h, _, err := header.Parse([]byte(s), opts...)
	require.NoError(t, err)
	return h
}

func TestParse(t *testing.T) {
	t.Parallel()

	h, body, err := header.Parse([]byte(testMessage))
	require.NoError(t, err)
	assert.Equal(t, "body\r\n", string(body))
	assert.Equal(t, 13, h.Len())
	assert.Equal(t, []string{"this line is junk"}, h.InvalidLines())
	assert.Contains(t, h.Names(), "Content-Transfer-Encoding")
}

func TestRead(t *testing.T) {
	t.Parallel()

	h, body, err := header.Read(strings.NewReader(testMessage),
		header.WithSectionOptions(headersection.WithChunkSize(8)))
	require.NoError(t, err)

	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "body\r\n", string(b))

	subj, err := h.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "Café au lait time", subj)

	_, _, err = header.Read(strings.NewReader("A: b\r\nB"))
	assert.ErrorIs(t, err, headersection.ErrTruncated)
}

func TestHeader_Get(t *testing.T) {
	t.Parallel()

	h := parse(t, testMessage)

	ct, err := h.Get("content-type")
	require.NoError(t, err)
	assert.Equal(t, `multipart/mixed; boundary="=_abc"; charset=UTF-8`, ct)

	kw, err := h.Get("Keywords")
	assert.ErrorIs(t, err, header.ErrManyFields)
	assert.Equal(t, "one", kw)

	kws, err := h.GetAll("KEYWORDS")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, kws)

	_, err = h.Get("Nope")
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	_, err = h.GetAll("Nope")
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestHeader_GetAddresses(t *testing.T) {
	t.Parallel()

	h := parse(t, testMessage)

	from, err := h.GetFrom()
	require.NoError(t, err)
	require.Len(t, from, 1)
	assert.Equal(t, "Sterling <sterling@example.com>", from[0].String())

	to, err := h.GetAddresses(header.To)
	require.NoError(t, err)
	require.Len(t, to, 2)
	assert.Equal(t, "steve@example.com", to[0].String())
	g, ok := to[1].(*rfc5322.Group)
	require.True(t, ok)
	assert.Equal(t, "Team", g.DisplayName)
	assert.Len(t, g.Members, 2)

	cc, err := h.GetAddresses(header.Cc)
	require.NoError(t, err)
	require.Len(t, cc, 1)
	assert.Equal(t, "André", cc[0].(*rfc5322.Mailbox).Name())

	sender, err := h.GetSender()
	require.NoError(t, err)
	assert.Equal(t, "bob@example.org", sender.String())

	rt, err := h.GetReplyTo()
	require.NoError(t, err)
	assert.Equal(t, "list@example.net", rt[0].String())

	_, err = h.GetAddresses(header.Bcc)
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestHeader_GetAddressesInvalid(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	h := parse(t, "From: not an address\r\nSender: <<>>\r\n\r\n", header.WithLogger(logger))

	_, err := h.GetFrom()
	assert.ErrorIs(t, err, header.ErrInvalidValue)
	assert.Contains(t, logs.String(), "header field value does not parse")

	_, err = h.GetSender()
	assert.ErrorIs(t, err, header.ErrInvalidValue)
}

func TestHeader_GetAddressesStrict(t *testing.T) {
	t.Parallel()

	const in = "From: J\xc3\xb6rg <j@example.com>\r\n\r\n"

	from, err := parse(t, in).GetFrom()
	require.NoError(t, err)
	assert.Equal(t, "Jörg", from[0].(*rfc5322.Mailbox).Name())

	_, err = parse(t, in, header.WithPolicy(rfc5322.Strict)).GetFrom()
	assert.ErrorIs(t, err, header.ErrInvalidValue)
}

func TestHeader_GetAddressList(t *testing.T) {
	t.Parallel()

	h := parse(t, testMessage)

	al, err := h.GetAddressList(header.From)
	require.NoError(t, err)
	require.Len(t, al, 1)
	assert.Equal(t, "sterling@example.com", al[0].Address())

	al, err = h.GetAddressList(header.To)
	require.NoError(t, err)
	require.Len(t, al, 2)
	assert.Equal(t, "steve@example.com", al[0].Address())

	g, ok := al[1].(*addr.Group)
	require.True(t, ok)
	assert.Equal(t, "Team", g.DisplayName())
	require.Len(t, g.MailboxList(), 2)
	assert.Equal(t, "stan@example.com", g.MailboxList()[0].Address())
	assert.Equal(t, "stu@example.com", g.MailboxList()[1].Address())
	assert.Equal(t, "Team: stan@example.com, stu@example.com;", g.String())

	_, err = h.GetAddressList("Nope")
	assert.ErrorIs(t, err, header.ErrNoSuchField)
}

func TestHeader_GetAddressListGroupWithJunk(t *testing.T) {
	t.Parallel()

	h := parse(t, "To: Team: stan@example.com, A <a@b.c>; junk <\r\n\r\n")
	assert.NotPanics(t, func() {
		_, err := h.GetAddressList(header.To)
		assert.ErrorIs(t, err, header.ErrInvalidValue)
	})
}

func TestToAddr(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"Team: stan@example.com;", "Team: A <a@b.c>, b@c.d;", "Empty: ;"} {
		a, _, err := rfc5322.ParseAddress(rfc5322.Intl, []byte(in))
		require.NoError(t, err, in)

		var al addr.AddressList
		require.NotPanics(t, func() { al = header.ToAddr(a) }, in)
		require.Len(t, al, 1, in)
		assert.IsType(t, &addr.Group{}, al[0], in)
	}

	a, _, err := rfc5322.ParseAddress(rfc5322.Intl, []byte(`"Ann" <ann@example.com>`))
	require.NoError(t, err)
	al := header.ToAddr(a)
	require.Len(t, al, 1)
	mb, ok := al[0].(*addr.Mailbox)
	require.True(t, ok)
	assert.Equal(t, "Ann", mb.DisplayName())
	assert.Equal(t, "ann@example.com", mb.Address())
}

func TestHeader_GetTime(t *testing.T) {
	t.Parallel()

	h := parse(t, testMessage+"")

	d, err := h.GetDate()
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC)))

	h = parse(t, "Date: 2021-02-03 04:05:06\r\nX-Date: Mon Jan 02 15:04:05 2006 UTC\r\nBad: whenever\r\n\r\n")
	d, err = h.GetDate()
	require.NoError(t, err)
	assert.Equal(t, 2021, d.Year())

	d, err = h.GetTime("X-Date")
	require.NoError(t, err)
	assert.Equal(t, 2006, d.Year())

	_, err = h.GetTime("Bad")
	assert.ErrorIs(t, err, header.ErrInvalidValue)
}

func TestParseTime(t *testing.T) {
	t.Parallel()

	_, err := header.ParseTime("not a date")
	assert.Error(t, err)

	tm, err := header.ParseTime("Tue, 1 Jul 2003 10:52:37 +0200")
	require.NoError(t, err)
	assert.Equal(t, time.July, tm.Month())
}

func TestHeader_ContentType(t *testing.T) {
	t.Parallel()

	h := parse(t, testMessage)

	ct, err := h.GetContentType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", ct.MediaType())

	mt, err := h.GetMediaType()
	require.NoError(t, err)
	assert.Equal(t, "multipart/mixed", mt)

	b, err := h.GetBoundary()
	require.NoError(t, err)
	assert.Equal(t, "=_abc", b)

	cs, err := h.GetCharset()
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", cs)

	fn, err := h.GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "€ rates.txt", fn)

	cd, err := h.GetContentDisposition()
	require.NoError(t, err)
	assert.Equal(t, rfc2231.DispositionAttachment, cd.Disposition().Kind)

	te, err := h.GetContentTransferEncoding()
	require.NoError(t, err)
	assert.Equal(t, rfc2231.EncodingBase64, te.Kind)
}

func TestHeader_ContentTypeCacheIsCloned(t *testing.T) {
	t.Parallel()

	h := parse(t, "Content-Type: text/plain; charset=us-ascii\r\n\r\n")

	ct, err := h.GetContentType()
	require.NoError(t, err)
	ct.Parameters()["charset"] = "changed"

	cs, err := h.GetCharset()
	require.NoError(t, err)
	assert.Equal(t, "us-ascii", cs)
}

func TestHeader_MissingParameters(t *testing.T) {
	t.Parallel()

	h := parse(t, "Content-Type: text/plain; name=report.pdf\r\n\r\n")

	_, err := h.GetBoundary()
	assert.ErrorIs(t, err, header.ErrNoSuchFieldParameter)

	fn, err := h.GetFilename()
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", fn)

	h = parse(t, "Subject: x\r\n\r\n")
	_, err = h.GetFilename()
	assert.ErrorIs(t, err, header.ErrNoSuchFieldParameter)

	_, err = h.GetContentType()
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	h = parse(t, "Content-Type: ;\r\nContent-Transfer-Encoding: @\r\n\r\n")
	_, err = h.GetContentType()
	assert.ErrorIs(t, err, header.ErrInvalidValue)
	_, err = h.GetContentTransferEncoding()
	assert.ErrorIs(t, err, header.ErrInvalidValue)
}

func TestHeader_Clone(t *testing.T) {
	t.Parallel()

	in := []byte("Subject: hello\r\n\r\n")
	h, _, err := header.Parse(in)
	require.NoError(t, err)

	c := h.Clone()
	copy(in, "Xubject")

	s, err := c.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestHeader_LogValue(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	logger.Info("parsed", "header", parse(t, testMessage))
	assert.Contains(t, logs.String(), "header.fields=13")
	assert.Contains(t, logs.String(), "header.invalid=1")
}
