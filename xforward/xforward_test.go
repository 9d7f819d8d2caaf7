package xforward_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-mailparse/xforward"
)

func sp(s string) *string { return &s }

func TestParams(t *testing.T) {
	t.Parallel()

	ps, rest, err := xforward.Params([]byte("NAME=spike.porcupine.org ADDR=168.100.189.2 PROTO=ESMTP"))
	require.NoError(t, err)
	assert.Equal(t, []xforward.Param{
		{Name: "name", Value: sp("spike.porcupine.org")},
		{Name: "addr", Value: sp("168.100.189.2")},
		{Name: "proto", Value: sp("ESMTP")},
	}, ps)
	assert.Empty(t, rest)

	ps, rest, err = xforward.Params([]byte("helo=[UNAVAILABLE]\tident=a+20b port="))
	require.NoError(t, err)
	assert.Equal(t, []xforward.Param{
		{Name: "helo"},
		{Name: "ident", Value: sp("a b")},
		{Name: "port", Value: sp("")},
	}, ps)
	assert.Empty(t, rest)

	ps, rest, err = xforward.Params([]byte("source=LOCAL bogus=1"))
	require.NoError(t, err)
	assert.Equal(t, []xforward.Param{{Name: "source", Value: sp("LOCAL")}}, ps)
	assert.Equal(t, " bogus=1", string(rest))

	for _, in := range []string{"", "bogus=1", "addr", "addr 1"} {
		_, rest, err = xforward.Params([]byte(in))
		assert.ErrorIsf(t, err, xforward.ErrNoMatch, "input %q", in)
		assert.Equal(t, in, string(rest))
	}
}

func TestCommand(t *testing.T) {
	t.Parallel()

	ps, rest, err := xforward.Command([]byte("XFORWARD addr=192.0.2.1 name=[unavailable]\r\nQUIT\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []xforward.Param{
		{Name: "addr", Value: sp("192.0.2.1")},
		{Name: "name"},
	}, ps)
	assert.Equal(t, "QUIT\r\n", string(rest))

	_, _, err = xforward.Command([]byte("XFORWARD addr=192.0.2.1"))
	assert.ErrorIs(t, err, xforward.ErrNoMatch)

	_, _, err = xforward.Command([]byte("XCLIENT addr=192.0.2.1\r\n"))
	assert.ErrorIs(t, err, xforward.ErrNoMatch)
}

func TestParamString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "helo=[UNAVAILABLE]", xforward.Param{Name: "helo"}.String())
	assert.Equal(t, "ident=a+20b", xforward.Param{Name: "ident", Value: sp("a b")}.String())
}
