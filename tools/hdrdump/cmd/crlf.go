package cmd

import (
	"io"

	"golang.org/x/text/transform"
)

// lfToCRLF turns bare LF line endings into CRLF. Files saved on Unix
// systems and mbox messages rarely carry CRLF, which the header grammars
// require.
type lfToCRLF struct {
	prevCR bool
}

func (t *lfToCRLF) Reset() { t.prevCR = false }

func (t *lfToCRLF) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\n' && !t.prevCR {
			if nDst+2 > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst], dst[nDst+1] = '\r', '\n'
			nDst += 2
		} else {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
		}
		t.prevCR = c == '\r'
		nSrc++
	}
	return nDst, nSrc, nil
}

func crlfReader(r io.Reader) io.Reader {
	return transform.NewReader(r, &lfToCRLF{})
}
