// Package scanner adjusts bufio.SplitFunc termination rules.
package scanner

import (
	"bufio"
	"errors"
)

// ErrContinue may be returned by a split function wrapped with
// MakeSplitFuncExitByAdvance to consume advance bytes without producing a
// token and without handing control back to the bufio.Scanner.
var ErrContinue = errors.New("split func continue")

// MakeSplitFuncExitByAdvance wraps split so that a call which consumes input
// without producing a token is retried on the remaining data right away.
//
// A plain bufio.SplitFunc that wants to drop some input (a line it does not
// care about, say) has to either loop internally until it finds a token or
// return a nil token, which at EOF ends the scan early. The wrapper runs
// that loop instead. It returns to the scanner when split yields a token,
// asks for more data (advance is 0), consumes everything, or reports an
// error other than ErrContinue. Advances made in between are summed.
func MakeSplitFuncExitByAdvance(split bufio.SplitFunc) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		total := 0
		for {
			advance, token, err := split(data, atEOF)

			cont := errors.Is(err, ErrContinue)
			if cont && (advance == 0 || (len(data)-advance <= 0 && !atEOF)) {
				// out of data or stuck; let the scanner read more
				return total + advance, nil, nil
			}
			if !cont && (token != nil || advance == 0 || len(data)-advance <= 0 || err != nil) {
				return total + advance, token, err
			}

			data = data[advance:]
			total += advance
		}
	}
}
