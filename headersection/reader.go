package headersection

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/zostay/go-mailparse/internal/log"
	"github.com/zostay/go-mailparse/internal/scanner"
)

// Constants related to Reader options.
const (
	// DefaultChunkSize is the initial size of the read buffer.
	DefaultChunkSize = 16_384

	// DefaultMaxHeaderLength is the default maximum number of bytes a header
	// section may take before Reader gives up with ErrLargeHeader.
	DefaultMaxHeaderLength = bufio.MaxScanTokenSize
)

// Errors returned by Reader.
var (
	// ErrTruncated is returned when the input ends in the middle of a header
	// line.
	ErrTruncated = errors.New("header section is truncated")

	// ErrLargeHeader is returned when the header section is longer than the
	// WithMaxHeaderLength option allows.
	ErrLargeHeader = errors.New("the header exceeds the maximum parse length")

	errEndOfSection = errors.New("end of header section")
)

type options struct {
	logger       *slog.Logger
	maxHeaderLen int
	chunkSize    int
	skipInvalid  bool
}

var defaultOptions = options{
	logger:       log.Noop,
	maxHeaderLen: DefaultMaxHeaderLength,
	chunkSize:    DefaultChunkSize,
}

// Option modifies how a Reader works.
type Option func(o *options)

// WithLogger sets the logger used to report raw lines and truncation. The
// default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = log.Noop
		}
		o.logger = logger
	}
}

// WithMaxHeaderLength limits the number of bytes read before the end of the
// header section must be found. A value less than or equal to 0 means no
// limit beyond what memory allows. The default is DefaultMaxHeaderLength.
func WithMaxHeaderLength(n int) Option {
	return func(o *options) { o.maxHeaderLen = n }
}

// WithChunkSize sets the initial buffer size used while reading. The default
// is DefaultChunkSize.
func WithChunkSize(n int) Option {
	return func(o *options) { o.chunkSize = n }
}

// WithSkipInvalid makes the Reader drop lines that are not fields instead of
// returning them as raw fields.
func WithSkipInvalid() Option {
	return func(o *options) { o.skipInvalid = true }
}

// Reader reads header fields one at a time from an io.Reader. After Next has
// returned io.EOF, Body returns the rest of the input.
type Reader struct {
	opts  options
	src   io.Reader
	sc    *bufio.Scanner
	field *Field
	read  int
	body  []byte
	rest  io.Reader
	err   error
}

// NewReader returns a Reader for the header section at the start of r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	hr := &Reader{opts: defaultOptions, src: r}
	for _, opt := range opts {
		opt(&hr.opts)
	}

	limit := hr.opts.maxHeaderLen
	if limit <= 0 {
		limit = int(^uint(0) >> 1)
	}
	chunk := hr.opts.chunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	chunk = min(chunk, limit)

	hr.sc = bufio.NewScanner(r)
	hr.sc.Buffer(make([]byte, 0, chunk), limit)
	hr.sc.Split(scanner.MakeSplitFuncExitByAdvance(hr.split))
	return hr
}

func (r *Reader) split(data []byte, atEOF bool) (int, []byte, error) {
	f, rest, err := parseField(data, atEOF)
	switch {
	case errors.Is(err, ErrIncomplete):
		return 0, nil, nil
	case errors.Is(err, ErrNoMatch):
		if len(data) == 0 {
			return 0, nil, nil
		}
		r.opts.logger.Debug("header section ends inside a line",
			"read", r.read,
			"line", log.Bytes(data))
		return 0, nil, ErrTruncated
	}

	advance := len(data) - len(rest)
	r.read += advance
	if r.opts.maxHeaderLen > 0 && r.read > r.opts.maxHeaderLen {
		return 0, nil, ErrLargeHeader
	}

	if f == nil {
		r.body = bytes.Clone(rest)
		return advance, nil, errEndOfSection
	}

	if !f.Valid() {
		r.opts.logger.Debug("header line is not a field",
			"offset", r.read-advance,
			"line", log.Bytes(f.Raw))
		if r.opts.skipInvalid {
			return advance, nil, scanner.ErrContinue
		}
	}

	r.field = f.Clone()
	return advance, data[:advance], nil
}

// Next returns the next field of the header section. Raw lines are returned
// as fields that are not Valid unless WithSkipInvalid is set. At the end of
// the section, Next returns io.EOF. Input that ends without the empty line
// separating the body also ends the section, unless it stops mid-line, in
// which case Next returns ErrTruncated.
func (r *Reader) Next() (*Field, error) {
	if r.err != nil {
		return nil, r.err
	}

	if r.sc.Scan() {
		return r.field, nil
	}

	err := r.sc.Err()
	switch {
	case err == nil, errors.Is(err, errEndOfSection):
		r.err = io.EOF
	case errors.Is(err, bufio.ErrTooLong):
		r.err = ErrLargeHeader
	default:
		r.err = err
	}
	return nil, r.err
}

// All iterates over the remaining fields. Iteration stops after the first
// error other than io.EOF, which is yielded with a nil field.
func (r *Reader) All() iter.Seq2[*Field, error] {
	return func(yield func(*Field, error) bool) {
		for {
			f, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(f, err) || err != nil {
				return
			}
		}
	}
}

// Fields reads the rest of the header section.
func (r *Reader) Fields() ([]*Field, error) {
	fields := []*Field{}
	for f, err := range r.All() {
		if err != nil {
			return fields, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Body returns the input following the header section. It is only
// meaningful once Next has returned io.EOF; before that it returns nil.
func (r *Reader) Body() io.Reader {
	if !errors.Is(r.err, io.EOF) {
		return nil
	}
	if r.rest == nil {
		r.rest = &remainder{prefix: r.body, r: r.src}
	}
	return r.rest
}

// remainder reads the bytes buffered past the end of the header section and
// then continues with the underlying reader.
type remainder struct {
	prefix []byte
	r      io.Reader
}

func (r *remainder) Read(p []byte) (n int, err error) {
	if len(r.prefix) > 0 {
		n = copy(p, r.prefix)
		r.prefix = r.prefix[n:]
		if n == len(p) {
			return n, nil
		}
	}

	var rn int
	rn, err = r.r.Read(p[n:])
	return n + rn, err
}

// Close closes the underlying reader if it is an io.Closer.
func (r *remainder) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
