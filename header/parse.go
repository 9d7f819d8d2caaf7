package header

import (
	"io"
	"log/slog"

	"braces.dev/errtrace"

	"github.com/zostay/go-mailparse/headersection"
	"github.com/zostay/go-mailparse/internal/log"
	"github.com/zostay/go-mailparse/rfc5322"
)

type options struct {
	pol     rfc5322.Policy
	logger  *slog.Logger
	section []headersection.Option
}

var defaultOptions = options{
	pol:    rfc5322.Intl,
	logger: log.Noop,
}

// Option modifies how a Header is parsed and how its typed values are read.
type Option func(o *options)

// WithPolicy sets the policy used by the typed getters. The default is
// rfc5322.Intl.
func WithPolicy(pol rfc5322.Policy) Option {
	return func(o *options) {
		if pol != nil {
			o.pol = pol
		}
	}
}

// WithLogger sets the logger. Fields whose typed value cannot be parsed are
// logged at debug level. The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = log.Noop
		}
		o.logger = logger
	}
}

// WithSectionOptions passes options through to the headersection.Reader
// used by Read.
func WithSectionOptions(opts ...headersection.Option) Option {
	return func(o *options) { o.section = append(o.section, opts...) }
}

func newHeader(fields []*headersection.Field, opts []Option) *Header {
	h := &Header{opts: defaultOptions, fields: fields}
	for _, opt := range opts {
		opt(&h.opts)
	}
	return h
}

// Parse reads the header section at the start of b. It returns the header
// and the rest of b, which is the message body. Lines that are not fields
// are kept and can be listed with InvalidLines.
func Parse(b []byte, opts ...Option) (*Header, []byte, error) {
	fields, rest, err := headersection.ParseSection(b)
	if err != nil {
		return nil, b, errtrace.Wrap(err)
	}
	return newHeader(fields, opts), rest, nil
}

// Read reads the header section from r. On success, the returned reader
// yields the message body.
func Read(r io.Reader, opts ...Option) (*Header, io.Reader, error) {
	h := newHeader(nil, opts)

	hr := headersection.NewReader(r,
		append([]headersection.Option{headersection.WithLogger(h.opts.logger)}, h.opts.section...)...)
	fields, err := hr.Fields()
	if err != nil {
		return nil, nil, errtrace.Wrap(err)
	}

	h.fields = fields
	return h, hr.Body(), nil
}
