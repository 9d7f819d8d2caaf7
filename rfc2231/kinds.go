package rfc2231

import (
	"github.com/zostay/go-mailparse/internal/lex"
)

// DispositionKind classifies a Content-Disposition value.
type DispositionKind int

const (
	// DispositionToken is any valid token that is not otherwise known.
	DispositionToken DispositionKind = iota
	DispositionInline
	DispositionAttachment

	// DispositionExtended is an "x-" prefixed value.
	DispositionExtended
)

// Disposition is a classified Content-Disposition value. Value holds the
// name without its "x-" prefix for DispositionExtended and the token as
// written for DispositionToken.
type Disposition struct {
	Kind  DispositionKind
	Value string
}

// extension returns the part after a case-insensitive "x-" prefix.
func extension(t string) (string, bool) {
	if len(t) > 2 && lex.HasPrefixFold([]byte(t), "x-") {
		return t[2:], true
	}
	return "", false
}

// ParseDisposition classifies a disposition token, ignoring case.
func ParseDisposition(t string) Disposition {
	switch lex.ToLower(t) {
	case "inline":
		return Disposition{Kind: DispositionInline}
	case "attachment":
		return Disposition{Kind: DispositionAttachment}
	}

	if x, ok := extension(t); ok {
		return Disposition{Kind: DispositionExtended, Value: x}
	}
	return Disposition{Kind: DispositionToken, Value: t}
}

// String returns the disposition as it would be written in a header.
func (d Disposition) String() string {
	switch d.Kind {
	case DispositionInline:
		return "inline"
	case DispositionAttachment:
		return "attachment"
	case DispositionExtended:
		return "x-" + d.Value
	default:
		return d.Value
	}
}

// EncodingKind classifies a Content-Transfer-Encoding value.
type EncodingKind int

const (
	// EncodingToken is any valid token that is not otherwise known.
	EncodingToken EncodingKind = iota
	Encoding7Bit
	Encoding8Bit
	EncodingBinary
	EncodingBase64
	EncodingQuotedPrintable

	// EncodingExtended is an "x-" prefixed value.
	EncodingExtended
)

// TransferEncoding is a classified Content-Transfer-Encoding value. Value is
// set for the extended and token kinds just as for Disposition.
type TransferEncoding struct {
	Kind  EncodingKind
	Value string
}

var encodingNames = map[EncodingKind]string{
	Encoding7Bit:            "7bit",
	Encoding8Bit:            "8bit",
	EncodingBinary:          "binary",
	EncodingBase64:          "base64",
	EncodingQuotedPrintable: "quoted-printable",
}

// ParseTransferEncoding classifies a transfer encoding token, ignoring case.
func ParseTransferEncoding(t string) TransferEncoding {
	lt := lex.ToLower(t)
	for k, name := range encodingNames {
		if lt == name {
			return TransferEncoding{Kind: k}
		}
	}

	if x, ok := extension(t); ok {
		return TransferEncoding{Kind: EncodingExtended, Value: x}
	}
	return TransferEncoding{Kind: EncodingToken, Value: t}
}

// String returns the encoding as it would be written in a header.
func (e TransferEncoding) String() string {
	if name, ok := encodingNames[e.Kind]; ok {
		return name
	}
	if e.Kind == EncodingExtended {
		return "x-" + e.Value
	}
	return e.Value
}

// IsIdentity reports whether the body is sent as is, with no transfer
// encoding to undo.
func (e TransferEncoding) IsIdentity() bool {
	switch e.Kind {
	case Encoding7Bit, Encoding8Bit, EncodingBinary:
		return true
	}
	return false
}
