// Package radix64 holds the two radix-64 encodings stored credentials use:
// the crypt(3) salt alphabet and the line-wrapped base64 written by the
// OpenSSL BIO encoder that produced existing PBKDF2 records.
package radix64

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// lineLength is the column at which the BIO base64 filter wraps its output.
const lineLength = 64

// ErrInvalidEncoding is returned when stored base64 material cannot be decoded.
var ErrInvalidEncoding = errors.New("invalid base64 encoding")

// Char maps the low six bits of i onto the crypt(3) salt alphabet
// "./0-9A-Za-z". Out of range values clamp to '.' and 'z'.
func Char(i int) byte {
	switch {
	case i <= 0:
		return '.'
	case i == 1:
		return '/'
	case i < 12:
		return byte('0' - 2 + i)
	case i < 38:
		return byte('A' - 12 + i)
	case i < 63:
		return byte('a' - 38 + i)
	}
	return 'z'
}

// Wrap returns the padded base64 encoding of src as the BIO filter emits it:
// lines of at most 64 characters, each terminated by a newline.
func Wrap(src []byte) string {
	if len(src) == 0 {
		return ""
	}

	enc := base64.StdEncoding.EncodeToString(src)
	var b strings.Builder
	b.Grow(len(enc) + len(enc)/lineLength + 1)
	for len(enc) > lineLength {
		b.WriteString(enc[:lineLength])
		b.WriteByte('\n')
		enc = enc[lineLength:]
	}
	b.WriteString(enc)
	b.WriteByte('\n')
	return b.String()
}

// Unwrap removes the line terminators Wrap inserted and nothing else.
func Unwrap(wrapped string) string {
	var b strings.Builder
	b.Grow(len(wrapped))
	for wrapped != "" {
		line, rest, _ := strings.Cut(wrapped, "\n")
		b.WriteString(line)
		wrapped = rest
	}
	return b.String()
}

// EncodeLegacy encodes src the way stored PBKDF2 hashes were written: the
// wrapped BIO output with its newlines stripped. Padding is kept.
func EncodeLegacy(src []byte) string {
	return Unwrap(Wrap(src))
}

// DecodeLegacy decodes a stored base64 value. Padded input is expected;
// unpadded input is accepted as well since some provisioning tools trim it.
func DecodeLegacy(s string) ([]byte, error) {
	s = strings.TrimRight(s, "\r\n")
	if out, err := base64.StdEncoding.DecodeString(s); err == nil {
		return out, nil
	}
	out, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}
