package authentication

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/mmcdole/pgsql-auth/pkg/radix64"
)

const (
	// PBKDF2Iterations is fixed for interoperability with existing records
	PBKDF2Iterations = 27500
	// PBKDF2KeyLength is the derived key length in bytes
	PBKDF2KeyLength = 64
)

// PBKDF2 implements PBKDF2-HMAC-SHA256 with the salt kept base64 encoded
// in its own column.
type PBKDF2 struct{}

// NewPBKDF2 returns a PBKDF2 verifier.
func NewPBKDF2() *PBKDF2 { return &PBKDF2{} }

// EncodePassword derives the stored hash for password from an existing
// base64 salt. Generating new PBKDF2 salts is left to provisioning tools.
func (p *PBKDF2) EncodePassword(_, password, encodedSalt string) (string, error) {
	if encodedSalt == "" {
		return "", fmt.Errorf("%w: pbkdf2 requires a salt", ErrMalformedStoredValue)
	}
	key, err := p.derive(password, encodedSalt)
	if err != nil {
		return "", err
	}
	return radix64.EncodeLegacy(key), nil
}

// VerifyPassword derives the key and compares its encoding with the stored
// hash. Records written by the legacy encoder may hold a key cut at its
// first NUL byte; that encoding is accepted too.
func (p *PBKDF2) VerifyPassword(_, password string, stored Stored) error {
	if !stored.HasSalt {
		return fmt.Errorf("%w: pbkdf2 record has no salt", ErrMalformedStoredValue)
	}
	key, err := p.derive(password, stored.Salt)
	if err != nil {
		return err
	}

	want := []byte(stored.Hash)
	if subtle.ConstantTimeCompare([]byte(radix64.EncodeLegacy(key)), want) == 1 {
		return nil
	}
	if i := bytes.IndexByte(key, 0); i >= 0 {
		if subtle.ConstantTimeCompare([]byte(radix64.EncodeLegacy(key[:i])), want) == 1 {
			return nil
		}
	}
	return ErrPasswordMismatch
}

func (p *PBKDF2) derive(password, encodedSalt string) ([]byte, error) {
	raw, err := radix64.DecodeLegacy(encodedSalt)
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrMalformedStoredValue, err)
	}
	// Stored salts were handed to the KDF as C strings
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return pbkdf2.Key([]byte(password), raw, PBKDF2Iterations, PBKDF2KeyLength, sha256.New), nil
}
