package authentication

import (
	"errors"
	"fmt"

	"github.com/mmcdole/pgsql-auth/pkg/salt"
)

// Hasher dispatches verification and encoding to the handler of a scheme.
// It holds no per-attempt state and is safe for concurrent use.
type Hasher struct {
	crypt       *UnixCrypt
	cryptMD5    *UnixCrypt
	cryptSHA512 *UnixCrypt
	pbkdf2      *PBKDF2
}

// NewHasher creates a Hasher whose crypt schemes draw new salts from gen.
// A nil gen uses a time seeded generator.
func NewHasher(gen *salt.Generator) *Hasher {
	if gen == nil {
		gen = salt.NewGenerator(nil)
	}
	return &Hasher{
		crypt:       NewUnixCrypt(salt.DES, gen),
		cryptMD5:    NewUnixCrypt(salt.MD5, gen),
		cryptSHA512: NewUnixCrypt(salt.SHA512, gen),
		pbkdf2:      NewPBKDF2(),
	}
}

// Verifier returns the verifier for scheme.
func (h *Hasher) Verifier(scheme Scheme) (PasswordVerifier, error) {
	switch scheme {
	case Clear:
		return Cleartext{}, nil
	case Crypt:
		return h.crypt, nil
	case CryptMD5:
		return h.cryptMD5, nil
	case CryptSHA512:
		return h.cryptSHA512, nil
	case MD5:
		return MD5Hex{}, nil
	case MD5Postgres:
		return PostgresMD5{}, nil
	case SHA1:
		return SHA1Hex{}, nil
	case PBKDF2SHA256:
		return h.pbkdf2, nil
	case Function:
		return FunctionMarker{}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
}

// Encoder returns the encoder for scheme. The function scheme has none:
// its decision is made by the database.
func (h *Hasher) Encoder(scheme Scheme) (PasswordEncoder, error) {
	v, err := h.Verifier(scheme)
	if err != nil {
		return nil, err
	}
	enc, ok := v.(PasswordEncoder)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot encode passwords", ErrUnsupportedScheme, scheme)
	}
	return enc, nil
}

// Verify reports whether password matches the stored material under scheme.
// A mismatch is (false, nil); errors mean the row could not be checked.
func (h *Hasher) Verify(scheme Scheme, user, password string, stored Stored) (bool, error) {
	v, err := h.Verifier(scheme)
	if err != nil {
		return false, err
	}

	err = v.VerifyPassword(user, password, stored)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrPasswordMismatch):
		return false, nil
	}
	return false, err
}

// Hash returns a new stored value for password under scheme. For crypt
// schemes an empty salt draws a fresh one; pbkdf2 needs a base64 salt.
func (h *Hasher) Hash(scheme Scheme, user, password, setting string) (string, error) {
	enc, err := h.Encoder(scheme)
	if err != nil {
		return "", err
	}
	return enc.EncodePassword(user, password, setting)
}
