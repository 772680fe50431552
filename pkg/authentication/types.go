package authentication

import "errors"

// Stored is the credential material read from one result row.
type Stored struct {
	// Hash is the stored hash, or the boolean marker for the function scheme.
	Hash string
	// Salt is the optional second column; HasSalt is false when it was NULL
	// or absent.
	Salt    string
	HasSalt bool
}

// PasswordVerifier checks a password against stored material. It returns
// nil on a match, ErrPasswordMismatch on a clean mismatch, and any other
// error when the comparison could not be carried out.
type PasswordVerifier interface {
	VerifyPassword(user, password string, stored Stored) error
}

// PasswordEncoder produces a new stored value for a password. salt is
// optional for schemes that can generate their own.
type PasswordEncoder interface {
	EncodePassword(user, password, salt string) (string, error)
}

var (
	// ErrPasswordMismatch is returned when the password does not match
	ErrPasswordMismatch = errors.New("password mismatch")

	// ErrUnsupportedScheme is returned for scheme tags without a verifier
	ErrUnsupportedScheme = errors.New("unsupported password scheme")

	// ErrMalformedStoredValue is returned when stored hash or salt material
	// cannot be interpreted
	ErrMalformedStoredValue = errors.New("malformed stored value")

	// ErrHashingBackend is returned when the hash primitive itself fails
	ErrHashingBackend = errors.New("hashing backend error")
)
