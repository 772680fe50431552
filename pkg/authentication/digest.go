package authentication

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
)

// Cleartext compares the password with the stored value directly.
type Cleartext struct{}

func (Cleartext) EncodePassword(_, password, _ string) (string, error) {
	return password, nil
}

func (Cleartext) VerifyPassword(_, password string, stored Stored) error {
	return compare(password, stored.Hash)
}

// MD5Hex stores the lowercase hex MD5 digest of the password.
type MD5Hex struct{}

func (MD5Hex) EncodePassword(_, password, _ string) (string, error) {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (m MD5Hex) VerifyPassword(user, password string, stored Stored) error {
	computed, _ := m.EncodePassword(user, password, "")
	return compare(computed, stored.Hash)
}

// PostgresMD5 follows the pg_authid convention: "md5" followed by the hex
// MD5 of the password concatenated with the user name, in that order.
type PostgresMD5 struct{}

func (PostgresMD5) EncodePassword(user, password, _ string) (string, error) {
	sum := md5.Sum([]byte(password + user))
	return "md5" + hex.EncodeToString(sum[:]), nil
}

func (m PostgresMD5) VerifyPassword(user, password string, stored Stored) error {
	computed, _ := m.EncodePassword(user, password, "")
	return compare(computed, stored.Hash)
}

// SHA1Hex stores the lowercase hex SHA-1 digest of the password.
type SHA1Hex struct{}

func (SHA1Hex) EncodePassword(_, password, _ string) (string, error) {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

func (s SHA1Hex) VerifyPassword(user, password string, stored Stored) error {
	computed, _ := s.EncodePassword(user, password, "")
	return compare(computed, stored.Hash)
}

// FunctionMarker trusts a decision the database already made: the first
// column holds a boolean rendered as text and only "t" is accepted.
type FunctionMarker struct{}

const trueMarker = "t"

func (FunctionMarker) VerifyPassword(_, _ string, stored Stored) error {
	if stored.Hash != trueMarker {
		return ErrPasswordMismatch
	}
	return nil
}

func compare(computed, stored string) error {
	if subtle.ConstantTimeCompare([]byte(computed), []byte(stored)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
