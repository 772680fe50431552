package authentication

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/common"
	_ "github.com/GehirnInc/crypt/md5_crypt"
	_ "github.com/GehirnInc/crypt/sha256_crypt"
	_ "github.com/GehirnInc/crypt/sha512_crypt"
	descrypt "github.com/digitive/crypt"

	"github.com/mmcdole/pgsql-auth/pkg/salt"
)

// UnixCrypt implements the crypt, crypt-md5 and crypt-sha512 schemes. Like
// crypt(3), the algorithm is chosen by the prefix of the setting string, so
// the stored hash itself is the salt during verification.
type UnixCrypt struct {
	format salt.Format
	salts  *salt.Generator
}

// NewUnixCrypt returns a crypt(3) hasher that creates new hashes with salts
// of the given format drawn from gen. A nil gen uses a time seeded generator.
func NewUnixCrypt(format salt.Format, gen *salt.Generator) *UnixCrypt {
	if gen == nil {
		gen = salt.NewGenerator(nil)
	}
	return &UnixCrypt{format: format, salts: gen}
}

// EncodePassword hashes password with setting, or with a fresh salt when
// setting is empty.
func (h *UnixCrypt) EncodePassword(_, password, setting string) (string, error) {
	if setting == "" {
		setting = h.salts.Make(h.format)
	}
	return cryptLike(password, setting)
}

// VerifyPassword rehashes password using the stored hash as the setting and
// compares the full output.
func (h *UnixCrypt) VerifyPassword(_, password string, stored Stored) error {
	computed, err := cryptLike(password, stored.Hash)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(computed), []byte(stored.Hash)) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

func cryptLike(password, setting string) (string, error) {
	var c crypt.Crypt
	switch {
	case strings.HasPrefix(setting, "$1$"):
		c = crypt.MD5
	case strings.HasPrefix(setting, "$5$"):
		c = crypt.SHA256
	case strings.HasPrefix(setting, "$6$"):
		c = crypt.SHA512
	case strings.HasPrefix(setting, "$"):
		return "", fmt.Errorf("%w: unknown crypt prefix", ErrMalformedStoredValue)
	default:
		return desCrypt(password, setting)
	}

	out, err := c.New().Generate([]byte(password), []byte(setting))
	if err != nil {
		return "", classifyCryptError(err)
	}
	return out, nil
}

func desCrypt(password, setting string) (string, error) {
	// Only the first two characters of a traditional setting are salt
	if len(setting) < 2 {
		return "", fmt.Errorf("%w: crypt setting too short", ErrMalformedStoredValue)
	}
	out, err := descrypt.Crypt(password, setting[:2])
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedStoredValue, err)
	}
	return out, nil
}

func classifyCryptError(err error) error {
	if errors.Is(err, common.ErrSaltPrefix) || errors.Is(err, common.ErrSaltFormat) || errors.Is(err, common.ErrSaltRounds) {
		return fmt.Errorf("%w: %v", ErrMalformedStoredValue, err)
	}
	return fmt.Errorf("%w: %v", ErrHashingBackend, err)
}
