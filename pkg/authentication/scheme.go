package authentication

import (
	"fmt"
	"strings"
)

// Scheme identifies how stored passwords are compared. Exactly one scheme
// is active per authentication attempt.
type Scheme int

const (
	Clear Scheme = iota
	Crypt
	CryptMD5
	CryptSHA512
	MD5
	MD5Postgres
	SHA1
	PBKDF2SHA256
	Function
)

// schemeNames are the identifiers accepted in configuration files.
var schemeNames = [...]string{
	Clear:        "clear",
	Crypt:        "crypt",
	CryptMD5:     "crypt-md5",
	CryptSHA512:  "crypt-sha512",
	MD5:          "md5",
	MD5Postgres:  "md5-postgres",
	SHA1:         "sha1",
	PBKDF2SHA256: "pbkdf2",
	Function:     "function",
}

func (s Scheme) String() string {
	if s >= 0 && int(s) < len(schemeNames) {
		return schemeNames[s]
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme maps a configuration identifier onto a Scheme.
func ParseScheme(name string) (Scheme, error) {
	name = strings.TrimSpace(name)
	for i, n := range schemeNames {
		if n == name {
			return Scheme(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, name)
}

// Schemes lists every known scheme in identifier order.
func Schemes() []Scheme {
	out := make([]Scheme, len(schemeNames))
	for i := range schemeNames {
		out[i] = Scheme(i)
	}
	return out
}
