package authentication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScheme(t *testing.T) {
	identifiers := map[string]Scheme{
		"clear":        Clear,
		"crypt":        Crypt,
		"crypt-md5":    CryptMD5,
		"crypt-sha512": CryptSHA512,
		"md5":          MD5,
		"md5-postgres": MD5Postgres,
		"sha1":         SHA1,
		"pbkdf2":       PBKDF2SHA256,
		"function":     Function,
	}

	for name, want := range identifiers {
		got, err := ParseScheme(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}

	assert.Len(t, Schemes(), len(identifiers))

	for _, bad := range []string{"", "MD5", "sha256", "crypt_md5"} {
		_, err := ParseScheme(bad)
		assert.ErrorIs(t, err, ErrUnsupportedScheme, bad)
	}
}

func TestSchemeString_Unknown(t *testing.T) {
	assert.Equal(t, "Scheme(-1)", Scheme(-1).String())
}
