package authentication

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func legacyKey(password string, rawSalt []byte) []byte {
	return pbkdf2.Key([]byte(password), rawSalt, 27500, 64, sha256.New)
}

func TestPBKDF2_RoundTrip(t *testing.T) {
	p := NewPBKDF2()
	encodedSalt := base64.StdEncoding.EncodeToString([]byte("pepper-and-salt"))

	first, err := p.EncodePassword("", "correct horse", encodedSalt)
	require.NoError(t, err)
	second, err := p.EncodePassword("", "correct horse", encodedSalt)
	require.NoError(t, err)
	assert.Equal(t, first, second, "derivation must be deterministic")
	assert.Len(t, first, 88)

	want := base64.StdEncoding.EncodeToString(legacyKey("correct horse", []byte("pepper-and-salt")))
	assert.Equal(t, want, first)

	stored := Stored{Hash: first, Salt: encodedSalt, HasSalt: true}
	assert.NoError(t, p.VerifyPassword("", "correct horse", stored))
	assert.ErrorIs(t, p.VerifyPassword("", "battery staple", stored), ErrPasswordMismatch)
}

func TestPBKDF2_Errors(t *testing.T) {
	p := NewPBKDF2()

	t.Run("missing salt column", func(t *testing.T) {
		err := p.VerifyPassword("", "pw", Stored{Hash: "abc"})
		assert.ErrorIs(t, err, ErrMalformedStoredValue)
	})

	t.Run("salt is not base64", func(t *testing.T) {
		err := p.VerifyPassword("", "pw", Stored{Hash: "abc", Salt: "%%%", HasSalt: true})
		assert.ErrorIs(t, err, ErrMalformedStoredValue)
	})

	t.Run("encode without salt", func(t *testing.T) {
		_, err := p.EncodePassword("", "pw", "")
		assert.ErrorIs(t, err, ErrMalformedStoredValue)
	})
}

func TestPBKDF2_SaltCutAtNUL(t *testing.T) {
	p := NewPBKDF2()
	raw := []byte("ab\x00cd")
	encodedSalt := base64.StdEncoding.EncodeToString(raw)

	stored := Stored{
		Hash:    base64.StdEncoding.EncodeToString(legacyKey("pw", []byte("ab"))),
		Salt:    encodedSalt,
		HasSalt: true,
	}
	assert.NoError(t, p.VerifyPassword("", "pw", stored))
}

func TestPBKDF2_LegacyTruncatedKey(t *testing.T) {
	p := NewPBKDF2()
	rawSalt := []byte("nul-hunt")
	encodedSalt := base64.StdEncoding.EncodeToString(rawSalt)

	// Roughly a fifth of 64 byte keys contain a zero byte.
	var password string
	var key []byte
	for i := 0; i < 200; i++ {
		candidate := fmt.Sprintf("pw-%d", i)
		k := legacyKey(candidate, rawSalt)
		if bytes.IndexByte(k, 0) >= 0 {
			password, key = candidate, k
			break
		}
	}
	require.NotNil(t, key, "no key with a NUL byte found")

	cut := key[:bytes.IndexByte(key, 0)]
	stored := Stored{
		Hash:    base64.StdEncoding.EncodeToString(cut),
		Salt:    encodedSalt,
		HasSalt: true,
	}
	assert.NoError(t, p.VerifyPassword("", password, stored))
	assert.ErrorIs(t, p.VerifyPassword("", password+"x", stored), ErrPasswordMismatch)
}

// Stored values written by the legacy encoder for salt "NaCl" (TmFDbA==).
func TestPBKDF2_LegacyFixtures(t *testing.T) {
	p := NewPBKDF2()

	tests := []struct {
		name        string
		password    string
		encodedSalt string
		stored      string
		encodes     bool
	}{
		{
			name:        "full key",
			password:    "secret",
			encodedSalt: "TmFDbA==",
			stored:      "Ws1ADlKu2r0jcUHtFC4cMd6+bUH+oBdAwYVAjxES/lhVhyWvz3JM7e+GQZfz6Fc45+/lGyMhpnDpbmPG9/PIKw==",
			encodes:     true,
		},
		{
			name:        "key with a NUL byte",
			password:    "pw-1",
			encodedSalt: "TmFDbA==",
			stored:      "QzNgtuc5FpwaAkDvAhTUc92Cb/Hvg5UAZ6MDPjzyKKEuusUj4HB+PAtGuTOFWwm5X6DGHrth6oWG6wqnJ9Uyzg==",
			encodes:     true,
		},
		{
			name:        "key cut at its first NUL byte",
			password:    "pw-1",
			encodedSalt: "TmFDbA==",
			stored:      "QzNgtuc5FpwaAkDvAhTUc92Cb/Hvg5U=",
		},
		{
			name:        "salt cut at its first NUL byte",
			password:    "secret",
			encodedSalt: "YWIAY2Q=",
			stored:      "df9Db6rZA8czI5STo0GqHzBU9PPkCQgSFmVswsh9O4lyG6Eo4dU5uD1wZwH2wYQUdKarPlkzRaLZGJGzfaos2w==",
			encodes:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := Stored{Hash: tt.stored, Salt: tt.encodedSalt, HasSalt: true}
			assert.NoError(t, p.VerifyPassword("", tt.password, stored))
			assert.ErrorIs(t, p.VerifyPassword("", tt.password+"!", stored), ErrPasswordMismatch)

			if tt.encodes {
				got, err := p.EncodePassword("", tt.password, tt.encodedSalt)
				require.NoError(t, err)
				assert.Equal(t, tt.stored, got)
			}
		})
	}
}
