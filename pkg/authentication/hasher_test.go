package authentication

import (
	"encoding/base64"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/pgsql-auth/pkg/salt"
)

func TestHasher_RoundTripAllSchemes(t *testing.T) {
	h := NewHasher(salt.NewGenerator(rand.NewSource(99)))
	pbkdf2Salt := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef"))

	for _, scheme := range Schemes() {
		if scheme == Function {
			continue
		}
		t.Run(scheme.String(), func(t *testing.T) {
			setting := ""
			if scheme == PBKDF2SHA256 {
				setting = pbkdf2Salt
			}

			stored, err := h.Hash(scheme, "alice", "p@ssw0rd", setting)
			require.NoError(t, err)

			record := Stored{Hash: stored}
			if scheme == PBKDF2SHA256 {
				record.Salt, record.HasSalt = pbkdf2Salt, true
			}

			ok, err := h.Verify(scheme, "alice", "p@ssw0rd", record)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = h.Verify(scheme, "alice", "nope", record)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHasher_Verify_Table(t *testing.T) {
	h := NewHasher(nil)

	tests := []struct {
		name    string
		scheme  Scheme
		pass    string
		stored  Stored
		want    bool
		wantErr error
	}{
		{"crypt ok", Crypt, "testpassword123", Stored{Hash: "tek4edTZE898g"}, true, nil},
		{"crypt wrong password", Crypt, "wrong", Stored{Hash: "tek4edTZE898g"}, false, nil},
		{"crypt malformed", Crypt, "pw", Stored{Hash: "x"}, false, ErrMalformedStoredValue},
		{"function true", Function, "whatever", Stored{Hash: "t"}, true, nil},
		{"function false", Function, "whatever", Stored{Hash: "f"}, false, nil},
		{"pbkdf2 bad salt", PBKDF2SHA256, "pw", Stored{Hash: "x", Salt: "!!", HasSalt: true}, false, ErrMalformedStoredValue},
		{"unknown scheme", Scheme(42), "pw", Stored{Hash: "pw"}, false, ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(tt.scheme, "alice", tt.pass, tt.stored)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestHasher_FunctionCannotEncode(t *testing.T) {
	h := NewHasher(nil)
	_, err := h.Hash(Function, "alice", "pw", "")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestHasher_CryptUsesGivenSetting(t *testing.T) {
	h := NewHasher(nil)
	got, err := h.Hash(Crypt, "", "testpassword123", "te")
	require.NoError(t, err)
	assert.Equal(t, "tek4edTZE898g", got)
}
