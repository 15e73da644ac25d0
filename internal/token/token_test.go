package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func TestDecodeExpiry_ValidToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signedToken(t, jwt.MapClaims{"exp": exp.Unix(), "user_id": "u-1"})

	got, ok := DecodeExpiry(tok)

	require.True(t, ok)
	assert.Equal(t, exp.Unix(), got.Unix())
}

func TestDecodeExpiry_NoExpClaim(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"user_id": "u-1"})

	_, ok := DecodeExpiry(tok)

	assert.False(t, ok)
}

func TestDecodeExpiry_MalformedInputs(t *testing.T) {
	// Payload segment that is valid base64url but not JSON.
	notJSON := "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + ".sig"

	cases := map[string]string{
		"empty":            "",
		"no segments":      "justonechunk",
		"two segments":     "aaa.bbb",
		"bad base64":       "aaa.!!!.ccc",
		"non-json payload": notJSON,
	}

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := DecodeExpiry(tok)
			assert.False(t, ok)
		})
	}
}

func TestIsExpired_UndecodableIsNotExpired(t *testing.T) {
	// Fail open: anything without a decodable expiry is treated as valid.
	assert.False(t, IsExpired("", DefaultSkew))
	assert.False(t, IsExpired("garbage", DefaultSkew))
	assert.False(t, IsExpired(signedToken(t, jwt.MapClaims{"user_id": "u-1"}), 0))
}

func TestIsExpired_PastExpiry(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
	assert.True(t, IsExpired(tok, 0))
}

func TestIsExpired_FutureExpiry(t *testing.T) {
	tok := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	assert.False(t, IsExpired(tok, DefaultSkew))
}

func TestIsExpired_SkewBoundary(t *testing.T) {
	// Expiry is 10s out: expired under a 30s skew, valid under no skew.
	tok := signedToken(t, jwt.MapClaims{"exp": time.Now().Add(10 * time.Second).Unix()})
	assert.True(t, IsExpired(tok, 30*time.Second))
	assert.False(t, IsExpired(tok, 0))
}
