package token

// Package token extracts the expiry claim from a bearer token without
// verifying its signature. This is a UX optimisation only — it lets the
// gateway refuse to send a request it already knows the server would
// reject. It is NOT a security check; the server's 401 is the authority.

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSkew is subtracted from the remaining token lifetime so a request
// does not race a token that expires mid-flight.
const DefaultSkew = 15 * time.Second

var parser = jwt.NewParser()

// DecodeExpiry returns the expiry claim of a JWT-shaped token. The second
// return value is false when the token is malformed in any way (missing
// segment, bad base64, non-JSON claims, absent exp). It never panics.
func DecodeExpiry(token string) (time.Time, bool) {
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// IsExpired reports whether the token's embedded expiry has passed, with
// skew of tolerance for clock drift and request flight time. Tokens with
// no decodable expiry are treated as not expired (fail open): a transport
// or encoding quirk must not log the user out locally; a genuinely bad
// credential will be rejected by the server.
func IsExpired(token string, skew time.Duration) bool {
	exp, ok := DecodeExpiry(token)
	if !ok {
		return false
	}
	return !exp.After(time.Now().Add(skew))
}
