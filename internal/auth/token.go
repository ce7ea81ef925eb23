package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes a stored API key for status output. JWT-shaped
// keys carry a subject and expiry; opaque keys only report their prefix.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
	Opaque    bool
}

// Expired reports whether the token has an expiry in the past. Opaque
// tokens never report expired.
func (t TokenInfo) Expired() bool {
	return !t.Opaque && !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}

// Inspect extracts display information from an API key without verifying
// its signature. We never hold the signing key, so verification is not
// possible here; the server remains the authority.
func Inspect(token string) (TokenInfo, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		// Not a JWT. Treat as an opaque key rather than failing status.
		return TokenInfo{Opaque: true}, nil
	}

	info := TokenInfo{}
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return TokenInfo{}, fmt.Errorf("failed to read token expiry: %w", err)
	}
	if exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

// Redact returns a key rendered safe for terminal output, keeping only
// a short prefix.
func Redact(key string) string {
	const keep = 8
	if len(key) <= keep {
		return "********"
	}
	return key[:keep] + "..."
}
