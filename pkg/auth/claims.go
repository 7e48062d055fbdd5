package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the part of an upstream access token the web tier reads.
type Claims struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// accessTokenClaims mirrors the upstream token payload. Older tokens only carry the
// user id in sub.
type accessTokenClaims struct {
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	jwt.RegisteredClaims
}

// ExpiresWithin reports whether the token expires before now+skew. Tokens without
// an exp claim never do.
func (c Claims) ExpiresWithin(now time.Time, skew time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(c.ExpiresAt)
}
