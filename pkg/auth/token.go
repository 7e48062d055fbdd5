package auth

import (
	"strings"

	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

var unverified = jwt.NewParser()

// DecodeClaims reads an access token's claims without checking its signature. The
// upstream holds the signing key, so the result is only good for display and refresh
// timing.
func DecodeClaims(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}

	var raw accessTokenClaims
	if _, _, err := unverified.ParseUnverified(token, &raw); err != nil {
		return Claims{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "malformed access token")
	}

	claims := Claims{
		UserID:   raw.UserID,
		Email:    raw.Email,
		Nickname: raw.Nickname,
	}
	if claims.UserID == "" {
		claims.UserID = raw.Subject
	}
	if raw.ExpiresAt != nil {
		claims.ExpiresAt = raw.ExpiresAt.UTC()
	}
	return claims, nil
}
