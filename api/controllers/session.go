package controllers

import (
	"context"

	"github.com/angelmondragon/gearmarket-web/api/middleware"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
)

// TokenSource hands out the access token held for a browser session.
type TokenSource interface {
	AccessToken(ctx context.Context, sessionID string) (string, error)
}

// optionalToken returns the caller's access token, or "" for anonymous and
// expired sessions. Other failures are returned.
func optionalToken(ctx context.Context, tokens TokenSource) (string, error) {
	id := middleware.SessionIDFromContext(ctx)
	if id == "" || tokens == nil {
		return "", nil
	}
	token, err := tokens.AccessToken(ctx, id)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

func requiredToken(ctx context.Context, tokens TokenSource) (string, error) {
	id := middleware.SessionIDFromContext(ctx)
	if id == "" || tokens == nil {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "로그인이 필요합니다.")
	}
	return tokens.AccessToken(ctx, id)
}
