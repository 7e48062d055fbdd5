package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/angelmondragon/gearmarket-web/api/responses"
	"github.com/angelmondragon/gearmarket-web/pkg/auth/session"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
)

const loginRequiredMessage = "로그인이 필요합니다."

// SessionCookie writes and reads the opaque session id cookie. Tokens never leave
// the server.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

func NewSessionCookie(cfg config.SessionConfig) SessionCookie {
	name := cfg.CookieName
	if name == "" {
		name = "gm_session"
	}
	return SessionCookie{Name: name, Secure: cfg.CookieSecure, TTL: cfg.TTL}
}

func (c SessionCookie) Set(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c SessionCookie) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

type sessionReader interface {
	Get(ctx context.Context, sessionID string) (*session.Session, error)
}

// Session copies the cookie's session id into the request context. It never rejects.
func Session(cookie SessionCookie, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := cookie.Read(r)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithSessionID(r.Context(), id)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests without a live session and clears a stale cookie.
func RequireSession(sessions sessionReader, cookie SessionCookie, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := SessionIDFromContext(ctx)
			if id == "" {
				id = cookie.Read(r)
			}
			if id == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, loginRequiredMessage))
				return
			}

			s, err := sessions.Get(ctx, id)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) {
					cookie.Clear(w)
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, loginRequiredMessage))
					return
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session"))
				return
			}

			ctx = WithUserID(WithSessionID(ctx, s.ID), s.UserID)
			if logg != nil {
				ctx = logg.WithUserID(logg.WithSessionID(ctx, s.ID), s.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
