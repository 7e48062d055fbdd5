package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/angelmondragon/gearmarket-web/pkg/apiclient"
	"github.com/angelmondragon/gearmarket-web/pkg/auth/session"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	redisclient "github.com/angelmondragon/gearmarket-web/pkg/redis"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accessToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":   "u1",
		"email":    "player@example.com",
		"nickname": "bassist",
		"exp":      time.Now().Add(ttl).Unix(),
	}).SignedString([]byte("upstream"))
	require.NoError(t, err)
	return token
}

type upstream struct {
	t          *testing.T
	loginTTL   time.Duration
	refreshes  atomic.Int32
	logouts    atomic.Int32
	lastBearer atomic.Value
}

func (u *upstream) handler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	u.lastBearer.Store(r.Header.Get("Authorization"))

	switch r.URL.Path {
	case "/auth/login":
		switch body["email"] {
		case "unverified@example.com":
			writeJSON(w, http.StatusForbidden, `{"message":"Email not verified","verificationToken":"vt-9"}`)
			return
		case "blocked@example.com":
			writeJSON(w, http.StatusForbidden, `{"message":"Account blocked until tomorrow"}`)
			return
		}
		if body["password"] != "correct-horse" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"userId":"u1","email":"player@example.com","nickname":"bassist","verified":true,"token":"`+
			accessToken(u.t, u.loginTTL)+`","refreshToken":"r1"}`)
	case "/auth/refresh":
		u.refreshes.Add(1)
		if body["refreshToken"] != "r1" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid refresh token"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"userId":"u1","verified":true,"token":"`+accessToken(u.t, time.Hour)+`","refreshToken":"r1"}`)
	case "/auth/logout":
		u.logouts.Add(1)
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	case "/auth/login-with-token":
		writeJSON(w, http.StatusOK, `{"accessToken":"`+accessToken(u.t, time.Hour)+`","refreshToken":"r1","user":{"id":"u1","email":"player@example.com","nickname":"bassist"}}`)
	default:
		writeJSON(w, http.StatusNotFound, `{"message":"no route"}`)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestService(t *testing.T, up *upstream) (Service, *session.Manager) {
	t.Helper()
	up.t = t
	srv := httptest.NewServer(http.HandlerFunc(up.handler))
	t.Cleanup(srv.Close)

	api, err := apiclient.New(config.UpstreamConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	client, err := NewClient(api)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	sessions, err := session.NewManager(redisclient.Wrap(raw), config.SessionConfig{TTL: time.Hour, RefreshSkew: time.Minute})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		API:      client,
		Sessions: sessions,
		Logger:   logger.New(logger.Options{Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc, sessions
}

func TestLoginCreatesSession(t *testing.T) {
	svc, sessions := newTestService(t, &upstream{loginTTL: time.Hour})
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: " player@example.com ", Password: "correct-horse", RedirectTo: "/trade/gears/4"})
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	assert.Equal(t, "/trade/gears/4", res.RedirectTo)
	assert.Equal(t, "bassist", res.User.Nickname)

	stored, err := sessions.Get(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "r1", stored.RefreshToken)

	me, err := svc.Current(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "u1", me.UserID)
	assert.Equal(t, "player@example.com", me.Email)
}

func TestLoginFailures(t *testing.T) {
	svc, _ := newTestService(t, &upstream{loginTTL: time.Hour})
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "player@example.com", Password: "wrong"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, "이메일 또는 비밀번호가 올바르지 않습니다.", typed.Message())

	_, err = svc.Login(ctx, LoginRequest{Email: "unverified@example.com", Password: "x"})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeForbidden, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "vt-9", details["verificationToken"])

	_, err = svc.Login(ctx, LoginRequest{Email: "blocked@example.com", Password: "x"})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "Account blocked until tomorrow", typed.Message())

	_, err = svc.Login(ctx, LoginRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestAccessTokenRefreshesNearExpiry(t *testing.T) {
	up := &upstream{loginTTL: 10 * time.Second}
	svc, _ := newTestService(t, up)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: "player@example.com", Password: "correct-horse", RedirectTo: "/login"})
	require.NoError(t, err)
	assert.Equal(t, "/", res.RedirectTo)

	first, err := svc.AccessToken(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), up.refreshes.Load())

	second, err := svc.AccessToken(ctx, res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), up.refreshes.Load(), "a fresh token is not refreshed again")
}

func TestAccessTokenWithoutSession(t *testing.T) {
	svc, _ := newTestService(t, &upstream{loginTTL: time.Hour})
	_, err := svc.AccessToken(context.Background(), "nope")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
	assert.Equal(t, "로그인이 필요합니다.", typed.Message())
}

func TestLogoutRevokes(t *testing.T) {
	up := &upstream{loginTTL: time.Hour}
	svc, sessions := newTestService(t, up)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginRequest{Email: "player@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.SessionID))
	assert.Equal(t, int32(1), up.logouts.Load())
	assert.Contains(t, up.lastBearer.Load(), "Bearer ")

	_, err = sessions.Get(ctx, res.SessionID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, svc.Logout(ctx, res.SessionID), "logging out twice is fine")
	assert.Equal(t, int32(1), up.logouts.Load())
}

func TestLoginWithToken(t *testing.T) {
	svc, _ := newTestService(t, &upstream{})
	res, err := svc.LoginWithToken(context.Background(), LoginWithTokenRequest{AutoLoginToken: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "bassist", res.User.Nickname)
	assert.Equal(t, "/", res.RedirectTo)

	_, err = svc.LoginWithToken(context.Background(), LoginWithTokenRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRegisterRequiresAgreements(t *testing.T) {
	svc, _ := newTestService(t, &upstream{})
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "a@example.com", TermsOfServiceAgreed: true})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
