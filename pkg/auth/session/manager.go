package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/gearmarket-web/pkg/auth"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	redisclient "github.com/angelmondragon/gearmarket-web/pkg/redis"
	"github.com/google/uuid"
)

const refreshLockTTL = 10 * time.Second

// ErrNotFound is returned when the session id is unknown or has expired.
var ErrNotFound = errors.New("session not found")

// Session is the token pair and identity held for one browser. Only ID leaves the
// server, as a cookie.
type Session struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
	RefreshedAt  time.Time `json:"refreshedAt,omitempty"`
}

// Tokens is an upstream token pair. ExpiresAt is only used when the access token has
// no exp claim.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// User is the identity reported alongside a login. Empty fields fall back to the
// access token's claims.
type User struct {
	ID       string
	Email    string
	Nickname string
}

// RefreshFunc trades a refresh token for a new pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (Tokens, error)

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
	SessionLockKey(sessionID string) string
}

// Manager keeps sessions in redis with a sliding TTL and refreshes access tokens
// shortly before they expire.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
	skew  time.Duration
	now   func() time.Time
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.SessionConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if cfg.RefreshSkew < 0 {
		return nil, fmt.Errorf("refresh skew must not be negative")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   cfg.TTL,
		skew:  cfg.RefreshSkew,
		now:   time.Now,
	}, nil
}

// TTL is how long an idle session survives.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Create stores a new session for the token pair and returns it with a fresh id.
func (m *Manager) Create(ctx context.Context, tokens Tokens, user User) (*Session, error) {
	if strings.TrimSpace(tokens.AccessToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "access token is required")
	}
	now := m.now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		CreatedAt: now,
	}
	if err := m.apply(s, tokens); err != nil {
		return nil, err
	}
	if err := m.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNotFound
	}
	payload, err := m.store.GetBytes(ctx, m.keyer.SessionKey(sessionID))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

// Update writes the session back and restarts its TTL.
func (m *Manager) Update(ctx context.Context, s *Session) error {
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, m.keyer.SessionKey(s.ID), payload, m.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.SessionKey(sessionID))
}

// Rotate returns the session, first trading its refresh token for a new pair when the
// access token expires within the refresh skew. Only one caller refreshes at a time;
// the others keep the token they already have. A refresh the upstream rejects as
// UNAUTHORIZED revokes the session.
func (m *Manager) Rotate(ctx context.Context, sessionID string, refresh RefreshFunc) (*Session, error) {
	return m.rotate(ctx, sessionID, refresh, false)
}

// Refresh is Rotate without the expiry check.
func (m *Manager) Refresh(ctx context.Context, sessionID string, refresh RefreshFunc) (*Session, error) {
	return m.rotate(ctx, sessionID, refresh, true)
}

func (m *Manager) rotate(ctx context.Context, sessionID string, refresh RefreshFunc, force bool) (*Session, error) {
	s, err := m.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !force && !m.needsRefresh(s) {
		return s, nil
	}
	if refresh == nil || s.RefreshToken == "" {
		return s, nil
	}

	lockKey := m.keyer.SessionLockKey(sessionID)
	lockToken := uuid.NewString()
	ok, err := m.store.AcquireLock(ctx, lockKey, lockToken, refreshLockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock session: %w", err)
	}
	if !ok {
		return s, nil
	}
	defer func() {
		_ = m.store.ReleaseLock(context.WithoutCancel(ctx), lockKey, lockToken)
	}()

	// Another request may have refreshed between the read and the lock.
	refreshedBefore := s.RefreshedAt
	if s, err = m.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	if !force && !m.needsRefresh(s) {
		return s, nil
	}
	if force && !s.RefreshedAt.Equal(refreshedBefore) {
		return s, nil
	}

	tokens, err := refresh(ctx, s.RefreshToken)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			_ = m.Revoke(context.WithoutCancel(ctx), sessionID)
		}
		return nil, err
	}
	if err := m.apply(s, tokens); err != nil {
		return nil, err
	}
	s.RefreshedAt = m.now().UTC()
	if err := m.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *Manager) needsRefresh(s *Session) bool {
	return auth.Claims{ExpiresAt: s.ExpiresAt}.ExpiresWithin(m.now(), m.skew)
}

// apply stores a token pair on s, filling identity gaps from the access token.
func (m *Manager) apply(s *Session, tokens Tokens) error {
	claims, err := auth.DecodeClaims(tokens.AccessToken)
	if err != nil {
		return err
	}
	s.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.RefreshToken = tokens.RefreshToken
	}
	s.ExpiresAt = claims.ExpiresAt
	if s.ExpiresAt.IsZero() && !tokens.ExpiresAt.IsZero() {
		s.ExpiresAt = tokens.ExpiresAt.UTC()
	}
	if s.UserID == "" {
		s.UserID = claims.UserID
	}
	if s.Email == "" {
		s.Email = claims.Email
	}
	if s.Nickname == "" {
		s.Nickname = claims.Nickname
	}
	return nil
}
