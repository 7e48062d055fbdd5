package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/gearmarket-web/internal/gallery"
	"github.com/angelmondragon/gearmarket-web/pkg/config"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	redisclient "github.com/angelmondragon/gearmarket-web/pkg/redis"
	"github.com/google/uuid"
)

// FileMeta describes an attached upload whose bytes live under their own key.
type FileMeta struct {
	Name string `json:"name"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
}

// Draft is the server-held gallery of one create or edit form. GearID is 0 for a
// new listing.
type Draft struct {
	ID         string              `json:"id"`
	SessionID  string              `json:"sessionId"`
	GearID     int64               `json:"gearId"`
	Collection *gallery.Collection `json:"collection"`
	Files      map[string]FileMeta `json:"files"`
	CreatedAt  time.Time           `json:"createdAt"`
	UpdatedAt  time.Time           `json:"updatedAt"`
}

const lockRetryInterval = 20 * time.Millisecond

type draftStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Expire(ctx context.Context, ttl time.Duration, keys ...string) error
	Del(ctx context.Context, keys ...string) error
	AcquireLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

type draftKeyer interface {
	DraftKey(draftID string) string
	DraftFileKey(draftID, itemID string) string
	DraftLockKey(draftID string) string
}

// Store persists drafts and their file bytes in redis. Every key carries the draft TTL,
// refreshed on each save.
type Store struct {
	store   draftStore
	keys    draftKeyer
	ttl     time.Duration
	lockTTL time.Duration
}

func NewStore(client *redisclient.Client, cfg config.DraftsConfig) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("draft ttl must be positive")
	}
	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 5 * time.Second
	}
	return &Store{store: client, keys: client, ttl: cfg.TTL, lockTTL: lockTTL}, nil
}

// TTL is how long an untouched draft survives.
func (s *Store) TTL() time.Duration { return s.ttl }

func (s *Store) Save(ctx context.Context, d *Draft) error {
	if d == nil || strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("draft id is required")
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.store.Set(ctx, s.keys.DraftKey(d.ID), payload, s.ttl); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	if keys := s.fileKeys(d.ID, d.Files); len(keys) > 0 {
		if err := s.store.Expire(ctx, s.ttl, keys...); err != nil {
			return fmt.Errorf("refresh draft files: %w", err)
		}
	}
	return nil
}

// Load returns the stored draft or NOT_FOUND.
func (s *Store) Load(ctx context.Context, id string) (*Draft, error) {
	if strings.TrimSpace(id) == "" {
		return nil, draftNotFound()
	}
	payload, err := s.store.GetBytes(ctx, s.keys.DraftKey(id))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return nil, draftNotFound()
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if d.Collection == nil {
		d.Collection = &gallery.Collection{}
	}
	if d.Files == nil {
		d.Files = map[string]FileMeta{}
	}
	return &d, nil
}

// Delete removes the draft document and every attached file.
func (s *Store) Delete(ctx context.Context, d *Draft) error {
	if d == nil {
		return nil
	}
	keys := append([]string{s.keys.DraftKey(d.ID)}, s.fileKeys(d.ID, d.Files)...)
	return s.store.Del(ctx, keys...)
}

func (s *Store) PutFile(ctx context.Context, draftID, itemID string, data []byte) error {
	return s.store.Set(ctx, s.keys.DraftFileKey(draftID, itemID), data, s.ttl)
}

func (s *Store) GetFile(ctx context.Context, draftID, itemID string) ([]byte, error) {
	data, err := s.store.GetBytes(ctx, s.keys.DraftFileKey(draftID, itemID))
	if err != nil {
		if errors.Is(err, redisclient.ErrNil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
		}
		return nil, fmt.Errorf("load draft file: %w", err)
	}
	return data, nil
}

func (s *Store) DeleteFiles(ctx context.Context, draftID string, itemIDs ...string) error {
	keys := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		keys = append(keys, s.keys.DraftFileKey(draftID, id))
	}
	return s.store.Del(ctx, keys...)
}

// Lock takes the draft's mutation lock. A lock held elsewhere is a CONFLICT.
// The returned func releases it.
func (s *Store) Lock(ctx context.Context, draftID string) (func(), error) {
	key := s.keys.DraftLockKey(draftID)
	token := uuid.NewString()
	ok, err := s.store.AcquireLock(ctx, key, token, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("lock draft: %w", err)
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "draft is being updated, try again")
	}
	return func() {
		_ = s.store.ReleaseLock(context.WithoutCancel(ctx), key, token)
	}, nil
}

// LockWait is Lock for requests that end a drag. A held lock is retried until it
// frees up or lockTTL passes, at which point the holder's lock has expired anyway.
func (s *Store) LockWait(ctx context.Context, draftID string) (func(), error) {
	deadline := time.NewTimer(s.lockTTL)
	defer deadline.Stop()
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		release, err := s.Lock(ctx, draftID)
		if err == nil || !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return release, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, err
		case <-ticker.C:
		}
	}
}

func (s *Store) fileKeys(draftID string, files map[string]FileMeta) []string {
	keys := make([]string, 0, len(files))
	for itemID := range files {
		keys = append(keys, s.keys.DraftFileKey(draftID, itemID))
	}
	return keys
}

func draftNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "draft not found")
}
