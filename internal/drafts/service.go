package drafts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/gearmarket-web/internal/gallery"
	"github.com/angelmondragon/gearmarket-web/internal/gears"
	"github.com/angelmondragon/gearmarket-web/internal/markup"
	"github.com/angelmondragon/gearmarket-web/internal/uploads"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/angelmondragon/gearmarket-web/pkg/metrics"
	"github.com/google/uuid"
)

// TokenSource hands out the upstream access token held by a browser session.
type TokenSource interface {
	AccessToken(ctx context.Context, sessionID string) (string, error)
}

// Limits is what the editor shows next to the upload button.
type Limits struct {
	MaxFiles     int   `json:"maxFiles"`
	MaxFileBytes int64 `json:"maxFileBytes"`
	Remaining    int   `json:"remaining"`
}

// View is a draft rendered for the editor.
type View struct {
	ID             string               `json:"id"`
	GearID         int64                `json:"gearId,omitempty"`
	Slots          []gallery.Slot       `json:"slots"`
	Representative *gallery.Ref         `json:"representative,omitempty"`
	Drag           *gallery.DragSession `json:"drag,omitempty"`
	Limits         Limits               `json:"limits"`
	ExpiresAt      time.Time            `json:"expiresAt"`
}

// AttachResult reports the items added by an upload and why any file was dropped.
type AttachResult struct {
	View     *View          `json:"draft"`
	Accepted []gallery.Item `json:"accepted"`
	Warnings []string       `json:"warnings"`
}

// Service runs the gallery editor on top of stored drafts. Every call is scoped to
// the browser session that opened the draft.
type Service interface {
	Open(ctx context.Context, sessionID string, gearID int64) (*View, error)
	View(ctx context.Context, sessionID, draftID string) (*View, error)
	Attach(ctx context.Context, sessionID, draftID string, files []uploads.File) (*AttachResult, error)
	Remove(ctx context.Context, sessionID, draftID, itemID string) (*View, error)
	SetRepresentative(ctx context.Context, sessionID, draftID, itemID string) (*View, error)
	Reorder(ctx context.Context, sessionID, draftID string, from, to int) (*View, error)
	PointerDown(ctx context.Context, sessionID, draftID string, index int, x, y float64, box gallery.Box) (*View, error)
	PointerMove(ctx context.Context, sessionID, draftID string, x, y float64, boxes []gallery.Box) (*View, error)
	PointerUp(ctx context.Context, sessionID, draftID string) (*View, error)
	Cancel(ctx context.Context, sessionID, draftID string) (*View, error)
	Preview(ctx context.Context, sessionID, draftID, itemID string) (FileMeta, []byte, error)
	Submit(ctx context.Context, sessionID, draftID string, form gears.ListingForm) (*gears.GearResponse, error)
	Discard(ctx context.Context, sessionID, draftID string) error
}

type ServiceParams struct {
	Store    *Store
	Gears    gears.API
	Taxonomy *gears.Taxonomy
	Images   gears.ImageResolver
	Tokens   TokenSource
	Limits   uploads.Limits
	Metrics  *metrics.GalleryMetrics
	Logger   *logger.Logger
	Now      func() time.Time
	// PreviewPath builds the URL a new upload is previewed from.
	PreviewPath func(draftID, itemID string) string
}

type service struct {
	store       *Store
	gears       gears.API
	tax         *gears.Taxonomy
	images      gears.ImageResolver
	tokens      TokenSource
	limits      uploads.Limits
	metrics     *metrics.GalleryMetrics
	logg        *logger.Logger
	now         func() time.Time
	previewPath func(draftID, itemID string) string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "draft store is required")
	}
	if params.Gears == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gears api is required")
	}
	if params.Taxonomy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "taxonomy is required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token source is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}

	limits := params.Limits
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = uploads.DefaultMaxFiles
	}
	if limits.MaxFileBytes <= 0 {
		limits.MaxFileBytes = uploads.DefaultMaxFileBytes
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	preview := params.PreviewPath
	if preview == nil {
		preview = DefaultPreviewPath
	}

	return &service{
		store:       params.Store,
		gears:       params.Gears,
		tax:         params.Taxonomy,
		images:      params.Images,
		tokens:      params.Tokens,
		limits:      limits,
		metrics:     params.Metrics,
		logg:        params.Logger,
		now:         now,
		previewPath: preview,
	}, nil
}

// DefaultPreviewPath points at the draft image preview route.
func DefaultPreviewPath(draftID, itemID string) string {
	return fmt.Sprintf("/api/v1/drafts/%s/images/%s/preview", draftID, itemID)
}

func (s *service) Open(ctx context.Context, sessionID string, gearID int64) (*View, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "로그인이 필요합니다.")
	}
	if gearID < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid gear id")
	}

	now := s.now().UTC()
	d := &Draft{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		GearID:     gearID,
		Collection: &gallery.Collection{},
		Files:      map[string]FileMeta{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if gearID > 0 {
		token, err := s.tokens.AccessToken(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		gear, err := s.gears.Get(ctx, gearID, token)
		if err != nil {
			return nil, gears.LocalizeError(err)
		}
		if !gear.Owned() {
			msg, _ := gears.UserMessage("FORBIDDEN")
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, msg)
		}
		var urls []string
		publicBase := ""
		if gear.Images != nil {
			urls = gear.Images.URLs
			publicBase = gear.Images.PublicBaseURL
		}
		d.Collection = gallery.FromListing(urls, gear.Images.ClampedMainIndex(), func(raw string) string {
			return s.images.Resolve(raw, publicBase)
		})
	}

	if err := s.store.Save(ctx, d); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(s.logg.WithDraftID(ctx, d.ID), map[string]any{
		"gear_id":     gearID,
		"image_count": d.Collection.Len(),
	}), "draft.opened")
	return s.view(d), nil
}

func (s *service) View(ctx context.Context, sessionID, draftID string) (*View, error) {
	d, err := s.load(ctx, sessionID, draftID)
	if err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *service) Attach(ctx context.Context, sessionID, draftID string, files []uploads.File) (*AttachResult, error) {
	result := &AttachResult{Accepted: []gallery.Item{}, Warnings: []string{}}
	view, err := s.mutate(ctx, sessionID, draftID, func(d *Draft) error {
		checked := uploads.Validate(files, d.Collection.Len(), s.limits)
		result.Warnings = checked.Warnings

		items := make([]gallery.Item, 0, len(checked.Accepted))
		for _, f := range checked.Accepted {
			id := uuid.NewString()
			if err := s.store.PutFile(ctx, d.ID, id, f.Data); err != nil {
				return fmt.Errorf("store upload: %w", err)
			}
			d.Files[id] = FileMeta{Name: f.Name, MIME: f.MIME, Size: int64(len(f.Data))}
			items = append(items, gallery.Item{Kind: gallery.KindNew, ID: id, Preview: s.previewPath(d.ID, id)})
		}
		if err := d.Collection.Append(items...); err != nil {
			return err
		}
		result.Accepted = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.View = view
	return result, nil
}

func (s *service) Remove(ctx context.Context, sessionID, draftID, itemID string) (*View, error) {
	return s.mutate(ctx, sessionID, draftID, func(d *Draft) error {
		item, err := d.Collection.Remove(itemID)
		if err != nil {
			return err
		}
		if item.Kind == gallery.KindNew {
			if err := s.store.DeleteFiles(ctx, d.ID, item.ID); err != nil {
				return fmt.Errorf("delete upload: %w", err)
			}
			delete(d.Files, item.ID)
		}
		return nil
	})
}

func (s *service) SetRepresentative(ctx context.Context, sessionID, draftID, itemID string) (*View, error) {
	return s.mutate(ctx, sessionID, draftID, func(d *Draft) error {
		return d.Collection.SetRepresentative(itemID)
	})
}

func (s *service) Reorder(ctx context.Context, sessionID, draftID string, from, to int) (*View, error) {
	return s.mutate(ctx, sessionID, draftID, func(d *Draft) error {
		if d.Collection.Reorder(from, to) {
			s.metrics.IncCommit(metrics.ReorderSourceProgrammatic)
		}
		return nil
	})
}

func (s *service) PointerDown(ctx context.Context, sessionID, draftID string, index int, x, y float64, box gallery.Box) (*View, error) {
	return s.mutate(ctx, sessionID, draftID, func(d *Draft) error {
		_, err := d.Collection.PointerDown(index, x, y, box)
		return err
	})
}

func (s *service) PointerMove(ctx context.Context, sessionID, draftID string, x, y float64, boxes []gallery.Box) (*View, error) {
	return s.mutate(ctx, sessionID, draftID, func(d *Draft) error {
		d.Collection.PointerMove(x, y, boxes)
		return nil
	})
}

// PointerUp and Cancel wait for the lock, since a move may still be in flight when
// the pointer is released.
func (s *service) PointerUp(ctx context.Context, sessionID, draftID string) (*View, error) {
	return s.mutateWith(ctx, s.store.LockWait, sessionID, draftID, func(d *Draft) error {
		if d.Collection.PointerUp() {
			s.metrics.IncCommit(metrics.ReorderSourcePointer)
		}
		return nil
	})
}

func (s *service) Cancel(ctx context.Context, sessionID, draftID string) (*View, error) {
	return s.mutateWith(ctx, s.store.LockWait, sessionID, draftID, func(d *Draft) error {
		if d.Collection.Cancel() {
			s.metrics.IncCancelled()
		}
		return nil
	})
}

func (s *service) Preview(ctx context.Context, sessionID, draftID, itemID string) (FileMeta, []byte, error) {
	d, err := s.load(ctx, sessionID, draftID)
	if err != nil {
		return FileMeta{}, nil, err
	}
	meta, ok := d.Files[itemID]
	if !ok {
		return FileMeta{}, nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	data, err := s.store.GetFile(ctx, d.ID, itemID)
	if err != nil {
		return FileMeta{}, nil, err
	}
	return meta, data, nil
}

// Submit validates the form against the draft's gallery, uploads the listing and
// drops the draft once the upstream accepts it.
func (s *service) Submit(ctx context.Context, sessionID, draftID string, form gears.ListingForm) (*gears.GearResponse, error) {
	unlock, err := s.store.Lock(ctx, draftID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.load(ctx, sessionID, draftID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithDraftID(ctx, d.ID)

	form.ImageCount = d.Collection.Len()
	listing, err := form.Validate(s.tax, d.GearID > 0)
	if err != nil {
		return nil, err
	}

	description := markup.HTMLToMarkdown(listing.DescriptionHTML)
	s.metrics.IncConversion(metrics.DirectionHTMLToMarkdown)

	plan := d.Collection.Plan()
	files := make([]uploads.File, 0, len(plan.NewIDs))
	for _, id := range plan.NewIDs {
		meta := d.Files[id]
		data, err := s.store.GetFile(ctx, d.ID, id)
		if err != nil {
			return nil, err
		}
		files = append(files, uploads.File{Name: meta.Name, MIME: meta.MIME, Size: meta.Size, Data: data})
	}

	token, err := s.tokens.AccessToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	in := listing.CreateInput(description, plan.MainIndex)
	var gear *gears.GearResponse
	if d.GearID > 0 {
		gear, err = s.gears.Update(ctx, token, d.GearID, gears.UpdateInput{
			CreateInput:   in,
			Status:        listing.Status,
			KeepImageURLs: plan.KeepURLs,
		}, files)
	} else {
		gear, err = s.gears.Create(ctx, token, in, files)
	}
	if err != nil {
		return nil, gears.LocalizeError(err)
	}

	if err := s.store.Delete(ctx, d); err != nil {
		s.logg.Error(ctx, "draft.cleanup_failed", err)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"gear_id":    gear.ID,
		"kept":       len(plan.KeepURLs),
		"uploaded":   len(plan.NewIDs),
		"main_index": plan.MainIndex,
	}), "draft.commit")
	return gear, nil
}

func (s *service) Discard(ctx context.Context, sessionID, draftID string) error {
	unlock, err := s.store.Lock(ctx, draftID)
	if err != nil {
		return err
	}
	defer unlock()

	d, err := s.load(ctx, sessionID, draftID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, d)
}

// load returns the draft only to the session that opened it.
func (s *service) load(ctx context.Context, sessionID, draftID string) (*Draft, error) {
	d, err := s.store.Load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if sessionID == "" || d.SessionID != sessionID {
		return nil, draftNotFound()
	}
	return d, nil
}

func (s *service) mutate(ctx context.Context, sessionID, draftID string, fn func(*Draft) error) (*View, error) {
	return s.mutateWith(ctx, s.store.Lock, sessionID, draftID, fn)
}

func (s *service) mutateWith(ctx context.Context, lock func(context.Context, string) (func(), error), sessionID, draftID string, fn func(*Draft) error) (*View, error) {
	unlock, err := lock(ctx, draftID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	d, err := s.load(ctx, sessionID, draftID)
	if err != nil {
		return nil, err
	}
	if err := fn(d); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, d); err != nil {
		return nil, err
	}
	return s.view(d), nil
}

func (s *service) view(d *Draft) *View {
	v := &View{
		ID:     d.ID,
		GearID: d.GearID,
		Slots:  d.Collection.Display(),
		Limits: Limits{
			MaxFiles:     s.limits.MaxFiles,
			MaxFileBytes: s.limits.MaxFileBytes,
			Remaining:    max(s.limits.MaxFiles-d.Collection.Len(), 0),
		},
		ExpiresAt: d.UpdatedAt.Add(s.store.TTL()),
	}
	if rep, ok := d.Collection.Representative(); ok {
		ref := rep.Ref()
		v.Representative = &ref
	}
	if drag, ok := d.Collection.Dragging(); ok {
		v.Drag = &drag
	}
	return v
}
