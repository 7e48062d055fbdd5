package gears

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/angelmondragon/gearmarket-web/internal/uploads"
	"github.com/angelmondragon/gearmarket-web/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	list   func(ctx context.Context, q ListQuery) (*GearListResponse, error)
	get    func(ctx context.Context, id int64, token string) (*GearResponse, error)
	create func(ctx context.Context, token string, in CreateInput, files []uploads.File) (*GearResponse, error)
	update func(ctx context.Context, token string, id int64, in UpdateInput, files []uploads.File) (*GearResponse, error)
	delete func(ctx context.Context, token string, id int64) error
}

func (f *fakeAPI) List(ctx context.Context, q ListQuery) (*GearListResponse, error) {
	return f.list(ctx, q)
}

func (f *fakeAPI) Get(ctx context.Context, id int64, token string) (*GearResponse, error) {
	return f.get(ctx, id, token)
}

func (f *fakeAPI) Create(ctx context.Context, token string, in CreateInput, files []uploads.File) (*GearResponse, error) {
	return f.create(ctx, token, in, files)
}

func (f *fakeAPI) Update(ctx context.Context, token string, id int64, in UpdateInput, files []uploads.File) (*GearResponse, error) {
	return f.update(ctx, token, id, in, files)
}

func (f *fakeAPI) Delete(ctx context.Context, token string, id int64) error {
	return f.delete(ctx, token, id)
}

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, api API) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		API:      api,
		Taxonomy: mustTaxonomy(t),
		Images:   ImageResolver{BaseURL: "https://cdn.example.com", AssetVersion: "5"},
		Logger:   logger.New(logger.Options{Output: io.Discard}),
		Now:      func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestServiceListDecoratesItems(t *testing.T) {
	main := 1
	api := &fakeAPI{list: func(ctx context.Context, q ListQuery) (*GearListResponse, error) {
		return &GearListResponse{
			Gears: []GearResponse{{
				ID:          4,
				Title:       "Strat",
				Price:       1250000,
				Category:    "instrument",
				SubCategory: "guitar",
				Status:      "Selling",
				Region:      "Seoul",
				Images:      &ImageData{URLs: []string{"a.jpg", "b.jpg"}, MainIndex: &main},
				CreatedAt:   fixedNow.Add(-3 * time.Hour),
			}},
			TotalCount: 1,
			Page:       1,
			PageSize:   20,
			TotalPages: 1,
		}, nil
	}}

	view, err := newTestService(t, api).List(context.Background(), ListQuery{})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	item := view.Items[0]
	assert.Equal(t, "https://cdn.example.com/b.jpg?v=5", item.CoverURL)
	assert.Equal(t, "1,250,000원", item.PriceText)
	assert.Equal(t, "악기", item.CategoryLabel)
	assert.Equal(t, "판매중", item.StatusLabel)
	assert.Equal(t, "서울", item.RegionLabel)
	assert.Equal(t, "3시간 전", item.CreatedAgo)
	assert.Equal(t, 2, item.ImageCount)
}

func TestServiceDetailRendersDescription(t *testing.T) {
	yes := true
	api := &fakeAPI{get: func(ctx context.Context, id int64, token string) (*GearResponse, error) {
		assert.Equal(t, "tok", token)
		return &GearResponse{
			ID:          id,
			Description: "## Title\n\nHello **world**",
			TradeMethod: "Delivery",
			Images:      &ImageData{URLs: []string{"https://elsewhere.example.com/x.jpg"}},
			IsAuthor:    &yes,
		}, nil
	}}

	view, err := newTestService(t, api).Detail(context.Background(), 8, "tok")
	require.NoError(t, err)
	assert.Equal(t, "<h2>Title</h2><br /><p>Hello <strong>world</strong></p>", view.DescriptionHTML)
	assert.Equal(t, []string{"https://elsewhere.example.com/x.jpg"}, view.ImageURLs)
	assert.Equal(t, "택배", view.TradeMethodLabel)
	assert.True(t, view.IsAuthor)
	assert.False(t, view.IsLiked)
}

func TestServiceLocalizesUpstreamErrors(t *testing.T) {
	upstream := pkgerrors.Wrap(pkgerrors.CodeNotFound, &apiclient.UpstreamError{
		Operation: "gears.get",
		Status:    http.StatusNotFound,
		Code:      "NOT_FOUND",
		Message:   "Gear not found",
	}, "Gear not found")
	api := &fakeAPI{get: func(ctx context.Context, id int64, token string) (*GearResponse, error) {
		return nil, upstream
	}}

	_, err := newTestService(t, api).Detail(context.Background(), 8, "")
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Equal(t, "게시글이 존재하지 않거나 삭제되었습니다.", typed.Message())
	assert.True(t, errors.Is(err, upstream))
}

func TestServiceRejectsInvalidIDs(t *testing.T) {
	svc := newTestService(t, &fakeAPI{})
	_, err := svc.Detail(context.Background(), 0, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.True(t, pkgerrors.IsCode(svc.Delete(context.Background(), "tok", -1), pkgerrors.CodeValidation))
}
