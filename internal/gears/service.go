package gears

import (
	"context"
	"time"

	"github.com/angelmondragon/gearmarket-web/internal/markup"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
	"github.com/angelmondragon/gearmarket-web/pkg/metrics"
	"github.com/angelmondragon/gearmarket-web/pkg/pagination"
)

// Service exposes listings shaped for display.
type Service interface {
	List(ctx context.Context, q ListQuery) (*ListView, error)
	Detail(ctx context.Context, id int64, token string) (*DetailView, error)
	Delete(ctx context.Context, token string, id int64) error
	Taxonomy() *Taxonomy
	Images() ImageResolver
}

type ServiceParams struct {
	API      API
	Taxonomy *Taxonomy
	Images   ImageResolver
	Metrics  *metrics.GalleryMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	api     API
	tax     *Taxonomy
	images  ImageResolver
	metrics *metrics.GalleryMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gears api is required")
	}
	if params.Taxonomy == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "taxonomy is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		api:     params.API,
		tax:     params.Taxonomy,
		images:  params.Images,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     now,
	}, nil
}

func (s *service) Taxonomy() *Taxonomy   { return s.tax }
func (s *service) Images() ImageResolver { return s.images }

func (s *service) List(ctx context.Context, q ListQuery) (*ListView, error) {
	resp, err := s.api.List(ctx, q)
	if err != nil {
		return nil, LocalizeError(err)
	}
	now := s.now()
	view := &ListView{
		Items:      make([]ListItemView, 0, len(resp.Gears)),
		TotalCount: resp.TotalCount,
		Page:       resp.Page,
		PageSize:   resp.PageSize,
		TotalPages: resp.TotalPages,
	}
	if view.TotalPages == 0 {
		view.TotalPages = pagination.TotalPages(resp.TotalCount, resp.PageSize)
	}
	for _, g := range resp.Gears {
		view.Items = append(view.Items, s.listItem(g, now))
	}
	return view, nil
}

func (s *service) Detail(ctx context.Context, id int64, token string) (*DetailView, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid gear id")
	}
	g, err := s.api.Get(ctx, id, token)
	if err != nil {
		return nil, LocalizeError(err)
	}

	html := markup.MarkdownToHTML(g.Description)
	s.metrics.IncConversion(metrics.DirectionMarkdownToHTML)

	view := &DetailView{
		ListItemView:        s.listItem(*g, s.now()),
		Description:         g.Description,
		DescriptionHTML:     html,
		DetailCategory:      g.DetailCategory.String(),
		DetailCategoryLabel: s.tax.DetailLabel(g.DetailCategory.String()),
		Condition:           g.Condition.String(),
		ConditionLabel:      s.tax.ConditionLabel(g.Condition.String()),
		TradeMethod:         g.TradeMethod.String(),
		TradeMethodLabel:    s.tax.TradeMethodLabel(g.TradeMethod.String()),
		ImageURLs:           s.images.All(g.Images),
		MainImageIndex:      g.Images.ClampedMainIndex(),
		AuthorID:            g.AuthorID,
		AuthorNickname:      g.AuthorNickname,
		AuthorRating:        g.AuthorRating,
		IsAuthor:            g.Owned(),
		IsLiked:             g.IsLiked != nil && *g.IsLiked,
	}
	return view, nil
}

func (s *service) Delete(ctx context.Context, token string, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid gear id")
	}
	if err := s.api.Delete(ctx, token, id); err != nil {
		return LocalizeError(err)
	}
	s.logg.Info(s.logg.WithField(ctx, "gear_id", id), "gear.deleted")
	return nil
}

func (s *service) listItem(g GearResponse, now time.Time) ListItemView {
	imageCount := 0
	if g.Images != nil {
		imageCount = len(g.Images.URLs)
	}
	return ListItemView{
		ID:               g.ID,
		Title:            g.Title,
		Price:            g.Price,
		PriceText:        FormatPrice(g.Price),
		Category:         g.Category.String(),
		CategoryLabel:    s.tax.CategoryLabel(g.Category.String()),
		SubCategory:      g.SubCategory.String(),
		SubCategoryLabel: s.tax.SubCategoryLabel(g.SubCategory.String()),
		Status:           g.Status.String(),
		StatusLabel:      s.tax.StatusLabel(g.Status.String()),
		Region:           g.Region.String(),
		RegionLabel:      s.tax.RegionLabel(g.Region.String()),
		CoverURL:         s.images.Cover(g.Images),
		ImageCount:       imageCount,
		ViewCount:        g.ViewCount,
		LikeCount:        g.LikeCount,
		ChatCount:        g.ChatCount,
		CreatedAt:        g.CreatedAt,
		CreatedAgo:       RelativeTime(now, g.CreatedAt),
	}
}
