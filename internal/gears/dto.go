package gears

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/gearmarket-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/pagination"
)

// ImageData is the upstream's image block for a listing.
type ImageData struct {
	Count         int      `json:"count"`
	URLs          []string `json:"urls"`
	PublicBaseURL string   `json:"public_base_url,omitempty"`
	MainIndex     *int     `json:"mainIndex,omitempty"`
}

// ClampedMainIndex returns the representative index forced into range. It is 0
// when the listing has no images.
func (d *ImageData) ClampedMainIndex() int {
	if d == nil || len(d.URLs) == 0 || d.MainIndex == nil {
		return 0
	}
	return max(0, min(*d.MainIndex, len(d.URLs)-1))
}

// GearResponse mirrors one upstream listing.
type GearResponse struct {
	ID             int64                    `json:"id"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Price          int64                    `json:"price"`
	Category       enums.GearCategory       `json:"category"`
	SubCategory    enums.GearSubCategory    `json:"subCategory"`
	DetailCategory enums.GearDetailCategory `json:"detailCategory,omitempty"`
	Condition      enums.GearCondition      `json:"condition,omitempty"`
	TradeMethod    enums.TradeMethod        `json:"tradeMethod"`
	Region         enums.Region             `json:"region"`
	Status         enums.GearStatus         `json:"status"`
	Images         *ImageData               `json:"images,omitempty"`
	ViewCount      int                      `json:"viewCount"`
	LikeCount      int                      `json:"likeCount"`
	ChatCount      int                      `json:"chatCount"`
	AuthorID       string                   `json:"authorId"`
	AuthorNickname string                   `json:"authorNickname"`
	AuthorRating   float64                  `json:"authorRating"`
	IsLiked        *bool                    `json:"isLiked,omitempty"`
	IsAuthor       *bool                    `json:"isAuthor,omitempty"`
	CreatedAt      time.Time                `json:"createdAt"`
	UpdatedAt      time.Time                `json:"updatedAt"`
}

// Owned reports whether the upstream flagged the caller as the listing's author.
func (g GearResponse) Owned() bool {
	return g.IsAuthor != nil && *g.IsAuthor
}

type GearListResponse struct {
	Gears      []GearResponse `json:"gears"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// ListQuery holds the listing filters. Zero values are omitted from the upstream query.
type ListQuery struct {
	Page           int
	PageSize       int
	Category       enums.GearCategory
	SubCategory    enums.GearSubCategory
	DetailCategory enums.GearDetailCategory
	Status         enums.GearStatus
	Condition      enums.GearCondition
	TradeMethod    enums.TradeMethod
	Region         enums.Region
	MinPrice       *int64
	MaxPrice       *int64
	SearchKeyword  string
	SearchScope    string
	SortBy         enums.GearSortBy
	SortOrder      enums.SortOrder
}

// Values encodes the query the way the upstream expects it.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	p := pagination.Params{Page: q.Page, PageSize: q.PageSize}.Normalize()
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("pageSize", strconv.Itoa(p.PageSize))

	setIf := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	setIf("category", q.Category.String())
	setIf("subCategory", q.SubCategory.String())
	setIf("detailCategory", q.DetailCategory.String())
	setIf("status", q.Status.String())
	setIf("condition", q.Condition.String())
	setIf("tradeMethod", q.TradeMethod.String())
	setIf("region", q.Region.String())
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatInt(*q.MinPrice, 10))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatInt(*q.MaxPrice, 10))
	}
	setIf("searchKeyword", strings.TrimSpace(q.SearchKeyword))
	setIf("searchScope", strings.TrimSpace(q.SearchScope))
	setIf("sortBy", q.SortBy.String())
	setIf("sortOrder", q.SortOrder.String())
	return v
}

// ParseListQuery reads and validates listing filters from a request query string.
func ParseListQuery(values url.Values) (ListQuery, error) {
	p, err := pagination.Parse(values.Get("page"), values.Get("pageSize"))
	if err != nil {
		return ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pagination")
	}
	q := ListQuery{
		Page:          p.Page,
		PageSize:      p.PageSize,
		SearchKeyword: values.Get("searchKeyword"),
		SearchScope:   values.Get("searchScope"),
	}

	invalid := map[string]string{}
	parse := func(key string, fn func(string) error) {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			return
		}
		if err := fn(raw); err != nil {
			invalid[key] = err.Error()
		}
	}
	parse("category", func(s string) (err error) { q.Category, err = enums.ParseGearCategory(s); return })
	parse("subCategory", func(s string) (err error) { q.SubCategory, err = enums.ParseGearSubCategory(s); return })
	parse("detailCategory", func(s string) (err error) { q.DetailCategory, err = enums.ParseGearDetailCategory(s); return })
	parse("status", func(s string) (err error) { q.Status, err = enums.ParseGearStatus(s); return })
	parse("condition", func(s string) (err error) { q.Condition, err = enums.ParseGearCondition(s); return })
	parse("tradeMethod", func(s string) (err error) { q.TradeMethod, err = enums.ParseTradeMethod(s); return })
	parse("region", func(s string) (err error) { q.Region, err = enums.ParseRegion(s); return })
	parse("sortBy", func(s string) (err error) { q.SortBy, err = enums.ParseGearSortBy(s); return })
	parse("sortOrder", func(s string) (err error) { q.SortOrder, err = enums.ParseSortOrder(s); return })
	parse("minPrice", func(s string) error {
		n, err := ParsePrice(s)
		q.MinPrice = &n
		return err
	})
	parse("maxPrice", func(s string) error {
		n, err := ParsePrice(s)
		q.MaxPrice = &n
		return err
	})

	if len(invalid) > 0 {
		return ListQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid listing filters").WithDetails(invalid)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return ListQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "minPrice must not exceed maxPrice")
	}
	return q, nil
}

// CreateInput is the listing payload sent on create. Images travel separately.
type CreateInput struct {
	Title          string
	Description    string
	Price          int64
	Category       enums.GearCategory
	SubCategory    enums.GearSubCategory
	DetailCategory enums.GearDetailCategory
	Condition      enums.GearCondition
	TradeMethod    enums.TradeMethod
	Region         enums.Region
	// MainImageIndex is omitted when negative.
	MainImageIndex int
}

func (in CreateInput) formValues() url.Values {
	v := url.Values{}
	v.Set("title", in.Title)
	v.Set("description", in.Description)
	v.Set("price", strconv.FormatInt(in.Price, 10))
	v.Set("category", in.Category.String())
	v.Set("subCategory", in.SubCategory.String())
	if in.DetailCategory != "" {
		v.Set("detailCategory", in.DetailCategory.String())
	}
	if in.Condition != "" {
		v.Set("condition", in.Condition.String())
	}
	v.Set("tradeMethod", in.TradeMethod.String())
	v.Set("region", in.Region.String())
	if in.MainImageIndex >= 0 {
		v.Set("mainImageIndex", strconv.Itoa(in.MainImageIndex))
	}
	return v
}

// UpdateInput adds the status and the kept image URLs to a create payload.
type UpdateInput struct {
	CreateInput
	Status        enums.GearStatus
	KeepImageURLs []string
}

func (in UpdateInput) formValues() url.Values {
	v := in.CreateInput.formValues()
	if in.Status != "" {
		v.Set("status", in.Status.String())
	}
	for _, u := range in.KeepImageURLs {
		v.Add("keepImageUrls", u)
	}
	return v
}

// ListItemView is one card in the listing grid.
type ListItemView struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Price            int64     `json:"price"`
	PriceText        string    `json:"priceText"`
	Category         string    `json:"category"`
	CategoryLabel    string    `json:"categoryLabel"`
	SubCategory      string    `json:"subCategory"`
	SubCategoryLabel string    `json:"subCategoryLabel"`
	Status           string    `json:"status"`
	StatusLabel      string    `json:"statusLabel"`
	Region           string    `json:"region"`
	RegionLabel      string    `json:"regionLabel"`
	CoverURL         string    `json:"coverUrl,omitempty"`
	ImageCount       int       `json:"imageCount"`
	ViewCount        int       `json:"viewCount"`
	LikeCount        int       `json:"likeCount"`
	ChatCount        int       `json:"chatCount"`
	CreatedAt        time.Time `json:"createdAt"`
	CreatedAgo       string    `json:"createdAgo"`
}

type ListView struct {
	Items      []ListItemView `json:"items"`
	TotalCount int            `json:"totalCount"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// DetailView is a single listing ready for display.
type DetailView struct {
	ListItemView
	Description         string   `json:"description"`
	DescriptionHTML     string   `json:"descriptionHtml"`
	DetailCategory      string   `json:"detailCategory,omitempty"`
	DetailCategoryLabel string   `json:"detailCategoryLabel,omitempty"`
	Condition           string   `json:"condition,omitempty"`
	ConditionLabel      string   `json:"conditionLabel,omitempty"`
	TradeMethod         string   `json:"tradeMethod"`
	TradeMethodLabel    string   `json:"tradeMethodLabel"`
	ImageURLs           []string `json:"imageUrls"`
	MainImageIndex      int      `json:"mainImageIndex"`
	AuthorID            string   `json:"authorId"`
	AuthorNickname      string   `json:"authorNickname"`
	AuthorRating        float64  `json:"authorRating"`
	IsAuthor            bool     `json:"isAuthor"`
	IsLiked             bool     `json:"isLiked"`
}
