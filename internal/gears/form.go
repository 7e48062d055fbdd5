package gears

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/gearmarket-web/internal/markup"
	"github.com/angelmondragon/gearmarket-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

const (
	MaxTitleRunes       = 100
	MinDescriptionRunes = 15
	MaxDescriptionRunes = 1000
)

var formValidate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ListingForm is the create/edit form as the browser submits it. Description is
// the rich-text editor's HTML. Enum fields accept keys or display labels.
type ListingForm struct {
	Title          string `json:"title" validate:"required,max=100"`
	Description    string `json:"description"`
	Price          string `json:"price"`
	Category       string `json:"category"`
	SubCategory    string `json:"subCategory"`
	DetailCategory string `json:"detailCategory"`
	Condition      string `json:"condition" validate:"required"`
	TradeMethod    string `json:"tradeMethod" validate:"required"`
	Region         string `json:"region" validate:"required"`
	Status         string `json:"status"`

	// ImageCount is filled in by the caller from the gallery, not decoded.
	ImageCount int `json:"-"`
}

// Listing is a validated form.
type Listing struct {
	Title           string
	DescriptionHTML string
	Price           int64
	Category        ResolvedCategory
	Condition       enums.GearCondition
	TradeMethod     enums.TradeMethod
	Region          enums.Region
	Status          enums.GearStatus
}

// CreateInput converts the listing into the upstream payload. description is the
// Markdown to store.
func (l Listing) CreateInput(description string, mainImageIndex int) CreateInput {
	return CreateInput{
		Title:          l.Title,
		Description:    description,
		Price:          l.Price,
		Category:       l.Category.Category,
		SubCategory:    l.Category.SubCategory,
		DetailCategory: l.Category.DetailCategory,
		Condition:      l.Condition,
		TradeMethod:    l.TradeMethod,
		Region:         l.Region,
		MainImageIndex: mainImageIndex,
	}
}

type fieldError struct {
	field   string
	message string
}

func (e *fieldError) Error() string { return e.field + ": " + e.message }

func invalid(field, message string) error {
	return &fieldError{field: field, message: message}
}

var requiredMessages = map[string]string{
	"title":       "제목을 입력해주세요.",
	"condition":   "상태를 선택해주세요.",
	"tradeMethod": "거래 방식을 선택해주세요.",
	"region":      "거래 지역을 선택해주세요.",
}

// Validate checks every field and reports all failures at once as a
// VALIDATION_ERROR whose details are keyed by field. edit requires a status.
func (f ListingForm) Validate(tax *Taxonomy, edit bool) (Listing, error) {
	if tax == nil {
		return Listing{}, pkgerrors.New(pkgerrors.CodeInternal, "taxonomy is required")
	}
	f.Title = strings.TrimSpace(f.Title)

	var errs error
	var out Listing

	if err := formValidate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Listing{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
		}
		for _, fe := range verrs {
			msg := requiredMessages[fe.Field()]
			if fe.Tag() == "max" {
				msg = "제목은 100자 이하여야 합니다."
			}
			errs = multierr.Append(errs, invalid(fe.Field(), msg))
		}
	}
	out.Title = f.Title

	out.DescriptionHTML = f.Description
	if n := utf8.RuneCountInString(strings.TrimSpace(markup.VisibleText(f.Description))); n < MinDescriptionRunes || n > MaxDescriptionRunes {
		errs = multierr.Append(errs, invalid("description", "설명은 15자 이상 1000자 이하여야 합니다."))
	}

	price, err := ParsePrice(f.Price)
	if err != nil {
		errs = multierr.Append(errs, invalid("price", "올바른 가격을 입력해주세요."))
	}
	out.Price = price

	cat, err := tax.Resolve(f.Category, f.SubCategory, f.DetailCategory)
	if err != nil {
		errs = multierr.Append(errs, detailsAsFieldErrors(err))
	}
	out.Category = cat

	if f.Condition != "" {
		if key, ok := ResolveEnumValue(f.Condition, enums.GearConditionOrder(), tax.conditionLabels); ok {
			out.Condition = enums.GearCondition(key)
		} else {
			errs = multierr.Append(errs, invalid("condition", requiredMessages["condition"]))
		}
	}
	if f.TradeMethod != "" {
		if key, ok := ResolveEnumValue(f.TradeMethod, enums.TradeMethodOrder(), tax.tradeLabels); ok {
			out.TradeMethod = enums.TradeMethod(key)
		} else {
			errs = multierr.Append(errs, invalid("tradeMethod", requiredMessages["tradeMethod"]))
		}
	}
	if f.Region != "" {
		if key, ok := ResolveEnumValue(f.Region, enums.RegionOrder(), tax.regionLabels); ok {
			out.Region = enums.Region(key)
		} else {
			errs = multierr.Append(errs, invalid("region", requiredMessages["region"]))
		}
	}

	switch {
	case f.Status != "":
		if key, ok := ResolveEnumValue(f.Status, enums.GearStatusOrder(), tax.statusLabels); ok {
			out.Status = enums.GearStatus(key)
		} else {
			errs = multierr.Append(errs, invalid("status", "판매 상태를 선택해주세요."))
		}
	case edit:
		errs = multierr.Append(errs, invalid("status", "판매 상태를 선택해주세요."))
	}

	if f.ImageCount < 1 {
		errs = multierr.Append(errs, invalid("images", "최소 1개 이상의 이미지를 업로드해주세요."))
	}

	if errs != nil {
		return Listing{}, validationError(errs)
	}
	return out, nil
}

// detailsAsFieldErrors unpacks a single-field validation error from the taxonomy.
func detailsAsFieldErrors(err error) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return invalid("category", err.Error())
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		return invalid("category", typed.Message())
	}
	var out error
	for field, msg := range details {
		out = multierr.Append(out, invalid(field, msg))
	}
	return out
}

func validationError(errs error) error {
	details := map[string]string{}
	for _, err := range multierr.Errors(errs) {
		var fe *fieldError
		if errors.As(err, &fe) {
			if _, seen := details[fe.field]; !seen {
				details[fe.field] = fe.message
			}
		}
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "입력값을 확인해주세요.").WithDetails(details)
}
