package gears

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/angelmondragon/gearmarket-web/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// Option is one selectable value with its display label.
type Option struct {
	Key   string `yaml:"key" json:"key"`
	Label string `yaml:"label" json:"label"`
}

type SubCategory struct {
	Key     string   `yaml:"key" json:"key"`
	Label   string   `yaml:"label" json:"label"`
	Details []Option `yaml:"details" json:"details"`
}

type Category struct {
	Key           string        `yaml:"key" json:"key"`
	Label         string        `yaml:"label" json:"label"`
	Icon          string        `yaml:"icon" json:"icon"`
	SubCategories []SubCategory `yaml:"subCategories" json:"subCategories"`
}

// Taxonomy is the category tree plus the label tables for the other listing enums.
type Taxonomy struct {
	Categories   []Category `yaml:"categories" json:"categories"`
	Conditions   []Option   `yaml:"conditions" json:"conditions"`
	Statuses     []Option   `yaml:"statuses" json:"statuses"`
	TradeMethods []Option   `yaml:"tradeMethods" json:"tradeMethods"`
	Regions      []Option   `yaml:"regions" json:"regions"`

	categoryLabels  map[string]string
	subLabels       map[string]string
	detailLabels    map[string]string
	subsByCategory  map[string][]string
	detailsBySub    map[string][]string
	conditionLabels map[string]string
	statusLabels    map[string]string
	tradeLabels     map[string]string
	regionLabels    map[string]string
}

// LoadTaxonomy parses the embedded taxonomy.
func LoadTaxonomy() (*Taxonomy, error) {
	return ParseTaxonomy(taxonomyYAML)
}

// ParseTaxonomy decodes a taxonomy document and checks every key against the enums.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Taxonomy) index() error {
	t.categoryLabels = map[string]string{}
	t.subLabels = map[string]string{}
	t.detailLabels = map[string]string{}
	t.subsByCategory = map[string][]string{}
	t.detailsBySub = map[string][]string{}

	for _, cat := range t.Categories {
		if !enums.GearCategory(cat.Key).IsValid() {
			return fmt.Errorf("taxonomy: unknown category %q", cat.Key)
		}
		t.categoryLabels[cat.Key] = cat.Label
		for _, sub := range cat.SubCategories {
			if !enums.GearSubCategory(sub.Key).IsValid() {
				return fmt.Errorf("taxonomy: unknown sub category %q", sub.Key)
			}
			t.subLabels[sub.Key] = sub.Label
			t.subsByCategory[cat.Key] = append(t.subsByCategory[cat.Key], sub.Key)
			for _, detail := range sub.Details {
				if !enums.GearDetailCategory(detail.Key).IsValid() {
					return fmt.Errorf("taxonomy: unknown detail category %q", detail.Key)
				}
				t.detailLabels[detail.Key] = detail.Label
				t.detailsBySub[sub.Key] = append(t.detailsBySub[sub.Key], detail.Key)
			}
		}
	}

	var err error
	if t.conditionLabels, err = labelTable("condition", t.Conditions, func(k string) bool { return enums.GearCondition(k).IsValid() }); err != nil {
		return err
	}
	if t.statusLabels, err = labelTable("status", t.Statuses, func(k string) bool { return enums.GearStatus(k).IsValid() }); err != nil {
		return err
	}
	if t.tradeLabels, err = labelTable("trade method", t.TradeMethods, func(k string) bool { return enums.TradeMethod(k).IsValid() }); err != nil {
		return err
	}
	if t.regionLabels, err = labelTable("region", t.Regions, func(k string) bool { return enums.Region(k).IsValid() }); err != nil {
		return err
	}
	return nil
}

func labelTable(kind string, options []Option, valid func(string) bool) (map[string]string, error) {
	out := make(map[string]string, len(options))
	for _, opt := range options {
		if !valid(opt.Key) {
			return nil, fmt.Errorf("taxonomy: unknown %s %q", kind, opt.Key)
		}
		out[opt.Key] = opt.Label
	}
	return out, nil
}

// ResolvedCategory is a validated category triple.
type ResolvedCategory struct {
	Category       enums.GearCategory       `json:"category"`
	SubCategory    enums.GearSubCategory    `json:"subCategory"`
	DetailCategory enums.GearDetailCategory `json:"detailCategory"`
}

// Resolve validates a category selection. The etc branch always resolves to
// (etc, other, other) and an "other" sub category needs no detail.
func (t *Taxonomy) Resolve(top, mid, detail string) (ResolvedCategory, error) {
	top, mid, detail = strings.TrimSpace(top), strings.TrimSpace(mid), strings.TrimSpace(detail)

	if top == "" {
		return ResolvedCategory{}, categoryError("category", "대분류를 선택해주세요.")
	}
	if _, ok := t.categoryLabels[top]; !ok {
		return ResolvedCategory{}, categoryError("category", "알 수 없는 대분류입니다.")
	}
	if top == enums.GearCategoryEtc.String() {
		return ResolvedCategory{
			Category:       enums.GearCategoryEtc,
			SubCategory:    enums.GearSubCategoryOther,
			DetailCategory: enums.GearDetailOther,
		}, nil
	}

	if mid == "" {
		return ResolvedCategory{}, categoryError("subCategory", "중분류를 선택해주세요.")
	}
	if !contains(t.subsByCategory[top], mid) {
		return ResolvedCategory{}, categoryError("subCategory", "선택한 대분류에 속하지 않는 중분류입니다.")
	}
	if mid == enums.GearSubCategoryOther.String() {
		return ResolvedCategory{
			Category:       enums.GearCategory(top),
			SubCategory:    enums.GearSubCategoryOther,
			DetailCategory: enums.GearDetailOther,
		}, nil
	}

	if detail == "" {
		return ResolvedCategory{}, categoryError("detailCategory", "소분류를 선택해주세요.")
	}
	if !contains(t.detailsBySub[mid], detail) {
		return ResolvedCategory{}, categoryError("detailCategory", "선택한 중분류에 속하지 않는 소분류입니다.")
	}
	return ResolvedCategory{
		Category:       enums.GearCategory(top),
		SubCategory:    enums.GearSubCategory(mid),
		DetailCategory: enums.GearDetailCategory(detail),
	}, nil
}

func categoryError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]string{field: message})
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func (t *Taxonomy) CategoryLabel(key string) string    { return t.categoryLabels[key] }
func (t *Taxonomy) SubCategoryLabel(key string) string { return t.subLabels[key] }
func (t *Taxonomy) DetailLabel(key string) string      { return t.detailLabels[key] }
func (t *Taxonomy) ConditionLabel(key string) string   { return t.conditionLabels[key] }
func (t *Taxonomy) StatusLabel(key string) string      { return t.statusLabels[key] }
func (t *Taxonomy) TradeMethodLabel(key string) string { return t.tradeLabels[key] }
func (t *Taxonomy) RegionLabel(key string) string      { return t.regionLabels[key] }

// SubCategories lists the mid-level keys under a top-level category.
func (t *Taxonomy) SubCategories(top string) []string {
	return append([]string(nil), t.subsByCategory[top]...)
}

// Details lists the leaf keys under a mid-level category.
func (t *Taxonomy) Details(mid string) []string {
	return append([]string(nil), t.detailsBySub[mid]...)
}
