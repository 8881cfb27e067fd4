package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported discount strategies.
type DiscountType string

const (
	// DiscountFixed takes a fixed monetary amount off, capped at the
	// applicable subtotal.
	DiscountFixed DiscountType = "fixed"
	// DiscountPercentage takes a percentage off the applicable subtotal.
	DiscountPercentage DiscountType = "percentage"
)

func (t DiscountType) Valid() bool {
	return t == DiscountFixed || t == DiscountPercentage
}

// Target scope types.
const (
	TargetProduct  = "product"
	TargetCategory = "category"
	TargetBrand    = "brand"
)

// Promotion is a discount rule identified by a unique code. At most one of
// ProductID, CategoryID and BrandID may be set; when none is set the
// promotion applies sitewide.
type Promotion struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"promotion_id"`
	Code          string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Description   string          `gorm:"size:255" json:"description,omitempty"`
	DiscountType  DiscountType    `gorm:"size:20;not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"discount_value"`

	ProductID  *snowflake.ID `gorm:"index" json:"product_id,omitempty"`
	CategoryID *snowflake.ID `gorm:"index" json:"category_id,omitempty"`
	BrandID    *snowflake.ID `gorm:"index" json:"brand_id,omitempty"`

	StartDate  time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null" json:"end_date"`
	ActiveFlag bool      `gorm:"not null;default:true" json:"active_flag"`

	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Promotion) TableName() string {
	return "promotions"
}

// Sitewide reports whether the promotion has no target scope.
func (p *Promotion) Sitewide() bool {
	return p.ProductID == nil && p.CategoryID == nil && p.BrandID == nil
}

// TargetScope returns the target type and id, or ("", 0) for sitewide
// promotions.
func (p *Promotion) TargetScope() (string, snowflake.ID) {
	switch {
	case p.ProductID != nil:
		return TargetProduct, *p.ProductID
	case p.CategoryID != nil:
		return TargetCategory, *p.CategoryID
	case p.BrandID != nil:
		return TargetBrand, *p.BrandID
	default:
		return "", 0
	}
}

// InWindow reports whether the given UTC calendar date falls inside the
// promotion's inclusive validity window.
func (p *Promotion) InWindow(today time.Time) bool {
	day := DateOnly(today)
	return !day.Before(DateOnly(p.StartDate)) && !day.After(DateOnly(p.EndDate))
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Target describes the resolved scope of a targeted promotion.
type Target struct {
	Type string       `json:"type"`
	ID   snowflake.ID `json:"id"`
	Name string       `json:"name,omitempty"`
}

// View is the serialized form of a promotion returned by the API.
type View struct {
	PromotionID   snowflake.ID    `json:"promotion_id"`
	Code          string          `json:"code"`
	Description   string          `json:"description,omitempty"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	ActiveFlag    bool            `json:"active_flag"`
	Target        *Target         `json:"target,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
}

// View builds the API representation of the promotion. Target names are
// filled in separately where a catalog lookup is available.
func (p *Promotion) View() View {
	v := View{
		PromotionID:   p.ID,
		Code:          p.Code,
		Description:   p.Description,
		DiscountType:  p.DiscountType,
		DiscountValue: p.DiscountValue,
		StartDate:     DateOnly(p.StartDate).Format(time.DateOnly),
		EndDate:       DateOnly(p.EndDate).Format(time.DateOnly),
		ActiveFlag:    p.ActiveFlag,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		DeletedAt:     p.DeletedAt,
	}
	if targetType, targetID := p.TargetScope(); targetType != "" {
		v.Target = &Target{Type: targetType, ID: targetID}
	}
	return v
}
