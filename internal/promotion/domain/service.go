package domain

import (
	"context"

	"github.com/marketmint/promokit/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreatePromotionRequest struct {
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	ProductID     *string         `json:"product_id"`
	CategoryID    *string         `json:"category_id"`
	BrandID       *string         `json:"brand_id"`
	StartDate     string          `json:"start_date"`
	EndDate       string          `json:"end_date"`
	ActiveFlag    *bool           `json:"active_flag"`
}

type UpdatePromotionRequest struct {
	Code          *string          `json:"code"`
	Description   *string          `json:"description"`
	DiscountType  *DiscountType    `json:"discount_type"`
	DiscountValue *decimal.Decimal `json:"discount_value"`
	ProductID     *string          `json:"product_id"`
	CategoryID    *string          `json:"category_id"`
	BrandID       *string          `json:"brand_id"`
	StartDate     *string          `json:"start_date"`
	EndDate       *string          `json:"end_date"`
	ActiveFlag    *bool            `json:"active_flag"`
}

type ListPromotionsRequest struct {
	pagination.Pagination
	ActiveOnly bool
}

type ListPromotionsResponse struct {
	Promotions []View              `json:"promotions"`
	PageInfo   pagination.PageInfo `json:"page_info"`
}

// Service is the admin-facing promotion lifecycle manager.
type Service interface {
	Create(ctx context.Context, req CreatePromotionRequest) (View, error)
	Update(ctx context.Context, id string, req UpdatePromotionRequest) (View, error)
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (View, error)
	List(ctx context.Context, req ListPromotionsRequest) (ListPromotionsResponse, error)
}
