package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("item quantity must be positive")
	ErrInvalidPrice    = errors.New("item price cannot be negative")
	ErrUnknownProduct  = errors.New("invalid product id in cart")
	ErrInactive        = errors.New("promotion is not active")
	ErrExpired         = errors.New("promotion is expired or not yet started")
	ErrNotApplicable   = errors.New("promotion does not apply to any item in the cart")
)

// CartItem is a line in the buyer's cart, priced by the caller. The catalog
// is consulted only to resolve category and brand membership for targeted
// promotions.
type CartItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Result is the outcome of applying a promotion code to a cart.
type Result struct {
	PromotionID    snowflake.ID             `json:"promotion_id"`
	Code           string                   `json:"code"`
	Description    string                   `json:"description,omitempty"`
	DiscountType   promodomain.DiscountType `json:"discount_type"`
	DiscountValue  decimal.Decimal          `json:"discount_value"`
	Subtotal       decimal.Decimal          `json:"subtotal"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	Total          decimal.Decimal          `json:"total"`
}

// Service applies promotion codes to carts.
type Service interface {
	Apply(ctx context.Context, code string, items []CartItem) (Result, error)
}
