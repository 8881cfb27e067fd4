// Package evaluator holds the pure discount math. It has no database or
// clock dependencies so the pricing rules can be tested in isolation.
package evaluator

import (
	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/discount/domain"
	productdomain "github.com/marketmint/promokit/internal/product/domain"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Line is a resolved cart line. Price is the caller's unit price; Product is
// the catalog record when one exists, used only for target matching.
type Line struct {
	ProductID snowflake.ID
	Product   *productdomain.Product
	Quantity  int
	Price     decimal.Decimal
}

func (l Line) subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Subtotal returns the rounded sum of price times quantity across lines.
func Subtotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.subtotal())
	}
	return total.Round(2)
}

// Compute evaluates a promotion against resolved cart lines. It assumes the
// promotion is active and inside its validity window; those gates belong to
// the caller.
//
// Sitewide promotions treat the cart as one unit: a fixed discount is
// applied once, capped at the cart subtotal. Targeted promotions discount
// each matching line, with per-line caps for fixed amounts. Lines without a
// catalog record never match a target.
func Compute(promo *promodomain.Promotion, lines []Line) (domain.Result, error) {
	if !promo.DiscountType.Valid() {
		return domain.Result{}, promodomain.ErrInvalidDiscountType
	}

	subtotal := Subtotal(lines)

	var discount decimal.Decimal
	if promo.Sitewide() {
		switch promo.DiscountType {
		case promodomain.DiscountFixed:
			discount = decimal.Min(promo.DiscountValue, subtotal)
		case promodomain.DiscountPercentage:
			discount = subtotal.Mul(promo.DiscountValue).Div(oneHundred)
		}
	} else {
		matched := false
		for _, line := range lines {
			if line.Product == nil || !matchesTarget(promo, *line.Product) {
				continue
			}
			matched = true
			switch promo.DiscountType {
			case promodomain.DiscountFixed:
				discount = discount.Add(decimal.Min(promo.DiscountValue, line.subtotal()))
			case promodomain.DiscountPercentage:
				discount = discount.Add(line.subtotal().Mul(promo.DiscountValue).Div(oneHundred))
			}
		}
		if !matched {
			return domain.Result{}, domain.ErrNotApplicable
		}
	}
	discount = discount.Round(2)

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return domain.Result{
		PromotionID:    promo.ID,
		Code:           promo.Code,
		Description:    promo.Description,
		DiscountType:   promo.DiscountType,
		DiscountValue:  promo.DiscountValue,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
	}, nil
}

func matchesTarget(promo *promodomain.Promotion, product productdomain.Product) bool {
	switch targetType, targetID := promo.TargetScope(); targetType {
	case promodomain.TargetProduct:
		return product.ID == targetID
	case promodomain.TargetCategory:
		return product.CategoryID == targetID
	case promodomain.TargetBrand:
		return product.BrandID == targetID
	default:
		return false
	}
}
