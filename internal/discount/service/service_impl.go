package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/clock"
	"github.com/marketmint/promokit/internal/discount/domain"
	"github.com/marketmint/promokit/internal/discount/evaluator"
	productdomain "github.com/marketmint/promokit/internal/product/domain"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	Promotions promodomain.Repository
	Products   productdomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	clock      clock.Clock
	promotions promodomain.Repository
	products   productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("discount.service"),
		clock:      p.Clock,
		promotions: p.Promotions,
		products:   p.Products,
	}
}

func (s *Service) Apply(ctx context.Context, code string, items []domain.CartItem) (domain.Result, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Result{}, promodomain.ErrInvalidCode
	}
	if len(items) == 0 {
		return domain.Result{}, domain.ErrEmptyCart
	}

	lines, err := s.resolveLines(ctx, items)
	if err != nil {
		return domain.Result{}, err
	}

	promo, err := s.promotions.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Result{}, err
	}
	if promo == nil {
		return domain.Result{}, promodomain.ErrNotFound
	}
	if !promo.ActiveFlag {
		return domain.Result{}, domain.ErrInactive
	}
	if !promo.InWindow(s.clock.Now()) {
		return domain.Result{}, domain.ErrExpired
	}

	result, err := evaluator.Compute(promo, lines)
	if err != nil {
		return domain.Result{}, err
	}

	s.log.Info("promotion applied",
		zap.String("code", promo.Code),
		zap.String("subtotal", result.Subtotal.String()),
		zap.String("discount", result.DiscountAmount.String()),
	)

	return result, nil
}

// resolveLines validates cart items and attaches catalog records where they
// exist. Prices come from the caller; the catalog only informs category and
// brand matching, so an item absent from the catalog is still priced.
func (s *Service) resolveLines(ctx context.Context, items []domain.CartItem) ([]evaluator.Line, error) {
	ids := make([]snowflake.ID, 0, len(items))
	seen := make(map[snowflake.ID]struct{}, len(items))
	lines := make([]evaluator.Line, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if item.Price.IsNegative() {
			return nil, domain.ErrInvalidPrice
		}
		id, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil || id == 0 {
			return nil, domain.ErrUnknownProduct
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		lines = append(lines, evaluator.Line{ProductID: id, Quantity: item.Quantity, Price: item.Price})
	}

	catalog, err := s.products.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		if product, ok := catalog[lines[i].ProductID]; ok {
			p := product
			lines[i].Product = &p
		}
	}
	return lines, nil
}
