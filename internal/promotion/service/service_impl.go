package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/clock"
	productdomain "github.com/marketmint/promokit/internal/product/domain"
	"github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/marketmint/promokit/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxCodeLength    = 50
	codeGenAttempts  = 5
	generatedCodeLen = 4 // random bytes, hex encoded to 8 characters
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Products productdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	products productdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("promotion.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		products: p.Products,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePromotionRequest) (domain.View, error) {
	if !req.DiscountType.Valid() {
		return domain.View{}, domain.ErrInvalidDiscountType
	}
	if err := validateDiscountValue(req.DiscountType, req.DiscountValue); err != nil {
		return domain.View{}, err
	}

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return domain.View{}, err
	}

	productID, categoryID, brandID, err := parseTargets(req.ProductID, req.CategoryID, req.BrandID)
	if err != nil {
		return domain.View{}, err
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		code, err = s.generateCode(ctx)
		if err != nil {
			return domain.View{}, err
		}
	} else {
		if len(code) > maxCodeLength {
			return domain.View{}, domain.ErrInvalidCode
		}
		inUse, err := s.repo.CodeInUse(ctx, s.db, code, 0)
		if err != nil {
			return domain.View{}, err
		}
		if inUse {
			return domain.View{}, domain.ErrCodeExists
		}
	}

	active := true
	if req.ActiveFlag != nil {
		active = *req.ActiveFlag
	}

	now := s.clock.Now()
	promo := domain.Promotion{
		ID:            s.genID.Generate(),
		Code:          code,
		Description:   strings.TrimSpace(req.Description),
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		ProductID:     productID,
		CategoryID:    categoryID,
		BrandID:       brandID,
		StartDate:     startDate,
		EndDate:       endDate,
		ActiveFlag:    active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, s.db, &promo); err != nil {
		return domain.View{}, err
	}

	s.log.Info("promotion created",
		zap.String("promotion_id", promo.ID.String()),
		zap.String("code", promo.Code),
	)

	return s.enrich(ctx, &promo), nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdatePromotionRequest) (domain.View, error) {
	promoID, err := s.parseID(id)
	if err != nil {
		return domain.View{}, err
	}

	promo, err := s.repo.FindByID(ctx, s.db, promoID)
	if err != nil {
		return domain.View{}, err
	}
	if promo == nil {
		return domain.View{}, domain.ErrNotFound
	}

	if err := checkTargetUnchanged(promo, req); err != nil {
		return domain.View{}, err
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code == "" || len(code) > maxCodeLength {
			return domain.View{}, domain.ErrInvalidCode
		}
		if code != promo.Code {
			inUse, err := s.repo.CodeInUse(ctx, s.db, code, promo.ID)
			if err != nil {
				return domain.View{}, err
			}
			if inUse {
				return domain.View{}, domain.ErrCodeExists
			}
		}
		promo.Code = code
	}
	if req.Description != nil {
		promo.Description = strings.TrimSpace(*req.Description)
	}
	if req.DiscountType != nil {
		if !req.DiscountType.Valid() {
			return domain.View{}, domain.ErrInvalidDiscountType
		}
		promo.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		promo.DiscountValue = *req.DiscountValue
	}
	if err := validateDiscountValue(promo.DiscountType, promo.DiscountValue); err != nil {
		return domain.View{}, err
	}

	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			return domain.View{}, err
		}
		promo.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			return domain.View{}, err
		}
		promo.EndDate = endDate
	}
	if promo.EndDate.Before(promo.StartDate) {
		return domain.View{}, domain.ErrInvalidDateRange
	}

	if req.ActiveFlag != nil {
		promo.ActiveFlag = *req.ActiveFlag
	}

	promo.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, promo); err != nil {
		return domain.View{}, err
	}

	s.log.Info("promotion updated",
		zap.String("promotion_id", promo.ID.String()),
		zap.String("code", promo.Code),
	)

	return s.enrich(ctx, promo), nil
}

func (s *Service) SoftDelete(ctx context.Context, id string) error {
	promoID, err := s.parseID(id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, s.db, promoID, s.clock.Now()); err != nil {
		return err
	}

	s.log.Info("promotion deleted", zap.String("promotion_id", promoID.String()))
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.View, error) {
	promoID, err := s.parseID(id)
	if err != nil {
		return domain.View{}, err
	}

	promo, err := s.repo.FindByID(ctx, s.db, promoID)
	if err != nil {
		return domain.View{}, err
	}
	if promo == nil {
		return domain.View{}, domain.ErrNotFound
	}

	return s.enrich(ctx, promo), nil
}

func (s *Service) List(ctx context.Context, req domain.ListPromotionsRequest) (domain.ListPromotionsResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{ActiveOnly: req.ActiveOnly}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListPromotionsResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(promo *domain.Promotion) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        promo.ID.String(),
			CreatedAt: promo.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	views := make([]domain.View, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		views = append(views, s.enrich(ctx, item))
	}

	resp := domain.ListPromotionsResponse{Promotions: views}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

// enrich resolves the target name for product-scoped promotions. A failed
// lookup degrades to a view without the name rather than failing the call.
func (s *Service) enrich(ctx context.Context, promo *domain.Promotion) domain.View {
	view := promo.View()
	if view.Target == nil || view.Target.Type != domain.TargetProduct {
		return view
	}

	product, err := s.products.FindByID(ctx, s.db, view.Target.ID)
	if err != nil {
		s.log.Warn("target product lookup failed",
			zap.String("promotion_id", promo.ID.String()),
			zap.Error(err),
		)
		return view
	}
	if product != nil {
		view.Target.Name = product.Name
	}
	return view
}

func (s *Service) generateCode(ctx context.Context) (string, error) {
	for i := 0; i < codeGenAttempts; i++ {
		buf := make([]byte, generatedCodeLen)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		code := strings.ToUpper(hex.EncodeToString(buf))

		inUse, err := s.repo.CodeInUse(ctx, s.db, code, 0)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", domain.ErrCodeExists
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func validateDiscountValue(discountType domain.DiscountType, value decimal.Decimal) error {
	if value.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidDiscountValue
	}
	if discountType == domain.DiscountPercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidDiscountValue
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return parsed, nil
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, domain.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

func parseTargets(productID, categoryID, brandID *string) (*snowflake.ID, *snowflake.ID, *snowflake.ID, error) {
	parse := func(value *string) (*snowflake.ID, error) {
		if value == nil || strings.TrimSpace(*value) == "" {
			return nil, nil
		}
		id, err := snowflake.ParseString(strings.TrimSpace(*value))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidID
		}
		return &id, nil
	}

	product, err := parse(productID)
	if err != nil {
		return nil, nil, nil, err
	}
	category, err := parse(categoryID)
	if err != nil {
		return nil, nil, nil, err
	}
	brand, err := parse(brandID)
	if err != nil {
		return nil, nil, nil, err
	}

	set := 0
	for _, id := range []*snowflake.ID{product, category, brand} {
		if id != nil {
			set++
		}
	}
	if set > 1 {
		return nil, nil, nil, domain.ErrMultipleTargets
	}
	return product, category, brand, nil
}

// checkTargetUnchanged rejects updates that would move a promotion to a
// different scope. Re-sending the current target is allowed.
func checkTargetUnchanged(promo *domain.Promotion, req domain.UpdatePromotionRequest) error {
	if req.ProductID == nil && req.CategoryID == nil && req.BrandID == nil {
		return nil
	}

	product, category, brand, err := parseTargets(req.ProductID, req.CategoryID, req.BrandID)
	if err != nil {
		return err
	}

	same := func(current, requested *snowflake.ID) bool {
		if current == nil || requested == nil {
			return current == nil && requested == nil
		}
		return *current == *requested
	}
	if !same(promo.ProductID, product) || !same(promo.CategoryID, category) || !same(promo.BrandID, brand) {
		return domain.ErrTargetImmutable
	}
	return nil
}
