package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/marketmint/promokit/internal/clock"
	productdomain "github.com/marketmint/promokit/internal/product/domain"
	productrepo "github.com/marketmint/promokit/internal/product/repository"
	"github.com/marketmint/promokit/internal/promotion/domain"
	promorepo "github.com/marketmint/promokit/internal/promotion/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&productdomain.Product{}, &domain.Promotion{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     promorepo.Provide(),
		Products: productrepo.Provide(),
	})
	return svc, db, node, fake
}

func createRequest(code string) domain.CreatePromotionRequest {
	return domain.CreatePromotionRequest{
		Code:          code,
		Description:   "test promotion",
		DiscountType:  domain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartDate:     "2026-03-01",
		EndDate:       "2026-03-31",
	}
}

func TestCreatePromotion(t *testing.T) {
	svc, _, _, _ := newService(t)

	view, err := svc.Create(context.Background(), createRequest("spring10"))
	require.NoError(t, err)

	assert.Equal(t, "SPRING10", view.Code)
	assert.Equal(t, "2026-03-01", view.StartDate)
	assert.Equal(t, "2026-03-31", view.EndDate)
	assert.True(t, view.ActiveFlag)
	assert.Nil(t, view.Target)
}

func TestCreatePromotionGeneratesCode(t *testing.T) {
	svc, _, _, _ := newService(t)

	view, err := svc.Create(context.Background(), createRequest(""))
	require.NoError(t, err)
	assert.Len(t, view.Code, 8)
}

func TestCreatePromotionDuplicateCode(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.Create(context.Background(), createRequest("SPRING10"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createRequest("SPRING10"))
	assert.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestCreatePromotionValidation(t *testing.T) {
	svc, _, node, _ := newService(t)
	productID := node.Generate().String()
	categoryID := node.Generate().String()

	cases := []struct {
		name    string
		mutate  func(*domain.CreatePromotionRequest)
		wantErr error
	}{
		{
			name: "bad discount type",
			mutate: func(r *domain.CreatePromotionRequest) {
				r.DiscountType = "loyalty"
			},
			wantErr: domain.ErrInvalidDiscountType,
		},
		{
			name: "zero value",
			mutate: func(r *domain.CreatePromotionRequest) {
				r.DiscountValue = decimal.Zero
			},
			wantErr: domain.ErrInvalidDiscountValue,
		},
		{
			name: "percentage above 100",
			mutate: func(r *domain.CreatePromotionRequest) {
				r.DiscountValue = decimal.NewFromInt(150)
			},
			wantErr: domain.ErrInvalidDiscountValue,
		},
		{
			name: "end before start",
			mutate: func(r *domain.CreatePromotionRequest) {
				r.StartDate = "2026-03-31"
				r.EndDate = "2026-03-01"
			},
			wantErr: domain.ErrInvalidDateRange,
		},
		{
			name: "garbage date",
			mutate: func(r *domain.CreatePromotionRequest) {
				r.StartDate = "next tuesday"
			},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name: "two targets",
			mutate: func(r *domain.CreatePromotionRequest) {
				r.ProductID = &productID
				r.CategoryID = &categoryID
			},
			wantErr: domain.ErrMultipleTargets,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := createRequest("")
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreatePromotionWithProductTargetResolvesName(t *testing.T) {
	svc, db, node, _ := newService(t)

	product := productdomain.Product{
		ID:         node.Generate(),
		Name:       "Rain Jacket",
		CategoryID: node.Generate(),
		BrandID:    node.Generate(),
		Price:      decimal.RequireFromString("75.25"),
	}
	require.NoError(t, db.Create(&product).Error)

	req := createRequest("JACKET15")
	productID := product.ID.String()
	req.ProductID = &productID

	view, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, view.Target)
	assert.Equal(t, domain.TargetProduct, view.Target.Type)
	assert.Equal(t, product.ID, view.Target.ID)
	assert.Equal(t, "Rain Jacket", view.Target.Name)
}

func TestUpdatePromotion(t *testing.T) {
	svc, _, _, _ := newService(t)

	created, err := svc.Create(context.Background(), createRequest("SPRING10"))
	require.NoError(t, err)

	newValue := decimal.NewFromInt(25)
	inactive := false
	updated, err := svc.Update(context.Background(), created.PromotionID.String(), domain.UpdatePromotionRequest{
		DiscountValue: &newValue,
		ActiveFlag:    &inactive,
	})
	require.NoError(t, err)

	assert.True(t, updated.DiscountValue.Equal(newValue))
	assert.False(t, updated.ActiveFlag)
	assert.Equal(t, "SPRING10", updated.Code)
}

func TestUpdatePromotionTargetImmutable(t *testing.T) {
	svc, _, node, _ := newService(t)

	req := createRequest("BRAND15")
	brandID := node.Generate().String()
	req.BrandID = &brandID

	created, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	otherBrand := node.Generate().String()
	_, err = svc.Update(context.Background(), created.PromotionID.String(), domain.UpdatePromotionRequest{
		BrandID: &otherBrand,
	})
	assert.ErrorIs(t, err, domain.ErrTargetImmutable)

	// Re-sending the current target is a no-op, not an error.
	_, err = svc.Update(context.Background(), created.PromotionID.String(), domain.UpdatePromotionRequest{
		BrandID: &brandID,
	})
	assert.NoError(t, err)
}

func TestUpdatePromotionDuplicateCode(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.Create(context.Background(), createRequest("FIRST"))
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), createRequest("SECOND"))
	require.NoError(t, err)

	taken := "FIRST"
	_, err = svc.Update(context.Background(), second.PromotionID.String(), domain.UpdatePromotionRequest{
		Code: &taken,
	})
	assert.ErrorIs(t, err, domain.ErrCodeExists)
}

func TestSoftDeletePromotion(t *testing.T) {
	svc, db, _, _ := newService(t)

	created, err := svc.Create(context.Background(), createRequest("SPRING10"))
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(context.Background(), created.PromotionID.String()))

	_, err = svc.GetByID(context.Background(), created.PromotionID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The row survives with deleted_at set.
	var count int64
	require.NoError(t, db.Model(&domain.Promotion{}).Where("deleted_at IS NOT NULL").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	err = svc.SoftDelete(context.Background(), created.PromotionID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPromotions(t *testing.T) {
	svc, _, _, _ := newService(t)

	for _, code := range []string{"ONE", "TWO", "THREE"} {
		_, err := svc.Create(context.Background(), createRequest(code))
		require.NoError(t, err)
	}

	inactive := false
	created, err := svc.Create(context.Background(), createRequest("FOUR"))
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), created.PromotionID.String(), domain.UpdatePromotionRequest{ActiveFlag: &inactive})
	require.NoError(t, err)

	resp, err := svc.List(context.Background(), domain.ListPromotionsRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Promotions, 4)

	resp, err = svc.List(context.Background(), domain.ListPromotionsRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, resp.Promotions, 3)
}

func TestListPromotionsPagination(t *testing.T) {
	svc, _, _, _ := newService(t)

	codes := []string{"A1", "B2", "C3", "D4", "E5"}
	for _, code := range codes {
		_, err := svc.Create(context.Background(), createRequest(code))
		require.NoError(t, err)
	}

	req := domain.ListPromotionsRequest{}
	req.PageSize = 2

	first, err := svc.List(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, first.Promotions, 2)
	assert.True(t, first.PageInfo.HasMore)
	require.NotEmpty(t, first.PageInfo.NextPageToken)

	req.PageToken = first.PageInfo.NextPageToken
	second, err := svc.List(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, second.Promotions, 2)

	for _, p := range second.Promotions {
		for _, q := range first.Promotions {
			assert.NotEqual(t, q.PromotionID, p.PromotionID)
		}
	}
}
