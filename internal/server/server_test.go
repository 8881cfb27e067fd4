package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/marketmint/promokit/internal/auth"
	"github.com/marketmint/promokit/internal/clock"
	"github.com/marketmint/promokit/internal/config"
	discountservice "github.com/marketmint/promokit/internal/discount/service"
	gamedomain "github.com/marketmint/promokit/internal/game/domain"
	gamerepo "github.com/marketmint/promokit/internal/game/repository"
	gameservice "github.com/marketmint/promokit/internal/game/service"
	"github.com/marketmint/promokit/internal/observability"
	productdomain "github.com/marketmint/promokit/internal/product/domain"
	productrepo "github.com/marketmint/promokit/internal/product/repository"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	promorepo "github.com/marketmint/promokit/internal/promotion/repository"
	promoservice "github.com/marketmint/promokit/internal/promotion/service"
	"github.com/marketmint/promokit/pkg/userctx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	server  *Server
	node    *snowflake.Node
	clock   *clock.FakeClock
	authmgr *auth.Manager
	db      *gorm.DB
	earbuds productdomain.Product
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&productdomain.Product{},
		&promodomain.Promotion{},
		&gamedomain.GamePlay{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	cfg := config.Config{AuthJWTSecret: "test-secret"}
	authmgr := auth.NewManager(cfg, fake)
	log := zap.NewNop()

	promoRepo := promorepo.Provide()
	productRepo := productrepo.Provide()

	promoSvc := promoservice.New(promoservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo: promoRepo, Products: productRepo,
	})
	discountSvc := discountservice.New(discountservice.Params{
		DB: db, Log: log, Clock: fake,
		Promotions: promoRepo, Products: productRepo,
	})
	gameSvc := gameservice.New(gameservice.Params{
		DB: db, Log: log, GenID: node, Clock: fake,
		Repo: gamerepo.Provide(), Promotions: promoRepo,
	})

	srv := NewServer(ServerParams{
		Gin:          NewEngine(observability.Config{}, nil),
		Cfg:          cfg,
		Authmgr:      authmgr,
		PromotionSvc: promoSvc,
		DiscountSvc:  discountSvc,
		GameSvc:      gameSvc,
	})

	ts := &testServer{
		server:  srv,
		node:    node,
		clock:   fake,
		authmgr: authmgr,
		db:      db,
	}

	ts.earbuds = productdomain.Product{
		ID:         node.Generate(),
		Name:       "Wireless Earbuds",
		CategoryID: node.Generate(),
		BrandID:    node.Generate(),
		Price:      decimal.RequireFromString("59.99"),
	}
	require.NoError(t, db.Create(&ts.earbuds).Error)

	return ts
}

func (ts *testServer) token(t *testing.T, role string) string {
	t.Helper()
	token, err := ts.authmgr.Issue(ts.node.Generate(), role)
	require.NoError(t, err)
	return token
}

func (ts *testServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.server.Engine().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seedPromo(t *testing.T, code string) promodomain.Promotion {
	t.Helper()

	today := promodomain.DateOnly(ts.clock.Now())
	promo := promodomain.Promotion{
		ID:            ts.node.Generate(),
		Code:          code,
		DiscountType:  promodomain.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		StartDate:     today,
		EndDate:       today.AddDate(0, 0, 7),
		ActiveFlag:    true,
	}
	require.NoError(t, ts.db.Create(&promo).Error)
	return promo
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyPromoCodeRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/promo-code/apply", "", gin.H{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApplyPromoCode(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPromo(t, "SAVE10")

	rec := ts.request(t, http.MethodPost, "/api/promo-code/apply", ts.token(t, userctx.RoleUser), gin.H{
		"promo_code": "SAVE10",
		"cart_items": []gin.H{
			{"product_id": ts.earbuds.ID.String(), "quantity": 2, "price": "59.99"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message        string          `json:"message"`
		Subtotal       decimal.Decimal `json:"subtotal"`
		DiscountAmount decimal.Decimal `json:"discount_amount"`
		NewTotal       decimal.Decimal `json:"new_total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Promotion applied successfully!", resp.Message)
	assert.Equal(t, "119.98", resp.Subtotal.String())
	assert.Equal(t, "12", resp.DiscountAmount.String())
	assert.Equal(t, "107.98", resp.NewTotal.String())
}

func TestApplyPromoCodeNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/promo-code/apply", ts.token(t, userctx.RoleUser), gin.H{
		"promo_code": "NOPE123",
		"cart_items": []gin.H{
			{"product_id": ts.earbuds.ID.String(), "quantity": 1, "price": "59.99"},
		},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApplyPromoCodeEmptyCart(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPromo(t, "SAVE10")

	rec := ts.request(t, http.MethodPost, "/api/promo-code/apply", ts.token(t, userctx.RoleUser), gin.H{
		"promo_code": "SAVE10",
		"cart_items": []gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPromotionCRUDRequiresSuperAdmin(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/api/superadmin/promotions", ts.token(t, userctx.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/superadmin/promotions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPromotionCRUD(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.token(t, userctx.RoleSuperAdmin)

	rec := ts.request(t, http.MethodPost, "/api/superadmin/promotions", admin, gin.H{
		"code":           "LAUNCH25",
		"discount_type":  "percentage",
		"discount_value": "25",
		"start_date":     "2026-03-01",
		"end_date":       "2026-03-31",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data promodomain.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "LAUNCH25", created.Data.Code)

	id := created.Data.PromotionID.String()

	rec = ts.request(t, http.MethodGet, "/api/superadmin/promotions/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodPut, "/api/superadmin/promotions/"+id, admin, gin.H{
		"description": "updated",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Duplicate code on create maps to 409.
	rec = ts.request(t, http.MethodPost, "/api/superadmin/promotions", admin, gin.H{
		"code":           "LAUNCH25",
		"discount_type":  "percentage",
		"discount_value": "25",
		"start_date":     "2026-03-01",
		"end_date":       "2026-03-31",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.request(t, http.MethodDelete, "/api/superadmin/promotions/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/superadmin/promotions/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePromotionValidationMapsTo400(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodPost, "/api/superadmin/promotions", ts.token(t, userctx.RoleSuperAdmin), gin.H{
		"code":           "BAD",
		"discount_type":  "percentage",
		"discount_value": "150",
		"start_date":     "2026-03-01",
		"end_date":       "2026-03-31",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGameRoutes(t *testing.T) {
	ts := newTestServer(t)
	user := ts.token(t, userctx.RoleUser)

	rec := ts.request(t, http.MethodGet, "/api/games/can-play/spin-wheel", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodPost, "/api/games/spin-wheel", user, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Same game, same day, same user: daily limit maps to 403.
	rec = ts.request(t, http.MethodPost, "/api/games/spin-wheel", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/games/my-promos", user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Unknown game type maps to 400.
	rec = ts.request(t, http.MethodGet, "/api/games/can-play/roulette", user, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The pool listing is superadmin only.
	rec = ts.request(t, http.MethodGet, "/api/games/current-promos", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodGet, "/api/games/current-promos", ts.token(t, userctx.RoleSuperAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	echo := httptest.NewRecorder()
	ts.server.Engine().ServeHTTP(echo, req)
	assert.Equal(t, "abc-123", echo.Header().Get("X-Request-Id"))
}

func TestUnknownRouteIs404(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, http.MethodGet, fmt.Sprintf("/api/nope/%d", 1), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
