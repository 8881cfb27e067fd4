package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketmint/promokit/internal/auth"
	"github.com/marketmint/promokit/internal/config"
	"github.com/marketmint/promokit/internal/discount"
	discountdomain "github.com/marketmint/promokit/internal/discount/domain"
	"github.com/marketmint/promokit/internal/game"
	gamedomain "github.com/marketmint/promokit/internal/game/domain"
	"github.com/marketmint/promokit/internal/observability"
	obsmiddleware "github.com/marketmint/promokit/internal/observability/logger"
	obsmetrics "github.com/marketmint/promokit/internal/observability/metrics"
	"github.com/marketmint/promokit/internal/product"
	"github.com/marketmint/promokit/internal/promotion"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	product.Module,
	promotion.Module,
	discount.Module,
	game.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	authmgr      *auth.Manager
	promotionSvc promodomain.Service
	discountSvc  discountdomain.Service
	gameSvc      gamedomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Authmgr      *auth.Manager
	PromotionSvc promodomain.Service
	DiscountSvc  discountdomain.Service
	GameSvc      gamedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		authmgr:      p.Authmgr,
		promotionSvc: p.PromotionSvc,
		discountSvc:  p.DiscountSvc,
		gameSvc:      p.GameSvc,
	}

	svc.registerAPIRoutes()
	svc.registerSuperAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/promo-code/apply", s.authmgr.UserRequired(), s.ApplyPromoCode)

	games := api.Group("/games", s.authmgr.UserRequired())
	{
		games.POST("/spin-wheel", s.PlaySpinWheel)
		games.POST("/match-card", s.PlayMatchCard)
		games.GET("/my-promos", s.GetMyGamePromos)
		games.GET("/can-play/:game_type", s.CanPlayGame)
	}

	api.GET("/games/current-promos", s.authmgr.SuperAdminRequired(), s.ListCurrentGamePromos)
}

func (s *Server) registerSuperAdminRoutes() {
	admin := s.engine.Group("/api/superadmin", s.authmgr.SuperAdminRequired())

	admin.GET("/promotions", s.ListPromotions)
	admin.POST("/promotions", s.CreatePromotion)
	admin.GET("/promotions/:id", s.GetPromotionByID)
	admin.PUT("/promotions/:id", s.UpdatePromotion)
	admin.DELETE("/promotions/:id", s.DeletePromotion)
}
