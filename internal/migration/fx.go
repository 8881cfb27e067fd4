package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/config"
	gamedomain "github.com/marketmint/promokit/internal/game/domain"
	productdomain "github.com/marketmint/promokit/internal/product/domain"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/marketmint/promokit/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// MySQL and SQLite deployments rely on the model schema.
			err := conn.AutoMigrate(
				&productdomain.Product{},
				&promodomain.Promotion{},
				&gamedomain.GamePlay{},
			)
			if err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoProducts(conn, genID)
		}
		return nil
	}),
)
