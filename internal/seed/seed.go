// Package seed provisions demo catalog data for local and self-hosted
// environments.
package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	productdomain "github.com/marketmint/promokit/internal/product/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnsureDemoProducts inserts a small demo catalog when the products table is
// empty. Existing data is never touched.
func EnsureDemoProducts(conn *gorm.DB, genID *snowflake.Node) error {
	var count int64
	if err := conn.Model(&productdomain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	electronics := genID.Generate()
	apparel := genID.Generate()
	acme := genID.Generate()
	nimbus := genID.Generate()

	now := time.Now().UTC()
	products := []productdomain.Product{
		{ID: genID.Generate(), Name: "Wireless Earbuds", CategoryID: electronics, BrandID: acme, Price: decimal.NewFromFloat(59.99)},
		{ID: genID.Generate(), Name: "Smart Speaker", CategoryID: electronics, BrandID: acme, Price: decimal.NewFromFloat(89.50)},
		{ID: genID.Generate(), Name: "Fitness Tracker", CategoryID: electronics, BrandID: nimbus, Price: decimal.NewFromFloat(129.00)},
		{ID: genID.Generate(), Name: "Canvas Sneakers", CategoryID: apparel, BrandID: nimbus, Price: decimal.NewFromFloat(45.00)},
		{ID: genID.Generate(), Name: "Rain Jacket", CategoryID: apparel, BrandID: acme, Price: decimal.NewFromFloat(75.25)},
	}
	for i := range products {
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
	}

	return conn.Create(&products).Error
}
