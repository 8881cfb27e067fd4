package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("product not found")

// Product is the minimal catalog record the promotion engine needs for
// scope matching: identity plus category and brand membership.
type Product struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"product_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	CategoryID snowflake.ID    `gorm:"index" json:"category_id"`
	BrandID    snowflake.ID    `gorm:"index" json:"brand_id"`
	Price      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	CreatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) (map[snowflake.ID]Product, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
}
