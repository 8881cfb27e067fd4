package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/pkg/db/pagination"
	"gorm.io/gorm"
)

// ListFilter narrows promotion listings. Zero values mean "no filter".
type ListFilter struct {
	ActiveOnly bool
}

// Repository is the promotion store. All lookups exclude soft-deleted rows.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, promo *Promotion) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Promotion, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Promotion, error)
	CodeInUse(ctx context.Context, db *gorm.DB, code string, excludeID snowflake.ID) (bool, error)
	Update(ctx context.Context, db *gorm.DB, promo *Promotion) error
	SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Promotion, error)
}
