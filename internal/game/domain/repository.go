package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnclaimedFilter narrows the admin listing of pool promotions.
type UnclaimedFilter struct {
	Discount *decimal.Decimal
	Today    time.Time
}

// Repository persists game plays and queries the reward pool. A promotion is
// "unclaimed" while no game play references it.
type Repository interface {
	InsertPlay(ctx context.Context, db *gorm.DB, play *GamePlay) error
	FindPlayOn(ctx context.Context, db *gorm.DB, userID snowflake.ID, gameType string, day time.Time) (*GamePlay, error)
	ListPlays(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*GamePlay, error)
	FindUnclaimedPromotion(ctx context.Context, db *gorm.DB, discount decimal.Decimal) (*promodomain.Promotion, error)
	ListUnclaimedPromotions(ctx context.Context, db *gorm.DB, filter UnclaimedFilter) ([]*promodomain.Promotion, error)
}

// Service is the gamified reward issuer.
type Service interface {
	Play(ctx context.Context, userID snowflake.ID, gameType string) (PlayResult, error)
	CanPlayToday(ctx context.Context, userID snowflake.ID, gameType string) (CanPlayResult, error)
	MyPromos(ctx context.Context, userID snowflake.ID) ([]PlayRecord, error)
	ListCurrentPromos(ctx context.Context, filter UnclaimedFilter) ([]promodomain.View, error)
}
