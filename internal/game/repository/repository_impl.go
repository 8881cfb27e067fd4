package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/game/domain"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPlay(ctx context.Context, db *gorm.DB, play *domain.GamePlay) error {
	return db.WithContext(ctx).Create(play).Error
}

func (r *repo) FindPlayOn(ctx context.Context, db *gorm.DB, userID snowflake.ID, gameType string, day time.Time) (*domain.GamePlay, error) {
	var play domain.GamePlay
	err := db.WithContext(ctx).
		Where("user_id = ? AND game_type = ? AND played_on = ?", userID, gameType, day).
		Take(&play).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &play, nil
}

func (r *repo) ListPlays(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.GamePlay, error) {
	var plays []*domain.GamePlay
	err := db.WithContext(ctx).
		Preload("Promotion").
		Where("user_id = ?", userID).
		Order("played_at DESC").
		Find(&plays).Error
	if err != nil {
		return nil, err
	}
	return plays, nil
}

func unclaimed(db *gorm.DB) *gorm.DB {
	return db.
		Where("deleted_at IS NULL").
		Where("active_flag = ?", true).
		Where("NOT EXISTS (SELECT 1 FROM game_plays WHERE game_plays.promotion_id = promotions.id)")
}

func (r *repo) FindUnclaimedPromotion(ctx context.Context, db *gorm.DB, discount decimal.Decimal) (*promodomain.Promotion, error) {
	var promo promodomain.Promotion
	err := unclaimed(db.WithContext(ctx).Model(&promodomain.Promotion{})).
		Where("discount_type = ?", promodomain.DiscountPercentage).
		Where("discount_value = ?", discount).
		Order("id ASC").
		Take(&promo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

func (r *repo) ListUnclaimedPromotions(ctx context.Context, db *gorm.DB, filter domain.UnclaimedFilter) ([]*promodomain.Promotion, error) {
	query := unclaimed(db.WithContext(ctx).Model(&promodomain.Promotion{})).
		Where("start_date <= ? AND end_date >= ?", filter.Today, filter.Today).
		Order("created_at DESC")

	if filter.Discount != nil {
		query = query.Where("discount_value = ?", *filter.Discount)
	}

	var promos []*promodomain.Promotion
	if err := query.Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}
