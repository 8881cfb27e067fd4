package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/marketmint/promokit/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, promo *domain.Promotion) error {
	return db.WithContext(ctx).Create(promo).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Promotion, error) {
	var promo domain.Promotion
	err := notDeleted(db.WithContext(ctx)).
		Where("id = ?", id).
		Take(&promo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Promotion, error) {
	var promo domain.Promotion
	err := notDeleted(db.WithContext(ctx)).
		Where("code = ?", code).
		Take(&promo).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &promo, nil
}

func (r *repo) CodeInUse(ctx context.Context, db *gorm.DB, code string, excludeID snowflake.ID) (bool, error) {
	query := notDeleted(db.WithContext(ctx)).
		Model(&domain.Promotion{}).
		Where("code = ?", code)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, promo *domain.Promotion) error {
	return db.WithContext(ctx).Save(promo).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, id snowflake.ID, at time.Time) error {
	result := notDeleted(db.WithContext(ctx)).
		Model(&domain.Promotion{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": at,
			"updated_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Promotion, error) {
	query := notDeleted(db.WithContext(ctx)).
		Model(&domain.Promotion{}).
		Order("id DESC").
		Limit(page.PageSize + 1)

	if filter.ActiveOnly {
		query = query.Where("active_flag = ?", true)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		lastID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		query = query.Where("id < ?", lastID)
	}

	var promos []*domain.Promotion
	if err := query.Find(&promos).Error; err != nil {
		return nil, err
	}
	return promos, nil
}
