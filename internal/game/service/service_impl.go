package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/clock"
	"github.com/marketmint/promokit/internal/game/domain"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	pkgdb "github.com/marketmint/promokit/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// winChance is the probability of winning a promocode on any play.
	winChance = 1.0 / 3.0
	// rewardValidity is how long a minted promocode stays redeemable.
	rewardValidity = 24 * time.Hour
	// mintAttempts bounds retries when a generated code collides.
	mintAttempts = 3
)

// discountTiers are the percentage rewards a winning play can draw.
var discountTiers = []int64{5, 10, 15, 20}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	Promotions promodomain.Repository
	Rand       *rand.Rand `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	promotions promodomain.Repository

	mu  sync.Mutex
	rng *rand.Rand
}

func New(p Params) domain.Service {
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("game.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		promotions: p.Promotions,
		rng:        rng,
	}
}

func (s *Service) Play(ctx context.Context, userID snowflake.ID, gameType string) (domain.PlayResult, error) {
	if !domain.ValidGameType(gameType) {
		return domain.PlayResult{}, domain.ErrInvalidGameType
	}

	now := s.clock.Now()
	today := promodomain.DateOnly(now)

	played, err := s.repo.FindPlayOn(ctx, s.db, userID, gameType, today)
	if err != nil {
		return domain.PlayResult{}, err
	}
	if played != nil {
		return domain.PlayResult{}, domain.ErrAlreadyPlayed
	}

	if !s.draw() {
		play := domain.GamePlay{
			ID:       s.genID.Generate(),
			UserID:   userID,
			GameType: gameType,
			PlayedAt: now,
			PlayedOn: today,
		}
		if err := s.repo.InsertPlay(ctx, s.db, &play); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				return domain.PlayResult{}, domain.ErrAlreadyPlayed
			}
			return domain.PlayResult{}, err
		}
		return domain.PlayResult{
			Won:     false,
			Message: "Sorry, you did not win a promocode this time.",
		}, nil
	}

	tier := s.pickTier()
	promo, err := s.getOrCreatePromo(ctx, tier, now)
	if err != nil {
		return domain.PlayResult{}, err
	}

	play := domain.GamePlay{
		ID:          s.genID.Generate(),
		UserID:      userID,
		GameType:    gameType,
		PromotionID: &promo.ID,
		PlayedAt:    now,
		PlayedOn:    today,
	}
	if err := s.repo.InsertPlay(ctx, s.db, &play); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.PlayResult{}, domain.ErrAlreadyPlayed
		}
		return domain.PlayResult{}, err
	}

	// Replenish the pool so the next winner at this tier finds a code
	// waiting. A failure here loses nothing; the next play mints on demand.
	if _, err := s.getOrCreatePromo(ctx, tier, now); err != nil {
		s.log.Warn("reward pool replenish failed",
			zap.Int64("tier", tier),
			zap.Error(err),
		)
	}

	s.log.Info("game won",
		zap.String("user_id", userID.String()),
		zap.String("game_type", gameType),
		zap.String("code", promo.Code),
	)

	view := promo.View()
	return domain.PlayResult{
		Won:       true,
		Message:   "You won a promocode!",
		Promotion: &view,
	}, nil
}

func (s *Service) CanPlayToday(ctx context.Context, userID snowflake.ID, gameType string) (domain.CanPlayResult, error) {
	if !domain.ValidGameType(gameType) {
		return domain.CanPlayResult{}, domain.ErrInvalidGameType
	}

	today := promodomain.DateOnly(s.clock.Now())
	played, err := s.repo.FindPlayOn(ctx, s.db, userID, gameType, today)
	if err != nil {
		return domain.CanPlayResult{}, err
	}

	if played != nil {
		return domain.CanPlayResult{
			CanPlay: false,
			Message: "You have already played this game today.",
		}, nil
	}
	return domain.CanPlayResult{
		CanPlay: true,
		Message: "You can play this game today.",
	}, nil
}

func (s *Service) MyPromos(ctx context.Context, userID snowflake.ID) ([]domain.PlayRecord, error) {
	plays, err := s.repo.ListPlays(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	records := make([]domain.PlayRecord, 0, len(plays))
	for _, play := range plays {
		record := domain.PlayRecord{
			GamePlayID: play.ID,
			GameType:   play.GameType,
			PlayedAt:   play.PlayedAt,
		}
		if play.Promotion != nil {
			view := play.Promotion.View()
			record.Promotion = &view
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Service) ListCurrentPromos(ctx context.Context, filter domain.UnclaimedFilter) ([]promodomain.View, error) {
	if filter.Today.IsZero() {
		filter.Today = promodomain.DateOnly(s.clock.Now())
	}

	promos, err := s.repo.ListUnclaimedPromotions(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	views := make([]promodomain.View, 0, len(promos))
	for _, promo := range promos {
		views = append(views, promo.View())
	}
	return views, nil
}

func (s *Service) draw() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() <= winChance
}

func (s *Service) pickTier() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return discountTiers[s.rng.Intn(len(discountTiers))]
}

func (s *Service) mintCode(tier int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("GAME%d%04d", tier, s.rng.Intn(9000)+1000)
}

// getOrCreatePromo returns an unclaimed promotion at the given tier, minting
// a fresh one when the pool is empty.
func (s *Service) getOrCreatePromo(ctx context.Context, tier int64, now time.Time) (*promodomain.Promotion, error) {
	discount := decimal.NewFromInt(tier)

	promo, err := s.repo.FindUnclaimedPromotion(ctx, s.db, discount)
	if err != nil {
		return nil, err
	}
	if promo != nil {
		return promo, nil
	}

	startDate := promodomain.DateOnly(now)
	endDate := promodomain.DateOnly(now.Add(rewardValidity))

	var lastErr error
	for i := 0; i < mintAttempts; i++ {
		minted := promodomain.Promotion{
			ID:            s.genID.Generate(),
			Code:          s.mintCode(tier),
			Description:   fmt.Sprintf("%d%% off from game", tier),
			DiscountType:  promodomain.DiscountPercentage,
			DiscountValue: discount,
			StartDate:     startDate,
			EndDate:       endDate,
			ActiveFlag:    true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.promotions.Insert(ctx, s.db, &minted); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				lastErr = promodomain.ErrCodeExists
				continue
			}
			return nil, err
		}

		s.log.Info("reward promotion minted",
			zap.String("code", minted.Code),
			zap.Int64("tier", tier),
		)
		return &minted, nil
	}
	return nil, lastErr
}
