package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
)

// Supported game types.
const (
	GameSpinWheel = "spin-wheel"
	GameMatchCard = "match-card"
)

// GameTypes lists every playable game.
var GameTypes = []string{GameSpinWheel, GameMatchCard}

func ValidGameType(gameType string) bool {
	for _, t := range GameTypes {
		if t == gameType {
			return true
		}
	}
	return false
}

var (
	ErrInvalidGameType = errors.New("invalid game type")
	ErrAlreadyPlayed   = errors.New("game already played today")
)

// GamePlay records one attempt at a game. PromotionID is nil for losses.
// PlayedOn is the UTC calendar date of the attempt; the unique index on
// (user_id, game_type, played_on) enforces the one-play-per-day rule at the
// database level.
type GamePlay struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"game_play_id"`
	UserID      snowflake.ID  `gorm:"not null;index;uniqueIndex:ux_game_plays_daily" json:"user_id"`
	GameType    string        `gorm:"size:20;not null;uniqueIndex:ux_game_plays_daily" json:"game_type"`
	PromotionID *snowflake.ID `gorm:"index" json:"promotion_id,omitempty"`
	PlayedAt    time.Time     `gorm:"not null" json:"played_at"`
	PlayedOn    time.Time     `gorm:"type:date;not null;uniqueIndex:ux_game_plays_daily" json:"-"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	Promotion *promodomain.Promotion `gorm:"foreignKey:PromotionID" json:"-"`
}

func (GamePlay) TableName() string {
	return "game_plays"
}

// PlayResult is the outcome of a single game attempt.
type PlayResult struct {
	Won       bool              `json:"won"`
	Message   string            `json:"message"`
	Promotion *promodomain.View `json:"promotion,omitempty"`
}

// PlayRecord is a historical game play with its reward, if any.
type PlayRecord struct {
	GamePlayID snowflake.ID      `json:"game_play_id"`
	GameType   string            `json:"game_type"`
	PlayedAt   time.Time         `json:"played_at"`
	Promotion  *promodomain.View `json:"promotion,omitempty"`
}

// CanPlayResult answers whether the user may play a game today.
type CanPlayResult struct {
	CanPlay bool   `json:"can_play"`
	Message string `json:"message"`
}
