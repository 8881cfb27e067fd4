package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	gamedomain "github.com/marketmint/promokit/internal/game/domain"
	"github.com/marketmint/promokit/pkg/userctx"
	"github.com/shopspring/decimal"
)

func (s *Server) PlaySpinWheel(c *gin.Context) {
	s.playGame(c, gamedomain.GameSpinWheel)
}

func (s *Server) PlayMatchCard(c *gin.Context) {
	s.playGame(c, gamedomain.GameMatchCard)
}

func (s *Server) playGame(c *gin.Context, gameType string) {
	userID, ok := userctx.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.gameSvc.Play(c.Request.Context(), userID, gameType)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CanPlayGame(c *gin.Context) {
	userID, ok := userctx.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.gameSvc.CanPlayToday(c.Request.Context(), userID, strings.TrimSpace(c.Param("game_type")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetMyGamePromos(c *gin.Context) {
	userID, ok := userctx.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.gameSvc.MyPromos(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"game_plays": resp})
}

func (s *Server) ListCurrentGamePromos(c *gin.Context) {
	filter := gamedomain.UnclaimedFilter{}
	if raw := strings.TrimSpace(c.Query("discount")); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.Discount = &value
	}

	resp, err := s.gameSvc.ListCurrentPromos(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"promotions": resp})
}
