package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"github.com/marketmint/promokit/pkg/db/pagination"
)

func (s *Server) CreatePromotion(c *gin.Context) {
	var req promodomain.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.promotionSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPromotions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		ActiveOnly bool `form:"active_only"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.promotionSvc.List(c.Request.Context(), promodomain.ListPromotionsRequest{
		Pagination: query.Pagination,
		ActiveOnly: query.ActiveOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPromotionByID(c *gin.Context) {
	resp, err := s.promotionSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePromotion(c *gin.Context) {
	var req promodomain.UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.promotionSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePromotion(c *gin.Context) {
	if err := s.promotionSvc.SoftDelete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Promotion deleted successfully."})
}
