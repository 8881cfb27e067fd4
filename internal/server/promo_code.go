package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	discountdomain "github.com/marketmint/promokit/internal/discount/domain"
)

type applyPromoCodeRequest struct {
	PromoCode string                    `json:"promo_code"`
	CartItems []discountdomain.CartItem `json:"cart_items"`
}

func (s *Server) ApplyPromoCode(c *gin.Context) {
	var req applyPromoCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.discountSvc.Apply(c.Request.Context(), strings.TrimSpace(req.PromoCode), req.CartItems)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Promotion applied successfully!",
		"promotion_id":    resp.PromotionID,
		"code":            resp.Code,
		"subtotal":        resp.Subtotal,
		"discount_amount": resp.DiscountAmount,
		"new_total":       resp.Total,
	})
}
