package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketmint/promokit/internal/auth"
	discountdomain "github.com/marketmint/promokit/internal/discount/domain"
	gamedomain "github.com/marketmint/promokit/internal/game/domain"
	productdomain "github.com/marketmint/promokit/internal/product/domain"
	promodomain "github.com/marketmint/promokit/internal/promotion/domain"
	"gorm.io/gorm"
)

var ErrInvalidRequest = errors.New("invalid request")

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware renders the last handler error as a JSON body.
// Handlers report failures with AbortWithError and never write error bodies
// themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	errType, _ := classifyErrorForLog(err)
	switch errType {
	case "unauthorized":
		return http.StatusUnauthorized, errorPayload{Type: errType, Message: "unauthorized"}
	case "forbidden":
		return http.StatusForbidden, errorPayload{Type: errType, Message: err.Error()}
	case "conflict":
		return http.StatusConflict, errorPayload{Type: errType, Message: err.Error()}
	case "not_found":
		return http.StatusNotFound, errorPayload{Type: errType, Message: "not found"}
	case "validation_error":
		return http.StatusBadRequest, errorPayload{Type: errType, Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog buckets an error for both response mapping and the
// request log. It returns a type and a stable code.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return "unauthorized", "unauthorized"
	case errors.Is(err, auth.ErrForbidden):
		return "forbidden", "forbidden"
	case errors.Is(err, gamedomain.ErrAlreadyPlayed):
		return "forbidden", "already_played"
	case errors.Is(err, promodomain.ErrCodeExists):
		return "conflict", "code_exists"
	case isNotFoundError(err):
		return "not_found", "not_found"
	case isValidationError(err):
		return "validation_error", "invalid_request"
	default:
		return "internal_error", "internal_error"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, promodomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, promodomain.ErrInvalidID),
		errors.Is(err, promodomain.ErrInvalidCode),
		errors.Is(err, promodomain.ErrInvalidDiscountType),
		errors.Is(err, promodomain.ErrInvalidDiscountValue),
		errors.Is(err, promodomain.ErrInvalidDateRange),
		errors.Is(err, promodomain.ErrInvalidDate),
		errors.Is(err, promodomain.ErrMultipleTargets),
		errors.Is(err, promodomain.ErrTargetImmutable),
		errors.Is(err, discountdomain.ErrEmptyCart),
		errors.Is(err, discountdomain.ErrInvalidQuantity),
		errors.Is(err, discountdomain.ErrInvalidPrice),
		errors.Is(err, discountdomain.ErrUnknownProduct),
		errors.Is(err, discountdomain.ErrInactive),
		errors.Is(err, discountdomain.ErrExpired),
		errors.Is(err, discountdomain.ErrNotApplicable),
		errors.Is(err, gamedomain.ErrInvalidGameType):
		return true
	default:
		return false
	}
}
