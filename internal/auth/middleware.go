package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketmint/promokit/pkg/userctx"
)

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// UserRequired authenticates the request and stores the caller identity on
// the request context.
func (m *Manager) UserRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := m.Verify(BearerToken(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx := userctx.WithUser(c.Request.Context(), userID, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SuperAdminRequired authenticates the request and rejects callers without
// the super admin role.
func (m *Manager) SuperAdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, role, err := m.Verify(BearerToken(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if role != userctx.RoleSuperAdmin {
			_ = c.Error(ErrForbidden)
			c.Abort()
			return
		}

		ctx := userctx.WithUser(c.Request.Context(), userID, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
