package userctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type contextKey string

const (
	userIDKey contextKey = "user_id"
	roleKey   contextKey = "role"
)

// Roles understood by the authorization middleware.
const (
	RoleUser       = "user"
	RoleSuperAdmin = "super_admin"
)

func WithUser(ctx context.Context, userID snowflake.ID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(userIDKey).(snowflake.ID)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

func RoleFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	role, ok := ctx.Value(roleKey).(string)
	if !ok || role == "" {
		return "", false
	}
	return role, true
}
