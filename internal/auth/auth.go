package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/marketmint/promokit/internal/clock"
	"github.com/marketmint/promokit/internal/config"
	"github.com/marketmint/promokit/pkg/userctx"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

const defaultTokenTTL = 24 * time.Hour

// Claims carried inside the signed bearer token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HMAC-signed bearer tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewManager(cfg config.Config, clk clock.Clock) *Manager {
	return &Manager{
		secret: []byte(cfg.AuthJWTSecret),
		ttl:    defaultTokenTTL,
		clock:  clk,
	}
}

// Issue signs a token identifying the given user and role.
func (m *Manager) Issue(userID snowflake.ID, role string) (string, error) {
	now := m.clock.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a bearer token, returning the caller identity.
func (m *Manager) Verify(raw string) (snowflake.ID, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "", ErrMissingToken
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.clock.Now))
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(claims.Subject))
	if err != nil || userID == 0 {
		return 0, "", ErrInvalidToken
	}

	role := strings.TrimSpace(claims.Role)
	if role == "" {
		role = userctx.RoleUser
	}

	return userID, role, nil
}
