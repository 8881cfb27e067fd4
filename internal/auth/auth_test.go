package auth

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/marketmint/promokit/internal/clock"
	"github.com/marketmint/promokit/internal/config"
	"github.com/marketmint/promokit/pkg/userctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) (*Manager, *clock.FakeClock, *snowflake.Node) {
	t.Helper()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))
	mgr := NewManager(config.Config{AuthJWTSecret: "test-secret"}, fake)
	return mgr, fake, node
}

func TestIssueAndVerify(t *testing.T) {
	mgr, _, node := newManager(t)
	userID := node.Generate()

	token, err := mgr.Issue(userID, userctx.RoleSuperAdmin)
	require.NoError(t, err)

	gotID, role, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, userctx.RoleSuperAdmin, role)
}

func TestVerifyMissingToken(t *testing.T) {
	mgr, _, _ := newManager(t)

	_, _, err := mgr.Verify("  ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestVerifyGarbageToken(t *testing.T) {
	mgr, _, _ := newManager(t)

	_, _, err := mgr.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	mgr, fake, node := newManager(t)

	token, err := mgr.Issue(node.Generate(), userctx.RoleUser)
	require.NoError(t, err)

	fake.Advance(25 * time.Hour)
	_, _, err = mgr.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	mgr, fake, node := newManager(t)

	other := NewManager(config.Config{AuthJWTSecret: "different"}, fake)
	token, err := other.Issue(node.Generate(), userctx.RoleUser)
	require.NoError(t, err)

	_, _, err = mgr.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyDefaultsRole(t *testing.T) {
	mgr, _, node := newManager(t)

	token, err := mgr.Issue(node.Generate(), "")
	require.NoError(t, err)

	_, role, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userctx.RoleUser, role)
}
