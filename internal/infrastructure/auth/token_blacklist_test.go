package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/schoolhub/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_AddToBlacklist(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-1", time.Hour))

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_EntriesExpire(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, blacklist.AddToBlacklist(ctx, "jti-short", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeUserTokens(t *testing.T) {
	blacklist := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issued := time.Now().Add(-time.Hour)

	revoked, err := blacklist.IsUserTokenRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, blacklist.RevokeUserTokens(ctx, "user-1", time.Hour))

	revoked, err = blacklist.IsUserTokenRevoked(ctx, "user-1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsUserTokenRevoked(ctx, "user-1", time.Now().Add(time.Second))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after the revocation stay valid")

	revoked, err = blacklist.IsUserTokenRevoked(ctx, "user-2", issued)
	require.NoError(t, err)
	assert.False(t, revoked)
}
