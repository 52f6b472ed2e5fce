package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepositoryWithoutRedisIsStateless(t *testing.T) {
	repo := NewSessionRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	require.NoError(t, repo.Store(ctx, 1, "sid", time.Hour))

	exists, err := repo.Exists(ctx, 1, "sid")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Revoke(ctx, 1, "sid"))
	require.NoError(t, repo.RevokeAll(ctx, 1))
	require.NoError(t, repo.Close())
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session:42:abc", sessionKey(42, "abc"))
}
