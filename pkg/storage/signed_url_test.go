package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("6770c9791558f820.png")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	name, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "6770c9791558f820.png", name)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Minute)
	token, _, err := signer.Generate("a.png")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = signer.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignedURLSignerRejectsForgery(t *testing.T) {
	token, _, err := NewSignedURLSigner("secret", time.Hour).Generate("a.png")
	require.NoError(t, err)

	_, err = NewSignedURLSigner("other", time.Hour).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewSignedURLSigner("secret", time.Hour).Parse("garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}
