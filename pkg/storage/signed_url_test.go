package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("user-1", "photos/user-1.jpg")
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	ownerID, relPath, _, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", ownerID)
	require.Equal(t, "photos/user-1.jpg", relPath)
}

func TestSignedURLRejectsTamperedToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, _, err := signer.Generate("user-1", "photos/user-1.jpg")
	require.NoError(t, err)

	_, _, _, err = signer.Parse(token + "x")
	require.Error(t, err)
}

func TestSignedURLRejectsExpiredToken(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond)

	token, _, err := signer.Generate("user-1", "photos/user-1.jpg")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, _, _, err = signer.Parse(token)
	require.ErrorContains(t, err, "expired")
}

func TestSignedURLRejectsWrongSecret(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	other := NewSignedURLSigner("different", time.Hour)

	token, _, err := signer.Generate("user-1", "photos/user-1.jpg")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token)
	require.Error(t, err)
}
