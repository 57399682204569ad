package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("owner")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, "gokul-pos", claims.Issuer)
}

func TestSecretSetAfterStartupIsUsed(t *testing.T) {
	// Secrets loaded from .env land in the environment after this package
	// is initialized, so signing must read the variable at call time.
	t.Setenv("JWT_SECRET", "")
	token, err := GenerateToken("owner")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "rotated-secret")

	_, err = ParseToken(token)
	assert.Error(t, err, "token signed with the fallback must not verify under the configured secret")

	rotated, err := GenerateToken("owner")
	require.NoError(t, err)
	claims, err := ParseToken(rotated)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.Role)
}
