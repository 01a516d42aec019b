package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("super-secret", time.Hour)

	tok, err := svc.GenerateToken("user-123", "user@example.com")
	require.NoError(t, err)

	claims, err := svc.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("secret", -time.Second)

	tok, err := svc.GenerateToken("u1", "u1@example.com")
	require.NoError(t, err)

	_, err = svc.ParseToken(tok)
	assert.Error(t, err)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewJWTService("right-secret", time.Hour).GenerateToken("u2", "u2@example.com")
	require.NoError(t, err)

	_, err = NewJWTService("wrong-secret", time.Hour).ParseToken(tok)
	assert.Error(t, err)
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService("k", time.Hour).ParseToken("not.a.jwt")
	assert.Error(t, err)
}

func TestGenerateToken_UniqueJTI(t *testing.T) {
	t.Parallel()

	svc := NewJWTService("secret", time.Hour)

	a, err := svc.GenerateToken("u", "u@example.com")
	require.NoError(t, err)
	b, err := svc.GenerateToken("u", "u@example.com")
	require.NoError(t, err)

	ca, err := svc.ParseToken(a)
	require.NoError(t, err)
	cb, err := svc.ParseToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}
