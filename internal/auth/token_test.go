package auth_test

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/samandareo/quick-brand-admin/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestParseIdentity_AdminIDClaim(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"adminId": "admin-42",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	id, err := auth.ParseIdentity(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin-42", id)
}

func TestParseIdentity_SubjectFallback(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub": "admin-7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	id, err := auth.ParseIdentity(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin-7", id)
}

func TestParseIdentity_Expired(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"adminId": "admin-42",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})

	_, err := auth.ParseIdentity(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestParseIdentity_NoIdentity(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := auth.ParseIdentity(token)
	assert.ErrorIs(t, err, auth.ErrNoIdentity)
}

func TestParseIdentity_Garbage(t *testing.T) {
	_, err := auth.ParseIdentity("not-a-jwt")
	assert.Error(t, err)
}
