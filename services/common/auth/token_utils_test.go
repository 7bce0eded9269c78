package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayhanbeg/Sajbela-sub000/services/common/auth"
)

func TestIssueAndUserID(t *testing.T) {
	p := auth.NewTokenParser("s3cret")
	token, err := p.Issue("user-42", time.Hour)
	require.NoError(t, err)

	userID, err := p.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestUserID_RejectsWrongSecret(t *testing.T) {
	token, err := auth.NewTokenParser("one").Issue("user-42", time.Hour)
	require.NoError(t, err)

	_, err = auth.NewTokenParser("two").UserID(token)
	assert.Error(t, err)
}

func TestUserID_RejectsExpired(t *testing.T) {
	p := auth.NewTokenParser("s3cret")
	token, err := p.Issue("user-42", -time.Minute)
	require.NoError(t, err)

	_, err = p.UserID(token)
	assert.Error(t, err)
}

func TestUserID_RejectsRefreshToken(t *testing.T) {
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-42",
		"typ": "refresh",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = auth.NewTokenParser("s3cret").UserID(token)
	assert.Error(t, err)
}

func TestParse_NoSecret(t *testing.T) {
	_, err := auth.NewTokenParser("").ParseAndValidateToken("x", "")
	assert.EqualError(t, err, "JWT secret not configured")
}
