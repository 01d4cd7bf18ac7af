package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenGenerator_AccessTokenRoundTrip(t *testing.T) {
	tg := NewTokenGenerator("test-secret", time.Minute, time.Hour)

	token, err := tg.GenerateAccessToken(7, "Mika")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, name, err := tg.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
	assert.Equal(t, "Mika", name)
}

func TestTokenGenerator_ValidateAccessToken_WrongSecret(t *testing.T) {
	tg := NewTokenGenerator("test-secret", time.Minute, time.Hour)
	other := NewTokenGenerator("other-secret", time.Minute, time.Hour)

	token, err := tg.GenerateAccessToken(7, "Mika")
	require.NoError(t, err)

	_, _, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTokenGenerator_ValidateAccessToken_Expired(t *testing.T) {
	tg := NewTokenGenerator("test-secret", -time.Minute, time.Hour)

	token, err := tg.GenerateAccessToken(7, "Mika")
	require.NoError(t, err)

	_, _, err = tg.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestTokenGenerator_ValidateAccessToken_Garbage(t *testing.T) {
	tg := NewTokenGenerator("test-secret", time.Minute, time.Hour)

	_, _, err := tg.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}
