package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/travel-booking/internal/utils"
)

func TestAccessToken_RoundTrip(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 42, "CUSTOMER", 5)
	require.NoError(t, err)

	claims, err := utils.ParseAccessToken("secret", at.Token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "CUSTOMER", claims["role"])

	_, err = utils.ParseAccessToken("other", at.Token)
	assert.Error(t, err)
}

func TestResetToken(t *testing.T) {
	const secret = "secret"
	tok, err := utils.NewResetToken(secret, 7, "hash-v1", time.Hour)
	require.NoError(t, err)

	assert.NoError(t, utils.VerifyResetToken(secret, tok, 7, "hash-v1"))
	assert.ErrorIs(t, utils.VerifyResetToken(secret, tok, 8, "hash-v1"), utils.ErrInvalidResetToken, "other user")
	assert.ErrorIs(t, utils.VerifyResetToken(secret, tok, 7, "hash-v2"), utils.ErrInvalidResetToken, "password changed")
	assert.ErrorIs(t, utils.VerifyResetToken("other", tok, 7, "hash-v1"), utils.ErrInvalidResetToken)
	assert.ErrorIs(t, utils.VerifyResetToken(secret, "garbage", 7, "hash-v1"), utils.ErrInvalidResetToken)
}

func TestResetToken_Expired(t *testing.T) {
	tok, err := utils.NewResetToken("secret", 7, "hash", -time.Minute)
	require.NoError(t, err)
	assert.ErrorIs(t, utils.VerifyResetToken("secret", tok, 7, "hash"), utils.ErrInvalidResetToken)
}

func TestResetToken_NotAnAccessToken(t *testing.T) {
	tok, err := utils.NewResetToken("secret", 7, "hash", time.Hour)
	require.NoError(t, err)
	_, err = utils.ParseAccessToken("secret", tok)
	assert.Error(t, err)
}

func TestUID(t *testing.T) {
	enc := utils.EncodeUID(123)
	assert.Equal(t, "MTIz", enc)
	id, err := utils.DecodeUID(enc)
	require.NoError(t, err)
	assert.Equal(t, uint64(123), id)

	id, err = utils.DecodeUID("MTIz==")
	require.NoError(t, err)
	assert.Equal(t, uint64(123), id)

	_, err = utils.DecodeUID("!!!")
	assert.ErrorIs(t, err, utils.ErrInvalidUID)
	_, err = utils.DecodeUID(utils.EncodeUID(0))
	assert.ErrorIs(t, err, utils.ErrInvalidUID)
	_, err = utils.DecodeUID("YWJj") // "abc"
	assert.ErrorIs(t, err, utils.ErrInvalidUID)
}

func TestPassword(t *testing.T) {
	hash, err := utils.HashPassword("correct horse", 4)
	require.NoError(t, err)
	assert.True(t, utils.VerifyPassword(hash, "correct horse"))
	assert.False(t, utils.VerifyPassword(hash, "wrong"))
}
