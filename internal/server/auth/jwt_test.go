package auth

import (
	"testing"
	"time"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	secret := []byte("super-secret")

	tok, expires, err := GenerateToken(7, "a@x.com", common.RoleAdmin, secret, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.IsAdmin())
}

func TestParseToken_Expired(t *testing.T) {
	secret := []byte("secret")

	tok, _, err := GenerateToken(1, "a@x.com", common.RoleUser, secret, -time.Second)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, _, err := GenerateToken(2, "b@x.com", common.RoleUser, []byte("right"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.jwt", []byte("s"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(s, []byte("s"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_RequiresUserID(t *testing.T) {
	secret := []byte("s")
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{})
	s, err := tok.SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(s, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
