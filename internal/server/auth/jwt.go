// Package auth issues and verifies the session tokens handed out at login.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/electronshop/shopkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the identity of a logged-in credential.
type Claims struct {
	jwt.RegisteredClaims
	UserID uint64 `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the token was issued to an admin credential.
func (c *Claims) IsAdmin() bool { return c.Role == common.RoleAdmin }

var now = time.Now

// GenerateToken signs an HS256 token valid for validity and returns it with
// its expiry.
func GenerateToken(userID uint64, email, role string, secretKey []byte, validity time.Duration) (string, time.Time, error) {
	issued := now()
	expires := issued.Add(validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseToken verifies tokenString and returns its claims. An expired token
// yields common.ErrTokenExpired, anything else invalid common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
