package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidResetToken covers expired, malformed and mis-signed tokens.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ResetTokenTTL bounds how long an emailed password-reset link stays
// usable.
const ResetTokenTTL = time.Hour

type resetClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// NewResetToken issues a signed token that authorizes one password
// reset for the named user. The token travels inside an emailed link,
// so it carries its own expiry instead of relying on a session.
func NewResetToken(secret, username string, ttl time.Duration) (string, error) {
	claims := resetClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "password_reset",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseResetToken validates a reset token and returns the username it
// was issued for.
func ParseResetToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &resetClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidResetToken
	}
	claims, ok := token.Claims.(*resetClaims)
	if !ok || claims.Username == "" || claims.Subject != "password_reset" {
		return "", ErrInvalidResetToken
	}
	return claims.Username, nil
}
