package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed session token for the given subject.
func GenerateToken(secret, subject string, admin bool, ttl time.Duration) (string, error) {
	claims := &sessionClaims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the subject and admin flag.
func ParseToken(secret, tokenString string) (string, bool, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", false, err
	}

	if claims, ok := token.Claims.(*sessionClaims); ok && token.Valid {
		return claims.Subject, claims.Admin, nil
	}

	return "", false, jwt.ErrTokenInvalidClaims
}
