package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wtfSocial/errs"
)

// TokenManager issues and verifies the JWTs that carry a user's identity.
// Tokens are HMAC-signed with a server-side secret and expire after TTL.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager returns a TokenManager signing with the given secret.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for the given user ID.
func (tm *TokenManager) Issue(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
	})
	return token.SignedString(tm.secret)
}

// Verify parses a token string and returns the user ID it carries.
func (tm *TokenManager) Verify(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.Errorf(errs.EUNAUTHORIZED, "Unexpected signing method.")
		}
		return tm.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid or expired token.")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid token claims.")
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID <= 0 {
		return 0, errs.Errorf(errs.EUNAUTHORIZED, "Invalid token subject.")
	}
	return userID, nil
}
