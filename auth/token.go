package auth

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of tokens issued by GenerateToken.
const DefaultTokenTTL = 24 * time.Hour

var errUnexpectedSigningMethod = errors.New("unexpected signing method")

// GenerateToken issues an HS256 token whose subject is the user id.
func GenerateToken(userID uint, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(Secret()))
}

// ParseToken validates a token and returns its user id.
func ParseToken(raw string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnexpectedSigningMethod
		}
		return []byte(Secret()), nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, jwt.ErrTokenInvalidClaims
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, jwt.ErrTokenInvalidSubject
	}
	return uint(id), nil
}

// ParseBearer reads "Authorization: Bearer <token>".
func ParseBearer(r *http.Request) (uint, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return 0, false
	}
	id, err := ParseToken(strings.TrimSpace(h[7:]))
	if err != nil {
		return 0, false
	}
	return id, true
}
