// Package auth identifies the caller of an API request, either from the
// signed session cookie or from a Bearer token, and stores the user id in the
// request context.
package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/go-backoffice/httpx"
	"github.com/diewo77/go-backoffice/internal/apperr"
)

type ctxKey string

const (
	sessionCookieName = "session"
	userIDCtxKey      = ctxKey("userID")
	sessionLifetime   = 14 * 24 * time.Hour
)

// UserVerifier is an optional callback to validate that a user still exists.
type UserVerifier func(ctx context.Context, uid uint) bool

var (
	mu       sync.RWMutex
	verifier UserVerifier
	secret   string
)

// SetUserVerifier configures the verifier used by RequireAuth.
func SetUserVerifier(v UserVerifier) {
	mu.Lock()
	verifier = v
	mu.Unlock()
}

// SetSecret overrides the signing secret shared by cookies and tokens.
func SetSecret(s string) {
	mu.Lock()
	secret = s
	mu.Unlock()
}

// Secret returns the configured secret, SESSION_SECRET, or a dev default.
func Secret() string {
	mu.RLock()
	s := secret
	mu.RUnlock()
	if s != "" {
		return s
	}
	if s := os.Getenv("SESSION_SECRET"); s != "" {
		return s
	}
	return "devsessionsecret"
}

func sign(value string) string {
	mac := hmac.New(sha256.New, []byte(Secret()))
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// CreateSession sets a signed cookie with the user id.
func CreateSession(w http.ResponseWriter, userID uint) {
	uidStr := strconv.FormatUint(uint64(userID), 10)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    uidStr + "." + sign(uidStr),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionLifetime),
	})
}

// ClearSession deletes the session cookie.
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns the user id.
func ParseSession(r *http.Request) (uint, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, false
	}
	uidStr, sig, ok := strings.Cut(c.Value, ".")
	if !ok {
		return 0, false
	}
	if !hmac.Equal([]byte(sig), []byte(sign(uidStr))) {
		return 0, false
	}
	id64, err := strconv.ParseUint(uidStr, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id64), true
}

// WithUserID stores user id in context.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext extracts user id.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDCtxKey).(uint)
	return id, ok && id != 0
}

// Middleware attaches the user id to the request context. A Bearer token
// takes precedence over the session cookie.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, ok := ParseBearer(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		} else if uid, ok := ParseSession(r); ok {
			r = r.WithContext(WithUserID(r.Context(), uid))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 when no valid user is attached to the request.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			httpx.Error(w, r, apperr.Unauthorized(apperr.CodeUnauthorized))
			return
		}
		mu.RLock()
		v := verifier
		mu.RUnlock()
		if v != nil && !v(r.Context(), uid) {
			// Session refers to a deleted user.
			ClearSession(w)
			httpx.Error(w, r, apperr.Unauthorized(apperr.CodeUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}
