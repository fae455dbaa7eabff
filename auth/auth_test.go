package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func sessionCookie(t *testing.T, uid uint) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	CreateSession(rec, uid)
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestSessionRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, 42))
	uid, ok := ParseSession(req)
	if !ok || uid != 42 {
		t.Fatalf("ParseSession() = %d, %v", uid, ok)
	}
}

func TestSessionTampered(t *testing.T) {
	c := sessionCookie(t, 42)
	c.Value = "43" + c.Value[2:]
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if _, ok := ParseSession(req); ok {
		t.Fatal("tampered cookie accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken(7, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	uid, err := ParseToken(tok)
	if err != nil || uid != 7 {
		t.Fatalf("ParseToken() = %d, %v", uid, err)
	}
}

func TestTokenExpired(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(Secret()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(tok); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "7"}).SignedString([]byte("other"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(tok); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestMiddlewareAndRequireAuth(t *testing.T) {
	var seen uint
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	tok, _ := GenerateToken(9, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != 9 {
		t.Fatalf("bearer: got %d uid=%d", rec.Code, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, 11))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != 11 {
		t.Fatalf("cookie: got %d uid=%d", rec.Code, seen)
	}
}

func TestRequireAuth_Verifier(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return uid == 1 })
	defer SetUserVerifier(nil)

	h := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUserID(req.Context(), 2))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", rec.Code)
	}
}
