package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/go-backoffice/auth"
	"github.com/diewo77/go-backoffice/httpx"
	"github.com/diewo77/go-backoffice/internal/apperr"
	"github.com/diewo77/go-backoffice/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db       *gorm.DB
	tokenTTL time.Duration
	log      logrus.FieldLogger
}

func NewAuthHandler(db *gorm.DB, tokenTTL time.Duration, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{db: db, tokenTTL: tokenTTL, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login checks the credentials, sets the session cookie and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.log.WithError(err).Error("login lookup failed")
			httpx.Error(w, r, apperr.Internal(err))
			return
		}
		httpx.Error(w, r, apperr.Unauthorized(apperr.CodeInvalidCredentials))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		httpx.Error(w, r, apperr.Unauthorized(apperr.CodeInvalidCredentials))
		return
	}

	token, err := auth.GenerateToken(user.ID, h.tokenTTL)
	if err != nil {
		h.log.WithError(err).Error("token signing failed")
		httpx.Error(w, r, apperr.Internal(err))
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.OK(w, r, http.StatusOK, "", map[string]any{
		"token":      token,
		"expires_in": int(h.tokenTTL.Seconds()),
		"user":       map[string]any{"id": user.ID, "email": user.Email, "name": user.Name},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	httpx.OK(w, r, http.StatusOK, "logged_out", nil)
}
