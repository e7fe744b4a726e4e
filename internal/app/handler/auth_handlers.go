package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/middleware"
	"github.com/emirkoc/shortlink/internal/models"
	"github.com/emirkoc/shortlink/internal/storage"
)

// AuthHandler serves account registration, login and profile lookup.
type AuthHandler struct {
	auth   *service.Auth
	logger *zap.Logger
}

// NewAuth creates an AuthHandler.
func NewAuth(a *service.Auth, l *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: a, logger: l}
}

func userResponse(u *storage.UserRecord) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	var body models.RegisterRequest
	if err := decodeJSONBody(res, req, &body); err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			writeError(res, mr.status, mr.msg)
		} else {
			h.logger.Error("cannot decode register request", zap.Error(err))
			writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	user, token, err := h.auth.Register(ctx, body.Username, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(res, http.StatusBadRequest, "username, email and password are required")
			return
		}
		if errors.Is(err, service.ErrUserExists) {
			writeError(res, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("cannot register user", zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(res, http.StatusCreated, models.AuthResponse{User: userResponse(user), Token: token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	var body models.LoginRequest
	if err := decodeJSONBody(res, req, &body); err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			writeError(res, mr.status, mr.msg)
		} else {
			h.logger.Error("cannot decode login request", zap.Error(err))
			writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	user, token, err := h.auth.Login(ctx, body.Username, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(res, http.StatusUnauthorized, "invalid username or password")
			return
		}
		h.logger.Error("cannot log in user", zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(res, http.StatusOK, models.AuthResponse{User: userResponse(user), Token: token})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	userID, ok := middleware.UserIDFromContext(req.Context())
	if !ok {
		writeError(res, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.auth.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(res, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("cannot load profile", zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(res, http.StatusOK, userResponse(user))
}
