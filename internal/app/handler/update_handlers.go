package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/middleware"
	"github.com/emirkoc/shortlink/internal/models"
	"github.com/emirkoc/shortlink/internal/storage"
)

// UpdateHandler serves partial updates of short URL records.
type UpdateHandler struct {
	service *service.URLService
	baseURL string
	logger  *zap.Logger
}

// NewUpdate creates an UpdateHandler.
func NewUpdate(s *service.URLService, baseURL string, l *zap.Logger) *UpdateHandler {
	return &UpdateHandler{service: s, baseURL: strings.TrimRight(baseURL, "/"), logger: l}
}

// UpdateURL handles PUT /api/urls/{id}. Fields absent from the body keep
// their stored value; expiresAt set to null clears the expiry.
func (h *UpdateHandler) UpdateURL(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	userID, ok := middleware.UserIDFromContext(req.Context())
	if !ok {
		writeError(res, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(req, "id")

	var body models.UpdateURLRequest
	if err := decodeJSONBody(res, req, &body); err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			writeError(res, mr.status, mr.msg)
		} else {
			h.logger.Error("cannot decode update request", zap.Error(err))
			writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	record, err := h.service.UpdateURLRecord(ctx, id, userID, storage.URLUpdate{
		CustomAlias: body.CustomAlias,
		ExpiresAt:   body.ExpiresAt,
		IsActive:    body.IsActive,
	})
	if err != nil {
		writeServiceError(res, err)
		return
	}

	writeJSON(res, http.StatusOK, toURLResponse(record, h.baseURL))
}
