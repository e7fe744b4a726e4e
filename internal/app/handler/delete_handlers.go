package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/middleware"
	"github.com/emirkoc/shortlink/internal/storage"
)

// DeleteHandler serves short URL deletion.
type DeleteHandler struct {
	service *service.URLService
	logger  *zap.Logger
}

// NewDelete creates a DeleteHandler.
func NewDelete(s *service.URLService, l *zap.Logger) *DeleteHandler {
	return &DeleteHandler{service: s, logger: l}
}

// DeleteURL handles DELETE /api/urls/{id}. Click history goes with the
// record.
func (h *DeleteHandler) DeleteURL(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	userID, ok := middleware.UserIDFromContext(req.Context())
	if !ok {
		writeError(res, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(req, "id")

	if err := h.service.DeleteURLRecord(ctx, id, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(res, http.StatusNotFound, "URL not found")
			return
		}
		h.logger.Error("cannot delete URL", zap.String("id", id), zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	res.WriteHeader(http.StatusNoContent)
}
