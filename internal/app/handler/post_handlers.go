package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/middleware"
	"github.com/emirkoc/shortlink/internal/models"
	"github.com/emirkoc/shortlink/internal/storage"
)

// PostHandler serves short URL creation.
type PostHandler struct {
	service *service.URLService
	baseURL string
	logger  *zap.Logger
}

// NewPost creates a PostHandler. baseURL is the public prefix of issued
// short links, without a trailing slash.
func NewPost(s *service.URLService, baseURL string, l *zap.Logger) *PostHandler {
	return &PostHandler{service: s, baseURL: strings.TrimRight(baseURL, "/"), logger: l}
}

func shortLink(baseURL, code string) string {
	return baseURL + "/" + code
}

func toURLResponse(r *storage.URLRecord, baseURL string) models.URLResponse {
	return models.URLResponse{
		ID:          r.ID,
		OriginalURL: r.OriginalURL,
		ShortCode:   r.ShortCode,
		CustomAlias: r.CustomAlias,
		ShortURL:    shortLink(baseURL, r.ShortCode),
		ClickCount:  r.ClickCount,
		IsActive:    r.IsActive,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// CreateURL handles POST /api/urls.
func (h *PostHandler) CreateURL(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	userID, ok := middleware.UserIDFromContext(req.Context())
	if !ok {
		writeError(res, http.StatusUnauthorized, "unauthorized")
		return
	}

	var body models.CreateURLRequest
	if err := decodeJSONBody(res, req, &body); err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			writeError(res, mr.status, mr.msg)
		} else {
			h.logger.Error("cannot decode create request", zap.Error(err))
			writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
		return
	}

	record, err := h.service.CreateURLRecord(ctx, body.OriginalURL, userID, body.CustomAlias, body.ExpiresAt)
	if err != nil {
		writeServiceError(res, err)
		return
	}

	writeJSON(res, http.StatusCreated, models.CreateURLResponse{
		ShortURL:    shortLink(h.baseURL, record.ShortCode),
		URLID:       record.ID,
		ShortCode:   record.ShortCode,
		CustomAlias: record.CustomAlias,
	})
}
