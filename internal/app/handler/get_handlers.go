package handler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/middleware"
	"github.com/emirkoc/shortlink/internal/models"
	"github.com/emirkoc/shortlink/internal/storage"
)

// GetHandler serves the public redirect path and the read side of the API:
// listing, analytics, per URL stats and the storage ping.
type GetHandler struct {
	service  *service.URLService
	clicks   *service.ClickService
	redirect *service.RedirectResolver
	baseURL  string
	logger   *zap.Logger
}

// NewGet creates a GetHandler.
func NewGet(s *service.URLService, c *service.ClickService, r *service.RedirectResolver, baseURL string, l *zap.Logger) *GetHandler {
	return &GetHandler{service: s, clicks: c, redirect: r, baseURL: strings.TrimRight(baseURL, "/"), logger: l}
}

// clientIP prefers the reverse proxy header and falls back to the socket
// address.
func clientIP(req *http.Request) string {
	if ip := req.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

// Redirect handles GET /{code}. The click is recorded behind the response.
func (h *GetHandler) Redirect(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	code := chi.URLParam(req, "code")

	resolution, err := h.redirect.Resolve(ctx, code, clientIP(req), req.UserAgent(), req.Referer())
	if err != nil {
		h.logger.Error("cannot resolve short code", zap.String("code", code), zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	switch resolution.Outcome {
	case service.OutcomeRedirect:
		http.Redirect(res, req, resolution.Target, http.StatusTemporaryRedirect)
	case service.OutcomeInactive:
		writeError(res, http.StatusGone, "short URL is deactivated")
	case service.OutcomeExpired:
		writeError(res, http.StatusGone, "short URL has expired")
	default:
		writeError(res, http.StatusNotFound, "short URL not found")
	}
}

// ListURLs handles GET /api/urls with page, pageSize and search parameters.
func (h *GetHandler) ListURLs(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	userID, ok := middleware.UserIDFromContext(req.Context())
	if !ok {
		writeError(res, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := req.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	search := q.Get("search")

	records, total, err := h.service.GetUserURLs(ctx, userID, page, pageSize, search)
	if err != nil {
		h.logger.Error("cannot list URLs", zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = service.DefaultPageSize
	} else if pageSize > service.MaxPageSize {
		pageSize = service.MaxPageSize
	}

	urls := make([]models.URLResponse, 0, len(records))
	for i := range records {
		urls = append(urls, toURLResponse(&records[i], h.baseURL))
	}

	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	writeJSON(res, http.StatusOK, models.ListURLsResponse{
		URLs: urls,
		Pagination: models.Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			Pages:    pages,
		},
	})
}

// Analytics handles GET /api/urls/analytics with an optional days parameter.
func (h *GetHandler) Analytics(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	userID, ok := middleware.UserIDFromContext(req.Context())
	if !ok {
		writeError(res, http.StatusUnauthorized, "unauthorized")
		return
	}

	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	report, err := h.clicks.Aggregate(ctx, userID, days)
	if err != nil {
		h.logger.Error("cannot aggregate analytics", zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(res, http.StatusOK, report)
}

// URLStats handles GET /api/urls/{id}/stats.
func (h *GetHandler) URLStats(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	userID, ok := middleware.UserIDFromContext(req.Context())
	if !ok {
		writeError(res, http.StatusUnauthorized, "unauthorized")
		return
	}

	id := chi.URLParam(req, "id")

	stats, err := h.clicks.URLStats(ctx, id, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(res, http.StatusNotFound, "URL not found")
			return
		}
		h.logger.Error("cannot load URL stats", zap.String("id", id), zap.Error(err))
		writeError(res, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(res, http.StatusOK, stats)
}

// PingDB handles GET /ping and reports storage reachability.
func (h *GetHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	if err := h.service.PingContext(ctx); err != nil {
		h.logger.Error("storage ping failed", zap.Error(err))
		writeError(res, http.StatusInternalServerError, "storage unavailable")
		return
	}
	res.WriteHeader(http.StatusOK)
}
